package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rpa-agent/internal/logging"
	"rpa-agent/pkg/models"
)

// Dispatcher spawns child workflow processes and registers them in the
// shared registry. Spawning is synchronous and fast; waiting for exit runs
// in a per-task goroutine so the caller returns as soon as the pid is known.
type Dispatcher struct {
	env        *Environment
	registry   *Registry
	logger     *logging.Logger
	dispatches metric.Int64Counter
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(env *Environment, registry *Registry, logger *logging.Logger) *Dispatcher {
	meter := otel.Meter("rpa-agent/runner")
	dispatches, _ := meter.Int64Counter("rpa.tasks.dispatched",
		metric.WithDescription("Number of dispatched workflow tasks"))

	return &Dispatcher{
		env:        env,
		registry:   registry,
		logger:     logger,
		dispatches: dispatches,
	}
}

// Dispatch resolves the script, spawns it with stdout and stderr redirected
// to a per-task log file, and registers a running ProcessRecord. The
// returned channel delivers the final record once the child has exited.
//
// The registry record owns exactly one writer: the goroutine waiting on the
// child. A spawn failure is recorded as a terminal error record so later
// status queries can explain it, and is also returned to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, scriptRef, taskID string, nonInteractive bool) (models.ProcessRecord, <-chan models.ProcessRecord, error) {
	fullPath, err := d.env.ResolveScript(scriptRef)
	if err != nil {
		return models.ProcessRecord{}, nil, err
	}

	startedAt := time.Now()
	logPath := d.env.LogFilePath(taskID, startedAt)
	logFile, err := os.Create(logPath)
	if err != nil {
		return models.ProcessRecord{}, nil, fmt.Errorf("create log file: %w", err)
	}

	args := []string{fullPath}
	if nonInteractive {
		args = append(args, "--non-interactive")
	}

	cmd := exec.Command(d.env.Interpreter(), args...)
	cmd.Dir = d.env.ProjectRoot()
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = d.env.ChildEnv()

	if err := cmd.Start(); err != nil {
		logFile.Close()
		spawnErr := fmt.Errorf("%w: %v", ErrSpawn, err)
		d.registry.Insert(models.ProcessRecord{
			TaskID:     taskID,
			ScriptPath: scriptRef,
			StartedAt:  startedAt,
			LogFile:    logPath,
			Status:     models.ProcessStatusError,
			Error:      spawnErr.Error(),
		})
		d.logger.Error("failed to start script", "script", scriptRef, "task_id", taskID, "error", err)
		return models.ProcessRecord{}, nil, spawnErr
	}

	rec := models.ProcessRecord{
		TaskID:     taskID,
		PID:        cmd.Process.Pid,
		ScriptPath: scriptRef,
		StartedAt:  startedAt,
		LogFile:    logPath,
		Status:     models.ProcessStatusRunning,
	}
	d.registry.Insert(rec)

	d.dispatches.Add(ctx, 1, metric.WithAttributes(attribute.String("script", scriptRef)))
	d.logger.Info("task dispatched", "task_id", taskID, "script", scriptRef, "pid", rec.PID, "log_file", logPath)

	done := make(chan models.ProcessRecord, 1)
	go d.waitForExit(cmd, logFile, taskID, done)

	return rec, done, nil
}

// waitForExit blocks on the child, then finalizes the record. Errors here
// happen after the HTTP response has been sent; they are only observable
// via later status queries.
func (d *Dispatcher) waitForExit(cmd *exec.Cmd, logFile *os.File, taskID string, done chan<- models.ProcessRecord) {
	waitErr := cmd.Wait()
	logFile.Close()

	exitCode := 0
	errMsg := ""
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
		errMsg = waitErr.Error()
	}

	final, ok := d.registry.Finish(taskID, exitCode, errMsg)
	if !ok {
		// The record was stopped or removed while we waited; report the
		// last known state if it still exists.
		final, ok = d.registry.Get(taskID)
		if !ok {
			final = models.ProcessRecord{TaskID: taskID, Status: models.ProcessStatusStopped}
		}
	}

	d.logger.Info("task finished", "task_id", taskID, "status", string(final.Status), "exit_code", exitCode)
	done <- final
	close(done)
}
