package services

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/google/uuid"

	"rpa-agent/internal/logging"
	"rpa-agent/internal/runner"
	"rpa-agent/pkg/models"
)

// ErrUnknownTask is returned when a task name has no catalog entry.
var ErrUnknownTask = errors.New("unknown task")

// TaskRun is the outcome of a named-task dispatch. Final is set only for
// synchronous execution, after the child has exited.
type TaskRun struct {
	TaskID     string
	Definition models.TaskDefinition
	Record     models.ProcessRecord
	Final      *models.ProcessRecord
}

// TaskService dispatches predefined, catalog-named tasks and records them
// in the task history.
type TaskService struct {
	catalog    *Catalog
	dispatcher *runner.Dispatcher
	history    *runner.History
	logger     *logging.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(catalog *Catalog, dispatcher *runner.Dispatcher, history *runner.History, logger *logging.Logger) *TaskService {
	return &TaskService{
		catalog:    catalog,
		dispatcher: dispatcher,
		history:    history,
		logger:     logger,
	}
}

// Catalog exposes the task catalog for listing.
func (s *TaskService) Catalog() *Catalog {
	return s.catalog
}

// Dispatch resolves a task name and launches its script, allocating a fresh
// task id. With async false it waits for the child to exit and returns the
// terminal record in Final.
func (s *TaskService) Dispatch(ctx context.Context, taskName string, params map[string]interface{}, async bool) (*TaskRun, error) {
	def, ok := s.catalog.Lookup(taskName)
	if !ok {
		return nil, ErrUnknownTask
	}

	taskID := uuid.New().String()
	s.logger.Info("starting task", "task_name", taskName, "task_id", taskID)

	rec, done, err := s.dispatcher.Dispatch(ctx, def.Script, taskID, true)
	if err != nil {
		return nil, err
	}

	s.history.Append(models.TaskHistoryEntry{
		TaskID:     taskID,
		TaskName:   taskName,
		ScriptPath: def.Script,
		Parameters: params,
		StartedAt:  rec.StartedAt,
	})

	run := &TaskRun{TaskID: taskID, Definition: def, Record: rec}
	if !async {
		final := <-done
		run.Final = &final
	}
	return run, nil
}

// DispatchScript launches a raw script path outside the catalog, for the
// legacy start surface. The non-interactive argument is appended only for
// scripts known to support it.
func (s *TaskService) DispatchScript(ctx context.Context, scriptPath string) (*TaskRun, error) {
	taskID := uuid.New().String()
	nonInteractive := s.catalog.SupportsNonInteractive(filepath.Base(scriptPath))

	rec, _, err := s.dispatcher.Dispatch(ctx, scriptPath, taskID, nonInteractive)
	if err != nil {
		return nil, err
	}

	s.history.Append(models.TaskHistoryEntry{
		TaskID:     taskID,
		TaskName:   filepath.Base(scriptPath),
		ScriptPath: scriptPath,
		StartedAt:  rec.StartedAt,
	})

	return &TaskRun{TaskID: taskID, Record: rec}, nil
}
