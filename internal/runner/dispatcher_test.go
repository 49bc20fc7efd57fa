package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpa-agent/internal/logging"
	"rpa-agent/pkg/models"
)

// newTestEnv builds an Environment over a temp project root with sh as the
// interpreter, so test scripts need no exec bit.
func newTestEnv(t *testing.T) *Environment {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive sh scripts")
	}
	env, err := NewEnvironment(t.TempDir(), "scripts", "logs", "sh")
	require.NoError(t, err)
	return env
}

func writeScript(t *testing.T, env *Environment, name, body string) string {
	t.Helper()
	path := filepath.Join(env.ProjectRoot(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return name
}

func TestDispatch_ScriptNotFound(t *testing.T) {
	env := newTestEnv(t)
	registry := NewRegistry()
	d := NewDispatcher(env, registry, logging.NewNopLogger())

	_, _, err := d.Dispatch(context.Background(), "missing.sh", uuid.New().String(), true)
	assert.ErrorIs(t, err, ErrScriptNotFound)
	assert.Equal(t, 0, registry.Len(), "no record may exist for a script that was never spawned")
}

func TestDispatch_RunsToCompletion(t *testing.T) {
	env := newTestEnv(t)
	registry := NewRegistry()
	d := NewDispatcher(env, registry, logging.NewNopLogger())

	script := writeScript(t, env, "ok.sh", "echo hello\nexit 0\n")
	taskID := uuid.New().String()

	rec, done, err := d.Dispatch(context.Background(), script, taskID, true)
	require.NoError(t, err)

	assert.Equal(t, taskID, rec.TaskID)
	assert.NotZero(t, rec.PID)
	assert.Equal(t, models.ProcessStatusRunning, rec.Status)

	// The record is visible immediately after dispatch returns.
	got, ok := registry.Get(taskID)
	require.True(t, ok)
	assert.NotEqual(t, models.ProcessStatus(""), got.Status)

	final := waitDone(t, done)
	assert.Equal(t, models.ProcessStatusCompleted, final.Status)
	require.NotNil(t, final.ExitCode)
	assert.Equal(t, 0, *final.ExitCode)
	assert.NotNil(t, final.CompletedAt)

	reporter := NewStatusReporter(registry)
	status, err := reporter.Query(taskID, TaskLogTailLines)
	require.NoError(t, err)
	assert.Contains(t, status.Logs, "hello")
}

func TestDispatch_NonZeroExitReportsFailed(t *testing.T) {
	env := newTestEnv(t)
	registry := NewRegistry()
	d := NewDispatcher(env, registry, logging.NewNopLogger())

	script := writeScript(t, env, "fail.sh", "echo boom >&2\nexit 1\n")

	_, done, err := d.Dispatch(context.Background(), script, uuid.New().String(), true)
	require.NoError(t, err)

	final := waitDone(t, done)
	assert.Equal(t, models.ProcessStatusFailed, final.Status)
	require.NotNil(t, final.ExitCode)
	assert.Equal(t, 1, *final.ExitCode)
}

func TestDispatch_SpawnErrorRecorded(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("tests drive sh scripts")
	}
	env, err := NewEnvironment(t.TempDir(), "scripts", "logs", "/nonexistent/interpreter")
	require.NoError(t, err)
	registry := NewRegistry()
	d := NewDispatcher(env, registry, logging.NewNopLogger())

	script := writeScript(t, env, "ok.sh", "exit 0\n")
	taskID := uuid.New().String()

	_, _, err = d.Dispatch(context.Background(), script, taskID, false)
	require.ErrorIs(t, err, ErrSpawn)

	rec, ok := registry.Get(taskID)
	require.True(t, ok, "spawn failures leave an error record behind")
	assert.Equal(t, models.ProcessStatusError, rec.Status)
	assert.NotEmpty(t, rec.Error)
	assert.Zero(t, rec.PID)
}

func TestDispatch_ConcurrentSameScript(t *testing.T) {
	env := newTestEnv(t)
	registry := NewRegistry()
	d := NewDispatcher(env, registry, logging.NewNopLogger())

	script := writeScript(t, env, "ok.sh", "exit 0\n")

	const n = 8
	ids := make([]string, n)
	chans := make([]<-chan models.ProcessRecord, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			taskID := uuid.New().String()
			_, done, err := d.Dispatch(context.Background(), script, taskID, true)
			if err != nil {
				t.Error(err)
				return
			}
			ids[i] = taskID
			chans[i] = done
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		require.NotEmpty(t, ids[i])
		assert.False(t, seen[ids[i]], "task ids must be distinct")
		seen[ids[i]] = true

		final := waitDone(t, chans[i])
		assert.Equal(t, models.ProcessStatusCompleted, final.Status)
	}
	assert.Equal(t, n, registry.Len())
}

func TestEnvironment_PrefersVenvInterpreter(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("venv layout differs on windows")
	}
	root := t.TempDir()
	env, err := NewEnvironment(root, "scripts", "logs", "python3")
	require.NoError(t, err)

	assert.Equal(t, "python3", env.Interpreter())

	venv := filepath.Join(root, ".venv", "bin")
	require.NoError(t, os.MkdirAll(venv, 0o755))
	venvPython := filepath.Join(venv, "python")
	require.NoError(t, os.WriteFile(venvPython, []byte("#!/bin/sh\n"), 0o755))

	assert.Equal(t, venvPython, env.Interpreter())
}

func TestEnvironment_LogFilePath(t *testing.T) {
	env := newTestEnv(t)
	at := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	path := env.LogFilePath("abc", at)
	assert.Equal(t, filepath.Join(env.LogsDir(), "task_abc_20240301_123045.log"), path)
}

func waitDone(t *testing.T, done <-chan models.ProcessRecord) models.ProcessRecord {
	t.Helper()
	select {
	case rec := <-done:
		return rec
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for task exit")
		return models.ProcessRecord{}
	}
}
