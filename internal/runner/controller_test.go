package runner

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpa-agent/internal/logging"
	"rpa-agent/pkg/models"
)

func TestController_StopRemovesProcess(t *testing.T) {
	env := newTestEnv(t)
	registry := NewRegistry()
	d := NewDispatcher(env, registry, logging.NewNopLogger())
	c := NewController(registry, logging.NewNopLogger())

	script := writeScript(t, env, "sleep.sh", "sleep 30\n")
	taskID := uuid.New().String()

	rec, done, err := d.Dispatch(context.Background(), script, taskID, false)
	require.NoError(t, err)
	require.NotZero(t, rec.PID)

	stopped, err := c.Stop(rec.PID)
	require.NoError(t, err)
	assert.Equal(t, taskID, stopped.TaskID)
	assert.Equal(t, models.ProcessStatusStopped, stopped.Status)
	assert.NotNil(t, stopped.CompletedAt)

	// Gone from the running listing and from pid lookups.
	assert.Empty(t, registry.Running())
	_, ok := registry.FindByPID(rec.PID)
	assert.False(t, ok)

	// The wait goroutine still drains after the kill.
	select {
	case final := <-done:
		assert.Equal(t, models.ProcessStatusStopped, final.Status)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for killed task to be reaped")
	}
}

func TestController_StopUntrackedPID(t *testing.T) {
	registry := NewRegistry()
	registry.Insert(runningRecord("t1", 100))
	c := NewController(registry, logging.NewNopLogger())

	_, err := c.Stop(424242)
	assert.ErrorIs(t, err, ErrNotTracked)

	// No side effects on the registry.
	assert.Equal(t, 1, registry.Len())
}

func TestController_StopSpawnErrorRecordPIDZero(t *testing.T) {
	registry := NewRegistry()
	// A failed spawn leaves a terminal error record with pid 0, exactly as
	// the dispatcher registers it. Stop(0) must never reach the kill
	// syscall: signalling pid 0 would hit our own process group.
	registry.Insert(models.ProcessRecord{
		TaskID:     "spawn-failed",
		ScriptPath: "broken.sh",
		StartedAt:  time.Now(),
		Status:     models.ProcessStatusError,
		Error:      "failed to start process",
	})
	c := NewController(registry, logging.NewNopLogger())

	_, err := c.Stop(0)
	assert.ErrorIs(t, err, ErrNotTracked)

	// The error record survives for later status queries.
	rec, ok := registry.Get("spawn-failed")
	require.True(t, ok)
	assert.Equal(t, models.ProcessStatusError, rec.Status)
}

func TestController_StopFinishedRecordPID(t *testing.T) {
	registry := NewRegistry()
	registry.Insert(runningRecord("t1", 321))
	_, ok := registry.Finish("t1", 0, "")
	require.True(t, ok)
	c := NewController(registry, logging.NewNopLogger())

	// The child exited; the OS may hand pid 321 to an unrelated process.
	_, err := c.Stop(321)
	assert.ErrorIs(t, err, ErrNotTracked)

	rec, ok := registry.Get("t1")
	require.True(t, ok)
	assert.Equal(t, models.ProcessStatusCompleted, rec.Status)
}
