package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpa-agent/pkg/models"
)

func runningRecord(taskID string, pid int) models.ProcessRecord {
	return models.ProcessRecord{
		TaskID:     taskID,
		PID:        pid,
		ScriptPath: "noop.sh",
		StartedAt:  time.Now(),
		Status:     models.ProcessStatusRunning,
	}
}

func TestRegistry_InsertGetRemove(t *testing.T) {
	r := NewRegistry()
	r.Insert(runningRecord("t1", 100))

	rec, ok := r.Get("t1")
	require.True(t, ok)
	assert.Equal(t, 100, rec.PID)

	_, ok = r.Get("t2")
	assert.False(t, ok)

	removed, ok := r.Remove("t1")
	require.True(t, ok)
	assert.Equal(t, "t1", removed.TaskID)

	_, ok = r.Get("t1")
	assert.False(t, ok)
	_, ok = r.Remove("t1")
	assert.False(t, ok)
}

func TestRegistry_RunningFilter(t *testing.T) {
	r := NewRegistry()
	r.Insert(runningRecord("t1", 100))
	r.Insert(runningRecord("t2", 200))
	r.Finish("t2", 0, "")

	running := r.Running()
	require.Len(t, running, 1)
	assert.Equal(t, "t1", running[0].TaskID)
	assert.Len(t, r.List(), 2)
}

func TestRegistry_FindByPID(t *testing.T) {
	r := NewRegistry()
	r.Insert(runningRecord("t1", 100))

	rec, ok := r.FindByPID(100)
	require.True(t, ok)
	assert.Equal(t, "t1", rec.TaskID)

	_, ok = r.FindByPID(999)
	assert.False(t, ok)
}

func TestRegistry_FinishMapsExitCode(t *testing.T) {
	r := NewRegistry()
	r.Insert(runningRecord("ok", 1))
	r.Insert(runningRecord("bad", 2))

	rec, ok := r.Finish("ok", 0, "")
	require.True(t, ok)
	assert.Equal(t, models.ProcessStatusCompleted, rec.Status)
	require.NotNil(t, rec.ExitCode)
	assert.Equal(t, 0, *rec.ExitCode)
	assert.NotNil(t, rec.CompletedAt)

	rec, ok = r.Finish("bad", 1, "exit status 1")
	require.True(t, ok)
	assert.Equal(t, models.ProcessStatusFailed, rec.Status)
	assert.Equal(t, "exit status 1", rec.Error)
}

func TestRegistry_TerminalTransitionHappensOnce(t *testing.T) {
	r := NewRegistry()
	r.Insert(runningRecord("t1", 100))

	_, ok := r.MarkStopped("t1")
	require.True(t, ok)

	// A finish racing in after the stop must not rewrite the status.
	_, ok = r.Finish("t1", 0, "")
	assert.False(t, ok)

	rec, _ := r.Get("t1")
	assert.Equal(t, models.ProcessStatusStopped, rec.Status)

	_, ok = r.MarkStopped("t1")
	assert.False(t, ok)
}

func TestRegistry_CopiesDoNotAlias(t *testing.T) {
	r := NewRegistry()
	r.Insert(runningRecord("t1", 100))

	rec, _ := r.Get("t1")
	rec.Status = models.ProcessStatusFailed

	again, _ := r.Get("t1")
	assert.Equal(t, models.ProcessStatusRunning, again.Status)
}

func TestHistory_AppendList(t *testing.T) {
	h := NewHistory()
	assert.Empty(t, h.List())

	h.Append(models.TaskHistoryEntry{TaskID: "t1", TaskName: "extract-data", StartedAt: time.Now()})
	h.Append(models.TaskHistoryEntry{TaskID: "t2", TaskName: "process-pdf", StartedAt: time.Now()})

	entries := h.List()
	require.Len(t, entries, 2)
	assert.Equal(t, "t1", entries[0].TaskID)
	assert.Equal(t, "t2", entries[1].TaskID)
}
