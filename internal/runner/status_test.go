package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpa-agent/pkg/models"
)

func TestStatusReporter_UnknownTask(t *testing.T) {
	reporter := NewStatusReporter(NewRegistry())
	_, err := reporter.Query("missing", TaskLogTailLines)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestStatusReporter_UnknownPID(t *testing.T) {
	reporter := NewStatusReporter(NewRegistry())
	_, err := reporter.QueryByPID(424242, LegacyLogTailLines)
	assert.ErrorIs(t, err, ErrNotTracked)
}

func TestStatusReporter_TailsLastLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "task.log")
	var b strings.Builder
	for i := 1; i <= 120; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	require.NoError(t, os.WriteFile(logPath, []byte(b.String()), 0o644))

	registry := NewRegistry()
	registry.Insert(models.ProcessRecord{
		TaskID:    "t1",
		PID:       100,
		LogFile:   logPath,
		StartedAt: time.Now(),
		Status:    models.ProcessStatusRunning,
	})
	reporter := NewStatusReporter(registry)

	status, err := reporter.Query("t1", 50)
	require.NoError(t, err)
	require.Len(t, status.Logs, 50)
	assert.Equal(t, "line 71", status.Logs[0])
	assert.Equal(t, "line 120", status.Logs[49])

	status, err = reporter.QueryByPID(100, 200)
	require.NoError(t, err)
	assert.Len(t, status.Logs, 120)
}

func TestStatusReporter_LogReadFailureIsNonFatal(t *testing.T) {
	registry := NewRegistry()
	registry.Insert(models.ProcessRecord{
		TaskID:    "t1",
		PID:       100,
		LogFile:   filepath.Join(t.TempDir(), "does-not-exist.log"),
		StartedAt: time.Now(),
		Status:    models.ProcessStatusRunning,
	})
	reporter := NewStatusReporter(registry)

	status, err := reporter.Query("t1", TaskLogTailLines)
	require.NoError(t, err)
	assert.Equal(t, models.ProcessStatusRunning, status.Status)
	assert.Empty(t, status.Logs)
}

func TestStatusReporter_ToleratesPartialFinalLine(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "task.log")
	require.NoError(t, os.WriteFile(logPath, []byte("complete line\npartial"), 0o644))

	registry := NewRegistry()
	registry.Insert(models.ProcessRecord{
		TaskID:  "t1",
		LogFile: logPath,
		Status:  models.ProcessStatusRunning,
	})
	reporter := NewStatusReporter(registry)

	status, err := reporter.Query("t1", TaskLogTailLines)
	require.NoError(t, err)
	assert.Equal(t, []string{"complete line", "partial"}, status.Logs)
}
