package runner

import (
	"bufio"
	"os"

	"rpa-agent/pkg/models"
)

// Tail bounds for log reads so a status query never loads an unbounded log
// into memory.
const (
	TaskLogTailLines   = 50
	LegacyLogTailLines = 200
)

// TaskStatus is the answer to a liveness/status query: the process record
// plus the tail of its log file.
type TaskStatus struct {
	models.ProcessRecord
	Logs []string `json:"logs"`
}

// StatusReporter reads process records and log tails.
type StatusReporter struct {
	registry *Registry
}

// NewStatusReporter creates a StatusReporter over the given registry.
func NewStatusReporter(registry *Registry) *StatusReporter {
	return &StatusReporter{registry: registry}
}

// Query returns the status of a task by its id, with up to tailLines of its
// log. Log read failures are non-fatal: the record's known state is still
// returned with an empty log.
func (r *StatusReporter) Query(taskID string, tailLines int) (*TaskStatus, error) {
	rec, ok := r.registry.Get(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &TaskStatus{ProcessRecord: rec, Logs: tailLog(rec.LogFile, tailLines)}, nil
}

// QueryByPID answers a pid-keyed status query for the legacy surface.
func (r *StatusReporter) QueryByPID(pid int, tailLines int) (*TaskStatus, error) {
	rec, ok := r.registry.FindByPID(pid)
	if !ok {
		return nil, ErrNotTracked
	}
	return &TaskStatus{ProcessRecord: rec, Logs: tailLog(rec.LogFile, tailLines)}, nil
}

// tailLog returns the last n lines of the file, or an empty slice if the
// file is missing or unreadable. The child may still be writing; a partial
// final line is returned as-is.
func tailLog(path string, n int) []string {
	logs := []string{}
	if path == "" || n <= 0 {
		return logs
	}
	f, err := os.Open(path)
	if err != nil {
		return logs
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		logs = append(logs, scanner.Text())
		if len(logs) > n {
			logs = logs[1:]
		}
	}
	return logs
}
