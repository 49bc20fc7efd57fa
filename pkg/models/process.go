package models

import (
	"time"
)

// ProcessStatus is the observable state of one dispatched child process.
type ProcessStatus string

const (
	ProcessStatusRunning   ProcessStatus = "running"
	ProcessStatusCompleted ProcessStatus = "completed"
	ProcessStatusFailed    ProcessStatus = "failed"
	ProcessStatusError     ProcessStatus = "error"
	ProcessStatusStopped   ProcessStatus = "stopped"
)

// Terminal reports whether the status permits no further transition.
func (s ProcessStatus) Terminal() bool {
	return s != ProcessStatusRunning && s != ""
}

// ProcessRecord is the bookkeeping entry for one spawned OS process.
// The status transitions exactly once from running to a terminal state.
type ProcessRecord struct {
	TaskID      string        `json:"task_id"`
	PID         int           `json:"pid"`
	ScriptPath  string        `json:"script_path"`
	StartedAt   time.Time     `json:"started_at"`
	LogFile     string        `json:"log_file"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	ExitCode    *int          `json:"return_code,omitempty"`
	Status      ProcessStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
}

// TaskHistoryEntry is an append-only audit record of a dispatched task.
type TaskHistoryEntry struct {
	TaskID     string                 `json:"task_id"`
	TaskName   string                 `json:"task_name"`
	ScriptPath string                 `json:"script_path"`
	Parameters map[string]interface{} `json:"parameters"`
	StartedAt  time.Time              `json:"started_at"`
}
