// Package models defines the domain models for the RPA control plane.
package models

import (
	"time"
)

// TaskRequest is the body of a named-task dispatch.
type TaskRequest struct {
	Parameters     map[string]interface{} `json:"parameters"`
	AsyncExecution *bool                  `json:"async_execution"`
}

// TaskResponse is returned when a named task has been dispatched.
type TaskResponse struct {
	TaskID    string    `json:"task_id"`
	TaskName  string    `json:"task_name"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	StartedAt time.Time `json:"started_at"`
	LogFile   string    `json:"log_file,omitempty"`
}

// TaskDefinition describes one entry of the named-task catalog.
type TaskDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Script      string `json:"script"`
}

// HealthStatus represents the detailed health check response.
type HealthStatus struct {
	Status           string    `json:"status"`
	ProjectRoot      string    `json:"project_root"`
	Interpreter      string    `json:"interpreter"`
	LogsDirectory    string    `json:"logs_directory"`
	ScriptsDirectory string    `json:"scripts_directory"`
	RunningProcesses int       `json:"running_processes"`
	TotalWorkflows   int       `json:"total_workflows"`
	Timestamp        time.Time `json:"timestamp"`
}

// LegacyStartRequest is the body of the pid-addressed start endpoint.
type LegacyStartRequest struct {
	WorkflowID string `json:"workflow_id"`
	ScriptPath string `json:"script_path"`
}

// LegacyStopRequest addresses a tracked process by its OS pid.
type LegacyStopRequest struct {
	PID int `json:"pid"`
}

// LegacyProcInfo is the pid-keyed projection of a ProcessRecord.
type LegacyProcInfo struct {
	PID        int       `json:"pid"`
	WorkflowID string    `json:"workflow_id"`
	ScriptPath string    `json:"script_path"`
	StartedAt  time.Time `json:"started_at"`
	LogFile    string    `json:"log_file"`
}
