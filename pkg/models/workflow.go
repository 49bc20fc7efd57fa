package models

import (
	"time"
)

// WorkflowStatus is the lifecycle label of a stored workflow definition.
type WorkflowStatus string

const (
	WorkflowStatusIdle    WorkflowStatus = "idle"
	WorkflowStatusRunning WorkflowStatus = "running"
)

// Workflow is a stored, named definition of an automation script to run
// with default parameters. It is owned by the workflow store and mutated
// only through update and run operations.
type Workflow struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	ScriptPath  string                 `json:"script_path"`
	Parameters  map[string]interface{} `json:"parameters"`
	Tags        []string               `json:"tags"`
	Status      WorkflowStatus         `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	LastRun     *time.Time             `json:"last_run,omitempty"`
}

// WorkflowUpdate carries a partial update. Nil fields keep their prior value.
type WorkflowUpdate struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	ScriptPath  *string                 `json:"script_path"`
	Parameters  *map[string]interface{} `json:"parameters"`
	Tags        *[]string               `json:"tags"`
}
