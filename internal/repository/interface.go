package repository

import (
	"context"
	"time"

	"rpa-agent/pkg/models"
)

// WorkflowStore is an interface for storing and retrieving workflow
// definitions. Implementations must be safe for concurrent use.
type WorkflowStore interface {
	// Create stores a new workflow. It assigns the id, timestamps and the
	// initial idle status, and rejects an empty or whitespace-only name.
	Create(ctx context.Context, wf *models.Workflow) error
	// Get retrieves a workflow by its id.
	Get(ctx context.Context, id string) (*models.Workflow, error)
	// List returns all stored workflows.
	List(ctx context.Context) ([]*models.Workflow, error)
	// Update applies a partial update; nil fields keep their prior value.
	// The updated_at timestamp is always refreshed.
	Update(ctx context.Context, id string, upd models.WorkflowUpdate) (*models.Workflow, error)
	// Delete removes a workflow by its id.
	Delete(ctx context.Context, id string) error
	// MarkRunning sets the running status and the last-run timestamp,
	// invoked when a run of the workflow is dispatched.
	MarkRunning(ctx context.Context, id string, at time.Time) error
	// Count returns the number of stored workflows.
	Count(ctx context.Context) (int, error)
}
