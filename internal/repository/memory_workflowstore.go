package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rpa-agent/pkg/models"
)

// MemoryWorkflowStore is an in-memory implementation of the WorkflowStore
// interface. State lives for the lifetime of the process.
type MemoryWorkflowStore struct {
	mu        sync.RWMutex
	workflows map[string]*models.Workflow
}

// NewMemoryWorkflowStore creates an empty MemoryWorkflowStore.
func NewMemoryWorkflowStore() *MemoryWorkflowStore {
	return &MemoryWorkflowStore{
		workflows: make(map[string]*models.Workflow),
	}
}

// Create stores a new workflow definition.
func (s *MemoryWorkflowStore) Create(ctx context.Context, wf *models.Workflow) error {
	name := strings.TrimSpace(wf.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "workflow name cannot be empty"}
	}

	now := time.Now()
	wf.ID = uuid.New().String()
	wf.Name = name
	wf.Status = models.WorkflowStatusIdle
	wf.CreatedAt = now
	wf.UpdatedAt = now
	if wf.Parameters == nil {
		wf.Parameters = map[string]interface{}{}
	}
	if wf.Tags == nil {
		wf.Tags = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.ID] = cloneWorkflow(wf)
	return nil
}

// Get retrieves a workflow by its id.
func (s *MemoryWorkflowStore) Get(ctx context.Context, id string) (*models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneWorkflow(wf), nil
}

// List returns all stored workflows.
func (s *MemoryWorkflowStore) List(ctx context.Context) ([]*models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		out = append(out, cloneWorkflow(wf))
	}
	return out, nil
}

// Update applies a partial update; nil fields keep their prior value.
func (s *MemoryWorkflowStore) Update(ctx context.Context, id string, upd models.WorkflowUpdate) (*models.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, ok := s.workflows[id]
	if !ok {
		return nil, ErrNotFound
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Message: "workflow name cannot be empty"}
		}
		wf.Name = name
	}
	if upd.Description != nil {
		wf.Description = *upd.Description
	}
	if upd.ScriptPath != nil {
		wf.ScriptPath = *upd.ScriptPath
	}
	if upd.Parameters != nil {
		wf.Parameters = *upd.Parameters
	}
	if upd.Tags != nil {
		wf.Tags = *upd.Tags
	}
	wf.UpdatedAt = time.Now()

	return cloneWorkflow(wf), nil
}

// Delete removes a workflow by its id.
func (s *MemoryWorkflowStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workflows[id]; !ok {
		return ErrNotFound
	}
	delete(s.workflows, id)
	return nil
}

// MarkRunning sets the running status and the last-run timestamp.
func (s *MemoryWorkflowStore) MarkRunning(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, ok := s.workflows[id]
	if !ok {
		return ErrNotFound
	}
	wf.Status = models.WorkflowStatusRunning
	wf.LastRun = &at
	return nil
}

// Count returns the number of stored workflows.
func (s *MemoryWorkflowStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workflows), nil
}

// cloneWorkflow copies a workflow so no shared mutable state escapes the
// store's lock.
func cloneWorkflow(wf *models.Workflow) *models.Workflow {
	out := *wf
	out.Parameters = make(map[string]interface{}, len(wf.Parameters))
	for k, v := range wf.Parameters {
		out.Parameters[k] = v
	}
	out.Tags = append([]string(nil), wf.Tags...)
	if wf.LastRun != nil {
		lastRun := *wf.LastRun
		out.LastRun = &lastRun
	}
	return &out
}
