package runner

import (
	"sync"
	"time"

	"rpa-agent/pkg/models"
)

// Registry is the shared table of process records keyed by task id, with a
// secondary lookup by OS pid for the legacy and control surfaces. A single
// mutex guards the whole table; it is never held across a child wait.
//
// Readers receive copies, so no shared mutable state escapes the lock.
type Registry struct {
	mu      sync.Mutex
	records map[string]*models.ProcessRecord
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*models.ProcessRecord),
	}
}

// Insert registers a new record under its task id.
func (r *Registry) Insert(rec models.ProcessRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.TaskID] = &rec
}

// Get returns a copy of the record for the given task id.
func (r *Registry) Get(taskID string) (models.ProcessRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[taskID]
	if !ok {
		return models.ProcessRecord{}, false
	}
	return *rec, true
}

// List returns copies of all records.
func (r *Registry) List() []models.ProcessRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ProcessRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	return out
}

// Running returns copies of all records still in the running state.
func (r *Registry) Running() []models.ProcessRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ProcessRecord
	for _, rec := range r.records {
		if rec.Status == models.ProcessStatusRunning {
			out = append(out, *rec)
		}
	}
	return out
}

// FindByPID returns a copy of the record owning the given OS pid. A linear
// scan is fine at interactive scale.
func (r *Registry) FindByPID(pid int) (models.ProcessRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.PID == pid {
			return *rec, true
		}
	}
	return models.ProcessRecord{}, false
}

// Remove deletes the record for the given task id and returns it.
func (r *Registry) Remove(taskID string) (models.ProcessRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[taskID]
	if !ok {
		return models.ProcessRecord{}, false
	}
	delete(r.records, taskID)
	return *rec, true
}

// Finish records the child's exit. Exit code zero maps to completed,
// anything else to failed. It is a no-op if the record was removed or has
// already reached a terminal state, so a stop racing a natural exit cannot
// transition a record twice.
func (r *Registry) Finish(taskID string, exitCode int, errMsg string) (models.ProcessRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[taskID]
	if !ok || rec.Status.Terminal() {
		return models.ProcessRecord{}, false
	}
	now := time.Now()
	rec.CompletedAt = &now
	rec.ExitCode = &exitCode
	rec.Error = errMsg
	if exitCode == 0 {
		rec.Status = models.ProcessStatusCompleted
	} else {
		rec.Status = models.ProcessStatusFailed
	}
	return *rec, true
}

// MarkStopped sets the terminal stopped status. No-op on records that have
// already finished.
func (r *Registry) MarkStopped(taskID string) (models.ProcessRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[taskID]
	if !ok || rec.Status.Terminal() {
		return models.ProcessRecord{}, false
	}
	now := time.Now()
	rec.Status = models.ProcessStatusStopped
	rec.CompletedAt = &now
	return *rec, true
}

// Len returns the number of tracked records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
