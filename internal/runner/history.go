package runner

import (
	"sync"

	"rpa-agent/pkg/models"
)

// History is the append-only audit log of dispatched tasks. Entries are
// write-once; unbounded growth is accepted (no pruning).
type History struct {
	mu      sync.Mutex
	entries []models.TaskHistoryEntry
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{}
}

// Append records a dispatched task.
func (h *History) Append(entry models.TaskHistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
}

// List returns a copy of all entries in dispatch order.
func (h *History) List() []models.TaskHistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.TaskHistoryEntry(nil), h.entries...)
}
