package agent

import (
	"sync"
	"time"

	"github.com/rhobs/kubeqa/pkg/model"
)

// SessionHistory is an append-only, process-lifetime record of answered
// questions. It is safe for concurrent use.
type SessionHistory struct {
	mu      sync.RWMutex
	entries []model.HistoryEntry
}

// Append records one answered question.
func (h *SessionHistory) Append(entry model.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
}

// Entries returns a copy of the history, most recent last.
func (h *SessionHistory) Entries() []model.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]model.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Last returns up to n of the most recent entries, most recent last.
func (h *SessionHistory) Last(n int) []model.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	start := 0
	if n >= 0 && len(h.entries) > n {
		start = len(h.entries) - n
	}
	out := make([]model.HistoryEntry, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out
}

// Len returns the number of entries.
func (h *SessionHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// HistoryItem is the summary of one entry shown by the shells.
type HistoryItem struct {
	Query      string       `json:"query"`
	Timestamp  time.Time    `json:"timestamp"`
	Answer     string       `json:"answer"`
	Status     model.Status `json:"status"`
	Operations []string     `json:"operations"`
}

// Summarize converts entries to history items, keeping their order.
func Summarize(entries []model.HistoryEntry) []HistoryItem {
	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, HistoryItem{
			Query:      e.Request.RawText,
			Timestamp:  e.Request.Timestamp,
			Answer:     e.Response.Text,
			Status:     e.Response.Status(),
			Operations: operationNames(e.Response.Routing),
		})
	}
	return items
}
