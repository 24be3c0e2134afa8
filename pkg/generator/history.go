package generator

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind distinguishes first generations from refinements.
type EntryKind string

const (
	EntryGenerate EntryKind = "generate"
	EntryRefine   EntryKind = "refine"
)

// Entry records one successful generation or refinement.
type Entry struct {
	ID    uuid.UUID
	Query string
	SQL   string
	Kind  EntryKind
	At    time.Time
}

// History is the orchestrator's in-memory record of successful calls.
// Refinements append under the base query; for a given query the
// latest entry wins, there is no merge.
type History struct {
	entries []Entry
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Record appends an entry unless the same SQL text was already
// recorded for the query.
func (h *History) Record(query, sqlText string, kind EntryKind) {
	for _, e := range h.entries {
		if e.Query == query && e.SQL == sqlText {
			return
		}
	}
	h.entries = append(h.entries, Entry{
		ID:    uuid.New(),
		Query: query,
		SQL:   sqlText,
		Kind:  kind,
		At:    time.Now(),
	})
}

// Entries returns all recorded entries in order.
func (h *History) Entries() []Entry {
	return h.entries
}

// Latest returns the most recent entry for a query, or nil.
func (h *History) Latest(query string) *Entry {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].Query == query {
			return &h.entries[i]
		}
	}
	return nil
}
