// Package history keeps the bounded, newest-first list of answered questions.
package history

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxEntries is the number of entries a store retains. Saving beyond it evicts the oldest.
const MaxEntries = 50

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("history entry not found")

// Entry is one answered question.
type Entry struct {
	ID          string           `json:"id"`
	Question    string           `json:"question"`
	Explanation string           `json:"explanation"`
	CypherQuery string           `json:"cypher_query"`
	SQLQuery    string           `json:"sql_query,omitempty"`
	Summary     string           `json:"summary,omitempty"`
	Results     []map[string]any `json:"results,omitempty"`
	ResultCount int              `json:"result_count"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Store persists history entries. Implementations keep at most MaxEntries,
// newest first, and assign ID and Timestamp on Save.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, e Entry) (Entry, error)
	Get(ctx context.Context, id string) (Entry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Search(ctx context.Context, query string) ([]Entry, error)
}

// Filter returns the entries whose question, generated query or explanation
// contains query, ignoring case. A blank query matches everything.
func Filter(entries []Entry, query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Question), q) ||
			strings.Contains(strings.ToLower(e.CypherQuery), q) ||
			strings.Contains(strings.ToLower(e.Explanation), q) {
			out = append(out, e)
		}
	}
	return out
}
