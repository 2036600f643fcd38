// Package notelist holds a fetched note collection together with a search
// query and the view derived from both.
package notelist

import (
	"strings"
	"sync"

	"github.com/taskmaster/dayboard/internal/domain/entities"
)

// TagPrefix marks a query as a tag search.
const TagPrefix = "#"

// Search caches a note collection and a free-text query. The filtered view
// is recomputed whenever either changes.
type Search struct {
	mu       sync.RWMutex
	records  []entities.Note
	query    string
	filtered []entities.Note
}

// New returns a Search over records with an empty query.
func New(records []entities.Note) *Search {
	s := &Search{}
	s.SetRecords(records)
	return s
}

// SetRecords replaces the cached collection.
func (s *Search) SetRecords(records []entities.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.recompute()
}

// SetQuery replaces the search query.
func (s *Search) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.recompute()
}

// Records returns the cached collection.
func (s *Search) Records() []entities.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Query returns the current query.
func (s *Search) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Filtered returns the notes matching the current query.
func (s *Search) Filtered() []entities.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filtered
}

// TagMode reports whether the query asks for a tag search. It only changes
// how results are presented: matching still runs against note content.
func (s *Search) TagMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strings.HasPrefix(s.query, TagPrefix)
}

func (s *Search) recompute() {
	s.filtered = Filter(s.records, s.query)
}

// Filter returns the notes whose content contains query, ignoring case.
// A blank query returns notes unchanged.
func Filter(notes []entities.Note, query string) []entities.Note {
	if strings.TrimSpace(query) == "" {
		return notes
	}

	needle := strings.ToLower(query)
	out := make([]entities.Note, 0, len(notes))
	for _, note := range notes {
		if strings.Contains(strings.ToLower(note.Content), needle) {
			out = append(out, note)
		}
	}
	return out
}
