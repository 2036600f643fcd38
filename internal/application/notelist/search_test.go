package notelist

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/taskmaster/dayboard/internal/domain/entities"
)

func note(id, content string) entities.Note {
	return entities.Note{ID: id, UserID: "u1", Title: id, Content: content, Tags: []string{}}
}

func ids(notes []entities.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestFilter_CaseInsensitive(t *testing.T) {
	notes := []entities.Note{
		note("a", "Buy MILK"),
		note("b", "call mom"),
		note("c", "milkshake recipe"),
	}

	assert.Equal(t, []string{"a", "c"}, ids(Filter(notes, "milk")))
	assert.Equal(t, []string{"a", "c"}, ids(Filter(notes, "MiLk")))
	assert.Empty(t, Filter(notes, "zzz"))
}

func TestFilter_BlankQueryReturnsAll(t *testing.T) {
	notes := []entities.Note{note("a", "x"), note("b", "y")}
	assert.Equal(t, notes, Filter(notes, ""))
	assert.Equal(t, notes, Filter(notes, "   "))
}

func TestSearch_TagMode(t *testing.T) {
	s := New([]entities.Note{note("a", "see #work later"), note("b", "nothing")})

	assert.False(t, s.TagMode())

	s.SetQuery("#work")
	assert.True(t, s.TagMode())
	// Tag mode changes presentation only; matching is still on content.
	assert.Equal(t, []string{"a"}, ids(s.Filtered()))

	s.SetQuery("work")
	assert.False(t, s.TagMode())
}

func TestSearch_RecomputesOnSetRecords(t *testing.T) {
	s := New(nil)
	s.SetQuery("plan")
	assert.Empty(t, s.Filtered())

	s.SetRecords([]entities.Note{note("a", "weekly plan"), note("b", "groceries")})
	assert.Equal(t, []string{"a"}, ids(s.Filtered()))
	assert.Equal(t, "plan", s.Query())
	assert.Len(t, s.Records(), 2)
}

func TestSearch_ConcurrentAccess(t *testing.T) {
	s := New([]entities.Note{note("a", "alpha"), note("b", "beta")})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.SetQuery(fmt.Sprintf("a%d", i%2))
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Filtered()
			_ = s.TagMode()
		}()
	}
	wg.Wait()
}

func genNotes(t *rapid.T) []entities.Note {
	contents := rapid.SliceOfN(rapid.StringMatching(`[a-zA-Z #]{0,12}`), 0, 20).Draw(t, "contents")
	notes := make([]entities.Note, len(contents))
	for i, c := range contents {
		notes[i] = note(fmt.Sprintf("n%d", i), c)
	}
	return notes
}

func TestFilter_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := genNotes(t)
		query := rapid.StringMatching(`[a-zA-Z #]{0,4}`).Draw(t, "query")

		got := Filter(notes, query)

		if strings.TrimSpace(query) == "" {
			if len(got) != len(notes) {
				t.Fatalf("blank query returned %d of %d notes", len(got), len(notes))
			}
			return
		}

		needle := strings.ToLower(query)
		matched := map[string]bool{}
		for _, n := range got {
			if !strings.Contains(strings.ToLower(n.Content), needle) {
				t.Fatalf("note %s %q does not contain %q", n.ID, n.Content, query)
			}
			matched[n.ID] = true
		}
		for _, n := range notes {
			if strings.Contains(strings.ToLower(n.Content), needle) && !matched[n.ID] {
				t.Fatalf("note %s %q contains %q but was filtered out", n.ID, n.Content, query)
			}
		}

		// Original order is kept.
		last := -1
		for _, n := range got {
			var idx int
			fmt.Sscanf(n.ID, "n%d", &idx)
			if idx <= last {
				t.Fatalf("order not preserved: %v", ids(got))
			}
			last = idx
		}
	})
}
