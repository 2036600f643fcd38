package services

import (
	"context"
	"sync"

	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/ports"
)

// fakeStore is an in-memory ports.StoreGateway keyed by table.
type fakeStore struct {
	mu        sync.Mutex
	rows      map[string][]ports.Row
	selectErr error
	updateErr error
	selects   []ports.SelectQuery
	updates   []ports.UpdateMutation
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string][]ports.Row)}
}

func (f *fakeStore) Select(ctx context.Context, q ports.SelectQuery) ([]ports.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.selects = append(f.selects, q)
	if f.selectErr != nil {
		return nil, f.selectErr
	}

	out := []ports.Row{}
	for _, row := range f.rows[q.Table] {
		if row[q.EqColumn] == q.EqValue {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(ctx context.Context, m ports.UpdateMutation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updates = append(f.updates, m)
	if f.updateErr != nil {
		return f.updateErr
	}

	for _, row := range f.rows[m.Table] {
		if row[m.MatchColumn] != m.MatchValue {
			continue
		}
		if m.OwnerColumn != "" && row[m.OwnerColumn] != m.OwnerValue {
			continue
		}
		for k, v := range m.Values {
			row[k] = v
		}
		return nil
	}
	return ports.ErrNoMatch
}

// fakeAuth is a ports.AuthGateway backed by a token map.
type fakeAuth struct {
	sessions map[string]*ports.Session
	err      error
	signIns  int
	signUps  int
}

func (f *fakeAuth) GetSession(ctx context.Context, accessToken string) (*ports.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	session, ok := f.sessions[accessToken]
	if !ok {
		return nil, entities.ErrNoSession
	}
	return session, nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*ports.Session, error) {
	f.signIns++
	if f.err != nil {
		return nil, f.err
	}
	return &ports.Session{AccessToken: "tok", UserID: "u1", Email: email}, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, name, email, password string) (*ports.Session, error) {
	f.signUps++
	if f.err != nil {
		return nil, f.err
	}
	return &ports.Session{AccessToken: "tok", UserID: "u-new", Email: email}, nil
}

func noteRow(id, owner, content, updatedAt string) ports.Row {
	return ports.Row{
		"id":           id,
		"user_id":      owner,
		"title":        "Title " + id,
		"content":      content,
		"tags":         []interface{}{"home"},
		"related_type": nil,
		"related_id":   nil,
		"created_at":   "2024-01-01T00:00:00Z",
		"updated_at":   updatedAt,
		"starred":      false,
	}
}

func taskRowFor(id, owner, status string) ports.Row {
	return ports.Row{
		"id":          id,
		"user_id":     owner,
		"title":       "Task " + id,
		"description": nil,
		"status":      status,
		"importance":  "medium",
		"due_date":    nil,
		"category":    nil,
		"created_at":  "2024-01-01T00:00:00Z",
		"updated_at":  "2024-01-01T00:00:00Z",
	}
}
