// Package memstore is an in-memory lead store used for local demos and as
// the fake behind the view tests.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore"
)

// Write records one successful ApplyUpdate call.
type Write struct {
	ID    string
	Patch domain.Patch
}

// Store keeps leads in a map keyed by identifier. It is safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	leads    map[string]domain.Lead
	writes   []Write
	lists    int
	listErr  error
	onUpdate func(ctx context.Context, id string, patch domain.Patch) error
}

// New creates a store seeded with leads. Later duplicates of an id win.
func New(leads ...domain.Lead) *Store {
	s := &Store{leads: make(map[string]domain.Lead, len(leads))}
	for _, l := range leads {
		s.leads[l.ID] = l
	}
	return s
}

// LoadFile seeds a store from a JSON array of stored lead records.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var leads []domain.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return New(leads...), nil
}

// ListAll returns copies of every lead, newest first. Ties keep a stable
// order by identifier.
func (s *Store) ListAll(ctx context.Context) ([]domain.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, leadstore.Wrap(leadstore.OpList, "", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.listErr != nil {
		return nil, leadstore.Wrap(leadstore.OpList, "", s.listErr)
	}

	out := make([]domain.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ApplyUpdate writes patch onto the stored lead.
func (s *Store) ApplyUpdate(ctx context.Context, id string, patch domain.Patch) error {
	if err := patch.Validate(); err != nil {
		return leadstore.Wrap(leadstore.OpUpdate, id, err)
	}

	s.mu.Lock()
	hook := s.onUpdate
	s.mu.Unlock()
	// the hook runs unlocked so tests can block inside it
	if hook != nil {
		if err := hook(ctx, id, patch); err != nil {
			return leadstore.Wrap(leadstore.OpUpdate, id, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return leadstore.Wrap(leadstore.OpUpdate, id, leadstore.ErrNotFound)
	}
	patch.Apply(&l)
	s.leads[id] = l
	s.writes = append(s.writes, Write{ID: id, Patch: patch})
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// FailLists makes every ListAll fail with err until called with nil.
func (s *Store) FailLists(err error) {
	s.mu.Lock()
	s.listErr = err
	s.mu.Unlock()
}

// OnUpdate installs a hook run before every update. A non-nil error from
// the hook fails the update without touching the data.
func (s *Store) OnUpdate(fn func(ctx context.Context, id string, patch domain.Patch) error) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// Put replaces or inserts a lead, standing in for the external process
// that owns record creation.
func (s *Store) Put(l domain.Lead) {
	s.mu.Lock()
	s.leads[l.ID] = l
	s.mu.Unlock()
}

// Get returns the stored lead.
func (s *Store) Get(id string) (domain.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	return l, ok
}

// Writes returns the successful updates in order.
func (s *Store) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Write(nil), s.writes...)
}

// Lists returns how many times ListAll was called.
func (s *Store) Lists() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}
