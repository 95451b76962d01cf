package registry

import (
	"context"
	"strings"
	"sync"
)

// Compile-time assertion that MemStore implements Store.
var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store for tests and ephemeral runs.
type MemStore struct {
	mu    sync.RWMutex
	cases []string
}

// NewMemStore returns an empty MemStore pre-populated with the given names.
// Duplicates and empty names among the initial entries are dropped silently.
func NewMemStore(names ...string) *MemStore {
	s := &MemStore{}
	for _, n := range names {
		_ = s.Add(context.Background(), n)
	}
	return s
}

// Add implements Store.
func (s *MemStore) Add(_ context.Context, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(trimmed) >= 0 {
		return ErrDuplicate
	}
	s.cases = append(s.cases, trimmed)
	return nil
}

// Remove implements Store.
func (s *MemStore) Remove(_ context.Context, name string) error {
	trimmed := strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(trimmed)
	if idx < 0 {
		return ErrNotFound
	}
	s.cases = append(s.cases[:idx], s.cases[idx+1:]...)
	return nil
}

// List implements Store.
func (s *MemStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.cases))
	copy(out, s.cases)
	return out, nil
}

// indexOf returns the position of name in cases, or -1. Callers must hold
// the mutex.
func (s *MemStore) indexOf(name string) int {
	for i, c := range s.cases {
		if c == name {
			return i
		}
	}
	return -1
}
