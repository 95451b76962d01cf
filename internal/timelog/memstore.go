package timelog

import (
	"context"
	"sync"
)

// Compile-time assertion that MemStore implements Store.
var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store for tests and ephemeral runs.
type MemStore struct {
	mu       sync.RWMutex
	entries  []Entry
	expenses []ExpenseEntry
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Append implements Store.
func (s *MemStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

// List implements Store.
func (s *MemStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Update implements Store.
func (s *MemStore) Update(_ context.Context, index int, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	s.entries[index] = e
	return nil
}

// Delete implements Store.
func (s *MemStore) Delete(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	return nil
}

// AppendExpense implements Store.
func (s *MemStore) AppendExpense(_ context.Context, e ExpenseEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return nil
}

// ListExpenses implements Store.
func (s *MemStore) ListExpenses(_ context.Context) ([]ExpenseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ExpenseEntry, len(s.expenses))
	copy(out, s.expenses)
	return out, nil
}

// UpdateExpense implements Store.
func (s *MemStore) UpdateExpense(_ context.Context, index int, e ExpenseEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.expenses) {
		return ErrIndexOutOfRange
	}
	s.expenses[index] = e
	return nil
}

// DeleteExpense implements Store.
func (s *MemStore) DeleteExpense(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.expenses) {
		return ErrIndexOutOfRange
	}
	s.expenses = append(s.expenses[:index], s.expenses[index+1:]...)
	return nil
}

// Clear implements Store.
func (s *MemStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.expenses = nil
	return nil
}
