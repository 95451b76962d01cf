package timelog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// File names kept inside the data directory. Each holds one JSON array,
// rewritten in full on every mutation.
const (
	LogFileName      = "caseclock_log.json"
	ExpensesFileName = "caseclock_expenses.json"
)

// Compile-time assertion that FileStore implements Store.
var _ Store = (*FileStore)(nil)

// FileStore is a Store persisted to JSON files. An in-memory mirror serves
// reads; mutations rewrite the affected file atomically (temp file +
// rename).
//
// Append keeps the new entry in memory even when the flush fails, returning
// an error that wraps ErrPersistFailed. Favoring the in-memory record over
// strict durability means a disk hiccup never erases a spoken action.
type FileStore struct {
	logPath      string
	expensesPath string

	mu       sync.RWMutex
	entries  []Entry
	expenses []ExpenseEntry
}

// NewFileStore opens (or creates) the log and expense files under dataDir.
// A file that fails to parse is moved aside to a timestamped .bak and that
// sequence starts empty.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("timelog: create data dir: %w", err)
	}

	s := &FileStore{
		logPath:      filepath.Join(dataDir, LogFileName),
		expensesPath: filepath.Join(dataDir, ExpensesFileName),
	}
	if err := loadJSONArray(s.logPath, &s.entries); err != nil {
		return nil, err
	}
	if err := loadJSONArray(s.expensesPath, &s.expenses); err != nil {
		return nil, err
	}
	return s, nil
}

// loadJSONArray reads path into out, tolerating a missing file and moving a
// corrupt one aside.
func loadJSONArray[T any](path string, out *[]T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("timelog: read %s: %w", path, err)
	}

	var parsed []T
	if err := json.Unmarshal(data, &parsed); err != nil {
		backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		if renameErr := os.Rename(path, backup); renameErr != nil {
			return fmt.Errorf("timelog: parse %s: %w", path, err)
		}
		slog.Warn("timelog: file corrupt, moved aside",
			"path", path, "backup", backup, "error", err)
		return nil
	}
	*out = parsed
	return nil
}

// Append implements Store.
func (s *FileStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return s.persistEntries()
}

// List implements Store.
func (s *FileStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Update implements Store.
func (s *FileStore) Update(_ context.Context, index int, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	s.entries[index] = e
	return s.persistEntries()
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	return s.persistEntries()
}

// AppendExpense implements Store.
func (s *FileStore) AppendExpense(_ context.Context, e ExpenseEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return s.persistExpenses()
}

// ListExpenses implements Store.
func (s *FileStore) ListExpenses(_ context.Context) ([]ExpenseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ExpenseEntry, len(s.expenses))
	copy(out, s.expenses)
	return out, nil
}

// UpdateExpense implements Store.
func (s *FileStore) UpdateExpense(_ context.Context, index int, e ExpenseEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.expenses) {
		return ErrIndexOutOfRange
	}
	s.expenses[index] = e
	return s.persistExpenses()
}

// DeleteExpense implements Store.
func (s *FileStore) DeleteExpense(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.expenses) {
		return ErrIndexOutOfRange
	}
	s.expenses = append(s.expenses[:index], s.expenses[index+1:]...)
	return s.persistExpenses()
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.expenses = nil
	if err := s.persistEntries(); err != nil {
		return err
	}
	return s.persistExpenses()
}

// persistEntries rewrites the log file. Callers must hold the mutex.
func (s *FileStore) persistEntries() error {
	return persistJSONArray(s.logPath, s.entries)
}

// persistExpenses rewrites the expenses file. Callers must hold the mutex.
func (s *FileStore) persistExpenses() error {
	return persistJSONArray(s.expensesPath, s.expenses)
}

// persistJSONArray writes items to path atomically. Failures wrap
// ErrPersistFailed so callers can distinguish a durability problem from a
// rejected operation.
func persistJSONArray[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %w", ErrPersistFailed, filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrPersistFailed, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename %s: %w", ErrPersistFailed, tmp, err)
	}
	return nil
}
