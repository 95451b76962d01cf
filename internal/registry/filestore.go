package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// CasesFileName is the registry file kept inside the data directory. The
// layout is a plain JSON array of case-name strings, rewritten in full on
// every mutation.
const CasesFileName = "caseclock_cases.json"

// Compile-time assertion that FileStore implements Store.
var _ Store = (*FileStore)(nil)

// FileStore is a Store persisted to a single JSON file. An in-memory mirror
// serves reads; every mutation rewrites the file atomically (temp file +
// rename).
type FileStore struct {
	path string

	mu    sync.RWMutex
	cases []string
}

// NewFileStore opens (or creates) the registry file under dataDir. A file
// that fails to parse is moved aside to a timestamped .bak and the registry
// starts empty rather than refusing to run.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("registry: create data dir: %w", err)
	}

	s := &FileStore{path: filepath.Join(dataDir, CasesFileName)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("registry: read %s: %w", s.path, err)
	}

	var cases []string
	if err := json.Unmarshal(data, &cases); err != nil {
		backup := fmt.Sprintf("%s.%s.bak", s.path, time.Now().Format("20060102-150405"))
		if renameErr := os.Rename(s.path, backup); renameErr != nil {
			return fmt.Errorf("registry: parse %s: %w", s.path, err)
		}
		slog.Warn("registry: case file corrupt, moved aside",
			"path", s.path, "backup", backup, "error", err)
		return nil
	}
	s.cases = cases
	return nil
}

// Add implements Store. The new entry is persisted before Add returns; a
// failed write leaves the registry unchanged.
func (s *FileStore) Add(_ context.Context, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(trimmed) >= 0 {
		return ErrDuplicate
	}

	next := append(append([]string{}, s.cases...), trimmed)
	if err := s.persist(next); err != nil {
		return err
	}
	s.cases = next
	return nil
}

// Remove implements Store.
func (s *FileStore) Remove(_ context.Context, name string) error {
	trimmed := strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(trimmed)
	if idx < 0 {
		return ErrNotFound
	}

	next := make([]string, 0, len(s.cases)-1)
	next = append(next, s.cases[:idx]...)
	next = append(next, s.cases[idx+1:]...)
	if err := s.persist(next); err != nil {
		return err
	}
	s.cases = next
	return nil
}

// List implements Store.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.cases))
	copy(out, s.cases)
	return out, nil
}

// persist rewrites the registry file atomically. Callers must hold the mutex.
func (s *FileStore) persist(cases []string) error {
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: marshal cases: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("registry: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("registry: rename %s: %w", tmp, err)
	}
	return nil
}

// indexOf returns the position of name in cases, or -1. Callers must hold
// the mutex.
func (s *FileStore) indexOf(name string) int {
	for i, c := range s.cases {
		if c == name {
			return i
		}
	}
	return -1
}
