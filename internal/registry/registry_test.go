package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMemStoreAddRemoveList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewMemStore()
	for _, name := range []string{"Sierra Club", "Three Rivers", "Acme Corp"} {
		if err := s.Add(ctx, name); err != nil {
			t.Fatalf("Add(%q) error = %v", name, err)
		}
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"Sierra Club", "Three Rivers", "Acme Corp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	if err := s.Remove(ctx, "Three Rivers"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	got, _ = s.List(ctx)
	want = []string{"Sierra Club", "Acme Corp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() after Remove = %v, want %v", got, want)
	}
}

func TestMemStoreErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewMemStore("Sierra Club")

	if err := s.Add(ctx, "   "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Add(blank) error = %v, want ErrEmptyName", err)
	}
	// Uniqueness compares trimmed names.
	if err := s.Add(ctx, "  Sierra Club  "); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Add(duplicate) error = %v, want ErrDuplicate", err)
	}
	if err := s.Remove(ctx, "No Such Case"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMemStoreListReturnsCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewMemStore("Sierra Club")
	first, _ := s.List(ctx)
	first[0] = "mutated"

	second, _ := s.List(ctx)
	if second[0] != "Sierra Club" {
		t.Errorf("List() = %v, registry mutated through returned slice", second)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	names := []string{"Sierra Club", "Müller GmbH", "Three Rivers"}
	for _, n := range names {
		if err := s.Add(ctx, n); err != nil {
			t.Fatalf("Add(%q) error = %v", n, err)
		}
	}
	if err := s.Remove(ctx, "Three Rivers"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	// A fresh store on the same directory sees the persisted state.
	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore(reopen) error = %v", err)
	}
	got, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"Sierra Club", "Müller GmbH"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestFileStoreCorruptFileMovedAside(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, CasesFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v, want recovery from corrupt file", err)
	}
	got, _ := s.List(ctx)
	if len(got) != 0 {
		t.Errorf("List() = %v, want empty after corrupt file", got)
	}

	backups, err := filepath.Glob(path + ".*.bak")
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Errorf("found %d backup files, want 1", len(backups))
	}
}

func TestFileStoreFailedPersistLeavesRegistryUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := s.Add(ctx, "Sierra Club"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// A directory squatting on the registry path makes the rename fail.
	path := filepath.Join(dir, CasesFileName)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := s.Add(ctx, "Acme Corp"); err == nil {
		t.Fatal("Add() error = nil, want persist failure")
	}
	got, _ := s.List(ctx)
	if !reflect.DeepEqual(got, []string{"Sierra Club"}) {
		t.Errorf("List() = %v, want unchanged [Sierra Club]", got)
	}
}
