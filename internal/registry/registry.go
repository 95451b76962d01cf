// Package registry holds the set of known case names.
//
// Case names are unique after trimming surrounding whitespace, with the
// original casing preserved. Listing order is insertion order, which keeps
// downstream fuzzy-match tie-breaks deterministic.
package registry

import (
	"context"
	"errors"
)

var (
	// ErrDuplicate is returned by Add when the trimmed case name already
	// exists in the registry.
	ErrDuplicate = errors.New("registry: case already exists")

	// ErrNotFound is returned by Remove when no entry matches the trimmed
	// case name.
	ErrNotFound = errors.New("registry: case not found")

	// ErrEmptyName is returned by Add when the case name is empty after
	// trimming.
	ErrEmptyName = errors.New("registry: case name must not be empty")
)

// Store is the case registry abstraction. Implementations must preserve
// insertion order across List calls and be safe for concurrent use.
type Store interface {
	// Add registers a new case name. Returns ErrEmptyName when name trims
	// to "", ErrDuplicate when an equal (after trimming) entry exists.
	Add(ctx context.Context, name string) error

	// Remove deletes the entry equal (after trimming) to name. Returns
	// ErrNotFound when no such entry exists.
	Remove(ctx context.Context, name string) error

	// List returns all case names in insertion order. The returned slice is
	// a copy; mutating it does not affect the registry.
	List(ctx context.Context) ([]string, error)
}
