package timelog

import (
	"context"
	"errors"
)

var (
	// ErrIndexOutOfRange is returned by Update and Delete when the index
	// does not name an existing entry. The sequence is left unmodified.
	ErrIndexOutOfRange = errors.New("timelog: index out of range")

	// ErrPersistFailed wraps storage write failures. For Append the
	// in-memory sequence still reflects the new entry when this is
	// returned; the spoken action is never lost to a disk hiccup.
	ErrPersistFailed = errors.New("timelog: persist failed")
)

// Store is the log-store abstraction over time entries and expense entries.
// Implementations keep the two sequences independent and preserve insertion
// order. All methods are safe for concurrent use.
type Store interface {
	// Append adds e to the end of the time-entry sequence. An error
	// wrapping ErrPersistFailed means the entry is retained in memory but
	// was not durably written.
	Append(ctx context.Context, e Entry) error

	// List returns all time entries in insertion order. The returned slice
	// is a copy.
	List(ctx context.Context) ([]Entry, error)

	// Update replaces the entry at index. Returns ErrIndexOutOfRange when
	// index does not exist.
	Update(ctx context.Context, index int, e Entry) error

	// Delete removes the entry at index, shifting subsequent indices down.
	// Returns ErrIndexOutOfRange when index does not exist.
	Delete(ctx context.Context, index int) error

	// AppendExpense, ListExpenses, UpdateExpense and DeleteExpense mirror
	// the time-entry operations for the expense sequence.
	AppendExpense(ctx context.Context, e ExpenseEntry) error
	ListExpenses(ctx context.Context) ([]ExpenseEntry, error)
	UpdateExpense(ctx context.Context, index int, e ExpenseEntry) error
	DeleteExpense(ctx context.Context, index int) error

	// Clear removes all time entries and expense entries.
	Clear(ctx context.Context) error
}
