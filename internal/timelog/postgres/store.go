// Package postgres provides a PostgreSQL-backed implementation of the
// timelog.Store contract.
//
// All operations share a single [pgxpool.Pool]. [Migrate] is run on
// construction and is idempotent, so the store is safe to open on every
// application start. Entry and expense sequences are ordered by insertion
// (BIGSERIAL id); index-based edits resolve the index to an id inside one
// transaction so concurrent mutations cannot shift the target row.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caseclockapp/caseclock-mvp/internal/timelog"
)

// Compile-time assertion that Store implements timelog.Store.
var _ timelog.Store = (*Store)(nil)

const ddl = `
CREATE TABLE IF NOT EXISTS time_entries (
    id         BIGSERIAL    PRIMARY KEY,
    client     TEXT         NOT NULL,
    start_at   TIMESTAMPTZ  NOT NULL,
    end_at     TIMESTAMPTZ  NOT NULL,
    task_type  TEXT         NOT NULL DEFAULT '',
    notes      TEXT         NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_time_entries_client
    ON time_entries (client);

CREATE TABLE IF NOT EXISTS expense_entries (
    id          BIGSERIAL    PRIMARY KEY,
    client      TEXT         NOT NULL,
    category    TEXT         NOT NULL,
    amount      TEXT         NOT NULL DEFAULT '',
    notes       TEXT         NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ  NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_expense_entries_client
    ON expense_entries (client);
`

// Store is the PostgreSQL log store.
type Store struct {
	pool *pgxpool.Pool
}

// New establishes a connection pool to the database at dsn and ensures the
// schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("timelog postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("timelog postgres: ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("timelog postgres: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate creates the required tables if they do not exist. Idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("timelog postgres: migrate: %w", err)
	}
	return nil
}

// Close releases all connections held by the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Append implements timelog.Store. A failed insert wraps
// timelog.ErrPersistFailed; unlike the file store there is no in-memory
// mirror, so the entry is not retained on failure.
func (s *Store) Append(ctx context.Context, e timelog.Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO time_entries (client, start_at, end_at, task_type, notes)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.Case, e.Start, e.End, e.TaskType, e.Notes)
	if err != nil {
		return fmt.Errorf("%w: insert entry: %w", timelog.ErrPersistFailed, err)
	}
	return nil
}

// List implements timelog.Store.
func (s *Store) List(ctx context.Context) ([]timelog.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT client, start_at, end_at, task_type, notes
		 FROM time_entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("timelog postgres: list entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (timelog.Entry, error) {
		var (
			e          timelog.Entry
			start, end time.Time
		)
		if err := row.Scan(&e.Case, &start, &end, &e.TaskType, &e.Notes); err != nil {
			return timelog.Entry{}, err
		}
		e.Start = start.Local().Truncate(time.Second)
		e.End = end.Local().Truncate(time.Second)
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("timelog postgres: scan entries: %w", err)
	}
	return entries, nil
}

// Update implements timelog.Store.
func (s *Store) Update(ctx context.Context, index int, e timelog.Entry) error {
	return s.withRowAt(ctx, "time_entries", index, func(tx pgx.Tx, id int64) error {
		_, err := tx.Exec(ctx,
			`UPDATE time_entries
			 SET client = $1, start_at = $2, end_at = $3, task_type = $4, notes = $5
			 WHERE id = $6`,
			e.Case, e.Start, e.End, e.TaskType, e.Notes, id)
		return err
	})
}

// Delete implements timelog.Store.
func (s *Store) Delete(ctx context.Context, index int) error {
	return s.withRowAt(ctx, "time_entries", index, func(tx pgx.Tx, id int64) error {
		_, err := tx.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
		return err
	})
}

// AppendExpense implements timelog.Store.
func (s *Store) AppendExpense(ctx context.Context, e timelog.ExpenseEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO expense_entries (client, category, amount, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.Case, string(e.Category), e.Amount, e.Notes, e.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: insert expense: %w", timelog.ErrPersistFailed, err)
	}
	return nil
}

// ListExpenses implements timelog.Store.
func (s *Store) ListExpenses(ctx context.Context) ([]timelog.ExpenseEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT client, category, amount, notes, created_at
		 FROM expense_entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("timelog postgres: list expenses: %w", err)
	}

	expenses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (timelog.ExpenseEntry, error) {
		var (
			e        timelog.ExpenseEntry
			category string
			ts       time.Time
		)
		if err := row.Scan(&e.Case, &category, &e.Amount, &e.Notes, &ts); err != nil {
			return timelog.ExpenseEntry{}, err
		}
		e.Category = timelog.Category(category)
		e.Timestamp = ts.Local().Truncate(time.Second)
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("timelog postgres: scan expenses: %w", err)
	}
	return expenses, nil
}

// UpdateExpense implements timelog.Store.
func (s *Store) UpdateExpense(ctx context.Context, index int, e timelog.ExpenseEntry) error {
	return s.withRowAt(ctx, "expense_entries", index, func(tx pgx.Tx, id int64) error {
		_, err := tx.Exec(ctx,
			`UPDATE expense_entries
			 SET client = $1, category = $2, amount = $3, notes = $4, created_at = $5
			 WHERE id = $6`,
			e.Case, string(e.Category), e.Amount, e.Notes, e.Timestamp, id)
		return err
	})
}

// DeleteExpense implements timelog.Store.
func (s *Store) DeleteExpense(ctx context.Context, index int) error {
	return s.withRowAt(ctx, "expense_entries", index, func(tx pgx.Tx, id int64) error {
		_, err := tx.Exec(ctx, `DELETE FROM expense_entries WHERE id = $1`, id)
		return err
	})
}

// Clear implements timelog.Store.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE time_entries, expense_entries`); err != nil {
		return fmt.Errorf("timelog postgres: clear: %w", err)
	}
	return nil
}

// withRowAt resolves the row at the given insertion-order index inside a
// transaction and passes its id to fn. Returns timelog.ErrIndexOutOfRange
// when the index names no row.
func (s *Store) withRowAt(ctx context.Context, table string, index int, fn func(tx pgx.Tx, id int64) error) error {
	if index < 0 {
		return timelog.ErrIndexOutOfRange
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("timelog postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	query := fmt.Sprintf(`SELECT id FROM %s ORDER BY id OFFSET $1 LIMIT 1`, table)
	err = tx.QueryRow(ctx, query, index).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return timelog.ErrIndexOutOfRange
	}
	if err != nil {
		return fmt.Errorf("timelog postgres: resolve index %d: %w", index, err)
	}

	if err := fn(tx, id); err != nil {
		return fmt.Errorf("timelog postgres: mutate %s: %w", table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("timelog postgres: commit: %w", err)
	}
	return nil
}
