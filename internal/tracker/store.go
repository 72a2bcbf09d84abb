package tracker

import (
	"context"
	"database/sql"

	"github.com/vinkenoogm/ks-bear/internal/database"
)

var _ TrackerStore = (*store)(nil)

// New creates a new TrackerStore on top of an initialized database.
// Concurrent writers are serialized by the database's transactions; the store holds no locks.
func New(db *database.DB) TrackerStore {
	return &store{
		db: db,
	}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn inside a transaction and commits when fn succeeds.
func (s *store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError(op, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeError(op, err)
	}
	return nil
}
