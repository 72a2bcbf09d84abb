package database

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/pressly/goose/v3"
	"github.com/vinkenoogm/ks-bear/internal/database/migrations"
)

// EnsureSchema creates the players, events and damage tables and their indexes if they are absent.
// It is idempotent and never alters existing data.
func EnsureSchema(ctx context.Context, db *DB) error {
	provider, err := newProvider(db)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info("Applied migration", "source", r.Source.Path, "duration", r.Duration)
	}
	log.Debug("Database schema is up to date", "dialect", db.Dialect, "applied", len(results))
	return nil
}

// SchemaVersion returns the latest applied migration version.
func SchemaVersion(ctx context.Context, db *DB) (int64, error) {
	provider, err := newProvider(db)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

func newProvider(db *DB) (*goose.Provider, error) {
	dialect := goose.DialectSQLite3
	dir := "sqlite"
	if db.Dialect == DialectPostgres {
		dialect = goose.DialectPostgres
		dir = "postgres"
	}

	fsys, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s migrations: %w", dir, err)
	}
	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}
