package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// DB is the shared connection pool together with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// InitDB opens the database described by databaseURL and ensures the schema is up to date.
// The returned teardown closes the pool.
func InitDB(databaseURL string, authToken string) (*DB, func(), error) {
	target, err := ParseURL(databaseURL, authToken)
	if err != nil {
		return nil, nil, err
	}

	log.Info("Initializing database", "dialect", target.Dialect, "location", target.Redacted())
	sqlDB, err := sql.Open(target.DriverName, target.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s database: %w", target.Dialect, err)
	}
	if target.InMemory {
		// Every SQLite connection to :memory: is its own database.
		sqlDB.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to connect to %s database: %w", target.Dialect, err)
	}

	db := &DB{DB: sqlDB, Dialect: target.Dialect}
	if target.Dialect == DialectLibSQL {
		// Foreign key support is not enabled by default in SQLite
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
			log.Error("Error enabling foreign keys", "error", err)
			sqlDB.Close()
			return nil, nil, err
		}
	}

	if err := EnsureSchema(ctx, db); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	teardown := func() {
		if err := sqlDB.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}
	return db, teardown, nil
}

// Rebind rewrites ?-style placeholders into the dialect's native form.
func (db *DB) Rebind(query string) string {
	return rebind(db.Dialect, query)
}
