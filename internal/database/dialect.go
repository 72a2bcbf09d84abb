package database

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Dialect identifies the SQL flavour of the configured store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectLibSQL   Dialect = "libsql"
	DialectPostgres Dialect = "postgres"
)

// sqlitePragmas are applied by the mattn driver to every new connection.
const sqlitePragmas = "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"

// Target is a parsed DATABASE_URL.
type Target struct {
	Dialect    Dialect
	DriverName string
	DSN        string
	InMemory   bool
}

// Redacted returns the DSN without credentials, safe for logging.
func (t Target) Redacted() string {
	u, err := url.Parse(t.DSN)
	if err != nil || u.Scheme == "" {
		return strings.SplitN(t.DSN, "?", 2)[0]
	}
	u.RawQuery = ""
	return u.Redacted()
}

// ParseURL maps a connection string onto a driver.
//
// Accepted forms:
//   - sqlite:///relative.db, sqlite:////abs/path.db, sqlite:// (in memory)
//   - :memory:, file:path.db or a bare file path
//   - postgres://..., postgresql://... (an SQLAlchemy "+driver" suffix is ignored)
//   - libsql://..., https://..., wss://... (Turso; authToken is appended when set)
func ParseURL(databaseURL, authToken string) (Target, error) {
	raw := strings.TrimSpace(databaseURL)
	if raw == "" {
		return Target{}, errors.New("database url is required")
	}

	scheme, rest, hasScheme := strings.Cut(raw, "://")
	if !hasScheme {
		return sqliteTarget(strings.TrimPrefix(raw, "file:")), nil
	}

	driverScheme, _, _ := strings.Cut(strings.ToLower(scheme), "+")
	switch driverScheme {
	case "sqlite", "sqlite3":
		// SQLAlchemy convention: three slashes and then the path.
		return sqliteTarget(strings.TrimPrefix(rest, "/")), nil
	case "postgres", "postgresql":
		return Target{
			Dialect:    DialectPostgres,
			DriverName: "pgx",
			DSN:        "postgres://" + rest,
		}, nil
	case "libsql", "https", "http", "wss", "ws":
		dsn := raw
		if authToken != "" && !strings.Contains(raw, "authToken=") {
			sep := "?"
			if strings.Contains(raw, "?") {
				sep = "&"
			}
			dsn = raw + sep + "authToken=" + url.QueryEscape(authToken)
		}
		return Target{
			Dialect:    DialectLibSQL,
			DriverName: "libsql",
			DSN:        dsn,
		}, nil
	default:
		return Target{}, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

func sqliteTarget(path string) Target {
	if path == "" || path == ":memory:" {
		return Target{
			Dialect:    DialectSQLite,
			DriverName: "sqlite3",
			DSN:        ":memory:?" + sqlitePragmas,
			InMemory:   true,
		}
	}
	return Target{
		Dialect:    DialectSQLite,
		DriverName: "sqlite3",
		DSN:        path + "?" + sqlitePragmas + "&_journal_mode=WAL",
	}
}

func rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsConstraintViolation reports whether err is a unique, check or foreign key failure
// raised by any of the supported drivers.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23: integrity constraint violation.
		return strings.HasPrefix(pgErr.Code, "23")
	}
	// libSQL over HTTP only hands back the message text.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint failed") || strings.Contains(msg, "sqlite_constraint")
}
