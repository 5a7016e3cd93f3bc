package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// DB wraps the sqlx handle with the dialect it was opened for. Queries are
// written with ? placeholders and passed through Rebind, so one store layer
// serves both backends.
type DB struct {
	*sqlx.DB
	Dialect string
}

func init() {
	// sqlx does not know the modernc driver name by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open opens a database connection for the given DSN. A postgres:// or
// postgresql:// DSN selects PostgreSQL (via pgx); anything else is treated
// as a SQLite database path.
func Open(dsn string) (*DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sdb, err := sqlx.Connect("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("opening postgres database: %w", err)
		}
		sdb.SetMaxOpenConns(20)
		return &DB{DB: sdb, Dialect: DialectPostgres}, nil
	}

	sdb, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set pragmas for performance and correctness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := sdb.Exec(p); err != nil {
			sdb.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	return &DB{DB: sdb, Dialect: DialectSQLite}, nil
}

// ForUpdate returns the row-locking clause for the dialect. SQLite allows a
// single writer per database, so no clause is needed (or accepted) there.
func (d *DB) ForUpdate() string {
	if d.Dialect == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}
