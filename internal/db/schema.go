package db

import "fmt"

// schemaSQLite is the full database schema for SQLite. The status CHECK
// constraints are a backstop; transition validation happens in the store.
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS products (
    gtin        TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    category    TEXT NOT NULL,
    batch       TEXT NOT NULL DEFAULT '',
    best_before DATETIME,
    quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    unit        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tasks (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    location      TEXT NOT NULL,
    priority      TEXT NOT NULL DEFAULT '',
    comment       TEXT NOT NULL DEFAULT '',
    assignee_id   TEXT,
    assignee_name TEXT,
    status        TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'in_progress', 'await_approval', 'approved', 'completed', 'recheck')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_items (
    id       INTEGER PRIMARY KEY,
    task_id  INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    gtin     TEXT NOT NULL REFERENCES products(gtin) ON DELETE CASCADE,
    expected INTEGER NOT NULL CHECK (expected >= 0),
    counted  INTEGER,
    status   TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'counted', 'await_approval', 'approved', 'recheck')),
    UNIQUE (task_id, gtin)
);
`

// schemaPostgres is the same schema for PostgreSQL.
const schemaPostgres = `
CREATE TABLE IF NOT EXISTS products (
    gtin        TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    category    TEXT NOT NULL,
    batch       TEXT NOT NULL DEFAULT '',
    best_before TIMESTAMPTZ,
    quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    unit        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tasks (
    id            BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    location      TEXT NOT NULL,
    priority      TEXT NOT NULL DEFAULT '',
    comment       TEXT NOT NULL DEFAULT '',
    assignee_id   TEXT,
    assignee_name TEXT,
    status        TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'in_progress', 'await_approval', 'approved', 'completed', 'recheck')),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_items (
    id       BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    task_id  BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    gtin     TEXT NOT NULL REFERENCES products(gtin) ON DELETE CASCADE,
    expected INTEGER NOT NULL CHECK (expected >= 0),
    counted  INTEGER,
    status   TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'counted', 'await_approval', 'approved', 'recheck')),
    UNIQUE (task_id, gtin)
);
`

// EnsureSchema creates all tables and constraints if they don't already exist.
func EnsureSchema(d *DB) error {
	schema := schemaSQLite
	if d.Dialect == DialectPostgres {
		schema = schemaPostgres
	}
	if _, err := d.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
