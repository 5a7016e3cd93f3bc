package db

import "testing"

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	d, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	// Every pooled connection to :memory: would see its own database.
	d.SetMaxOpenConns(1)

	if err := EnsureSchema(d); err != nil {
		d.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { d.Close() })

	return d
}
