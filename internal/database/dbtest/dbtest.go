// Package dbtest provides an isolated SQLite database carrying the same
// tables, keys and constraints as the MySQL schema, for package tests.
package dbtest

import (
	"database/sql"
	_ "embed"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/sports-complex/internal/database"
)

//go:embed schema_sqlite.sql
var schema string

// Open creates a fresh database file under t.TempDir with foreign keys
// enforced.  The pool is limited to one connection: code under test must
// not use the pool while it holds an open transaction.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range database.Statements(schema) {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return db
}

// Count returns SELECT COUNT(*) for the given FROM/WHERE tail.
func Count(t testing.TB, db *sql.DB, tail string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+tail, args...).Scan(&n))
	return n
}
