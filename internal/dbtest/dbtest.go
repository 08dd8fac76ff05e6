// Package dbtest provides helpers for testing database code.
package dbtest

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Registers the sqlite driver for tests.

	"github.com/starquake/kioskquiz/internal/database"
)

// DSN returns the URI of a fresh SQLite database file inside the test's temp dir.
func DSN(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kioskquiz-test.sqlite")

	return fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		path,
	)
}

// Open opens an in-memory database connection with migrations applied.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	db := OpenUnmigrated(t)

	database.SetupGoose()
	if err := goose.UpContext(t.Context(), db, "."); err != nil {
		t.Fatalf("error running migrations: %v", err)
	}

	return db
}

// OpenUnmigrated opens an in-memory database connection without migrations applied.
// The connection is closed when the test ends.
func OpenUnmigrated(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("error opening SQLite database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("error closing database: %v", closeErr)
		}
	})

	return db
}
