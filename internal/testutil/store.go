// Package testutil opens throwaway stores for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/iliyamo/theatre-production/internal/database"
)

// NewStore returns a migrated SQLite-backed DAL in a temporary directory.
// It is closed when the test ends.
func NewStore(t testing.TB) *database.DAL {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(context.Background(), db, database.SQLite); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	dal := database.New(db, database.SQLite, database.Options{
		Timeout:       5 * time.Second,
		RetryAttempts: 3,
		RetryBackoff:  10 * time.Millisecond,
	})
	t.Cleanup(func() { dal.Close() })
	return dal
}

// CreateUser inserts a bare user row and returns its id, for tests that
// only need an owner.
func CreateUser(t testing.TB, dal *database.DAL, username string) uint64 {
	t.Helper()

	res, err := dal.Write(context.Background(),
		"INSERT INTO users (username, password_hash) VALUES (?, ?)", username, "x")
	if err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return uint64(res.LastInsertID)
}
