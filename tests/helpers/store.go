// Package helpers provides shared fixtures for tests across packages.
package helpers

import (
	"testing"

	"github.com/xiaot623/gogo/recorder/internal/logging"
	"github.com/xiaot623/gogo/recorder/internal/repository"
)

// NewTestSQLiteStore opens a migrated in-memory store that is closed when the test ends.
func NewTestSQLiteStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()

	s, err := repository.NewSQLiteStore("sqlite3", ":memory:", logging.Nop())
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
