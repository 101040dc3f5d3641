// Package repository persists sessions and payloads in SQLite.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/xiaot623/gogo/recorder/internal/logging"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	driver string
	log    *logging.Logger
}

// NewSQLiteStore opens the database and applies pending migrations.
// driver is "sqlite3" (mattn/go-sqlite3) or "sqlite" (modernc.org/sqlite).
func NewSQLiteStore(driver, dsn string, log *logging.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logging.Nop()
	}
	db, err := sql.Open(driver, withPragmas(driver, dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to an in-memory database sees its own empty database.
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if !isMemory(dsn) {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set WAL mode: %w", err)
		}
	}

	store := &SQLiteStore{db: db, driver: driver, log: log.Sub("store")}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	store.log.Info().Str("driver", driver).Msg("database opened")
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping runs a trivial query to confirm the database answers.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return classify(err)
	}
	return nil
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// busyTimeoutMillis bounds how long a connection waits on another connection's write lock.
const busyTimeoutMillis = 5000

// withPragmas adds the driver's DSN switches for foreign key enforcement, the busy
// timeout and, for file databases, WAL journaling and immediate write transactions.
// Each pooled connection applies them on open, not only the one that ran a PRAGMA.
func withPragmas(driver, dsn string) string {
	var params []string
	switch driver {
	case "sqlite3":
		params = []string{"_foreign_keys=on", fmt.Sprintf("_busy_timeout=%d", busyTimeoutMillis)}
		if !isMemory(dsn) {
			params = append(params, "_journal_mode=WAL", "_txlock=immediate")
		}
	case "sqlite":
		if !strings.HasPrefix(dsn, "file:") {
			return dsn
		}
		params = []string{"_pragma=foreign_keys(1)", fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeoutMillis)}
		if !isMemory(dsn) {
			params = append(params, "_pragma=journal_mode(WAL)", "_txlock=immediate")
		}
	default:
		return dsn
	}
	for _, param := range params {
		if strings.Contains(dsn, param) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + param
		} else {
			dsn += "?" + param
		}
	}
	return dsn
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
