package repository

import (
	"context"
	"fmt"
)

// migration is a single versioned schema change.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of schema migrations. Append only.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create session and payload",
		SQL: `
			CREATE TABLE session (
				session_id       TEXT PRIMARY KEY,
				participant_type TEXT NOT NULL,
				participant_id   TEXT,
				domain           TEXT,
				version          TEXT,
				session_mode     TEXT NOT NULL,
				created_at       DATETIME NOT NULL,
				updated_at       DATETIME NOT NULL
			);

			CREATE TABLE payload (
				id             INTEGER PRIMARY KEY AUTOINCREMENT,
				payload_id     TEXT NOT NULL UNIQUE,
				message_id     TEXT,
				transaction_id TEXT,
				flow_id        TEXT,
				action         TEXT,
				responder_id   TEXT,
				requester_id   TEXT,
				request_header TEXT,
				json_request   TEXT,
				json_response  TEXT,
				http_status    INTEGER,
				session_id     TEXT REFERENCES session(session_id) ON DELETE SET NULL,
				created_at     DATETIME NOT NULL,
				updated_at     DATETIME NOT NULL
			);
		`,
	},
	{
		Version: 2,
		Name:    "index payload lookups",
		SQL: `
			CREATE INDEX idx_payload_session ON payload (session_id, id);
			CREATE INDEX idx_payload_transaction ON payload (transaction_id, id);
		`,
	},
}

// migrate applies every migration not yet recorded in schema_migrations, one transaction each.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := s.isMigrationApplied(m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		s.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func (s *SQLiteStore) isMigrationApplied(version int) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking migration %d: %w", version, err)
	}
	return count > 0, nil
}

// SchemaVersion reports the highest applied migration version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, classify(err)
	}
	return version, nil
}
