package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xiaot623/gogo/recorder/internal/domain"
)

const sessionColumns = `session_id, participant_type, participant_id, domain, version, session_mode, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		session                      domain.Session
		participantType, sessionMode string
		participantID, dom, version  sql.NullString
	)
	if err := row.Scan(&session.SessionID, &participantType, &participantID, &dom, &version,
		&sessionMode, &session.CreatedAt, &session.UpdatedAt); err != nil {
		return nil, err
	}

	pt, err := domain.ParseParticipantType(participantType)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", session.SessionID, err)
	}
	mode, err := domain.ParseSessionMode(sessionMode)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", session.SessionID, err)
	}
	session.ParticipantType = pt
	session.SessionMode = mode
	session.ParticipantID = participantID.String
	session.Domain = dom.String
	session.Version = version.String
	return &session, nil
}

// ListSessions returns every session ordered by creation. Payloads are not loaded.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM session ORDER BY created_at, session_id`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, classify(err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return sessions, nil
}

// GetSession retrieves a session by ID without its payloads.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM session WHERE session_id = ?`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return session, nil
}

// GetSessionWithPayloads retrieves a session and its payloads ordered by payload id.
// Payloads is non-nil on a found session.
func (s *SQLiteStore) GetSessionWithPayloads(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil || session == nil {
		return session, err
	}
	payloads, err := s.ListPayloadsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Payloads = payloads
	return session, nil
}

// SessionExists reports whether a session with the given ID is stored.
func (s *SQLiteStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM session WHERE session_id = ?)`, sessionID).Scan(&exists)
	if err != nil {
		return false, classify(err)
	}
	return exists, nil
}

// CreateSession inserts a session and stamps both timestamps.
// A duplicate session ID yields domain.ErrConflict.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.SessionID, string(session.ParticipantType), nullString(session.ParticipantID),
		nullString(session.Domain), nullString(session.Version), string(session.SessionMode), now, now)
	if err != nil {
		return classify(err)
	}
	session.CreatedAt = now
	session.UpdatedAt = now
	return nil
}

// UpdateSession overwrites the revisable fields of a session and returns the stored row.
func (s *SQLiteStore) UpdateSession(ctx context.Context, sessionID string, patch domain.SessionPatch) (*domain.Session, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE session SET participant_type = ?, participant_id = ?, domain = ?, updated_at = ? WHERE session_id = ?`,
		string(patch.ParticipantType), nullString(patch.ParticipantID), nullString(patch.Domain),
		time.Now().UTC(), sessionID)
	if err != nil {
		return nil, classify(err)
	}
	if err := requireAffected(res, "session", sessionID); err != nil {
		return nil, err
	}
	return s.GetSession(ctx, sessionID)
}

// DeleteSession removes the session row. Its payloads remain with the reference cleared.
// It reports false when no session matched.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE session_id = ?`, sessionID)
	if err != nil {
		return false, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(err)
	}
	return n > 0, nil
}

func requireAffected(res sql.Result, kind, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, key)
	}
	return nil
}
