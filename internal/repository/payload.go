package repository

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/xiaot623/gogo/recorder/internal/domain"
)

const payloadColumns = `id, payload_id, message_id, transaction_id, flow_id, action, responder_id, requester_id,
	request_header, json_request, json_response, http_status, session_id, created_at, updated_at`

func scanPayload(row rowScanner) (*domain.Payload, error) {
	var (
		p                                domain.Payload
		messageID, transactionID, flowID sql.NullString
		action, responderID, requesterID sql.NullString
		requestHeader, sessionID         sql.NullString
		httpStatus                       sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.PayloadID, &messageID, &transactionID, &flowID, &action,
		&responderID, &requesterID, &requestHeader, &p.JSONRequest, &p.JSONResponse,
		&httpStatus, &sessionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	a, err := domain.ParseAction(action.String)
	if err != nil {
		return nil, fmt.Errorf("payload %d: %w", p.ID, err)
	}
	p.Action = a
	p.MessageID = messageID.String
	p.TransactionID = transactionID.String
	p.FlowID = flowID.String
	p.ResponderID = responderID.String
	p.RequesterID = requesterID.String
	p.RequestHeader = requestHeader.String
	p.SessionID = sessionID.String
	if httpStatus.Valid {
		status := int(httpStatus.Int64)
		p.HTTPStatus = &status
	}
	return &p, nil
}

func (s *SQLiteStore) queryPayloads(ctx context.Context, query string, args ...any) ([]domain.Payload, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	payloads := []domain.Payload{}
	for rows.Next() {
		p, err := scanPayload(rows)
		if err != nil {
			return nil, classify(err)
		}
		payloads = append(payloads, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return payloads, nil
}

func (s *SQLiteStore) queryPayload(ctx context.Context, query string, args ...any) (*domain.Payload, error) {
	p, err := scanPayload(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return p, nil
}

// ListPayloads returns every payload ordered by id.
func (s *SQLiteStore) ListPayloads(ctx context.Context) ([]domain.Payload, error) {
	return s.queryPayloads(ctx, `SELECT `+payloadColumns+` FROM payload ORDER BY id`)
}

// GetPayload retrieves a payload by its numeric id.
func (s *SQLiteStore) GetPayload(ctx context.Context, id int64) (*domain.Payload, error) {
	return s.queryPayload(ctx, `SELECT `+payloadColumns+` FROM payload WHERE id = ?`, id)
}

// payloadIDBatch caps the bound variables of one IN query below SQLite's limit.
const payloadIDBatch = 500

// GetPayloadsByPayloadIDs returns the payloads whose payload_id is in payloadIDs, ordered by id.
// It returns nil when payloadIDs is empty or nothing matches.
func (s *SQLiteStore) GetPayloadsByPayloadIDs(ctx context.Context, payloadIDs []string) ([]domain.Payload, error) {
	ids := slices.Clone(payloadIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var payloads []domain.Payload
	for batch := range slices.Chunk(ids, payloadIDBatch) {
		placeholders := make([]string, len(batch))
		args := make([]any, len(batch))
		for i, id := range batch {
			placeholders[i] = "?"
			args[i] = id
		}
		found, err := s.queryPayloads(ctx,
			`SELECT `+payloadColumns+` FROM payload WHERE payload_id IN (`+strings.Join(placeholders, ", ")+`) ORDER BY id`,
			args...)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, found...)
	}
	if len(payloads) == 0 {
		return nil, nil
	}
	slices.SortFunc(payloads, func(a, b domain.Payload) int { return cmp.Compare(a.ID, b.ID) })
	return payloads, nil
}

// GetPayloadByTransactionID returns the lowest-id payload carrying transactionID.
func (s *SQLiteStore) GetPayloadByTransactionID(ctx context.Context, transactionID string) (*domain.Payload, error) {
	return s.queryPayload(ctx,
		`SELECT `+payloadColumns+` FROM payload WHERE transaction_id = ? ORDER BY id LIMIT 1`, transactionID)
}

// ListPayloadsBySession returns the payloads referencing sessionID ordered by id.
func (s *SQLiteStore) ListPayloadsBySession(ctx context.Context, sessionID string) ([]domain.Payload, error) {
	return s.queryPayloads(ctx,
		`SELECT `+payloadColumns+` FROM payload WHERE session_id = ? ORDER BY id`, sessionID)
}

// CreatePayload inserts a payload as given. A duplicate payload ID or a reference to a
// missing session yields domain.ErrConflict.
func (s *SQLiteStore) CreatePayload(ctx context.Context, payload *domain.Payload) error {
	return classify(s.insertPayload(ctx, payload))
}

// AttachPayload inserts a payload linked to sessionID. It returns domain.ErrNotFound
// without writing when the session does not exist, including when the session is
// removed between the check and the insert.
func (s *SQLiteStore) AttachPayload(ctx context.Context, sessionID string, payload *domain.Payload) error {
	exists, err := s.SessionExists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}

	payload.SessionID = sessionID
	err = s.insertPayload(ctx, payload)
	if err != nil && isForeignKeyViolation(err) {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return classify(err)
}

func (s *SQLiteStore) insertPayload(ctx context.Context, p *domain.Payload) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO payload (payload_id, message_id, transaction_id, flow_id, action, responder_id, requester_id,
			request_header, json_request, json_response, http_status, session_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PayloadID, nullString(p.MessageID), nullString(p.TransactionID), nullString(p.FlowID),
		nullString(string(p.Action)), nullString(p.ResponderID), nullString(p.RequesterID),
		nullString(p.RequestHeader), p.JSONRequest, p.JSONResponse, nullInt(p.HTTPStatus),
		nullString(p.SessionID), now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// UpdatePayload overwrites the revisable fields of a payload and returns the stored row.
// Fields absent from patch are cleared.
func (s *SQLiteStore) UpdatePayload(ctx context.Context, id int64, patch domain.PayloadPatch) (*domain.Payload, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payload SET message_id = ?, transaction_id = ?, action = ?, payload_id = ?, responder_id = ?,
			requester_id = ?, json_request = ?, json_response = ?, http_status = ?, updated_at = ?
		WHERE id = ?`,
		nullString(patch.MessageID), nullString(patch.TransactionID), nullString(string(patch.Action)),
		patch.PayloadID, nullString(patch.ResponderID), nullString(patch.RequesterID),
		patch.JSONRequest, patch.JSONResponse, nullInt(patch.HTTPStatus), time.Now().UTC(), id)
	if err != nil {
		return nil, classify(err)
	}
	if err := requireAffected(res, "payload", fmt.Sprint(id)); err != nil {
		return nil, err
	}
	return s.GetPayload(ctx, id)
}

// DeletePayload removes a payload. Its session, if any, is left untouched.
func (s *SQLiteStore) DeletePayload(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payload WHERE id = ?`, id)
	if err != nil {
		return classify(err)
	}
	return requireAffected(res, "payload", fmt.Sprint(id))
}
