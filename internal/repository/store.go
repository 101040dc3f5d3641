package repository

import (
	"context"

	"github.com/xiaot623/gogo/recorder/internal/domain"
)

// Store defines the interface for session and payload persistence.
//
// Lookups by key return nil and no error when the row does not exist. Mutations of a
// missing row return domain.ErrNotFound.
type Store interface {
	// Session operations
	ListSessions(ctx context.Context) ([]domain.Session, error)
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	GetSessionWithPayloads(ctx context.Context, sessionID string) (*domain.Session, error)
	SessionExists(ctx context.Context, sessionID string) (bool, error)
	CreateSession(ctx context.Context, session *domain.Session) error
	UpdateSession(ctx context.Context, sessionID string, patch domain.SessionPatch) (*domain.Session, error)
	DeleteSession(ctx context.Context, sessionID string) (bool, error)

	// Payload operations
	ListPayloads(ctx context.Context) ([]domain.Payload, error)
	GetPayload(ctx context.Context, id int64) (*domain.Payload, error)
	GetPayloadsByPayloadIDs(ctx context.Context, payloadIDs []string) ([]domain.Payload, error)
	GetPayloadByTransactionID(ctx context.Context, transactionID string) (*domain.Payload, error)
	ListPayloadsBySession(ctx context.Context, sessionID string) ([]domain.Payload, error)
	CreatePayload(ctx context.Context, payload *domain.Payload) error
	AttachPayload(ctx context.Context, sessionID string, payload *domain.Payload) error
	UpdatePayload(ctx context.Context, id int64, patch domain.PayloadPatch) (*domain.Payload, error)
	DeletePayload(ctx context.Context, id int64) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
