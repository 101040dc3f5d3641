package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/gogo/recorder/internal/domain"
)

func (s *Service) ListPayloads(ctx context.Context) ([]domain.Payload, error) {
	payloads, err := s.store.ListPayloads(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list payloads")
		return nil, fmt.Errorf("failed to list payloads: %w", err)
	}
	s.log.Debug().Int("count", len(payloads)).Msg("listed payloads")
	return payloads, nil
}

// GetPayload returns the payload, or nil when it does not exist.
func (s *Service) GetPayload(ctx context.Context, id int64) (*domain.Payload, error) {
	payload, err := s.store.GetPayload(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payload: %w", err)
	}
	if payload == nil {
		s.log.Warn().Int64("id", id).Msg("payload not found")
	}
	return payload, nil
}

// GetPayloadsByPayloadIDs returns the matching payloads, or nil when none match.
func (s *Service) GetPayloadsByPayloadIDs(ctx context.Context, payloadIDs []string) ([]domain.Payload, error) {
	payloads, err := s.store.GetPayloadsByPayloadIDs(ctx, payloadIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get payloads: %w", err)
	}
	if payloads == nil {
		s.log.Warn().Strs("payload_ids", payloadIDs).Msg("payloads not found")
	}
	return payloads, nil
}

// GetPayloadByTransactionID returns the first payload recorded for the transaction, or nil.
func (s *Service) GetPayloadByTransactionID(ctx context.Context, transactionID string) (*domain.Payload, error) {
	payload, err := s.store.GetPayloadByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payload by transaction: %w", err)
	}
	if payload == nil {
		s.log.Warn().Str("transaction_id", transactionID).Msg("payload not found")
	}
	return payload, nil
}

func (s *Service) CreatePayload(ctx context.Context, payload *domain.Payload) (*domain.Payload, error) {
	if err := validatePayload(payload.PayloadID, payload.Action); err != nil {
		return nil, err
	}
	if err := s.store.CreatePayload(ctx, payload); err != nil {
		return nil, fmt.Errorf("failed to create payload: %w", err)
	}
	s.log.Info().Int64("id", payload.ID).Str("payload_id", payload.PayloadID).Msg("payload created")
	return payload, nil
}

// CreatePayloadForSession stores payload linked to an existing session.
// It fails with domain.ErrNotFound, writing nothing, when the session does not exist.
func (s *Service) CreatePayloadForSession(ctx context.Context, sessionID string, payload *domain.Payload) (*domain.Payload, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session reference is required", domain.ErrInvalidArgument)
	}
	if err := validatePayload(payload.PayloadID, payload.Action); err != nil {
		return nil, err
	}
	if err := s.store.AttachPayload(ctx, sessionID, payload); err != nil {
		return nil, fmt.Errorf("failed to create payload for session: %w", err)
	}
	s.log.Info().
		Int64("id", payload.ID).
		Str("payload_id", payload.PayloadID).
		Str("session_id", sessionID).
		Msg("payload attached")
	return payload, nil
}

// UpdatePayload overwrites the fixed set of revisable payload fields.
func (s *Service) UpdatePayload(ctx context.Context, id int64, patch domain.PayloadPatch) (*domain.Payload, error) {
	if err := validatePayload(patch.PayloadID, patch.Action); err != nil {
		return nil, err
	}
	payload, err := s.store.UpdatePayload(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update payload: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("failed to update payload: %w: payload %d", domain.ErrNotFound, id)
	}
	s.log.Info().Int64("id", id).Msg("payload updated")
	return payload, nil
}

func (s *Service) DeletePayload(ctx context.Context, id int64) error {
	if err := s.store.DeletePayload(ctx, id); err != nil {
		return fmt.Errorf("failed to delete payload: %w", err)
	}
	s.log.Info().Int64("id", id).Msg("payload deleted")
	return nil
}

// GetPayloadSession resolves the session a payload belongs to.
// It fails with domain.ErrNotFound when the payload is missing or not linked.
func (s *Service) GetPayloadSession(ctx context.Context, id int64) (*domain.Session, error) {
	payload, err := s.store.GetPayload(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payload: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: payload %d", domain.ErrNotFound, id)
	}
	if payload.SessionID == "" {
		return nil, fmt.Errorf("%w: payload %d has no session", domain.ErrNotFound, id)
	}
	session, err := s.store.GetSession(ctx, payload.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, payload.SessionID)
	}
	return session, nil
}

func validatePayload(payloadID string, action domain.Action) error {
	if payloadID == "" {
		return fmt.Errorf("%w: payloadId is required", domain.ErrInvalidArgument)
	}
	if _, err := domain.ParseAction(string(action)); err != nil {
		return err
	}
	return nil
}
