package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/gogo/recorder/internal/domain"
)

func (s *Service) ListSessions(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list sessions")
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	s.log.Debug().Int("count", len(sessions)).Msg("listed sessions")
	return sessions, nil
}

// GetSession returns the session with its payloads, or nil when it does not exist.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.store.GetSessionWithPayloads(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		s.log.Warn().Str("session_id", sessionID).Msg("session not found")
		return nil, nil
	}
	s.log.Debug().Str("session_id", sessionID).Int("payloads", len(session.Payloads)).Msg("session found")
	return session, nil
}

func (s *Service) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	exists, err := s.store.SessionExists(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return exists, nil
}

func (s *Service) CreateSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	if session.SessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", domain.ErrInvalidArgument)
	}
	if _, err := domain.ParseParticipantType(string(session.ParticipantType)); err != nil {
		return nil, err
	}
	if _, err := domain.ParseSessionMode(string(session.SessionMode)); err != nil {
		return nil, err
	}
	session.Payloads = nil

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.log.Info().Str("session_id", session.SessionID).Msg("session created")
	return session, nil
}

// UpdateSession overwrites participant type, participant id and domain.
func (s *Service) UpdateSession(ctx context.Context, sessionID string, patch domain.SessionPatch) (*domain.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", domain.ErrInvalidArgument)
	}
	if _, err := domain.ParseParticipantType(string(patch.ParticipantType)); err != nil {
		return nil, err
	}

	session, err := s.store.UpdateSession(ctx, sessionID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("failed to update session: %w: session %s", domain.ErrNotFound, sessionID)
	}
	s.log.Info().Str("session_id", sessionID).Msg("session updated")
	return session, nil
}

// DeleteSession removes a session and reports whether one existed.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	deleted, err := s.store.DeleteSession(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted {
		s.log.Info().Str("session_id", sessionID).Msg("session deleted")
	}
	return deleted, nil
}

// GetPayloadDetails pairs each of the session's payloads with the session's participant
// type and domain, in payload order.
func (s *Service) GetPayloadDetails(ctx context.Context, sessionID string) ([]domain.PayloadDetail, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", domain.ErrInvalidArgument)
	}
	session, err := s.store.GetSessionWithPayloads(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payload details: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return domain.DetailsFor(session), nil
}
