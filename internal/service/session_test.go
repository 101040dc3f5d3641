package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/recorder/internal/domain"
	"github.com/xiaot623/gogo/recorder/internal/logging"
	"github.com/xiaot623/gogo/recorder/tests/helpers"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(helpers.NewTestSQLiteStore(t), logging.Nop())
}

func createSession(t *testing.T, svc *Service, id string) *domain.Session {
	t.Helper()
	s, err := svc.CreateSession(context.Background(), &domain.Session{
		SessionID:       id,
		ParticipantType: domain.ParticipantTypeRequester,
		ParticipantID:   "bap.example.com",
		Version:         "2.0.0",
		SessionMode:     domain.SessionModeAutomated,
	})
	require.NoError(t, err)
	return s
}

func TestCreateThenGetSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created := createSession(t, svc, "s1")

	got, err := svc.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.SessionID, got.SessionID)
	assert.Equal(t, created.ParticipantType, got.ParticipantType)
	assert.Equal(t, created.ParticipantID, got.ParticipantID)
	assert.Equal(t, created.Domain, got.Domain)
	assert.Equal(t, created.Version, got.Version)
	assert.Equal(t, created.SessionMode, got.SessionMode)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.Payloads)
	assert.Empty(t, got.Payloads)
}

func TestGetSessionMissing(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.GetSession(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateSessionValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	tests := []struct {
		name    string
		session domain.Session
	}{
		{"missing id", domain.Session{ParticipantType: domain.ParticipantTypeRequester, SessionMode: domain.SessionModeManual}},
		{"unknown participant type", domain.Session{SessionID: "s1", ParticipantType: "GATEWAY", SessionMode: domain.SessionModeManual}},
		{"missing mode", domain.Session{SessionID: "s1", ParticipantType: domain.ParticipantTypeRequester}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSession(ctx, &tt.session)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}

	exists, err := svc.SessionExists(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateSessionDuplicate(t *testing.T) {
	svc := newTestService(t)
	createSession(t, svc, "s1")

	_, err := svc.CreateSession(context.Background(), &domain.Session{
		SessionID:       "s1",
		ParticipantType: domain.ParticipantTypeResponder,
		SessionMode:     domain.SessionModeManual,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := svc.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipantTypeRequester, got.ParticipantType)
}

func TestUpdateSessionChangesOnlyRevisableFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created := createSession(t, svc, "s1")
	_, err := svc.CreatePayloadForSession(ctx, "s1", &domain.Payload{PayloadID: "p1"})
	require.NoError(t, err)

	updated, err := svc.UpdateSession(ctx, "s1", domain.SessionPatch{
		ParticipantType: domain.ParticipantTypeResponder,
		ParticipantID:   "bpp.example.com",
		Domain:          "mobility",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipantTypeResponder, updated.ParticipantType)
	assert.Equal(t, "bpp.example.com", updated.ParticipantID)
	assert.Equal(t, "mobility", updated.Domain)

	got, err := svc.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, created.Version, got.Version)
	assert.Equal(t, created.SessionMode, got.SessionMode)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Payloads, 1)
	assert.Equal(t, "p1", got.Payloads[0].PayloadID)
}

func TestUpdateSessionErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	createSession(t, svc, "s1")

	_, err := svc.UpdateSession(ctx, "nope", domain.SessionPatch{ParticipantType: domain.ParticipantTypeRequester})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.UpdateSession(ctx, "s1", domain.SessionPatch{ParticipantType: "BG"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.UpdateSession(ctx, "", domain.SessionPatch{ParticipantType: domain.ParticipantTypeRequester})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	createSession(t, svc, "s1")
	payload, err := svc.CreatePayloadForSession(ctx, "s1", &domain.Payload{PayloadID: "p1"})
	require.NoError(t, err)

	deleted, err := svc.DeleteSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteSession(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := svc.GetPayload(ctx, payload.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.SessionID)
}

func TestListSessions(t *testing.T) {
	svc := newTestService(t)
	createSession(t, svc, "s1")
	createSession(t, svc, "s2")

	sessions, err := svc.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestGetPayloadDetails(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	createSession(t, svc, "s1")

	first, err := svc.CreatePayloadForSession(ctx, "s1", &domain.Payload{
		PayloadID:   "p1",
		Action:      domain.ActionSearch,
		JSONRequest: domain.Document{"q": "coffee"},
	})
	require.NoError(t, err)
	second, err := svc.CreatePayloadForSession(ctx, "s1", &domain.Payload{
		PayloadID: "p2",
		Action:    domain.ActionOnSearch,
	})
	require.NoError(t, err)

	details, err := svc.GetPayloadDetails(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, details, 2)

	stored := []*domain.Payload{first, second}
	for i, d := range details {
		assert.Equal(t, domain.DefaultDomain, d.Domain)
		assert.Equal(t, domain.ParticipantTypeRequester, d.ParticipantType)

		row, err := svc.GetPayload(ctx, stored[i].ID)
		require.NoError(t, err)
		assert.Equal(t, row.ID, d.Payload.ID)
		assert.Equal(t, row.PayloadID, d.Payload.PayloadID)
		assert.Equal(t, row.Action, d.Payload.Action)
		assert.Equal(t, row.JSONRequest, d.Payload.JSONRequest)
		assert.Equal(t, row.SessionID, d.Payload.SessionID)
	}
}

func TestGetPayloadDetailsErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.GetPayloadDetails(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.GetPayloadDetails(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	createSession(t, svc, "empty")
	details, err := svc.GetPayloadDetails(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, details)
	assert.Empty(t, details)
}
