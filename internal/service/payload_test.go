package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/recorder/internal/domain"
)

func TestCreatePayloadDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	original, err := svc.CreatePayload(ctx, &domain.Payload{PayloadID: "p1", MessageID: "m1"})
	require.NoError(t, err)

	_, err = svc.CreatePayload(ctx, &domain.Payload{PayloadID: "p1", MessageID: "m2"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := svc.GetPayload(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MessageID)
}

func TestCreatePayloadValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreatePayload(ctx, &domain.Payload{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.CreatePayload(ctx, &domain.Payload{PayloadID: "p1", Action: "teleport"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCreatePayloadForMissingSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreatePayloadForSession(ctx, "ghost", &domain.Payload{PayloadID: "p1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	payloads, err := svc.ListPayloads(ctx)
	require.NoError(t, err)
	assert.Empty(t, payloads)

	_, err = svc.CreatePayloadForSession(ctx, "", &domain.Payload{PayloadID: "p1"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetPayloadsByPayloadIDs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := svc.CreatePayload(ctx, &domain.Payload{PayloadID: id})
		require.NoError(t, err)
	}

	got, err := svc.GetPayloadsByPayloadIDs(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.PayloadID)
	}
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)

	got, err = svc.GetPayloadsByPayloadIDs(ctx, []string{"x1", "x2"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetPayloadByTransactionID(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreatePayload(ctx, &domain.Payload{PayloadID: "p1", TransactionID: "tx-1"})
	require.NoError(t, err)

	got, err := svc.GetPayloadByTransactionID(ctx, "tx-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.PayloadID)

	got, err = svc.GetPayloadByTransactionID(ctx, "tx-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdatePayload(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreatePayload(ctx, &domain.Payload{PayloadID: "p1"})
	require.NoError(t, err)
	status := 202

	updated, err := svc.UpdatePayload(ctx, created.ID, domain.PayloadPatch{
		PayloadID:     "p1",
		MessageID:     "m1",
		TransactionID: "t1",
		Action:        domain.ActionOnStatus,
		ResponderID:   "bpp",
		RequesterID:   "bap",
		JSONRequest:   domain.Document{"x": "y"},
		HTTPStatus:    &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", updated.MessageID)
	assert.Equal(t, domain.ActionOnStatus, updated.Action)
	assert.Equal(t, 202, *updated.HTTPStatus)

	_, err = svc.UpdatePayload(ctx, 999, domain.PayloadPatch{PayloadID: "p9"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.UpdatePayload(ctx, created.ID, domain.PayloadPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDeletePayloadMissing(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	kept, err := svc.CreatePayload(ctx, &domain.Payload{PayloadID: "keep"})
	require.NoError(t, err)

	err = svc.DeletePayload(ctx, kept.ID+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	payloads, err := svc.ListPayloads(ctx)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, "keep", payloads[0].PayloadID)
}

func TestPayloadDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreatePayload(ctx, &domain.Payload{
		PayloadID:   "p1",
		JSONRequest: domain.Document{"a": 1, "b": []any{1, 2, 3}},
	})
	require.NoError(t, err)

	got, err := svc.GetPayload(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Document{"a": float64(1), "b": []any{float64(1), float64(2), float64(3)}}, got.JSONRequest)
}

func TestGetPayloadSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	createSession(t, svc, "s1")

	linked, err := svc.CreatePayloadForSession(ctx, "s1", &domain.Payload{PayloadID: "p1"})
	require.NoError(t, err)
	loose, err := svc.CreatePayload(ctx, &domain.Payload{PayloadID: "p2"})
	require.NoError(t, err)

	session, err := svc.GetPayloadSession(ctx, linked.ID)
	require.NoError(t, err)
	assert.Equal(t, "s1", session.SessionID)

	_, err = svc.GetPayloadSession(ctx, loose.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetPayloadSession(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
