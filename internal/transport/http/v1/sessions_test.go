package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/recorder/internal/domain"
	"github.com/xiaot623/gogo/recorder/internal/logging"
	"github.com/xiaot623/gogo/recorder/internal/repository"
	"github.com/xiaot623/gogo/recorder/internal/service"
	"github.com/xiaot623/gogo/recorder/tests/helpers"
)

func newTestHandler(t *testing.T) (*Handler, repository.Store) {
	t.Helper()
	db := helpers.NewTestSQLiteStore(t)
	svc := service.New(db, logging.Nop())
	return NewHandler(svc), db
}

// newTestRouter registers every route so path matching is exercised as well.
func newTestRouter(t *testing.T) (*echo.Echo, repository.Store) {
	t.Helper()
	h, db := newTestHandler(t)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, db
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func seedSession(t *testing.T, db repository.Store, id, dom string) {
	t.Helper()
	err := db.CreateSession(context.Background(), &domain.Session{
		SessionID:       id,
		ParticipantType: domain.ParticipantTypeResponder,
		Domain:          dom,
		SessionMode:     domain.SessionModeManual,
	})
	require.NoError(t, err)
}

func TestCreateSessionValidation(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	bodies := []string{
		`{"participantType":"BAP","sessionMode":"MANUAL"}`,
		`{"sessionId":"","participantType":"BAP","sessionMode":"MANUAL"}`,
		`{"sessionId":"s1","participantType":"GATEWAY","sessionMode":"MANUAL"}`,
		`{"sessionId":"s1","participantType":"BAP","sessionMode":"SOMETIMES"}`,
		`not json`,
	}
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.CreateSession(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "invalid request body")
	}
}

func TestCreateSessionSuccess(t *testing.T) {
	e := echo.New()
	h, db := newTestHandler(t)

	body := `{"sessionId":"s1","participantType":"BAP","participantId":"bap.example.com","domain":"retail","version":"1.2.0","sessionMode":"AUTOMATION"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.CreateSession(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	got, err := db.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ParticipantTypeRequester, got.ParticipantType)
	assert.Equal(t, domain.SessionModeAutomated, got.SessionMode)
	assert.Equal(t, "retail", got.Domain)

	router := echo.New()
	h.RegisterRoutes(router)
	rec = doRequest(router, http.MethodPost, "/api/sessions", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetSession(t *testing.T) {
	e, db := newTestRouter(t)
	seedSession(t, db, "s1", "")

	rec := doRequest(e, http.MethodGet, "/api/sessions/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "s1", body["sessionId"])
	assert.Equal(t, "BPP", body["participantType"])
	assert.Equal(t, "MANUAL", body["sessionMode"])
	require.Contains(t, body, "payloads")
	assert.Equal(t, []any{}, body["payloads"])

	rec = doRequest(e, http.MethodGet, "/api/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSessions(t *testing.T) {
	e, db := newTestRouter(t)

	rec := doRequest(e, http.MethodGet, "/api/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	seedSession(t, db, "s1", "")
	seedSession(t, db, "s2", "")

	rec = doRequest(e, http.MethodGet, "/api/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sessions []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	require.Len(t, sessions, 2)
	// Listing does not load payloads.
	assert.Nil(t, sessions[0]["payloads"])
}

func TestCheckSession(t *testing.T) {
	e, db := newTestRouter(t)
	seedSession(t, db, "s1", "")

	rec := doRequest(e, http.MethodGet, "/api/sessions/check/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `true`, rec.Body.String())

	rec = doRequest(e, http.MethodGet, "/api/sessions/check/s2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `false`, rec.Body.String())
}

func TestCreatePayloadForSession(t *testing.T) {
	e, db := newTestRouter(t)
	seedSession(t, db, "s1", "")

	rec := doRequest(e, http.MethodPost, "/api/sessions/payload",
		`{"payloadId":"p1","action":"select","jsonRequest":{"a":1},"sessionDetails":{"sessionId":"s1"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payload domain.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotZero(t, payload.ID)
	assert.Equal(t, "s1", payload.SessionID)

	rec = doRequest(e, http.MethodPost, "/api/sessions/payload", `{"payloadId":"p2","sessionId":"s1"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, "top-level sessionId is accepted")

	rec = doRequest(e, http.MethodPost, "/api/sessions/payload", `{"payloadId":"p3","sessionDetails":{"sessionId":"ghost"}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/sessions/payload", `{"payloadId":"p4"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/sessions/payload", `{"payloadId":"p1","sessionDetails":{"sessionId":"s1"}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	all, err := db.ListPayloads(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetPayloadDetails(t *testing.T) {
	e, db := newTestRouter(t)
	seedSession(t, db, "s1", "")
	ctx := context.Background()
	require.NoError(t, db.AttachPayload(ctx, "s1", &domain.Payload{PayloadID: "p1"}))
	require.NoError(t, db.AttachPayload(ctx, "s1", &domain.Payload{PayloadID: "p2"}))

	rec := doRequest(e, http.MethodGet, "/api/sessions/payload/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var details []domain.PayloadDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	require.Len(t, details, 2)
	assert.Equal(t, domain.DefaultDomain, details[0].Domain)
	assert.Equal(t, domain.ParticipantTypeResponder, details[0].ParticipantType)
	assert.Equal(t, "p1", details[0].Payload.PayloadID)
	assert.Equal(t, "p2", details[1].Payload.PayloadID)

	rec = doRequest(e, http.MethodGet, "/api/sessions/payload/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateSession(t *testing.T) {
	e, db := newTestRouter(t)
	seedSession(t, db, "s1", "retail")

	rec := doRequest(e, http.MethodPut, "/api/sessions/s1", `{"participantType":"BAP","participantId":"np-1","domain":"mobility"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := db.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipantTypeRequester, got.ParticipantType)
	assert.Equal(t, "np-1", got.ParticipantID)
	assert.Equal(t, "mobility", got.Domain)

	rec = doRequest(e, http.MethodPut, "/api/sessions/ghost", `{"participantType":"BAP"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodPut, "/api/sessions/s1", `{"participantType":"XYZ"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	e, db := newTestRouter(t)
	seedSession(t, db, "s1", "")

	rec := doRequest(e, http.MethodDelete, "/api/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(e, http.MethodDelete, "/api/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	e, db := newTestRouter(t)

	rec := doRequest(e, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "up", body["database"].(map[string]any)["status"])

	require.NoError(t, db.Close())
	rec = doRequest(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
