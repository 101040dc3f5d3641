package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/recorder/internal/domain"
)

// CreateSessionRequest is the request to create a session.
type CreateSessionRequest struct {
	SessionID       string                 `json:"sessionId"`
	ParticipantType domain.ParticipantType `json:"participantType"`
	ParticipantID   string                 `json:"participantId"`
	Domain          string                 `json:"domain"`
	Version         string                 `json:"version"`
	SessionMode     domain.SessionMode     `json:"sessionMode"`
}

// AttachPayloadRequest is a payload plus a reference to the session it belongs to.
// The nested sessionDetails.sessionId wins over a top-level sessionId.
type AttachPayloadRequest struct {
	PayloadRequest
	SessionDetails *struct {
		SessionID string `json:"sessionId"`
	} `json:"sessionDetails"`
}

func (r AttachPayloadRequest) sessionRef() string {
	if r.SessionDetails != nil && r.SessionDetails.SessionID != "" {
		return r.SessionDetails.SessionID
	}
	return r.SessionID
}

// ListSessions lists all sessions without their payloads.
// GET /api/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	sessions, err := h.service.ListSessions(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, sessions)
}

// GetSession gets a session with its payloads.
// GET /api/sessions/:sessionId
func (h *Handler) GetSession(c echo.Context) error {
	sessionID := c.Param("sessionId")

	session, err := h.service.GetSession(c.Request().Context(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}
	if session == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, session)
}

// CheckSession reports whether a session exists as a bare JSON boolean.
// GET /api/sessions/check/:sessionId
func (h *Handler) CheckSession(c echo.Context) error {
	exists, err := h.service.SessionExists(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, exists)
}

// CreateSession creates a session.
// POST /api/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := bindValidated(c, createSessionSchema, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	session, err := h.service.CreateSession(c.Request().Context(), &domain.Session{
		SessionID:       req.SessionID,
		ParticipantType: req.ParticipantType,
		ParticipantID:   req.ParticipantID,
		Domain:          req.Domain,
		Version:         req.Version,
		SessionMode:     req.SessionMode,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

// CreatePayloadForSession stores a payload linked to the session it names.
// POST /api/sessions/payload
func (h *Handler) CreatePayloadForSession(c echo.Context) error {
	var req AttachPayloadRequest
	if err := bindValidated(c, attachPayloadSchema, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	payload, err := h.service.CreatePayloadForSession(c.Request().Context(), req.sessionRef(), req.toPayload())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, payload)
}

// GetPayloadDetails lists the session's payloads with session context.
// GET /api/sessions/payload/:sessionId
func (h *Handler) GetPayloadDetails(c echo.Context) error {
	details, err := h.service.GetPayloadDetails(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

// UpdateSession overwrites a session's participant type, participant id and domain.
// PUT /api/sessions/:sessionId
func (h *Handler) UpdateSession(c echo.Context) error {
	var patch domain.SessionPatch
	if err := bindValidated(c, updateSessionSchema, &patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	session, err := h.service.UpdateSession(c.Request().Context(), c.Param("sessionId"), patch)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// DeleteSession deletes a session. Its payloads are kept.
// DELETE /api/sessions/:sessionId
func (h *Handler) DeleteSession(c echo.Context) error {
	deleted, err := h.service.DeleteSession(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return errorResponse(c, err)
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
