package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/recorder/internal/domain"
)

// PayloadRequest is the writable part of a payload.
type PayloadRequest struct {
	PayloadID     string          `json:"payloadId"`
	MessageID     string          `json:"messageId"`
	TransactionID string          `json:"transactionId"`
	FlowID        string          `json:"flowId"`
	Action        domain.Action   `json:"action"`
	ResponderID   string          `json:"responderId"`
	RequesterID   string          `json:"requesterId"`
	RequestHeader string          `json:"requestHeader"`
	JSONRequest   domain.Document `json:"jsonRequest"`
	JSONResponse  domain.Document `json:"jsonResponse"`
	HTTPStatus    *int            `json:"httpStatus"`
	SessionID     string          `json:"sessionId"`
}

func (r PayloadRequest) toPayload() *domain.Payload {
	return &domain.Payload{
		PayloadID:     r.PayloadID,
		MessageID:     r.MessageID,
		TransactionID: r.TransactionID,
		FlowID:        r.FlowID,
		Action:        r.Action,
		ResponderID:   r.ResponderID,
		RequesterID:   r.RequesterID,
		RequestHeader: r.RequestHeader,
		JSONRequest:   r.JSONRequest,
		JSONResponse:  r.JSONResponse,
		HTTPStatus:    r.HTTPStatus,
		SessionID:     r.SessionID,
	}
}

func (r PayloadRequest) toPatch() domain.PayloadPatch {
	return domain.PayloadPatch{
		MessageID:     r.MessageID,
		TransactionID: r.TransactionID,
		Action:        r.Action,
		PayloadID:     r.PayloadID,
		ResponderID:   r.ResponderID,
		RequesterID:   r.RequesterID,
		JSONRequest:   r.JSONRequest,
		JSONResponse:  r.JSONResponse,
		HTTPStatus:    r.HTTPStatus,
	}
}

// PayloadIDsRequest is the request to fetch payloads by their payload IDs.
type PayloadIDsRequest struct {
	PayloadIDs []string `json:"payload_ids"`
}

func payloadIDParam(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// ListPayloads lists all payloads.
// GET /payload
func (h *Handler) ListPayloads(c echo.Context) error {
	payloads, err := h.service.ListPayloads(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, payloads)
}

// GetPayload gets a payload by its numeric id.
// GET /payload/:id
func (h *Handler) GetPayload(c echo.Context) error {
	id, err := payloadIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload id"})
	}

	payload, err := h.service.GetPayload(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	if payload == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "payload not found"})
	}
	return c.JSON(http.StatusOK, payload)
}

// GetPayloadSession gets the session a payload belongs to.
// GET /payload/:id/session
func (h *Handler) GetPayloadSession(c echo.Context) error {
	id, err := payloadIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload id"})
	}

	session, err := h.service.GetPayloadSession(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// GetPayloadsByIDs gets the payloads matching a list of payload IDs.
// POST /payload/ids
func (h *Handler) GetPayloadsByIDs(c echo.Context) error {
	var req PayloadIDsRequest
	if err := bindValidated(c, payloadIDsSchema, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	payloads, err := h.service.GetPayloadsByPayloadIDs(c.Request().Context(), req.PayloadIDs)
	if err != nil {
		return errorResponse(c, err)
	}
	if payloads == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "payloads not found"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"payloads": payloads,
	})
}

// GetPayloadByTransactionID gets the first payload recorded for a transaction.
// GET /payload/transaction/:transactionId
func (h *Handler) GetPayloadByTransactionID(c echo.Context) error {
	payload, err := h.service.GetPayloadByTransactionID(c.Request().Context(), c.Param("transactionId"))
	if err != nil {
		return errorResponse(c, err)
	}
	if payload == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "payload not found"})
	}
	return c.JSON(http.StatusOK, payload)
}

// CreatePayload creates a payload.
// POST /payload
func (h *Handler) CreatePayload(c echo.Context) error {
	var req PayloadRequest
	if err := bindValidated(c, payloadSchema, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	payload, err := h.service.CreatePayload(c.Request().Context(), req.toPayload())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, payload)
}

// UpdatePayload overwrites a payload's revisable fields.
// PUT /payload/:id
func (h *Handler) UpdatePayload(c echo.Context) error {
	id, err := payloadIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload id"})
	}

	var req PayloadRequest
	if err := bindValidated(c, payloadSchema, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	payload, err := h.service.UpdatePayload(c.Request().Context(), id, req.toPatch())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, payload)
}

// DeletePayload deletes a payload. Its session is kept.
// DELETE /payload/:id
func (h *Handler) DeletePayload(c echo.Context) error {
	id, err := payloadIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload id"})
	}

	if err := h.service.DeletePayload(c.Request().Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Deleted successfully"})
}
