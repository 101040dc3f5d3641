// Package v1 provides the HTTP handlers for sessions and payloads.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/recorder/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Session API
	sessions := e.Group("/api/sessions")
	sessions.GET("", h.ListSessions)
	sessions.POST("", h.CreateSession)
	sessions.GET("/check/:sessionId", h.CheckSession)
	sessions.POST("/payload", h.CreatePayloadForSession)
	sessions.GET("/payload/:sessionId", h.GetPayloadDetails)
	sessions.GET("/:sessionId", h.GetSession)
	sessions.PUT("/:sessionId", h.UpdateSession)
	sessions.DELETE("/:sessionId", h.DeleteSession)

	// Payload API
	payloads := e.Group("/payload")
	payloads.GET("", h.ListPayloads)
	payloads.POST("", h.CreatePayload)
	payloads.POST("/ids", h.GetPayloadsByIDs)
	payloads.GET("/transaction/:transactionId", h.GetPayloadByTransactionID)
	payloads.GET("/:id", h.GetPayload)
	payloads.GET("/:id/session", h.GetPayloadSession)
	payloads.PUT("/:id", h.UpdatePayload)
	payloads.DELETE("/:id", h.DeletePayload)

	e.GET("/health", h.Health)
}

// Health reports service and database health.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	health := h.service.Health(c.Request().Context())
	status := http.StatusOK
	if !health.Up() {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, health)
}
