package handlers

import (
	"net/http"

	"ledgerlink/internal/api/dto"
)

// HealthHandler responds to load balancer health checks.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "healthy"})
}
