package handler

import (
	"net/http"
	"time"

	"tcsgo-engine/pkg/response"
)

// Handler serves status and health endpoints.
type Handler struct {
	startedAt time.Time
}

// New creates a health handler.
func New() *Handler {
	return &Handler{startedAt: time.Now()}
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"service": "tcsgo-engine",
		"status":  "ok",
		"uptime":  time.Since(h.startedAt).String(),
	})
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "healthy"})
}
