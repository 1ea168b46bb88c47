package handler

import (
	"net/http"
	"time"

	"github.com/openoutcry/pitbot/internal/domain"
)

// HealthService exposes the state the health endpoint reports.
type HealthService interface {
	Session() domain.Session
	Snapshot() (domain.PriceSnapshot, bool, bool)
}

// HealthHandler serves the health check endpoint.
type HealthHandler struct {
	svc HealthService
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(svc HealthService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// healthResponse is the health check payload.
type healthResponse struct {
	Status    string    `json:"status"`
	Session   string    `json:"session"`
	Degraded  bool      `json:"degraded"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthCheck reports process liveness plus session and feed state so an
// operator dashboard gets everything in one probe.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	sess := h.svc.Session()
	_, _, degraded := h.svc.Snapshot()

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Session:   string(sess.Status),
		Degraded:  degraded,
		Timestamp: time.Now().UTC(),
	})
}
