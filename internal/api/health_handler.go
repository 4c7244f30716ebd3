package api

import (
	"net/http"
	"time"

	"github.com/mfeller/metagen-api/internal/api/shared"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	version   string
	startedAt time.Time

	// analyzerConfigured gates readiness: without upstream credentials
	// the process is alive but cannot do useful work.
	analyzerConfigured bool
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(version string, analyzerConfigured bool) *HealthHandler {
	return &HealthHandler{
		version:            version,
		startedAt:          time.Now(),
		analyzerConfigured: analyzerConfigured,
	}
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
	})
}

// Ready handles GET /health/ready requests.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.analyzerConfigured {
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, HealthResponse{
			Status: "analyzer not configured",
		})
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "ready",
		Version: h.version,
	})
}
