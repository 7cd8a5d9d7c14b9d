package httpapi

import "net/http"

// HandleHealth returns API liveness
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	h.logger.Debug().Msg("health check")
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}
