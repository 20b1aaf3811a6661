package handlers

import "net/http"

// HealthCheck handles GET /health: reports process liveness and, when a
// cleanup scheduler is wired, its last-sweep status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":             "ok",
		"stored_timetables":  h.store.Len(),
		"cache_enabled":      h.cacheClient != nil,
		"rate_limit_enabled": h.rateLimiter != nil,
	}
	if h.cleanup != nil {
		lastRun, running, healthy := h.cleanup.GetStatus()
		status["cleanup_last_run"] = lastRun
		status["cleanup_running"] = running
		status["cleanup_healthy"] = healthy
	}
	writeJSON(w, http.StatusOK, status)
}
