package handler

import (
	"net/http"

	"garagehub/internal/cache"
	"garagehub/internal/transport/rest/middleware"
)

// StatsHandler handles dashboard counter endpoints
type StatsHandler struct {
	statsCache cache.StatsCache
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsCache cache.StatsCache) *StatsHandler {
	return &StatsHandler{statsCache: statsCache}
}

// Get handles GET /v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.statsCache.GetStats(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
