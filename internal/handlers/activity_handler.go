package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/services"
)

// ActivityHandler exposes the audit trail read endpoints
type ActivityHandler struct {
	activities *services.ActivityService
	log        *zap.Logger
}

func NewActivityHandler(activities *services.ActivityService, log *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, log: log}
}

func parseLimit(r *http.Request, fallback int64) int64 {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	if parsed > 500 {
		return 500
	}
	return parsed
}

// ListLeadActivities returns a lead's activity history, newest first
func (h *ActivityHandler) ListLeadActivities(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	activities, err := h.activities.ListByLead(r.Context(), caller, mux.Vars(r)["id"], parseLimit(r, 100))
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    activities,
	})
}

// ListTenantActivities returns the tenant-wide activity feed
func (h *ActivityHandler) ListTenantActivities(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	activities, err := h.activities.ListByTenant(r.Context(), caller, parseLimit(r, 100))
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    activities,
	})
}

// ListUserActivities returns one user's activity history
func (h *ActivityHandler) ListUserActivities(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	activities, err := h.activities.ListByUser(r.Context(), caller, mux.Vars(r)["userId"], parseLimit(r, 100))
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    activities,
	})
}

// ActivityStats returns per-day activity counts for dashboards
func (h *ActivityHandler) ActivityStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 365 {
			days = parsed
		}
	}

	stats, err := h.activities.AggregateByDay(r.Context(), caller, days)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}
