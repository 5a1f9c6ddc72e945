package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/services"
)

// TenantHandler handles tenant lifecycle endpoints
type TenantHandler struct {
	teardown *services.TeardownService
	log      *zap.Logger
}

func NewTenantHandler(teardown *services.TeardownService, log *zap.Logger) *TenantHandler {
	return &TenantHandler{teardown: teardown, log: log}
}

// DeleteTenant removes a tenant admin and everything it owns
func (h *TenantHandler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.teardown.DeleteTenant(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}
