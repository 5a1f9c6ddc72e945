package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/services"
)

// AssignmentHandler handles lead assignment endpoints
type AssignmentHandler struct {
	assignments *services.AssignmentService
	log         *zap.Logger
}

func NewAssignmentHandler(assignments *services.AssignmentService, log *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, log: log}
}

type assignRequest struct {
	UserID string `json:"userId"`
}

type bulkAssignRequest struct {
	LeadIDs []string `json:"leadIds"`
	UserID  string   `json:"userId,omitempty"`
}

// AssignLead routes one lead to a user
func (h *AssignmentHandler) AssignLead(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req assignRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lead, err := h.assignments.Assign(r.Context(), caller, mux.Vars(r)["id"], req.UserID)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lead,
	})
}

// UnassignLead clears a lead's assignee
func (h *AssignmentHandler) UnassignLead(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	lead, err := h.assignments.Unassign(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lead,
	})
}

// BulkAssign routes many leads to one user
func (h *AssignmentHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req bulkAssignRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.assignments.BulkAssign(r.Context(), caller, req.LeadIDs, req.UserID)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// BulkUnassign clears the assignee on many leads
func (h *AssignmentHandler) BulkUnassign(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req bulkAssignRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.assignments.BulkUnassign(r.Context(), caller, req.LeadIDs)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}
