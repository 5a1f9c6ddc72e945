package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/services"
	"github.com/white/lead-management/internal/tenant"
)

// LeadHandler handles lead CRUD endpoints
type LeadHandler struct {
	leads    *services.LeadService
	resolver *services.AssigneeResolver
	log      *zap.Logger
}

func NewLeadHandler(leads *services.LeadService, resolver *services.AssigneeResolver, log *zap.Logger) *LeadHandler {
	return &LeadHandler{leads: leads, resolver: resolver, log: log}
}

type createLeadRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	Status    string `json:"status"`
	Source    string `json:"source"`
	Comments  string `json:"comments"`
	LeadID    int    `json:"leadId"`
}

type leadListResponse struct {
	Success bool              `json:"success"`
	Data    []models.LeadView `json:"data"`
	Limit   int64             `json:"limit"`
	Offset  int64             `json:"offset"`
}

type bulkIDsRequest struct {
	LeadIDs []string `json:"leadIds"`
	Status  string   `json:"status,omitempty"`
}

// CreateLead creates a new lead in the caller's tenant
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req createLeadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lead, err := h.leads.Create(r.Context(), caller, services.CreateLeadInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Country:   req.Country,
		Status:    req.Status,
		Source:    req.Source,
		Comments:  req.Comments,
		LeadID:    req.LeadID,
	})
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    lead,
	})
}

// GetLead returns one lead with its assignee snapshot
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	lead, err := h.leads.Get(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	scope, err := tenant.Resolve(caller)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	views := h.resolver.Populate(r.Context(), scope, []*models.Lead{lead})

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    views[0],
	})
}

// ListLeads lists leads with status/assignee filters and pagination
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	q := services.LeadQuery{
		Status:     r.URL.Query().Get("status"),
		AssignedTo: r.URL.Query().Get("assignedTo"),
		Unassigned: r.URL.Query().Get("unassigned") == "true",
		Limit:      50,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			q.Limit = parsed
			if q.Limit > 200 {
				q.Limit = 200
			}
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed >= 0 {
			q.Offset = parsed
		}
	}

	leads, err := h.leads.List(r.Context(), caller, q)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	scope, err := tenant.Resolve(caller)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, leadListResponse{
		Success: true,
		Data:    h.resolver.Populate(r.Context(), scope, leads),
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
}

// UpdateLead applies a partial update to one lead
func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var patch models.LeadPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	lead, err := h.leads.Update(r.Context(), caller, mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lead,
	})
}

// ChangeStatus moves a lead to a new pipeline status
func (h *LeadHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	lead, err := h.leads.ChangeStatus(r.Context(), caller, mux.Vars(r)["id"], req.Status)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lead,
	})
}

// BulkChangeStatus applies a status change to many leads
func (h *LeadHandler) BulkChangeStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req bulkIDsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.leads.BulkChangeStatus(r.Context(), caller, req.LeadIDs, req.Status)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// BulkDeleteLeads removes leads and their dependent documents
func (h *LeadHandler) BulkDeleteLeads(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req bulkIDsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deleted, err := h.leads.BulkDelete(r.Context(), caller, req.LeadIDs)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"deletedCount": deleted,
	})
}

// CheckEmail reports whether a lead email is already taken in the tenant
func (h *LeadHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	email := r.URL.Query().Get("email")
	exists, err := h.leads.CheckEmailExists(r.Context(), caller, email)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"exists":  exists,
	})
}
