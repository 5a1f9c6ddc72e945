package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/services"
	"github.com/white/lead-management/internal/tenant"
)

// UserHandler handles agent management endpoints
type UserHandler struct {
	users   *services.UserService
	limiter *services.UsageLimiter
	log     *zap.Logger
}

func NewUserHandler(users *services.UserService, limiter *services.UsageLimiter, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, limiter: limiter, log: log}
}

type createAgentRequest struct {
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Permissions []string `json:"permissions"`
}

// CreateAgent provisions an agent in the caller's tenant
func (h *UserHandler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req createAgentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	agent, err := h.users.CreateAgent(r.Context(), caller, services.CreateAgentInput{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Permissions: req.Permissions,
	})
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    agent,
	})
}

// ListAgents returns the tenant's agents
func (h *UserHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	agents, err := h.users.ListAgents(r.Context(), caller)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    agents,
	})
}

// GetUser resolves a user visible in the caller's tenant
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    user,
	})
}

// ActivateAgent re-enables a deactivated agent
func (h *UserHandler) ActivateAgent(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.users.Activate(r.Context(), caller, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeactivateAgent disables an agent
func (h *UserHandler) DeactivateAgent(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.users.Deactivate(r.Context(), caller, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Usage reports the tenant's remaining lead and user allowances
func (h *UserHandler) Usage(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	scope, err := tenant.Resolve(caller)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	leadAllowance, err := h.limiter.CheckCanImport(r.Context(), scope)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	userAllowance, err := h.limiter.CheckCanAddUser(r.Context(), scope)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"leads": leadAllowance,
			"users": userAllowance,
		},
	})
}
