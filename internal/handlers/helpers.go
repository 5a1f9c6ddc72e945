package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/middleware"
	"github.com/white/lead-management/internal/tenant"
)

// errorBody is the JSON error envelope returned by every endpoint.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError maps a service error to its HTTP status and machine code.
// Internal errors are logged with detail but returned opaque.
func respondWithError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		message = "Internal server error"
	}
	respondWithJSON(w, status, errorBody{
		Error: errorDetail{
			Code:    apperrors.Kind(err),
			Message: message,
		},
	})
}

// callerFromRequest extracts the authenticated caller placed by the JWT
// middleware. Absence means the route was wired without auth, which is a
// server bug, not a client one.
func callerFromRequest(w http.ResponseWriter, r *http.Request) (tenant.Caller, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		respondWithJSON(w, http.StatusUnauthorized, errorBody{
			Error: errorDetail{
				Code:    "UNAUTHORIZED",
				Message: "Authentication required",
			},
		})
		return tenant.Caller{}, false
	}
	return caller, true
}

// decodeBody parses a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorBody{
			Error: errorDetail{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid JSON body",
			},
		})
		return false
	}
	return true
}
