package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
	"github.com/white/lead-management/internal/utils"
)

type contextKey string

const callerKey contextKey = "caller"

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// ContextWithCaller attaches an authenticated caller. Exported for tests that
// exercise handlers without the middleware.
func ContextWithCaller(ctx context.Context, caller tenant.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns the authenticated caller set by JWTAuth.
func CallerFromContext(ctx context.Context) (tenant.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(tenant.Caller)
	return caller, ok
}

// JWTAuth is a middleware that validates JWT access tokens and puts the
// resulting caller identity into the request context.
func JWTAuth(jwtService *utils.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondWithJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error: ErrorDetail{
						Code:    "MISSING_TOKEN",
						Message: "Authorization header is required",
					},
				})
				return
			}

			// check for Bearer token format
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondWithJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error: ErrorDetail{
						Code:    "INVALID_TOKEN_FORMAT",
						Message: "Authorization header must be in format: Bearer <token>",
					},
				})
				return
			}

			claims, err := jwtService.ValidateAccessToken(parts[1])
			if err != nil {
				respondWithJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error: ErrorDetail{
						Code:    "INVALID_TOKEN",
						Message: "Invalid or expired access token",
					},
				})
				return
			}

			if !models.IsValidRole(claims.Role) {
				respondWithJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error: ErrorDetail{
						Code:    "INVALID_TOKEN",
						Message: "Invalid role in token",
					},
				})
				return
			}

			caller := tenant.Caller{
				UserID:   claims.UserID,
				Role:     models.Role(claims.Role),
				TenantID: claims.TenantID,
			}

			next.ServeHTTP(w, r.WithContext(ContextWithCaller(r.Context(), caller)))
		})
	}
}

// RequireRole gates a route to specific roles. Runs after JWTAuth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok {
				respondWithJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error: ErrorDetail{
						Code:    "MISSING_TOKEN",
						Message: "Authentication required",
					},
				})
				return
			}
			for _, role := range roles {
				if caller.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondWithJSON(w, http.StatusForbidden, ErrorResponse{
				Error: ErrorDetail{
					Code:    "PERMISSION_DENIED",
					Message: "You don't have permission to perform this action",
				},
			})
		})
	}
}
