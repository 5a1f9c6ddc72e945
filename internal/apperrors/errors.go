// Package apperrors defines the error taxonomy shared by services, repositories
// and HTTP handlers. Every error leaving a service wraps exactly one of the
// sentinel kinds below so callers can branch with errors.Is and the HTTP layer
// can map to a stable machine-readable code.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel error kinds
var (
	// ErrValidation is returned for malformed input (empty comment,
	// non-object activity metadata, missing required fields).
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when an entity is absent or outside the
	// caller's tenant scope. The two cases are deliberately
	// indistinguishable so cross-tenant existence never leaks.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on uniqueness violations (duplicate email
	// within a tenant, duplicate leadId).
	ErrConflict = errors.New("conflict")

	// ErrInvalidState is returned when an operation does not apply to the
	// entity's current state (unassign when unassigned).
	ErrInvalidState = errors.New("invalid state")

	// ErrQuotaExceeded is returned when a tenant's plan limits block the
	// operation.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrUnauthorized is returned on role or tenant mismatch.
	ErrUnauthorized = errors.New("unauthorized")
)

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func InvalidStatef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func QuotaExceededf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrQuotaExceeded, fmt.Sprintf(format, args...))
}

func Unauthorizedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

func IsValidation(err error) bool    { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool      { return errors.Is(err, ErrConflict) }
func IsInvalidState(err error) bool  { return errors.Is(err, ErrInvalidState) }
func IsQuotaExceeded(err error) bool { return errors.Is(err, ErrQuotaExceeded) }
func IsUnauthorized(err error) bool  { return errors.Is(err, ErrUnauthorized) }

// Kind returns a stable machine-readable code for an error.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, ErrQuotaExceeded):
		return "QUOTA_EXCEEDED"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	default:
		return "INTERNAL_ERROR"
	}
}

// HTTPStatus maps an error kind to the status code the API layer responds with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict), errors.Is(err, ErrQuotaExceeded):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
