package repositories

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/white/lead-management/internal/apperrors"
)

// Domain "not found" errors. Each wraps apperrors.ErrNotFound so services and
// handlers can branch on the taxonomy kind without importing this package.
var (
	ErrLeadNotFound     = fmt.Errorf("lead %w", apperrors.ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", apperrors.ErrNotFound)
	ErrCommentNotFound  = fmt.Errorf("comment %w", apperrors.ErrNotFound)
	ErrActivityNotFound = fmt.Errorf("activity %w", apperrors.ErrNotFound)
	ErrReminderNotFound = fmt.Errorf("reminder %w", apperrors.ErrNotFound)
)

// Uniqueness violations surfaced as conflicts.
var (
	ErrDuplicateEmail  = fmt.Errorf("%w: email already exists for tenant", apperrors.ErrConflict)
	ErrDuplicateLeadID = fmt.Errorf("%w: leadId already taken", apperrors.ErrConflict)
)

// WrapNotFound converts mongo.ErrNoDocuments into a domain not-found error.
// A scoped query that matches nothing is reported identically whether the
// document does not exist or belongs to another tenant.
func WrapNotFound(err error, domainErr error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domainErr
	}
	return err
}

// IsDuplicateKey checks if an error is a storage-level unique index violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return mongo.IsDuplicateKeyError(err)
}
