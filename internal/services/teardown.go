package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
)

// TeardownResult reports how many documents a tenant teardown removed.
type TeardownResult struct {
	Activities int64 `json:"activities"`
	Comments   int64 `json:"comments"`
	Reminders  int64 `json:"reminders"`
	Leads      int64 `json:"leads"`
	Agents     int64 `json:"agents"`
}

// TeardownService removes a tenant and everything it owns.
type TeardownService struct {
	users      UserRepository
	leads      LeadRepository
	activities ActivityRepository
	comments   CommentRepository
	reminders  ReminderRepository
	log        *zap.Logger
}

func NewTeardownService(
	users UserRepository,
	leads LeadRepository,
	activities ActivityRepository,
	comments CommentRepository,
	reminders ReminderRepository,
	log *zap.Logger,
) *TeardownService {
	return &TeardownService{
		users:      users,
		leads:      leads,
		activities: activities,
		comments:   comments,
		reminders:  reminders,
		log:        log,
	}
}

// DeleteTenant removes a tenant admin and all data under it. A SUPER_ADMIN
// may delete any tenant; an ADMIN may only delete itself. Dependent documents
// go first so an interrupted teardown never leaves an admin whose children
// were already orphaned: worst case is leftover child documents under a
// still-present admin, which a retry cleans up.
func (s *TeardownService) DeleteTenant(ctx context.Context, caller tenant.Caller, tenantID string) (TeardownResult, error) {
	var scope tenant.Scope
	var err error
	switch {
	case caller.Role == models.RoleSuperAdmin:
		scope, err = tenant.ForTenant(caller, tenantID)
	case caller.Role == models.RoleAdmin && caller.UserID == tenantID:
		scope, err = tenant.Resolve(caller)
	default:
		return TeardownResult{}, apperrors.Unauthorizedf("not allowed to delete tenant %s", tenantID)
	}
	if err != nil {
		return TeardownResult{}, err
	}

	admin, err := s.users.FindByID(ctx, tenantID)
	if err != nil {
		return TeardownResult{}, err
	}
	if admin.Role != models.RoleAdmin {
		return TeardownResult{}, apperrors.InvalidStatef("user %s is not a tenant admin", tenantID)
	}

	var result TeardownResult
	if result.Activities, err = s.activities.DeleteByTenant(ctx, scope); err != nil {
		return result, err
	}
	if result.Comments, err = s.comments.DeleteByTenant(ctx, scope); err != nil {
		return result, err
	}
	if result.Reminders, err = s.reminders.DeleteByTenant(ctx, scope); err != nil {
		return result, err
	}
	if result.Leads, err = s.leads.DeleteByTenant(ctx, scope); err != nil {
		return result, err
	}
	if result.Agents, err = s.users.DeleteAgents(ctx, scope); err != nil {
		return result, err
	}
	if err = s.users.Delete(ctx, tenantID); err != nil {
		return result, err
	}

	s.log.Info("tenant deleted",
		zap.String("tenant", tenantID),
		zap.String("deletedBy", caller.UserID),
		zap.Int64("leads", result.Leads),
		zap.Int64("agents", result.Agents),
		zap.Int64("activities", result.Activities))

	return result, nil
}
