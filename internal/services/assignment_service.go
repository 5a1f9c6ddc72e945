package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
)

// BulkFailure records one lead that a bulk operation could not touch.
type BulkFailure struct {
	LeadID string `json:"leadId"`
	Reason string `json:"reason"`
}

// BulkResult is the outcome of a bulk assign/unassign/status run.
// ModifiedCount counts only leads actually changed; skipped no-ops and
// failures are excluded.
type BulkResult struct {
	ModifiedCount int64         `json:"modifiedCount"`
	Failures      []BulkFailure `json:"failures,omitempty"`
}

// AssignmentService routes leads to agents. A lead has at most one assignee;
// assigning always replaces, never appends.
type AssignmentService struct {
	leads      LeadRepository
	users      UserRepository
	activities *ActivityService
	log        *zap.Logger
	now        func() time.Time
}

func NewAssignmentService(leads LeadRepository, users UserRepository, activities *ActivityService, log *zap.Logger) *AssignmentService {
	return &AssignmentService{
		leads:      leads,
		users:      users,
		activities: activities,
		log:        log,
		now:        time.Now,
	}
}

// Assign routes a lead to an active user in the same tenant. Assigning a lead
// to its current assignee is a silent no-op and is not logged.
func (s *AssignmentService) Assign(ctx context.Context, caller tenant.Caller, leadID, targetUserID string) (*models.Lead, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	if targetUserID == "" {
		return nil, apperrors.Validationf("target user is required")
	}

	lead, err := s.leads.FindByID(ctx, scope, leadID)
	if err != nil {
		return nil, err
	}
	if lead.AssignedTo != nil && *lead.AssignedTo == targetUserID {
		return lead, nil
	}

	target, err := s.resolveTarget(ctx, scope, targetUserID)
	if err != nil {
		return nil, err
	}

	var previous *models.Snapshot
	if lead.AssignedTo != nil {
		previous = s.snapshot(ctx, scope, *lead.AssignedTo)
	}

	updated, err := s.leads.SetAssignment(ctx, scope, leadID, &targetUserID, s.now())
	if err != nil {
		return nil, err
	}

	details := "Lead assigned to " + target.FullName()
	if previous != nil {
		details = "Lead reassigned to " + target.FullName()
	}
	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityAssignment,
		ActorID: caller.UserID,
		LeadRef: updated.ID,
		Details: details,
		Metadata: map[string]interface{}{
			"assignedFrom": snapshotOrNil(previous),
			"assignedTo":   target.Snapshot(),
			"assignedBy":   s.actorSnapshot(ctx, scope, caller.UserID),
		},
	})

	return updated, nil
}

// Unassign clears a lead's assignee. Unassigning a lead that has no assignee
// is an invalid-state error, and nothing is logged.
func (s *AssignmentService) Unassign(ctx context.Context, caller tenant.Caller, leadID string) (*models.Lead, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}

	lead, err := s.leads.FindByID(ctx, scope, leadID)
	if err != nil {
		return nil, err
	}
	if lead.AssignedTo == nil {
		return nil, apperrors.InvalidStatef("lead %s is not assigned", leadID)
	}
	previous := s.snapshot(ctx, scope, *lead.AssignedTo)

	updated, err := s.leads.SetAssignment(ctx, scope, leadID, nil, s.now())
	if err != nil {
		return nil, err
	}

	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityAssignment,
		ActorID: caller.UserID,
		LeadRef: updated.ID,
		Details: "Lead unassigned",
		Metadata: map[string]interface{}{
			"assignedFrom": snapshotOrNil(previous),
			"assignedTo":   nil,
			"assignedBy":   s.actorSnapshot(ctx, scope, caller.UserID),
		},
	})

	return updated, nil
}

// BulkAssign routes many leads to one user. The target is validated once up
// front; an invalid target fails the whole call. Per-lead failures (missing
// or cross-tenant ids) are collected, not fatal, and same-assignee leads are
// skipped silently.
func (s *AssignmentService) BulkAssign(ctx context.Context, caller tenant.Caller, leadIDs []string, targetUserID string) (BulkResult, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return BulkResult{}, err
	}
	if len(leadIDs) == 0 {
		return BulkResult{}, apperrors.Validationf("no lead ids supplied")
	}
	if _, err := s.resolveTarget(ctx, scope, targetUserID); err != nil {
		return BulkResult{}, err
	}

	var result BulkResult
	for _, id := range leadIDs {
		lead, err := s.leads.FindByID(ctx, scope, id)
		if err != nil {
			result.Failures = append(result.Failures, BulkFailure{LeadID: id, Reason: err.Error()})
			continue
		}
		if lead.AssignedTo != nil && *lead.AssignedTo == targetUserID {
			continue
		}
		if _, err := s.Assign(ctx, caller, id, targetUserID); err != nil {
			result.Failures = append(result.Failures, BulkFailure{LeadID: id, Reason: err.Error()})
			continue
		}
		result.ModifiedCount++
	}
	return result, nil
}

// BulkUnassign clears the assignee on many leads. Leads that are already
// unassigned are skipped without error; missing ids are collected as
// failures.
func (s *AssignmentService) BulkUnassign(ctx context.Context, caller tenant.Caller, leadIDs []string) (BulkResult, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return BulkResult{}, err
	}
	if len(leadIDs) == 0 {
		return BulkResult{}, apperrors.Validationf("no lead ids supplied")
	}

	var result BulkResult
	for _, id := range leadIDs {
		lead, err := s.leads.FindByID(ctx, scope, id)
		if err != nil {
			result.Failures = append(result.Failures, BulkFailure{LeadID: id, Reason: err.Error()})
			continue
		}
		if lead.AssignedTo == nil {
			continue
		}
		if _, err := s.Unassign(ctx, caller, id); err != nil {
			result.Failures = append(result.Failures, BulkFailure{LeadID: id, Reason: err.Error()})
			continue
		}
		result.ModifiedCount++
	}
	return result, nil
}

// resolveTarget loads the assignment target and checks it can receive leads.
func (s *AssignmentService) resolveTarget(ctx context.Context, scope tenant.Scope, userID string) (*models.User, error) {
	target, err := s.users.FindTenantUser(ctx, scope, userID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive() {
		return nil, apperrors.InvalidStatef("user %s is inactive and cannot receive leads", userID)
	}
	return target, nil
}

// snapshot fetches a display snapshot, falling back to a bare id when the
// referenced user no longer exists. Audit metadata must not break on
// dangling references.
func (s *AssignmentService) snapshot(ctx context.Context, scope tenant.Scope, userID string) *models.Snapshot {
	u, err := s.users.FindTenantUser(ctx, scope, userID)
	if err != nil {
		s.log.Debug("snapshot lookup failed, using bare id",
			zap.String("user", userID), zap.Error(err))
		return &models.Snapshot{ID: userID}
	}
	snap := u.Snapshot()
	return &snap
}

func (s *AssignmentService) actorSnapshot(ctx context.Context, scope tenant.Scope, userID string) models.Snapshot {
	return *s.snapshot(ctx, scope, userID)
}

// snapshotOrNil keeps "assignedFrom": null in metadata when there was no
// previous assignee, instead of a zero-valued object.
func snapshotOrNil(s *models.Snapshot) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
