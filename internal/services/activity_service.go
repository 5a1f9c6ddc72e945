package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/events"
	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
)

// ActivityInput describes one audit record to append.
type ActivityInput struct {
	Type     models.ActivityType
	ActorID  string
	LeadRef  string
	Details  string
	Metadata map[string]interface{}
}

// ActivityService is the append-only audit trail. Every mutation in the lead,
// assignment, comment, user and reminder services emits exactly one record
// through it.
type ActivityService struct {
	repo      ActivityRepository
	publisher *events.AuditPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewActivityService(repo ActivityRepository, publisher *events.AuditPublisher, log *zap.Logger) *ActivityService {
	return &ActivityService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Append validates and persists one activity record, then mirrors it to the
// audit event stream.
func (s *ActivityService) Append(ctx context.Context, scope tenant.Scope, input ActivityInput) (*models.Activity, error) {
	if input.Type == "" {
		return nil, apperrors.Validationf("activity type is required")
	}
	if input.ActorID == "" {
		return nil, apperrors.Validationf("activity actor is required")
	}
	// metadata must be a structured object, never a bare string/primitive
	if input.Metadata == nil {
		return nil, apperrors.Validationf("activity metadata must be an object")
	}

	activity := &models.Activity{
		Type:      input.Type,
		UserID:    input.ActorID,
		AdminID:   scope.TenantID(),
		LeadRef:   input.LeadRef,
		Details:   input.Details,
		Metadata:  input.Metadata,
		Timestamp: s.now(),
	}

	if err := s.repo.Insert(ctx, activity); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishActivity(activity)
	}

	return activity, nil
}

// Record appends best-effort. It is called after a primary mutation has
// already committed: an audit write failure is logged and swallowed, never
// allowed to fail the request. This is the one and only place the
// log-and-continue policy applies.
func (s *ActivityService) Record(ctx context.Context, scope tenant.Scope, input ActivityInput) {
	if _, err := s.Append(ctx, scope, input); err != nil {
		s.log.Warn("activity append failed after primary mutation committed",
			zap.String("type", string(input.Type)),
			zap.String("tenant", scope.TenantID()),
			zap.String("lead", input.LeadRef),
			zap.Error(err))
	}
}

func (s *ActivityService) ListByLead(ctx context.Context, caller tenant.Caller, leadRef string, limit int64) ([]*models.Activity, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByLead(ctx, scope, leadRef, limit)
}

func (s *ActivityService) ListByTenant(ctx context.Context, caller tenant.Caller, limit int64) ([]*models.Activity, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByTenant(ctx, scope, limit)
}

func (s *ActivityService) ListByUser(ctx context.Context, caller tenant.Caller, userID string, limit int64) ([]*models.Activity, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, scope, userID, limit)
}

// AggregateByDay returns per-day activity counts by type for dashboards.
func (s *ActivityService) AggregateByDay(ctx context.Context, caller tenant.Caller, days int) ([]models.ActivityDayCount, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	return s.repo.AggregateByDay(ctx, scope, days)
}
