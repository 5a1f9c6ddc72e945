package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
)

// How many times Create regenerates a leadId after the unique index reports a
// duplicate. The generator's existence probe is racy; the index is not.
const leadIDInsertRetries = 3

// CreateLeadInput are the caller-supplied lead fields. LeadID may be provided
// by an import; zero means "generate one".
type CreateLeadInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Country   string
	Status    string
	Source    string
	Comments  string
	LeadID    int
}

// LeadService owns lead CRUD within a tenant scope.
type LeadService struct {
	leads      LeadRepository
	comments   CommentRepository
	reminders  ReminderRepository
	activities *ActivityService
	idgen      *LeadIDGenerator
	limiter    *UsageLimiter
	log        *zap.Logger
	now        func() time.Time
}

func NewLeadService(
	leads LeadRepository,
	comments CommentRepository,
	reminders ReminderRepository,
	activities *ActivityService,
	idgen *LeadIDGenerator,
	limiter *UsageLimiter,
	log *zap.Logger,
) *LeadService {
	return &LeadService{
		leads:      leads,
		comments:   comments,
		reminders:  reminders,
		activities: activities,
		idgen:      idgen,
		limiter:    limiter,
		log:        log,
		now:        time.Now,
	}
}

// Create adds a lead to the caller's tenant. Email must be unique within the
// tenant; the numeric leadId is unique globally.
func (s *LeadService) Create(ctx context.Context, caller tenant.Caller, input CreateLeadInput) (*models.Lead, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, apperrors.Validationf("lead email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperrors.Validationf("invalid lead email %q", input.Email)
	}

	if err := s.limiter.CheckCanCreateLead(ctx, scope); err != nil {
		return nil, err
	}

	// Fast-path duplicate check; the (email, adminId) unique index is the
	// final authority under concurrent creates.
	exists, err := s.leads.EmailExists(ctx, scope, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflictf("lead with email %s already exists", email)
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.LeadStatusNew
	}

	lead := &models.Lead{
		LeadID:    input.LeadID,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		Country:   strings.TrimSpace(input.Country),
		Status:    status,
		Source:    strings.TrimSpace(input.Source),
		Comments:  input.Comments,
		AdminID:   scope.TenantID(),
		CreatedBy: caller.UserID,
	}

	generated := lead.LeadID == 0
	if generated {
		if lead.LeadID, err = s.idgen.Next(ctx); err != nil {
			return nil, err
		}
	}

	for attempt := 0; ; attempt++ {
		err = s.leads.Insert(ctx, lead)
		if err == nil {
			break
		}
		// A duplicate leadId means the generator lost the existence-check
		// race; regenerate and retry. A supplied leadId is not regenerated.
		if generated && attempt < leadIDInsertRetries && strings.Contains(err.Error(), "leadId") && apperrors.IsConflict(err) {
			if lead.LeadID, err = s.idgen.Next(ctx); err != nil {
				return nil, err
			}
			continue
		}
		return nil, err
	}

	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityLeadCreated,
		ActorID: caller.UserID,
		LeadRef: lead.ID,
		Details: "Lead created: " + lead.Email,
		Metadata: map[string]interface{}{
			"leadId": lead.LeadID,
			"email":  lead.Email,
			"source": lead.Source,
		},
	})

	return lead, nil
}

func (s *LeadService) Get(ctx context.Context, caller tenant.Caller, id string) (*models.Lead, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	return s.leads.FindByID(ctx, scope, id)
}

func (s *LeadService) List(ctx context.Context, caller tenant.Caller, q LeadQuery) ([]*models.Lead, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	return s.leads.List(ctx, scope, q)
}

// Update applies a partial patch. Fields not present in the patch are never
// touched, so a client sending only {status} cannot clobber anything else.
func (s *LeadService) Update(ctx context.Context, caller tenant.Caller, id string, patch models.LeadPatch) (*models.Lead, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, apperrors.Validationf("empty patch")
	}
	if patch.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*patch.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, apperrors.Validationf("invalid lead email %q", *patch.Email)
		}
		patch.Email = &email
	}

	lead, err := s.leads.Update(ctx, scope, id, patch)
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(patch.Fields()))
	for f := range patch.Fields() {
		fields = append(fields, f)
	}
	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityUpdate,
		ActorID: caller.UserID,
		LeadRef: lead.ID,
		Details: "Lead updated",
		Metadata: map[string]interface{}{
			"updatedFields": fields,
		},
	})

	return lead, nil
}

// ChangeStatus moves a lead to a new pipeline status. Setting the current
// status again is a no-op and is not logged.
func (s *LeadService) ChangeStatus(ctx context.Context, caller tenant.Caller, id, newStatus string) (*models.Lead, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}

	newStatus = strings.TrimSpace(newStatus)
	if newStatus == "" {
		return nil, apperrors.Validationf("status is required")
	}

	lead, err := s.leads.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == newStatus {
		return lead, nil
	}
	oldStatus := lead.Status

	updated, err := s.leads.Update(ctx, scope, id, models.LeadPatch{Status: &newStatus})
	if err != nil {
		return nil, err
	}

	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityStatusChange,
		ActorID: caller.UserID,
		LeadRef: updated.ID,
		Details: "Status changed from " + oldStatus + " to " + newStatus,
		Metadata: map[string]interface{}{
			"oldStatus": oldStatus,
			"newStatus": newStatus,
		},
	})

	return updated, nil
}

// BulkChangeStatus applies ChangeStatus to each id, continuing past per-lead
// failures.
func (s *LeadService) BulkChangeStatus(ctx context.Context, caller tenant.Caller, ids []string, newStatus string) (BulkResult, error) {
	if _, err := tenant.Resolve(caller); err != nil {
		return BulkResult{}, err
	}
	if strings.TrimSpace(newStatus) == "" {
		return BulkResult{}, apperrors.Validationf("status is required")
	}

	var result BulkResult
	for _, id := range ids {
		lead, err := s.Get(ctx, caller, id)
		if err != nil {
			result.Failures = append(result.Failures, BulkFailure{LeadID: id, Reason: err.Error()})
			continue
		}
		if lead.Status == newStatus {
			continue
		}
		if _, err := s.ChangeStatus(ctx, caller, id, newStatus); err != nil {
			result.Failures = append(result.Failures, BulkFailure{LeadID: id, Reason: err.Error()})
			continue
		}
		result.ModifiedCount++
	}
	return result, nil
}

// BulkDelete removes leads and cascades their dependent documents. Dependents
// (activities, comments, reminders) go first so a failure mid-way leaves
// orphaned audit rows at worst, never leads pointing at deleted children.
func (s *LeadService) BulkDelete(ctx context.Context, caller tenant.Caller, ids []string) (int64, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, apperrors.Validationf("no lead ids supplied")
	}

	if _, err := s.activities.repo.DeleteByLeads(ctx, scope, ids); err != nil {
		return 0, err
	}
	if _, err := s.comments.DeleteByLeads(ctx, scope, ids); err != nil {
		return 0, err
	}
	if _, err := s.reminders.DeleteByLeads(ctx, scope, ids); err != nil {
		return 0, err
	}

	deleted, err := s.leads.DeleteMany(ctx, scope, ids)
	if err != nil {
		return 0, err
	}

	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityDelete,
		ActorID: caller.UserID,
		Details: "Leads deleted",
		Metadata: map[string]interface{}{
			"deletedCount": deleted,
			"leadIds":      ids,
		},
	})

	return deleted, nil
}

// CheckEmailExists reports whether an email is taken within the caller's
// tenant. Used by clients for pre-submit validation.
func (s *LeadService) CheckEmailExists(ctx context.Context, caller tenant.Caller, email string) (bool, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return false, err
	}
	return s.leads.EmailExists(ctx, scope, strings.TrimSpace(strings.ToLower(email)))
}
