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

// dueGrace widens the due check so a reminder firing within the poller's tick
// is reported in the current sweep instead of the next one.
const dueGrace = 30 * time.Second

// CreateReminderInput describes a follow-up to schedule on a lead.
type CreateReminderInput struct {
	LeadRef      string
	AssignedTo   string
	Note         string
	ReminderDate time.Time
	ReminderTime string // HH:mm
}

// ReminderService schedules and resolves follow-ups on leads.
type ReminderService struct {
	reminders  ReminderRepository
	leads      LeadRepository
	users      UserRepository
	activities *ActivityService
	log        *zap.Logger
	now        func() time.Time
}

func NewReminderService(reminders ReminderRepository, leads LeadRepository, users UserRepository, activities *ActivityService, log *zap.Logger) *ReminderService {
	return &ReminderService{
		reminders:  reminders,
		leads:      leads,
		users:      users,
		activities: activities,
		log:        log,
		now:        time.Now,
	}
}

// Create schedules a reminder. The lead and the assignee must exist in the
// caller's tenant, and the time must be a valid HH:mm wall-clock value.
func (s *ReminderService) Create(ctx context.Context, caller tenant.Caller, input CreateReminderInput) (*models.Reminder, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	if input.ReminderDate.IsZero() {
		return nil, apperrors.Validationf("reminder date is required")
	}

	if _, err := s.leads.FindByID(ctx, scope, input.LeadRef); err != nil {
		return nil, err
	}

	assignee := input.AssignedTo
	if assignee == "" {
		assignee = caller.UserID
	}
	if _, err := s.users.FindTenantUser(ctx, scope, assignee); err != nil {
		return nil, err
	}

	now := s.now()
	reminder := &models.Reminder{
		LeadRef:      input.LeadRef,
		AssignedTo:   assignee,
		AdminID:      scope.TenantID(),
		Note:         strings.TrimSpace(input.Note),
		ReminderDate: input.ReminderDate,
		ReminderTime: input.ReminderTime,
		Status:       models.ReminderPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// Validate HH:mm before persisting; a bad time would poison every Due sweep.
	if _, err := reminder.DueAt(); err != nil {
		return nil, apperrors.Validationf("invalid reminder time %q", input.ReminderTime)
	}

	if err := s.reminders.Insert(ctx, reminder); err != nil {
		return nil, err
	}

	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityReminderSet,
		ActorID: caller.UserID,
		LeadRef: input.LeadRef,
		Details: "Reminder set for " + reminder.ReminderDate.Format("2006-01-02") + " " + reminder.ReminderTime,
		Metadata: map[string]interface{}{
			"reminderId":   reminder.ID,
			"assignedTo":   assignee,
			"reminderDate": reminder.ReminderDate.Format("2006-01-02"),
			"reminderTime": reminder.ReminderTime,
		},
	})

	return reminder, nil
}

// Due returns the caller's reminders that have fired as of asOf (with a small
// grace window). Agents see only their own; admins see the whole tenant.
// A SNOOZED reminder is due once its snoozedUntil has passed.
func (s *ReminderService) Due(ctx context.Context, caller tenant.Caller, asOf time.Time) ([]*models.Reminder, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}

	assignee := ""
	if caller.Role == models.RoleAgent {
		assignee = caller.UserID
	}

	open, err := s.reminders.ListOpen(ctx, scope, assignee)
	if err != nil {
		return nil, err
	}

	cutoff := asOf.Add(dueGrace)
	due := make([]*models.Reminder, 0, len(open))
	for _, r := range open {
		switch r.Status {
		case models.ReminderPending:
			at, err := r.DueAt()
			if err != nil {
				s.log.Warn("skipping reminder with unparseable time",
					zap.String("reminder", r.ID), zap.Error(err))
				continue
			}
			if !at.After(cutoff) {
				due = append(due, r)
			}
		case models.ReminderSnoozed:
			if r.SnoozedUntil != nil && !r.SnoozedUntil.After(cutoff) {
				due = append(due, r)
			}
		}
	}
	return due, nil
}

// Snooze pushes a pending or already-snoozed reminder to a later instant.
func (s *ReminderService) Snooze(ctx context.Context, caller tenant.Caller, id string, until time.Time) (*models.Reminder, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	if !until.After(s.now()) {
		return nil, apperrors.Validationf("snooze time must be in the future")
	}

	existing, err := s.reminders.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.ReminderPending && existing.Status != models.ReminderSnoozed {
		return nil, apperrors.InvalidStatef("reminder %s is %s and cannot be snoozed", id, existing.Status)
	}

	return s.reminders.SetStatus(ctx, scope, id, models.ReminderSnoozed, &until)
}

// Complete marks a reminder done and logs it.
func (s *ReminderService) Complete(ctx context.Context, caller tenant.Caller, id string) (*models.Reminder, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}

	existing, err := s.reminders.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.ReminderCompleted || existing.Status == models.ReminderDismissed {
		return nil, apperrors.InvalidStatef("reminder %s is already %s", id, existing.Status)
	}

	updated, err := s.reminders.SetStatus(ctx, scope, id, models.ReminderCompleted, nil)
	if err != nil {
		return nil, err
	}

	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityReminderCompleted,
		ActorID: caller.UserID,
		LeadRef: updated.LeadRef,
		Details: "Reminder completed",
		Metadata: map[string]interface{}{
			"reminderId": updated.ID,
		},
	})

	return updated, nil
}

// Dismiss closes a reminder without completing it. Not logged; dismissal is
// housekeeping, not lead activity.
func (s *ReminderService) Dismiss(ctx context.Context, caller tenant.Caller, id string) (*models.Reminder, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}

	existing, err := s.reminders.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.ReminderCompleted || existing.Status == models.ReminderDismissed {
		return nil, apperrors.InvalidStatef("reminder %s is already %s", id, existing.Status)
	}

	return s.reminders.SetStatus(ctx, scope, id, models.ReminderDismissed, nil)
}
