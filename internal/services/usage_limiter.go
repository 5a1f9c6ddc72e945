package services

import (
	"context"
	"time"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
)

// Unlimited is the plan-limit sentinel meaning "no cap".
const Unlimited = -1

// QuotaConfig carries the trial defaults applied when an admin record has no
// explicit plan limits.
type QuotaConfig struct {
	TrialDays       int
	DefaultMaxLeads int
	DefaultMaxUsers int
}

// Allowance reports whether one more entity may be created and how much room
// is left. Remaining is Unlimited for uncapped plans.
type Allowance struct {
	Allowed   bool  `json:"allowed"`
	Remaining int64 `json:"remaining"`
}

// UsageLimiter gates lead and user creation on the tenant admin's plan.
type UsageLimiter struct {
	users UserRepository
	leads LeadRepository
	cfg   QuotaConfig
	now   func() time.Time
}

func NewUsageLimiter(users UserRepository, leads LeadRepository, cfg QuotaConfig) *UsageLimiter {
	return &UsageLimiter{
		users: users,
		leads: leads,
		cfg:   cfg,
		now:   time.Now,
	}
}

// CheckCanImport reports whether the tenant may add more leads and how many.
// Called by the bulk-import path before attempting a batch so imports fail
// fast instead of partially applying.
func (l *UsageLimiter) CheckCanImport(ctx context.Context, scope tenant.Scope) (Allowance, error) {
	admin, err := l.users.FindByID(ctx, scope.TenantID())
	if err != nil {
		return Allowance{}, err
	}
	if err := l.gate(admin); err != nil {
		return Allowance{}, err
	}

	maxLeads := admin.MaxLeads
	if maxLeads == 0 {
		maxLeads = l.cfg.DefaultMaxLeads
	}
	if maxLeads == Unlimited {
		return Allowance{Allowed: true, Remaining: Unlimited}, nil
	}

	count, err := l.leads.Count(ctx, scope)
	if err != nil {
		return Allowance{}, err
	}

	remaining := int64(maxLeads) - count
	if remaining < 0 {
		remaining = 0
	}
	return Allowance{Allowed: remaining > 0, Remaining: remaining}, nil
}

// CheckCanCreateLead is the single-lead gate used by LeadService.Create.
func (l *UsageLimiter) CheckCanCreateLead(ctx context.Context, scope tenant.Scope) error {
	allowance, err := l.CheckCanImport(ctx, scope)
	if err != nil {
		return err
	}
	if !allowance.Allowed {
		return apperrors.QuotaExceededf("lead limit reached for tenant %s", scope.TenantID())
	}
	return nil
}

// CheckCanAddUser reports whether the tenant may add another agent.
func (l *UsageLimiter) CheckCanAddUser(ctx context.Context, scope tenant.Scope) (Allowance, error) {
	admin, err := l.users.FindByID(ctx, scope.TenantID())
	if err != nil {
		return Allowance{}, err
	}
	if err := l.gate(admin); err != nil {
		return Allowance{}, err
	}

	maxUsers := admin.MaxUsers
	if maxUsers == 0 {
		maxUsers = l.cfg.DefaultMaxUsers
	}
	if maxUsers == Unlimited {
		return Allowance{Allowed: true, Remaining: Unlimited}, nil
	}

	count, err := l.users.CountAgents(ctx, scope)
	if err != nil {
		return Allowance{}, err
	}

	remaining := int64(maxUsers) - count
	if remaining < 0 {
		remaining = 0
	}
	return Allowance{Allowed: remaining > 0, Remaining: remaining}, nil
}

// gate blocks tenants whose trial expired without a subscription. An admin
// record without an explicit trial window gets the configured TrialDays,
// counted from account creation.
func (l *UsageLimiter) gate(admin *models.User) error {
	if admin.Subscribed {
		return nil
	}
	ends := admin.TrialEndsAt
	if ends == nil {
		t := admin.CreatedAt.AddDate(0, 0, l.cfg.TrialDays)
		ends = &t
	}
	if l.now().Before(*ends) {
		return nil
	}
	return apperrors.QuotaExceededf("trial expired for tenant %s", admin.ID)
}
