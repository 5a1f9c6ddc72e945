package services

import (
	"context"
	"time"

	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
)

// Repository interfaces are defined here, where they are consumed. The Mongo
// implementations live in internal/repositories; tests use in-memory fakes.
// Every method touching tenant-owned data takes a tenant.Scope, which can only
// be obtained through tenant.Resolve.

// LeadQuery narrows a lead listing.
type LeadQuery struct {
	Status     string
	AssignedTo string // filter by assignee id
	Unassigned bool   // only leads with no assignee
	Limit      int64
	Offset     int64
}

type LeadRepository interface {
	// Insert persists a new lead. Returns a conflict error when the
	// (email, adminId) pair or the global leadId is already taken.
	Insert(ctx context.Context, lead *models.Lead) error
	FindByID(ctx context.Context, scope tenant.Scope, id string) (*models.Lead, error)
	List(ctx context.Context, scope tenant.Scope, q LeadQuery) ([]*models.Lead, error)
	// Update applies only the fields present in the patch.
	Update(ctx context.Context, scope tenant.Scope, id string, patch models.LeadPatch) (*models.Lead, error)
	// SetAssignment atomically sets or clears the assignee of one lead.
	SetAssignment(ctx context.Context, scope tenant.Scope, id string, assignee *string, at time.Time) (*models.Lead, error)
	DeleteMany(ctx context.Context, scope tenant.Scope, ids []string) (int64, error)
	// ListIDs returns every lead id in the scope; used by cascading deletes
	// to remove dependent documents first.
	ListIDs(ctx context.Context, scope tenant.Scope) ([]string, error)
	DeleteByTenant(ctx context.Context, scope tenant.Scope) (int64, error)
	EmailExists(ctx context.Context, scope tenant.Scope, email string) (bool, error)
	// LeadIDExists checks the global numeric id space; deliberately unscoped
	// because leadId uniqueness is system-wide.
	LeadIDExists(ctx context.Context, leadID int) (bool, error)
	Count(ctx context.Context, scope tenant.Scope) (int64, error)
}

type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	// FindByID is the unscoped root lookup used to load a tenant's admin
	// record (the tenant root itself) for quota and auth decisions.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindTenantUser resolves a user visible inside the scope: the tenant's
	// admin or one of its agents.
	FindTenantUser(ctx context.Context, scope tenant.Scope, id string) (*models.User, error)
	ListAgents(ctx context.Context, scope tenant.Scope) ([]*models.User, error)
	CountAgents(ctx context.Context, scope tenant.Scope) (int64, error)
	SetStatus(ctx context.Context, scope tenant.Scope, id string, status models.UserStatus) error
	DeleteAgents(ctx context.Context, scope tenant.Scope) (int64, error)
	Delete(ctx context.Context, id string) error
}

type ActivityRepository interface {
	Insert(ctx context.Context, activity *models.Activity) error
	ListByLead(ctx context.Context, scope tenant.Scope, leadRef string, limit int64) ([]*models.Activity, error)
	ListByTenant(ctx context.Context, scope tenant.Scope, limit int64) ([]*models.Activity, error)
	ListByUser(ctx context.Context, scope tenant.Scope, userID string, limit int64) ([]*models.Activity, error)
	AggregateByDay(ctx context.Context, scope tenant.Scope, days int) ([]models.ActivityDayCount, error)
	// DeleteByLeads and DeleteByTenant are the only sanctioned mutations of
	// the append-only trail: cascades for lead bulk-delete and tenant teardown.
	DeleteByLeads(ctx context.Context, scope tenant.Scope, leadRefs []string) (int64, error)
	DeleteByTenant(ctx context.Context, scope tenant.Scope) (int64, error)
}

type CommentRepository interface {
	Insert(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, scope tenant.Scope, leadRef, commentID string) (*models.Comment, error)
	ListByLead(ctx context.Context, scope tenant.Scope, leadRef string) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, scope tenant.Scope, leadRef, commentID, content string, at time.Time) (*models.Comment, error)
	Delete(ctx context.Context, scope tenant.Scope, leadRef, commentID string) error
	DeleteByLeads(ctx context.Context, scope tenant.Scope, leadRefs []string) (int64, error)
	DeleteByTenant(ctx context.Context, scope tenant.Scope) (int64, error)
}

type ReminderRepository interface {
	Insert(ctx context.Context, reminder *models.Reminder) error
	FindByID(ctx context.Context, scope tenant.Scope, id string) (*models.Reminder, error)
	// ListOpen returns PENDING and SNOOZED reminders, optionally narrowed to
	// one assignee.
	ListOpen(ctx context.Context, scope tenant.Scope, assignedTo string) ([]*models.Reminder, error)
	SetStatus(ctx context.Context, scope tenant.Scope, id string, status models.ReminderStatus, snoozedUntil *time.Time) (*models.Reminder, error)
	DeleteByLeads(ctx context.Context, scope tenant.Scope, leadRefs []string) (int64, error)
	DeleteByTenant(ctx context.Context, scope tenant.Scope) (int64, error)
}
