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

// CreateAgentInput describes a new agent account for the caller's tenant.
type CreateAgentInput struct {
	Email       string
	FirstName   string
	LastName    string
	Permissions []string
}

// UserService manages agent accounts within a tenant. Admin provisioning and
// authentication are handled by the identity service; this only covers the
// agents an admin manages.
type UserService struct {
	users      UserRepository
	activities *ActivityService
	limiter    *UsageLimiter
	log        *zap.Logger
	now        func() time.Time
}

func NewUserService(users UserRepository, activities *ActivityService, limiter *UsageLimiter, log *zap.Logger) *UserService {
	return &UserService{
		users:      users,
		activities: activities,
		limiter:    limiter,
		log:        log,
		now:        time.Now,
	}
}

// CreateAgent provisions an agent in the caller's tenant. Only an ADMIN may
// create agents, and the plan's user cap applies.
func (s *UserService) CreateAgent(ctx context.Context, caller tenant.Caller, input CreateAgentInput) (*models.User, error) {
	if caller.Role != models.RoleAdmin {
		return nil, apperrors.Unauthorizedf("only an admin can create agents")
	}
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.Validationf("invalid agent email %q", input.Email)
	}

	allowance, err := s.limiter.CheckCanAddUser(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !allowance.Allowed {
		return nil, apperrors.QuotaExceededf("user limit reached for tenant %s", scope.TenantID())
	}

	now := s.now()
	agent := &models.User{
		Email:       email,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Role:        models.RoleAgent,
		Status:      models.UserActive,
		Permissions: input.Permissions,
		// Both references are mandatory on agents: AdminID scopes every query,
		// CreatedBy is the audit origin.
		AdminID:   scope.TenantID(),
		CreatedBy: caller.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Insert(ctx, agent); err != nil {
		return nil, err
	}

	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityCreate,
		ActorID: caller.UserID,
		Details: "Agent created: " + agent.Email,
		Metadata: map[string]interface{}{
			"userId": agent.ID,
			"email":  agent.Email,
			"role":   string(agent.Role),
		},
	})

	return agent, nil
}

// Activate re-enables a deactivated agent.
func (s *UserService) Activate(ctx context.Context, caller tenant.Caller, userID string) error {
	return s.setStatus(ctx, caller, userID, models.UserActive)
}

// Deactivate disables an agent. Deactivated agents keep their lead
// assignments but cannot receive new ones.
func (s *UserService) Deactivate(ctx context.Context, caller tenant.Caller, userID string) error {
	return s.setStatus(ctx, caller, userID, models.UserInactive)
}

func (s *UserService) setStatus(ctx context.Context, caller tenant.Caller, userID string, status models.UserStatus) error {
	if caller.Role != models.RoleAdmin {
		return apperrors.Unauthorizedf("only the tenant admin can change agent status")
	}
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return err
	}

	target, err := s.users.FindTenantUser(ctx, scope, userID)
	if err != nil {
		return err
	}
	if target.Role != models.RoleAgent {
		return apperrors.InvalidStatef("user %s is not an agent", userID)
	}
	if target.Status == status {
		return nil
	}

	if err := s.users.SetStatus(ctx, scope, userID, status); err != nil {
		return err
	}

	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityUpdate,
		ActorID: caller.UserID,
		Details: "Agent status changed to " + string(status),
		Metadata: map[string]interface{}{
			"userId": userID,
			"status": string(status),
		},
	})

	return nil
}

// ListAgents returns the tenant's agents.
func (s *UserService) ListAgents(ctx context.Context, caller tenant.Caller) ([]*models.User, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	return s.users.ListAgents(ctx, scope)
}

// Get resolves a user visible in the caller's tenant.
func (s *UserService) Get(ctx context.Context, caller tenant.Caller, userID string) (*models.User, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	return s.users.FindTenantUser(ctx, scope, userID)
}
