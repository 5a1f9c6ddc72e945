package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
)

func TestCreateAgent(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")

	agent, err := f.userSvc.CreateAgent(context.Background(), admin, CreateAgentInput{
		Email:     "New.Agent@Example.com",
		FirstName: "New",
		LastName:  "Agent",
	})
	require.NoError(t, err)
	assert.Equal(t, "new.agent@example.com", agent.Email)
	assert.Equal(t, models.RoleAgent, agent.Role)
	assert.Equal(t, models.UserActive, agent.Status)
	assert.Equal(t, "tenant-a", agent.AdminID, "agent carries its tenant")
	assert.Equal(t, "tenant-a", agent.CreatedBy)

	acts := f.tenantActivities("tenant-a")
	require.Len(t, acts, 1)
	assert.Equal(t, models.ActivityCreate, acts[0].Type)
}

func TestCreateAgentRequiresAdmin(t *testing.T) {
	f := newFixture()
	f.seedAdmin("tenant-a")
	agent := f.seedAgent("agent-1", "tenant-a")

	_, err := f.userSvc.CreateAgent(context.Background(), agent, CreateAgentInput{
		Email: "minion@example.com",
	})
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestCreateAgentQuota(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")
	// zero means "use the configured default", which is 1 user
	f.store.users["tenant-a"].MaxUsers = 0

	_, err := f.userSvc.CreateAgent(context.Background(), admin, CreateAgentInput{Email: "a1@example.com"})
	require.NoError(t, err)

	_, err = f.userSvc.CreateAgent(context.Background(), admin, CreateAgentInput{Email: "a2@example.com"})
	assert.True(t, apperrors.IsQuotaExceeded(err))
}

func TestAgentStatusLifecycle(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")
	agent := f.seedAgent("agent-1", "tenant-a")

	require.NoError(t, f.userSvc.Deactivate(context.Background(), admin, "agent-1"))
	u, err := f.userSvc.Get(context.Background(), admin, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, models.UserInactive, u.Status)

	// agents cannot flip status
	err = f.userSvc.Activate(context.Background(), agent, "agent-1")
	assert.True(t, apperrors.IsUnauthorized(err))

	require.NoError(t, f.userSvc.Activate(context.Background(), admin, "agent-1"))
	u, err = f.userSvc.Get(context.Background(), admin, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, u.Status)
}

func TestSetStatusRejectsSuperAdmin(t *testing.T) {
	f := newFixture()
	f.seedAdmin("tenant-a")
	f.seedAgent("agent-1", "tenant-a")

	super := tenant.Caller{UserID: "root", Role: models.RoleSuperAdmin}
	err := f.userSvc.Deactivate(context.Background(), super, "agent-1")
	assert.True(t, apperrors.IsUnauthorized(err), "agent management belongs to the tenant admin")
}

func TestSetStatusOnAdminRejected(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")

	err := f.userSvc.Deactivate(context.Background(), admin, "tenant-a")
	assert.True(t, apperrors.IsInvalidState(err), "the tenant admin is not an agent")
}

func TestListAgentsScoped(t *testing.T) {
	f := newFixture()
	adminA := f.seedAdmin("tenant-a")
	f.seedAdmin("tenant-b")
	f.seedAgent("agent-1", "tenant-a")
	f.seedAgent("agent-2", "tenant-b")

	agents, err := f.userSvc.ListAgents(context.Background(), adminA)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "agent-1", agents[0].ID)
}
