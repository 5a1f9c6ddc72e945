package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
)

func seedTenantWithData(t *testing.T, f *fixture, tenantID string) {
	t.Helper()
	f.seedAdmin(tenantID)
	agent := f.seedAgent("agent-"+tenantID, tenantID)
	lead := f.seedLead("lead-"+tenantID, tenantID, tenantID+"@lead.example.com", nil)

	_, err := f.commentSvc.Add(context.Background(), agent, lead.ID, "note for "+tenantID)
	require.NoError(t, err)
	_, err = f.reminderSvc.Create(context.Background(), agent, CreateReminderInput{
		LeadRef:      lead.ID,
		ReminderDate: time.Now().AddDate(0, 0, 1),
		ReminderTime: "10:00",
	})
	require.NoError(t, err)
}

func TestDeleteTenantRemovesEverything(t *testing.T) {
	f := newFixture()
	seedTenantWithData(t, f, "tenant-a")
	seedTenantWithData(t, f, "tenant-b")

	super := tenant.Caller{UserID: "root", Role: models.RoleSuperAdmin}
	result, err := f.teardownSvc.DeleteTenant(context.Background(), super, "tenant-a")
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Leads)
	assert.Equal(t, int64(1), result.Agents)
	assert.Equal(t, int64(1), result.Comments)
	assert.Equal(t, int64(1), result.Reminders)
	assert.GreaterOrEqual(t, result.Activities, int64(2))

	_, err = f.userRepo.FindByID(context.Background(), "tenant-a")
	assert.True(t, apperrors.IsNotFound(err), "admin record is gone")
	_, err = f.userRepo.FindByID(context.Background(), "agent-tenant-a")
	assert.True(t, apperrors.IsNotFound(err), "agents are gone")

	// tenant B is untouched
	adminB := adminCaller("tenant-b")
	lead, err := f.leadSvc.Get(context.Background(), adminB, "lead-tenant-b")
	require.NoError(t, err)
	comments, err := f.commentSvc.List(context.Background(), adminB, lead.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	assert.NotEmpty(t, f.tenantActivities("tenant-b"))
}

func TestAdminMayDeleteOnlyItself(t *testing.T) {
	f := newFixture()
	seedTenantWithData(t, f, "tenant-a")
	seedTenantWithData(t, f, "tenant-b")

	adminA := adminCaller("tenant-a")

	_, err := f.teardownSvc.DeleteTenant(context.Background(), adminA, "tenant-b")
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = f.teardownSvc.DeleteTenant(context.Background(), adminA, "tenant-a")
	assert.NoError(t, err, "self-teardown is allowed")
}

func TestAgentCannotDeleteTenant(t *testing.T) {
	f := newFixture()
	seedTenantWithData(t, f, "tenant-a")

	agent := agentCaller("agent-tenant-a", "tenant-a")
	_, err := f.teardownSvc.DeleteTenant(context.Background(), agent, "tenant-a")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestDeleteTenantTargetMustBeAdmin(t *testing.T) {
	f := newFixture()
	seedTenantWithData(t, f, "tenant-a")

	super := tenant.Caller{UserID: "root", Role: models.RoleSuperAdmin}
	_, err := f.teardownSvc.DeleteTenant(context.Background(), super, "agent-tenant-a")
	assert.True(t, apperrors.IsInvalidState(err))
}
