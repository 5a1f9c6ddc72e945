package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/models"
)

func TestAppendActivityValidation(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")
	scope := mustScope(t, admin)

	_, err := f.activitySvc.Append(context.Background(), scope, ActivityInput{
		ActorID:  "tenant-a",
		Metadata: map[string]interface{}{},
	})
	assert.True(t, apperrors.IsValidation(err), "type is required")

	_, err = f.activitySvc.Append(context.Background(), scope, ActivityInput{
		Type:     models.ActivityCreate,
		Metadata: map[string]interface{}{},
	})
	assert.True(t, apperrors.IsValidation(err), "actor is required")

	_, err = f.activitySvc.Append(context.Background(), scope, ActivityInput{
		Type:    models.ActivityCreate,
		ActorID: "tenant-a",
	})
	assert.True(t, apperrors.IsValidation(err), "metadata must be an object")
}

func TestAppendActivity(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")
	scope := mustScope(t, admin)

	activity, err := f.activitySvc.Append(context.Background(), scope, ActivityInput{
		Type:     models.ActivityImport,
		ActorID:  "tenant-a",
		Details:  "Imported 3 leads",
		Metadata: map[string]interface{}{"count": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", activity.AdminID)
	assert.False(t, activity.Timestamp.IsZero())
}

// failingActivityRepo rejects every insert, simulating an audit store outage.
type failingActivityRepo struct {
	*fakeActivityRepo
}

func (r *failingActivityRepo) Insert(context.Context, *models.Activity) error {
	return assert.AnError
}

func TestMutationsSurviveAuditFailure(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")
	f.seedAgent("agent-1", "tenant-a")
	f.seedLead("lead-1", "tenant-a", "l1@example.com", nil)

	broken := NewActivityService(&failingActivityRepo{f.activities}, nil, zap.NewNop())

	assignments := NewAssignmentService(f.leadRepo, f.userRepo, broken, zap.NewNop())
	lead, err := assignments.Assign(context.Background(), admin, "lead-1", "agent-1")
	require.NoError(t, err, "an audit write failure must not fail the mutation")
	require.NotNil(t, lead.AssignedTo)
	assert.Equal(t, "agent-1", *lead.AssignedTo)

	leads := NewLeadService(f.leadRepo, f.commentRepo, f.reminders, broken,
		NewLeadIDGenerator(f.leadRepo), f.limiter, zap.NewNop())
	created, err := leads.Create(context.Background(), admin, CreateLeadInput{
		Email: "new@example.com",
	})
	require.NoError(t, err)
	persisted, err := f.leadRepo.FindByID(context.Background(), mustScope(t, admin), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", persisted.Email)

	assert.Empty(t, f.tenantActivities("tenant-a"), "nothing reached the trail")
}

func TestActivityListingsAreScoped(t *testing.T) {
	f := newFixture()
	adminA := f.seedAdmin("tenant-a")
	adminB := f.seedAdmin("tenant-b")

	_, err := f.activitySvc.Append(context.Background(), mustScope(t, adminA), ActivityInput{
		Type:     models.ActivityCreate,
		ActorID:  "tenant-a",
		Metadata: map[string]interface{}{},
	})
	require.NoError(t, err)

	acts, err := f.activitySvc.ListByTenant(context.Background(), adminB, 100)
	require.NoError(t, err)
	assert.Empty(t, acts, "tenant B never sees tenant A's trail")

	acts, err = f.activitySvc.ListByTenant(context.Background(), adminA, 100)
	require.NoError(t, err)
	assert.Len(t, acts, 1)
}

func TestAggregateByDay(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")
	scope := mustScope(t, admin)

	for i := 0; i < 3; i++ {
		_, err := f.activitySvc.Append(context.Background(), scope, ActivityInput{
			Type:     models.ActivityStatusChange,
			ActorID:  "tenant-a",
			Metadata: map[string]interface{}{},
		})
		require.NoError(t, err)
	}
	_, err := f.activitySvc.Append(context.Background(), scope, ActivityInput{
		Type:     models.ActivityComment,
		ActorID:  "tenant-a",
		Metadata: map[string]interface{}{},
	})
	require.NoError(t, err)

	stats, err := f.activitySvc.AggregateByDay(context.Background(), admin, 7)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	counts := map[models.ActivityType]int64{}
	for _, s := range stats {
		counts[s.Type] = s.Count
	}
	assert.Equal(t, int64(3), counts[models.ActivityStatusChange])
	assert.Equal(t, int64(1), counts[models.ActivityComment])
}
