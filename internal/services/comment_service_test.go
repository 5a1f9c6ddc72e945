package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/models"
)

func TestAddComment(t *testing.T) {
	f := newFixture()
	f.seedAdmin("tenant-a")
	agent := f.seedAgent("agent-1", "tenant-a")
	lead := f.seedLead("lead-1", "tenant-a", "l1@example.com", nil)

	comment, err := f.commentSvc.Add(context.Background(), agent, lead.ID, "  call back monday  ")
	require.NoError(t, err)
	assert.Equal(t, "call back monday", comment.Content, "content is trimmed")
	assert.Equal(t, "agent-1", comment.CreatedBy.ID)
	assert.Equal(t, "tenant-a", comment.AdminID)

	acts := f.tenantActivities("tenant-a")
	require.Len(t, acts, 1)
	assert.Equal(t, models.ActivityComment, acts[0].Type)
	assert.Equal(t, "added", acts[0].Metadata["action"])
	assert.Equal(t, "call back monday", acts[0].Metadata["commentContent"])
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")
	lead := f.seedLead("lead-1", "tenant-a", "l1@example.com", nil)

	_, err := f.commentSvc.Add(context.Background(), admin, lead.ID, "   ")
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.commentSvc.Add(context.Background(), admin, "missing-lead", "hello")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEditCommentKeepsHistory(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")
	lead := f.seedLead("lead-1", "tenant-a", "l1@example.com", nil)

	comment, err := f.commentSvc.Add(context.Background(), admin, lead.ID, "first draft")
	require.NoError(t, err)

	updated, err := f.commentSvc.Edit(context.Background(), admin, lead.ID, comment.ID, "second draft")
	require.NoError(t, err)
	assert.Equal(t, "second draft", updated.Content)

	acts := f.tenantActivities("tenant-a")
	require.Len(t, acts, 2)
	edit := acts[1]
	assert.Equal(t, "edited", edit.Metadata["action"])
	assert.Equal(t, "second draft", edit.Metadata["commentContent"])
	assert.Equal(t, "first draft", edit.Metadata["oldCommentContent"])
}

func TestRemoveCommentKeepsContentInAudit(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")
	lead := f.seedLead("lead-1", "tenant-a", "l1@example.com", nil)

	comment, err := f.commentSvc.Add(context.Background(), admin, lead.ID, "to be removed")
	require.NoError(t, err)

	require.NoError(t, f.commentSvc.Remove(context.Background(), admin, lead.ID, comment.ID))

	comments, err := f.commentSvc.List(context.Background(), admin, lead.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	acts := f.tenantActivities("tenant-a")
	require.Len(t, acts, 2)
	del := acts[1]
	assert.Equal(t, "deleted", del.Metadata["action"])
	assert.Equal(t, "to be removed", del.Metadata["oldCommentContent"])
}

func TestCommentTenantIsolation(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin("tenant-a")
	adminB := f.seedAdmin("tenant-b")
	lead := f.seedLead("lead-1", "tenant-a", "l1@example.com", nil)

	comment, err := f.commentSvc.Add(context.Background(), admin, lead.ID, "private note")
	require.NoError(t, err)

	_, err = f.commentSvc.Edit(context.Background(), adminB, lead.ID, comment.ID, "hijack")
	assert.True(t, apperrors.IsNotFound(err))
	err = f.commentSvc.Remove(context.Background(), adminB, lead.ID, comment.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
