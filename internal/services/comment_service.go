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

// CommentService manages discussion threads attached to leads.
type CommentService struct {
	comments   CommentRepository
	leads      LeadRepository
	users      UserRepository
	activities *ActivityService
	log        *zap.Logger
	now        func() time.Time
}

func NewCommentService(comments CommentRepository, leads LeadRepository, users UserRepository, activities *ActivityService, log *zap.Logger) *CommentService {
	return &CommentService{
		comments:   comments,
		leads:      leads,
		users:      users,
		activities: activities,
		log:        log,
		now:        time.Now,
	}
}

// Add appends a comment to a lead's thread.
func (s *CommentService) Add(ctx context.Context, caller tenant.Caller, leadRef, content string) (*models.Comment, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validationf("comment content is required")
	}

	// Comments must hang off an existing lead in the caller's tenant.
	if _, err := s.leads.FindByID(ctx, scope, leadRef); err != nil {
		return nil, err
	}

	now := s.now()
	comment := &models.Comment{
		LeadRef:   leadRef,
		AdminID:   scope.TenantID(),
		Content:   content,
		CreatedBy: s.authorSnapshot(ctx, scope, caller.UserID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Insert(ctx, comment); err != nil {
		return nil, err
	}

	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityComment,
		ActorID: caller.UserID,
		LeadRef: leadRef,
		Details: "Comment added",
		Metadata: map[string]interface{}{
			"action":         "added",
			"commentId":      comment.ID,
			"commentContent": content,
		},
	})

	return comment, nil
}

// Edit replaces a comment's content, keeping the previous text in the audit
// trail.
func (s *CommentService) Edit(ctx context.Context, caller tenant.Caller, leadRef, commentID, content string) (*models.Comment, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validationf("comment content is required")
	}

	existing, err := s.comments.FindByID(ctx, scope, leadRef, commentID)
	if err != nil {
		return nil, err
	}
	oldContent := existing.Content

	updated, err := s.comments.UpdateContent(ctx, scope, leadRef, commentID, content, s.now())
	if err != nil {
		return nil, err
	}

	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityComment,
		ActorID: caller.UserID,
		LeadRef: leadRef,
		Details: "Comment edited",
		Metadata: map[string]interface{}{
			"action":            "edited",
			"commentId":         commentID,
			"commentContent":    content,
			"oldCommentContent": oldContent,
		},
	})

	return updated, nil
}

// Remove deletes a comment, preserving its text in the audit trail.
func (s *CommentService) Remove(ctx context.Context, caller tenant.Caller, leadRef, commentID string) error {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return err
	}

	existing, err := s.comments.FindByID(ctx, scope, leadRef, commentID)
	if err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, scope, leadRef, commentID); err != nil {
		return err
	}

	s.activities.Record(ctx, scope, ActivityInput{
		Type:    models.ActivityComment,
		ActorID: caller.UserID,
		LeadRef: leadRef,
		Details: "Comment deleted",
		Metadata: map[string]interface{}{
			"action":            "deleted",
			"commentId":         commentID,
			"oldCommentContent": existing.Content,
		},
	})

	return nil
}

// List returns a lead's comment thread, oldest first.
func (s *CommentService) List(ctx context.Context, caller tenant.Caller, leadRef string) ([]*models.Comment, error) {
	scope, err := tenant.Resolve(caller)
	if err != nil {
		return nil, err
	}
	if _, err := s.leads.FindByID(ctx, scope, leadRef); err != nil {
		return nil, err
	}
	return s.comments.ListByLead(ctx, scope, leadRef)
}

func (s *CommentService) authorSnapshot(ctx context.Context, scope tenant.Scope, userID string) models.Snapshot {
	u, err := s.users.FindTenantUser(ctx, scope, userID)
	if err != nil {
		s.log.Debug("comment author lookup failed, using bare id",
			zap.String("user", userID), zap.Error(err))
		return models.Snapshot{ID: userID}
	}
	return u.Snapshot()
}
