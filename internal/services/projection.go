package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
)

// SnapshotCache is a read-through cache of user display snapshots. Implemented
// by cache.UserCache; a nil cache is valid and disables caching.
type SnapshotCache interface {
	Get(ctx context.Context, tenantID, userID string) (*models.Snapshot, bool)
	Set(ctx context.Context, tenantID, userID string, snap models.Snapshot)
}

// AssigneeResolver decorates leads with their assignee's display snapshot.
// Leads persist a plain user id; names are joined at read time so a user
// rename never requires touching lead documents.
type AssigneeResolver struct {
	users UserRepository
	cache SnapshotCache
	log   *zap.Logger
}

func NewAssigneeResolver(users UserRepository, cache SnapshotCache, log *zap.Logger) *AssigneeResolver {
	return &AssigneeResolver{users: users, cache: cache, log: log}
}

// Populate builds LeadViews for a page of leads, resolving each distinct
// assignee once. A dangling assignee reference degrades to a bare-id snapshot
// rather than failing the listing.
func (r *AssigneeResolver) Populate(ctx context.Context, scope tenant.Scope, leads []*models.Lead) []models.LeadView {
	views := make([]models.LeadView, len(leads))
	resolved := make(map[string]*models.Snapshot)

	for i, lead := range leads {
		views[i] = models.LeadView{Lead: *lead}
		if lead.AssignedTo == nil {
			continue
		}
		id := *lead.AssignedTo
		snap, ok := resolved[id]
		if !ok {
			snap = r.resolve(ctx, scope, id)
			resolved[id] = snap
		}
		views[i].Assignee = snap
	}
	return views
}

func (r *AssigneeResolver) resolve(ctx context.Context, scope tenant.Scope, userID string) *models.Snapshot {
	if r.cache != nil {
		if snap, ok := r.cache.Get(ctx, scope.TenantID(), userID); ok {
			return snap
		}
	}

	u, err := r.users.FindTenantUser(ctx, scope, userID)
	if err != nil {
		r.log.Debug("assignee lookup failed, using bare id",
			zap.String("user", userID), zap.Error(err))
		return &models.Snapshot{ID: userID}
	}
	snap := u.Snapshot()
	if r.cache != nil {
		r.cache.Set(ctx, scope.TenantID(), userID, snap)
	}
	return &snap
}
