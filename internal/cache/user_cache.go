// Package cache holds Redis-backed read caches. Caches are best-effort: a
// miss, a marshal failure or an unavailable Redis always degrades to the
// underlying Mongo read, never to an error.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/models"
)

const (
	userSnapshotTTL       = 15 * time.Minute
	userSnapshotKeyPrefix = "user_snapshot:"
)

// UserCache caches user display snapshots keyed per tenant. A nil Redis
// client disables the cache; every Get then misses.
type UserCache struct {
	client *redis.Client
	log    *zap.Logger
}

func NewUserCache(client *redis.Client, log *zap.Logger) *UserCache {
	return &UserCache{client: client, log: log}
}

func (c *UserCache) key(tenantID, userID string) string {
	return userSnapshotKeyPrefix + tenantID + ":" + userID
}

func (c *UserCache) Get(ctx context.Context, tenantID, userID string) (*models.Snapshot, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.key(tenantID, userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("user snapshot cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		c.log.Warn("corrupt user snapshot cache entry",
			zap.String("tenant", tenantID), zap.String("user", userID), zap.Error(err))
		return nil, false
	}
	return &snap, true
}

func (c *UserCache) Set(ctx context.Context, tenantID, userID string, snap models.Snapshot) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(tenantID, userID), raw, userSnapshotTTL).Err(); err != nil {
		c.log.Debug("user snapshot cache write failed", zap.Error(err))
	}
}

// Invalidate drops a cached snapshot, called after a user rename or delete.
func (c *UserCache) Invalidate(ctx context.Context, tenantID, userID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(tenantID, userID)).Err(); err != nil {
		c.log.Debug("user snapshot cache invalidation failed", zap.Error(err))
	}
}
