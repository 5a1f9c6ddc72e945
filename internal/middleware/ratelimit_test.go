package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
)

func TestMemoryRateLimiterBucket(t *testing.T) {
	limiter := NewMemoryRateLimiter(60) // 60/min, 1 token/s refill
	base := time.Now()
	limiter.now = func() time.Time { return base }

	for i := 0; i < 60; i++ {
		allowed, err := limiter.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, allowed, "bucket is empty")

	// another key has its own bucket
	allowed, err = limiter.Allow(context.Background(), "other")
	require.NoError(t, err)
	assert.True(t, allowed)

	// tokens come back over time
	limiter.now = func() time.Time { return base.Add(2 * time.Second) }
	allowed, err = limiter.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, allowed)
}

type stubLimiter struct {
	allowed bool
	err     error
	lastKey string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.lastKey = key
	return s.allowed, s.err
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("over budget returns 429", func(t *testing.T) {
		limiter := &stubLimiter{allowed: false}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)

		RateLimit(limiter, zap.NewNop())(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("keys by authenticated user", func(t *testing.T) {
		limiter := &stubLimiter{allowed: true}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		caller := tenant.Caller{UserID: "user-7", Role: models.RoleAdmin}
		req = req.WithContext(ContextWithCaller(req.Context(), caller))

		RateLimit(limiter, zap.NewNop())(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user:user-7", limiter.lastKey)
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		limiter := &stubLimiter{err: assert.AnError}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)

		RateLimit(limiter, zap.NewNop())(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
