package services

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	leadIDMin  = 10000
	leadIDMax  = 999999
	leadIDSpan = leadIDMax - leadIDMin + 1

	// fallbackSpan keeps time-derived candidates inside [10000, 909999]
	fallbackSpan = 900000

	maxRandomAttempts   = 200
	maxFallbackAttempts = 50
)

// LeadIDChecker is the existence read the generator probes against.
type LeadIDChecker interface {
	LeadIDExists(ctx context.Context, leadID int) (bool, error)
}

// LeadIDGenerator produces short numeric lead identifiers in
// [10000, 999999]. The check-then-write sequence is racy under contention;
// the unique index on leadId is the final authority, and callers retry
// generation when an insert reports a duplicate leadId.
type LeadIDGenerator struct {
	checker LeadIDChecker
	mu      sync.Mutex
	rng     *rand.Rand
	now     func() time.Time
}

func NewLeadIDGenerator(checker LeadIDChecker) *LeadIDGenerator {
	return &LeadIDGenerator{
		checker: checker,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

// Next returns a lead id that was free at probe time.
//
// Strategy: up to 200 uniform random draws; then a clock-derived candidate
// perturbed with random offsets for up to 50 more probes; finally one pure
// random draw accepted without a probe. At the occupancy this id space can
// reach before quota limits kick in, a collision on the final draw is
// astronomically unlikely, and the unique index still catches it.
func (g *LeadIDGenerator) Next(ctx context.Context) (int, error) {
	for i := 0; i < maxRandomAttempts; i++ {
		candidate := g.randomID()
		exists, err := g.checker.LeadIDExists(ctx, candidate)
		if err != nil {
			return 0, err
		}
		if !exists {
			return candidate, nil
		}
	}

	candidate := int(g.now().Unix()%fallbackSpan) + leadIDMin
	for i := 0; i < maxFallbackAttempts; i++ {
		exists, err := g.checker.LeadIDExists(ctx, candidate)
		if err != nil {
			return 0, err
		}
		if !exists {
			return candidate, nil
		}
		candidate = leadIDMin + (candidate-leadIDMin+g.randomOffset())%fallbackSpan
	}

	return g.randomID(), nil
}

func (g *LeadIDGenerator) randomID() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return leadIDMin + g.rng.Intn(leadIDSpan)
}

func (g *LeadIDGenerator) randomOffset() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return 1 + g.rng.Intn(fallbackSpan-1)
}
