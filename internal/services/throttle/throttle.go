// Package throttle implements the per-identity request throttle check.
package throttle

import (
	"time"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	maxTrackedIdentities = 10000
	idleEviction         = 10 * time.Minute
)

// Throttle keeps one token bucket per identity. Idle buckets are evicted.
type Throttle struct {
	limit    rate.Limit
	burst    int
	limiters *expirable.LRU[string, *rate.Limiter]
}

// New creates a throttle from config. A zero rate returns nil, which never throttles.
func New(cfg models.RateLimitConfig) *Throttle {
	if cfg.RequestsPerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerMinute
	}
	return &Throttle{
		limit:    rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:    burst,
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedIdentities, nil, idleEviction),
	}
}

// IsThrottled consumes one token for identity and reports whether none was left.
func (t *Throttle) IsThrottled(identity string) bool {
	if t == nil {
		return false
	}
	return !t.limiterFor(identity).Allow()
}

func (t *Throttle) limiterFor(identity string) *rate.Limiter {
	if lim, ok := t.limiters.Get(identity); ok {
		return lim
	}
	lim := rate.NewLimiter(t.limit, t.burst)
	// a concurrent Add for the same identity may replace this one; the bucket starts full either way
	t.limiters.Add(identity, lim)
	return lim
}
