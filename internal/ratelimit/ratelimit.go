package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter paces remote fetches. A nil *Limiter never throttles.
type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative perSecond for no rate limiting.
func New(perSecond float64) *Limiter {
	// burst of 1: the first fetch goes out immediately
	return &Limiter{
		limiter: rate.NewLimiter(toLimit(perSecond), 1),
	}
}

// Wait blocks until the next fetch may start or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// Limit reports fetches per second, 0 meaning unlimited.
func (l *Limiter) Limit() float64 {
	if l == nil {
		return 0
	}
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}

func toLimit(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(perSecond)
}
