// Package ratelimit paces calls against upstream APIs. A Limiter combines a
// concurrency cap with a minimum inter-call spacing so that internal fan-out
// can never exceed the rate the upstream allows.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter serializes calls (or allows a small bounded pool) and enforces a
// minimum interval between consecutive calls.
type Limiter struct {
	sem  *semaphore.Weighted
	pace *rate.Limiter
}

// New builds a limiter with the given concurrency cap and minimum spacing.
// maxConcurrent <= 0 falls back to 1; minInterval <= 0 disables pacing.
func New(maxConcurrent int64, minInterval time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	l := &Limiter{sem: semaphore.NewWeighted(maxConcurrent)}
	if minInterval > 0 {
		l.pace = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return l
}

// Do runs fn once a slot is free and the pacing interval elapsed.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	if l == nil {
		return fn()
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	if l.pace != nil {
		if err := l.pace.Wait(ctx); err != nil {
			return err
		}
	}
	return fn()
}
