// Package scheduler drives the reconciliation engine on a self-adjusting
// cadence. Exactly one cycle runs at a time; the wait between cycles shrinks
// by however long the previous cycle took, so cadence stays near the
// configured interval without ever running cycles back to back concurrently.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lzkill/bsc-arbitrage-check/internal/logger"
)

// CycleRunner is one reconciliation pass.
type CycleRunner interface {
	RunCycle(ctx context.Context) (int, error)
}

// Scheduler loops forever until its context is cancelled.
type Scheduler struct {
	Interval     time.Duration
	DisabledPoll time.Duration

	engine CycleRunner
	sw     *Switch
	nowFn  func() time.Time

	cycleCount atomic.Uint64
	lastCycle  atomic.Int64 // unix millis of last completed cycle
}

// New builds a scheduler. DisabledPoll defaults to 5s.
func New(engine CycleRunner, sw *Switch, interval time.Duration) *Scheduler {
	return &Scheduler{
		Interval:     interval,
		DisabledPoll: 5 * time.Second,
		engine:       engine,
		sw:           sw,
		nowFn:        time.Now,
	}
}

// CycleCount returns how many cycles completed since startup.
func (s *Scheduler) CycleCount() uint64 { return s.cycleCount.Load() }

// LastCycleAt returns when the last cycle completed, zero if none did.
func (s *Scheduler) LastCycleAt() time.Time {
	ms := s.lastCycle.Load()
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// Run loops until ctx is cancelled. A failing or panicking cycle is logged
// and the next cycle is still scheduled; nothing stops the loop but ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	logger.Infof("scheduler started interval=%s", s.Interval)
	for {
		if err := ctx.Err(); err != nil {
			logger.Infof("scheduler stopped: %v", err)
			return err
		}
		if !s.sw.Enabled() {
			if err := sleep(ctx, s.disabledPoll()); err != nil {
				return err
			}
			continue
		}

		startedAt := s.nowFn()
		processed, err := s.runCycle(ctx)
		elapsed := s.nowFn().Sub(startedAt)

		count := s.cycleCount.Add(1)
		s.lastCycle.Store(s.nowFn().UnixMilli())
		if err != nil {
			logger.Errorf("check cycle #%d failed after %s: %v", count, elapsed.Truncate(time.Millisecond), err)
		} else {
			logger.Infof("check cycle #%d processed=%d took=%s", count, processed, elapsed.Truncate(time.Millisecond))
		}

		if err := sleep(ctx, waitBefore(s.Interval, elapsed)); err != nil {
			return err
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) (processed int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = nil
			processed = 0
			logger.Errorf("check cycle panicked: %v", r)
		}
	}()
	return s.engine.RunCycle(ctx)
}

func (s *Scheduler) disabledPoll() time.Duration {
	if s.DisabledPoll <= 0 {
		return 5 * time.Second
	}
	return s.DisabledPoll
}

// waitBefore bounds cadence: the configured interval minus processing time,
// floored at zero so a slow cycle starts the next one immediately.
func waitBefore(interval, elapsed time.Duration) time.Duration {
	wait := interval - elapsed
	if wait < 0 {
		return 0
	}
	return wait
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
