package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRunner struct {
	calls atomic.Int32
	fn    func(n int32) (int, error)
}

func (r *countingRunner) RunCycle(ctx context.Context) (int, error) {
	n := r.calls.Add(1)
	if r.fn != nil {
		return r.fn(n)
	}
	return 0, nil
}

func TestWaitBefore(t *testing.T) {
	assert.Equal(t, 11*time.Second, waitBefore(15*time.Second, 4*time.Second))
	assert.Equal(t, time.Duration(0), waitBefore(15*time.Second, 15*time.Second))
	// A cycle slower than the interval starts the next one immediately.
	assert.Equal(t, time.Duration(0), waitBefore(15*time.Second, 20*time.Second))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, NewSwitch(true), time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, s.CycleCount(), uint64(0))
	assert.False(t, s.LastCycleAt().IsZero())
}

func TestRun_DisabledSkipsCycles(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, NewSwitch(false), time.Millisecond)
	s.DisabledPoll = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, runner.calls.Load())
	assert.Zero(t, s.CycleCount())
}

func TestRun_EnableMidFlight(t *testing.T) {
	runner := &countingRunner{}
	sw := NewSwitch(false)
	s := New(runner, sw, time.Millisecond)
	s.DisabledPoll = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	go func() {
		time.Sleep(10 * time.Millisecond)
		sw.Enable()
	}()
	_ = s.Run(ctx)
	assert.Greater(t, runner.calls.Load(), int32(0))
}

func TestRun_SurvivesFailingAndPanickingCycles(t *testing.T) {
	runner := &countingRunner{fn: func(n int32) (int, error) {
		switch n {
		case 1:
			return 0, fmt.Errorf("boom")
		case 2:
			panic("worse boom")
		default:
			return 1, nil
		}
	}}
	s := New(runner, NewSwitch(true), time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)
	assert.GreaterOrEqual(t, runner.calls.Load(), int32(3))
}

func TestSwitch(t *testing.T) {
	sw := NewSwitch(true)
	assert.True(t, sw.Enabled())
	sw.Disable()
	assert.False(t, sw.Enabled())
	sw.Enable()
	assert.True(t, sw.Enabled())
	sw.Set(false)
	assert.False(t, sw.Enabled())
}
