package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/lzkill/bsc-arbitrage-check/internal/pkg/ratelimit"
	"github.com/lzkill/bsc-arbitrage-check/internal/pkg/retry"
	"github.com/lzkill/bsc-arbitrage-check/internal/types"
)

// RateLimited decorates a Store with call pacing and bounded retries.
// Every attempt goes through the limiter, so replays are paced too.
type RateLimited struct {
	inner   Store
	limiter *ratelimit.Limiter
	policy  retry.Policy
}

// NewRateLimited wraps inner. A nil limiter disables pacing.
func NewRateLimited(inner Store, limiter *ratelimit.Limiter, policy retry.Policy) *RateLimited {
	return &RateLimited{inner: inner, limiter: limiter, policy: policy}
}

var _ Store = (*RateLimited)(nil)

func (s *RateLimited) do(ctx context.Context, fn func() error) error {
	return s.policy.Do(ctx, func() error {
		return s.limiter.Do(ctx, fn)
	})
}

func (s *RateLimited) ListPendingTrades(ctx context.Context) ([]types.Trade, error) {
	var trades []types.Trade
	err := s.do(ctx, func() error {
		var innerErr error
		trades, innerErr = s.inner.ListPendingTrades(ctx)
		return innerErr
	})
	return trades, err
}

func (s *RateLimited) UpdateTrade(ctx context.Context, t types.Trade) error {
	return s.do(ctx, func() error { return s.inner.UpdateTrade(ctx, t) })
}

func (s *RateLimited) UpdateOffer(ctx context.Context, o types.Offer) error {
	return s.do(ctx, func() error { return s.inner.UpdateOffer(ctx, o) })
}

func (s *RateLimited) CreateOffer(ctx context.Context, o types.Offer) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.do(ctx, func() error {
		var innerErr error
		id, innerErr = s.inner.CreateOffer(ctx, o)
		return innerErr
	})
	return id, err
}

func (s *RateLimited) RemoveTrade(ctx context.Context, t types.Trade) error {
	return s.do(ctx, func() error { return s.inner.RemoveTrade(ctx, t) })
}
