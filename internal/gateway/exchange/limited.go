package exchange

import (
	"context"

	"github.com/lzkill/bsc-arbitrage-check/internal/pkg/ratelimit"
	"github.com/lzkill/bsc-arbitrage-check/internal/pkg/retry"
	"github.com/lzkill/bsc-arbitrage-check/internal/types"
)

// RateLimited decorates a Gateway with call pacing and bounded retries.
// Quote rejections pass through untouched; only transient I/O is replayed.
type RateLimited struct {
	inner   Gateway
	limiter *ratelimit.Limiter
	policy  retry.Policy
}

// NewRateLimited wraps inner. A nil limiter disables pacing.
func NewRateLimited(inner Gateway, limiter *ratelimit.Limiter, policy retry.Policy) *RateLimited {
	return &RateLimited{inner: inner, limiter: limiter, policy: policy}
}

var _ Gateway = (*RateLimited)(nil)

func (g *RateLimited) Name() string { return g.inner.Name() }

func (g *RateLimited) RecentTrades(ctx context.Context, limit int) ([]types.Execution, error) {
	var execs []types.Execution
	err := g.policy.Do(ctx, func() error {
		return g.limiter.Do(ctx, func() error {
			var innerErr error
			execs, innerErr = g.inner.RecentTrades(ctx, limit)
			return innerErr
		})
	})
	return execs, err
}

func (g *RateLimited) Quote(ctx context.Context, req QuoteRequest) (*types.Offer, error) {
	var offer *types.Offer
	err := g.policy.Do(ctx, func() error {
		return g.limiter.Do(ctx, func() error {
			// ErrQuoteRejected is never marked transient, so rejections
			// surface immediately without burning attempts.
			var innerErr error
			offer, innerErr = g.inner.Quote(ctx, req)
			return innerErr
		})
	})
	return offer, err
}
