// Package exchange defines a common abstraction over trading exchanges.
// The reconciliation engine only consumes two operations: the recent trade
// history window and fresh executable quotes. Concrete backends (Biscoint,
// Binance) live in subpackages and are selected via the factory.
package exchange

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/lzkill/bsc-arbitrage-check/internal/types"
)

// ErrQuoteRejected is returned when the exchange declines to quote, e.g. the
// requested amount is below its minimum. Never retried.
var ErrQuoteRejected = errors.New("exchange: quote rejected")

// QuoteRequest asks for a fresh executable offer. Amount is in base units
// unless IsQuote is set.
type QuoteRequest struct {
	Base    string
	Amount  decimal.Decimal
	Op      types.OfferOp
	IsQuote bool
}

// Gateway is the exchange contract consumed by the engine.
type Gateway interface {
	Name() string

	// RecentTrades returns the most recent confirmed executions, newest
	// last, up to limit entries.
	RecentTrades(ctx context.Context, limit int) ([]types.Execution, error)

	// Quote fetches a fresh offer. The result is an executable intent with
	// an expiry, not a commitment.
	Quote(ctx context.Context, req QuoteRequest) (*types.Offer, error)
}
