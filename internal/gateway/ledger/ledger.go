// Package ledger defines the trade ledger contract consumed by the
// reconciliation engine. All operations are idempotent by primary key so the
// retry wrapper can safely replay them.
package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lzkill/bsc-arbitrage-check/internal/types"
)

// ErrNotFound is returned when a trade or offer does not exist in the ledger.
var ErrNotFound = errors.New("ledger: record not found")

// Store is the persistence gateway for trades and offers.
type Store interface {
	// ListPendingTrades returns every trade in status open or broken,
	// with both legs loaded.
	ListPendingTrades(ctx context.Context) ([]types.Trade, error)

	// UpdateTrade persists status, checkedAt and hasSiblings for the trade.
	UpdateTrade(ctx context.Context, t types.Trade) error

	// UpdateOffer persists the offer row (upsert by id).
	UpdateOffer(ctx context.Context, o types.Offer) error

	// CreateOffer inserts a new offer and returns its id.
	CreateOffer(ctx context.Context, o types.Offer) (uuid.UUID, error)

	// RemoveTrade deletes the trade and its offers. Used for missed trades
	// that will never fill.
	RemoveTrade(ctx context.Context, t types.Trade) error
}
