package types

import (
	"time"

	"github.com/google/uuid"
)

// TradeStatus is the reconciliation lifecycle state of a trade.
//
// open is initial. missed and closed are terminal. broken re-evaluates every
// cycle until the close leg is confirmed or the trade is abandoned.
type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeMissed TradeStatus = "missed"
	TradeBroken TradeStatus = "broken"
	TradeClosed TradeStatus = "closed"
)

// Pending reports whether the trade still needs reconciliation.
func (s TradeStatus) Pending() bool {
	return s == TradeOpen || s == TradeBroken
}

// Terminal reports whether the trade reached a final state.
func (s TradeStatus) Terminal() bool {
	return s == TradeMissed || s == TradeClosed
}

func (s TradeStatus) String() string { return string(s) }

// Trade pairs an open leg with an optional close leg and tracks the
// reconciliation lifecycle. Trades are created by the opening process in
// status open and mutated only by the reconciliation engine afterwards.
type Trade struct {
	ID          uuid.UUID   `json:"id"`
	Status      TradeStatus `json:"status"`
	OpenOffer   Offer       `json:"openOffer"`
	CloseOffer  *Offer      `json:"closeOffer,omitempty"`
	CheckedAt   *time.Time  `json:"checkedAt,omitempty"`
	HasSiblings bool        `json:"hasSiblings"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Execution is one entry of the exchange's recent trade history: an offer
// that actually filled, and when.
type Execution struct {
	OfferID    string
	ExecutedAt time.Time
}
