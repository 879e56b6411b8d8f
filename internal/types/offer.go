package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferOp is the direction of a quoted offer.
type OfferOp string

const (
	OfferOpBuy  OfferOp = "buy"
	OfferOpSell OfferOp = "sell"
)

// Offer is a priced, time-bounded trade intent quoted by the exchange.
// Once the exchange reports the offer as executed, ConfirmedAt carries the
// execution timestamp; everything else is immutable from that point on.
type Offer struct {
	ID          uuid.UUID       `json:"id"`
	OfferID     string          `json:"offerId"` // exchange-assigned identifier
	APIKeyID    string          `json:"apiKeyId,omitempty"`
	Op          OfferOp         `json:"op"`
	Base        string          `json:"base"`
	Quote       string          `json:"quote"`
	BaseAmount  decimal.Decimal `json:"baseAmount"`
	QuoteAmount decimal.Decimal `json:"quoteAmount"`
	EfPrice     decimal.Decimal `json:"efPrice"`
	IsQuote     bool            `json:"isQuote"`
	CreatedAt   time.Time       `json:"createdAt"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	ConfirmedAt *time.Time      `json:"confirmedAt,omitempty"`

	// Raw keeps the exchange's original response for debugging. Never read
	// by the reconciliation logic.
	Raw json.RawMessage `json:"-"`
}

// ExpiredFor reports whether the offer expired longer than grace ago.
func (o Offer) ExpiredFor(now time.Time, grace time.Duration) bool {
	if o.ExpiresAt.IsZero() {
		return false
	}
	return now.Sub(o.ExpiresAt) > grace
}

// Confirmed reports whether the exchange confirmed the offer's execution.
func (o Offer) Confirmed() bool {
	return o.ConfirmedAt != nil
}
