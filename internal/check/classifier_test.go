package check

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lzkill/bsc-arbitrage-check/internal/types"
)

var testGrace = Grace{
	ExpireAfter: time.Minute,
	RemoveAfter: 5 * time.Minute,
}

func newOffer(offerID string, expiresAt time.Time) types.Offer {
	return types.Offer{
		ID:          uuid.New(),
		OfferID:     offerID,
		Op:          types.OfferOpBuy,
		Base:        "BTC",
		Quote:       "BRL",
		BaseAmount:  decimal.RequireFromString("0.01"),
		QuoteAmount: decimal.RequireFromString("3000"),
		EfPrice:     decimal.RequireFromString("300000"),
		CreatedAt:   expiresAt.Add(-time.Minute),
		ExpiresAt:   expiresAt,
	}
}

func newOpenTrade(openID string, expiresAt time.Time) types.Trade {
	return types.Trade{
		ID:        uuid.New(),
		Status:    types.TradeOpen,
		OpenOffer: newOffer(openID, expiresAt),
	}
}

func TestClassify_Closed(t *testing.T) {
	now := time.Now().UTC()
	tr := newOpenTrade("open-1", now)
	co := newOffer("close-1", now)
	co.Op = types.OfferOpSell
	tr.CloseOffer = &co

	idx := BuildExecutionIndex([]types.Execution{
		{OfferID: "open-1", ExecutedAt: now.Add(-time.Minute)},
		{OfferID: "close-1", ExecutedAt: now},
	})
	assert.Equal(t, OutcomeClosed, Classify(tr, idx, now, testGrace))

	// Status does not matter once both legs executed.
	tr.Status = types.TradeBroken
	assert.Equal(t, OutcomeClosed, Classify(tr, idx, now, testGrace))
}

func TestClassify_MissedBoundary(t *testing.T) {
	expiry := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	tr := newOpenTrade("open-1", expiry)
	idx := ExecutionIndex{}

	boundary := expiry.Add(testGrace.RemoveAfter)

	// Exactly at the grace boundary the trade is still pending.
	assert.Equal(t, OutcomePending, Classify(tr, idx, boundary, testGrace))
	// One instant past it, the trade is missed.
	assert.Equal(t, OutcomeMissed, Classify(tr, idx, boundary.Add(time.Millisecond), testGrace))
}

func TestClassify_UnexecutedBrokenNeverMissed(t *testing.T) {
	// A broken trade has an executed open leg on record; even if the history
	// window no longer shows it, it must not be abandoned as missed.
	expiry := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	tr := newOpenTrade("open-1", expiry)
	tr.Status = types.TradeBroken

	now := expiry.Add(testGrace.RemoveAfter + time.Hour)
	assert.Equal(t, OutcomePending, Classify(tr, ExecutionIndex{}, now, testGrace))
}

func TestClassify_Broken(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	idx := BuildExecutionIndex([]types.Execution{
		{OfferID: "open-1", ExecutedAt: now.Add(-time.Hour)},
	})

	t.Run("no close offer at all", func(t *testing.T) {
		tr := newOpenTrade("open-1", now)
		assert.Equal(t, OutcomeBroken, Classify(tr, idx, now, testGrace))
	})

	t.Run("close offer expired past grace", func(t *testing.T) {
		tr := newOpenTrade("open-1", now)
		co := newOffer("close-1", now.Add(-testGrace.ExpireAfter-time.Second))
		tr.CloseOffer = &co
		assert.Equal(t, OutcomeBroken, Classify(tr, idx, now, testGrace))
	})

	t.Run("close offer still within grace", func(t *testing.T) {
		tr := newOpenTrade("open-1", now)
		co := newOffer("close-1", now.Add(-30*time.Second))
		tr.CloseOffer = &co
		assert.Equal(t, OutcomePending, Classify(tr, idx, now, testGrace))
	})

	t.Run("already broken stays broken", func(t *testing.T) {
		tr := newOpenTrade("open-1", now)
		tr.Status = types.TradeBroken
		co := newOffer("close-1", now.Add(time.Hour)) // not expired
		tr.CloseOffer = &co
		assert.Equal(t, OutcomeBroken, Classify(tr, idx, now, testGrace))
	})
}

func TestClassify_Idempotent(t *testing.T) {
	now := time.Now().UTC()
	tr := newOpenTrade("open-1", now)
	idx := BuildExecutionIndex([]types.Execution{
		{OfferID: "open-1", ExecutedAt: now},
	})
	first := Classify(tr, idx, now, testGrace)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(tr, idx, now, testGrace))
	}
}

func TestBuildExecutionIndex(t *testing.T) {
	t0 := time.Now().UTC()
	idx := BuildExecutionIndex([]types.Execution{
		{OfferID: "a", ExecutedAt: t0},
		{OfferID: "", ExecutedAt: t0},
		{OfferID: "a", ExecutedAt: t0.Add(time.Second)}, // newest wins
	})
	assert.Len(t, idx, 1)
	assert.Equal(t, t0.Add(time.Second), idx["a"].ExecutedAt)

	_, ok := idx.Lookup(nil)
	assert.False(t, ok)
}
