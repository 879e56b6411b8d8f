package broker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/broker/outbox"
)

func newTestHub(t *testing.T) (*Hub, *outbox.Store) {
	t.Helper()
	store, err := outbox.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewHub(store, nil), store
}

func TestPublish_AppendsToOutbox(t *testing.T) {
	hub, store := newTestHub(t)
	ctx := context.Background()

	err := hub.Publish(ctx, TopicNotify, NotifyPayload{
		Event:   EventTradeBroken,
		Payload: map[string]any{"id": "t-1"},
	})
	require.NoError(t, err)

	recs, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, TopicNotify, recs[0].Topic)
	assert.Equal(t, "trade-broken", gjson.GetBytes(recs[0].Payload, "event").String())
}

func TestPublish_RejectsInvalidPayloads(t *testing.T) {
	hub, store := newTestHub(t)
	ctx := context.Background()

	t.Run("unknown topic", func(t *testing.T) {
		err := hub.Publish(ctx, "random-topic", NotifyPayload{Event: EventTradeBroken, Payload: map[string]any{}})
		assert.Error(t, err)
	})

	t.Run("unknown event name", func(t *testing.T) {
		err := hub.Publish(ctx, TopicNotify, NotifyPayload{Event: "trade-exploded", Payload: map[string]any{}})
		assert.Error(t, err)
	})

	t.Run("empty confirm offers", func(t *testing.T) {
		err := hub.Publish(ctx, TopicConfirm, ConfirmPayload{Offers: []any{}})
		assert.Error(t, err)
	})

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "rejected payloads must never reach the outbox")
}

func TestPublish_ConfirmPayload(t *testing.T) {
	hub, store := newTestHub(t)
	ctx := context.Background()

	err := hub.Publish(ctx, TopicConfirm, ConfirmPayload{
		Offers: []any{map[string]any{"offerId": "o-1"}},
	})
	require.NoError(t, err)

	recs, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "o-1", gjson.GetBytes(recs[0].Payload, "offers.0.offerId").String())
}
