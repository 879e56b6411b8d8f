package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/broker/outbox"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/notifier"
	"github.com/lzkill/bsc-arbitrage-check/internal/logger"
)

// Hub is the Publisher implementation: durable outbox append plus an
// optional operator push. The push is best-effort; a Telegram failure never
// fails the publish.
type Hub struct {
	outbox   *outbox.Store
	notifier notifier.TextNotifier
}

func NewHub(out *outbox.Store, tn notifier.TextNotifier) *Hub {
	return &Hub{outbox: out, notifier: tn}
}

var _ Publisher = (*Hub)(nil)

func (h *Hub) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("broker: marshal payload: %w", err)
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("broker: decode payload: %w", err)
	}
	if err := validatePayload(topic, doc); err != nil {
		return err
	}
	if err := h.outbox.Append(ctx, outbox.Record{
		ID:        uuid.NewString(),
		Topic:     topic,
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}
	if h.notifier != nil && topic == TopicNotify {
		h.pushNotify(body)
	}
	return nil
}

func (h *Hub) pushNotify(body []byte) {
	event := gjson.GetBytes(body, "event").String()
	tradeID := gjson.GetBytes(body, "payload.id").String()
	base := gjson.GetBytes(body, "payload.openOffer.base").String()
	efPrice := gjson.GetBytes(body, "payload.openOffer.efPrice").String()

	icon := "⚠️"
	title := "Trade broken"
	if Event(event) == EventTradeClosed {
		icon = "✅"
		title = "Trade closed"
	}
	lines := []string{}
	if base != "" {
		lines = append(lines, "asset "+base)
	}
	if efPrice != "" {
		lines = append(lines, "open efPrice "+efPrice)
	}
	if tradeID != "" {
		lines = append(lines, "trade "+tradeID)
	}
	msg := notifier.StructuredMessage{
		Icon:      icon,
		Title:     title,
		Sections:  []notifier.MessageSection{{Lines: lines}},
		Timestamp: time.Now().UTC(),
	}
	if err := h.notifier.SendText(msg.Render()); err != nil {
		logger.Warnf("telegram push failed (%s): %v", event, err)
	}
}
