// Package broker publishes reconciliation events for downstream consumers.
// Delivery is fire-and-forget and at-least-once: events land in a durable
// outbox first, then fan out best-effort to the operator notifier.
package broker

import "context"

// Routing keys kept compatible with the original downstream consumers.
const (
	TopicNotify  = "biscoint-notify"
	TopicConfirm = "biscoint-confirm"
)

// Event names published on TopicNotify.
type Event string

const (
	EventTradeBroken Event = "trade-broken"
	EventTradeClosed Event = "trade-closed"
)

// Publisher emits an event payload on a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// NotifyPayload is the TopicNotify message body.
type NotifyPayload struct {
	Event   Event `json:"event"`
	Payload any   `json:"payload"`
}

// ConfirmPayload is the TopicConfirm message body: offers whose execution
// the confirm worker should follow up on.
type ConfirmPayload struct {
	Offers []any `json:"offers"`
}
