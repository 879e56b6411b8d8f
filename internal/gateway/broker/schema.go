package broker

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Outgoing payloads are validated before publishing so a malformed event can
// never reach the outbox and poison downstream consumers.

const notifySchema = `{
	"type": "object",
	"required": ["event", "payload"],
	"properties": {
		"event": {"type": "string", "enum": ["trade-broken", "trade-closed"]},
		"payload": {"type": "object"}
	}
}`

const confirmSchema = `{
	"type": "object",
	"required": ["offers"],
	"properties": {
		"offers": {"type": "array", "minItems": 1, "items": {"type": "object"}}
	}
}`

var topicSchemas = map[string]*jsonschema.Schema{
	TopicNotify:  jsonschema.MustCompileString("notify.json", notifySchema),
	TopicConfirm: jsonschema.MustCompileString("confirm.json", confirmSchema),
}

func validatePayload(topic string, doc any) error {
	schema, ok := topicSchemas[topic]
	if !ok {
		return fmt.Errorf("broker: unknown topic %q", topic)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("broker: payload rejected for topic %s: %w", topic, err)
	}
	return nil
}
