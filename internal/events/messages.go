// Package events publishes ledger events to an AMQP exchange.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// ContentType is the MIME type of every published message body.
const ContentType = "application/json"

// Encode converts an event to its JSON message body.
func Encode(event model.LedgerEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return body, nil
}

// Decode parses a message body produced by Encode.
func Decode(data []byte) (model.LedgerEvent, error) {
	var event model.LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return model.LedgerEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if event.Type == "" {
		return model.LedgerEvent{}, fmt.Errorf("unmarshal event: missing type")
	}
	return event, nil
}

// RoutingKey returns the key an event is published under. Keys are the dotted event
// types, so consumers can bind patterns such as "transaction.*".
func RoutingKey(event model.LedgerEvent) string {
	return string(event.Type)
}
