// Package v1 is the event contract shared by Kanvas producers and consumers.
//
// Every message on the bus is an Envelope whose Payload decodes into exactly
// one of the per-topic event types below. Fields other than EventType and
// Payload are metadata; consumers must not require them.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownEventType is returned for event types a decoder does not know.
	// Consumers ignore these messages.
	ErrUnknownEventType = errors.New("unknown event type")
	// ErrMalformedPayload is returned when a known event type carries a
	// payload that cannot be decoded. Consumers return it so the message is
	// redelivered instead of committed.
	ErrMalformedPayload = errors.New("malformed event payload")
)

type Envelope struct {
	EventID    string          `json:"eventId,omitempty"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt,omitzero"`
	Source     string          `json:"source,omitempty"`
	Key        string          `json:"key,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

// Event is implemented by every payload type carried on the bus.
type Event interface {
	EventType() string
	Topic() string
}

type validator interface {
	Validate() error
}

// Wrap encodes event into an envelope. Metadata fields are left for the
// producer to fill.
func Wrap(event Event) (Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", event.EventType(), err)
	}
	return Envelope{
		EventType: event.EventType(),
		Payload:   data,
	}, nil
}

func decode[E Event](registry map[string]func() E, env Envelope) (E, error) {
	var zero E
	factory, ok := registry[env.EventType]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrUnknownEventType, env.EventType)
	}
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return zero, fmt.Errorf("%w: %s has no payload", ErrMalformedPayload, env.EventType)
	}
	event := factory()
	if err := json.Unmarshal(env.Payload, event); err != nil {
		return zero, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, env.EventType, err)
	}
	if v, ok := any(event).(validator); ok {
		if err := v.Validate(); err != nil {
			return zero, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, env.EventType, err)
		}
	}
	return event, nil
}

func requireIDs(fields map[string]int64) error {
	for name, value := range fields {
		if value <= 0 {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}
