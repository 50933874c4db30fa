// Package events defines the bus surface shared by the platform transports,
// the outbox relay and the per-service consumers.
package events

import (
	"context"

	eventsv1 "kanvas/contracts/events/v1"
)

type Envelope = eventsv1.Envelope

// Handler processes one delivered envelope. A non-nil error leaves the
// message uncommitted so the transport redelivers it.
type Handler = func(ctx context.Context, event Envelope) error

type Publisher interface {
	Publish(ctx context.Context, topic string, event Envelope) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler Handler) error
}

type Bus interface {
	Publisher
	Subscriber
}
