package ports

import (
	"context"
	"time"

	"kanvas/contexts/engagement/realtime-service/domain/entities"
	eventsv1 "kanvas/contracts/events/v1"
)

// ReplayLog keeps the most recent messages of every channel.
type ReplayLog interface {
	// Append assigns the next id of msg.Channel and stores the message.
	Append(ctx context.Context, msg entities.Message) (entities.Message, error)
	// Since returns the retained messages with an id greater than afterID,
	// oldest first.
	Since(ctx context.Context, channel entities.Channel, afterID int64) ([]entities.Message, error)
}

type Clock interface {
	Now() time.Time
}

type EventEnvelope = eventsv1.Envelope

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
