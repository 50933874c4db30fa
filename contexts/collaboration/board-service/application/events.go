package application

import (
	"context"
	"strconv"
	"time"

	"kanvas/contexts/collaboration/board-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
)

const EventSource = "board-service"

// Emitter appends events to the outbox inside the caller's transaction.
type Emitter struct {
	Outbox ports.OutboxWriter
	IDs    ports.IDGenerator
	Clock  ports.Clock
}

// Emit wraps event and stores it keyed by key, normally the board or
// workspace id, so that per-container ordering holds on the bus.
func (e Emitter) Emit(ctx context.Context, key int64, event eventsv1.Event) error {
	envelope, err := eventsv1.Wrap(event)
	if err != nil {
		return err
	}
	eventID, err := e.IDs.NewID(ctx)
	if err != nil {
		return err
	}
	envelope.EventID = eventID
	envelope.OccurredAt = e.now()
	envelope.Source = EventSource
	envelope.Key = strconv.FormatInt(key, 10)
	return e.Outbox.AppendOutbox(ctx, event.Topic(), envelope)
}

func (e Emitter) now() time.Time {
	if e.Clock != nil {
		return e.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
