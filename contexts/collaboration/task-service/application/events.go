package application

import (
	"context"
	"strconv"
	"time"

	"kanvas/contexts/collaboration/task-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
)

const EventSource = "task-service"

// Emitter appends task.events envelopes to the outbox, keyed by board so a
// board's changes stay ordered on the bus.
type Emitter struct {
	Outbox ports.OutboxWriter
	IDs    ports.IDGenerator
	Clock  ports.Clock
}

func (e Emitter) Emit(ctx context.Context, event eventsv1.TaskEvent) error {
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
	envelope.Key = strconv.FormatInt(event.Board(), 10)
	return e.Outbox.AppendOutbox(ctx, event.Topic(), envelope)
}

func (e Emitter) now() time.Time {
	if e.Clock != nil {
		return e.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
