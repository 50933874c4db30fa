package application

import (
	"context"
	"strconv"
	"time"

	"kanvas/contexts/engagement/notification-service/domain/entities"
	"kanvas/contexts/engagement/notification-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
)

const EventSource = "notification-service"

// Emitter appends notification.events envelopes keyed by recipient.
type Emitter struct {
	Outbox ports.OutboxWriter
	IDs    ports.IDGenerator
	Clock  ports.Clock
}

func (e Emitter) Emit(ctx context.Context, event eventsv1.NotificationEvent) error {
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
	envelope.Key = strconv.FormatInt(event.Recipient(), 10)
	return e.Outbox.AppendOutbox(ctx, event.Topic(), envelope)
}

func (e Emitter) Created(ctx context.Context, notification entities.Notification) error {
	return e.Emit(ctx, eventsv1.NotificationCreated{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		Type:           string(notification.Type),
		Status:         string(notification.Status),
		Payload:        notification.Payload,
		SentAt:         notification.SentAt,
	})
}

func (e Emitter) Updated(ctx context.Context, notification entities.Notification) error {
	return e.Emit(ctx, eventsv1.NotificationUpdated{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		Status:         string(notification.Status),
	})
}

func (e Emitter) now() time.Time {
	if e.Clock != nil {
		return e.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
