package ports

import (
	"context"
	"time"

	"kanvas/contexts/engagement/notification-service/domain/entities"
	eventsv1 "kanvas/contracts/events/v1"
)

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification entities.Notification) (entities.Notification, error)
	GetNotification(ctx context.Context, notificationID int64) (entities.Notification, error)
	// FindInvitationNotification returns the notification created for the
	// invitation, if any.
	FindInvitationNotification(ctx context.Context, userID int64, invitationID int64, scope string) (entities.Notification, bool, error)
	UpdateStatus(ctx context.Context, notificationID int64, status entities.NotificationStatus) error
	// ListVisible returns the user's notifications that are not DISMISSED,
	// newest first.
	ListVisible(ctx context.Context, userID int64) ([]entities.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
}

// EventDedupStore enforces idempotent processing for consumed events.
type EventDedupStore interface {
	// ReserveEvent reports true when eventID was already processed.
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
	PruneEvents(ctx context.Context, before time.Time) (int, error)
}

type UserReplica interface {
	UpsertUser(ctx context.Context, user entities.User) error
	GetUser(ctx context.Context, userID int64) (entities.User, bool, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = eventsv1.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
