package workers

import (
	"context"
	"errors"
	"log/slog"

	application "kanvas/contexts/collaboration/board-service/application"
	"kanvas/contexts/collaboration/board-service/domain/entities"
	"kanvas/contexts/collaboration/board-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
)

const ConsumerGroup = "board-service"

// UserReplicaConsumer keeps the local user replica in step with user.events.
type UserReplicaConsumer struct {
	Subscriber ports.EventSubscriber
	Users      ports.UserReplica
	Logger     *slog.Logger
}

func (c UserReplicaConsumer) Start(ctx context.Context) error {
	if c.Subscriber == nil {
		return nil
	}
	return c.Subscriber.Subscribe(ctx, eventsv1.TopicUser, ConsumerGroup, c.Handle)
}

func (c UserReplicaConsumer) Handle(ctx context.Context, envelope ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	event, err := eventsv1.DecodeUserEvent(envelope)
	if errors.Is(err, eventsv1.ErrUnknownEventType) {
		return nil
	}
	if err != nil {
		logger.Error("user event rejected",
			"event", "user_replica_event_rejected",
			"module", "collaboration/board-service",
			"layer", "worker",
			"event_id", envelope.EventID,
			"error", err.Error(),
		)
		return err
	}

	profile := event.Profile()
	return c.Users.UpsertUser(ctx, entities.User{
		ID:          profile.UserID,
		Firstname:   profile.Firstname,
		Lastname:    profile.Lastname,
		Email:       profile.Email,
		Username:    profile.Username,
		AvatarColor: profile.AvatarColor,
	})
}
