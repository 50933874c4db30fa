package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"kanvas/contexts/engagement/notification-service/application"
	"kanvas/contexts/engagement/notification-service/domain/entities"
	"kanvas/contexts/engagement/notification-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
)

const (
	ConsumerGroup = "notification-service"
	moduleName    = "engagement/notification-service"
)

// EventConsumer creates and dismisses notifications from upstream events.
// Envelopes carrying an eventId are processed at most once; the reservation
// commits with the notification it produced.
type EventConsumer struct {
	Subscriber    ports.EventSubscriber
	Notifications ports.NotificationRepository
	Dedup         ports.EventDedupStore
	Users         ports.UserReplica
	Tx            ports.TxRunner
	Emitter       application.Emitter
	Clock         ports.Clock
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

func (c EventConsumer) Start(ctx context.Context) error {
	if c.Subscriber == nil {
		return nil
	}
	subscriptions := []struct {
		topic   string
		handler func(context.Context, ports.EventEnvelope) error
	}{
		{topic: eventsv1.TopicInvitation, handler: c.HandleInvitationEvent},
		{topic: eventsv1.TopicBoard, handler: c.HandleBoardEvent},
		{topic: eventsv1.TopicTask, handler: c.HandleTaskEvent},
		{topic: eventsv1.TopicUser, handler: c.HandleUserEvent},
	}
	for _, subscription := range subscriptions {
		if err := c.Subscriber.Subscribe(ctx, subscription.topic, ConsumerGroup, subscription.handler); err != nil {
			return err
		}
	}
	return nil
}

func (c EventConsumer) HandleInvitationEvent(ctx context.Context, envelope ports.EventEnvelope) error {
	event, err := eventsv1.DecodeInvitationEvent(envelope)
	if err != nil {
		return c.rejected(envelope, err)
	}
	switch e := event.(type) {
	case *eventsv1.InvitationCreated:
		return c.once(ctx, envelope, func(ctx context.Context) error {
			payload, err := json.Marshal(entities.InvitationPayload{
				InvitationID:    e.InvitationID,
				InviterUsername: e.InviterUsername,
				TargetName:      e.ContainerName,
				Scope:           e.Scope,
				Role:            e.Role,
			})
			if err != nil {
				return err
			}
			return c.create(ctx, envelope, entities.Notification{
				UserID:          e.InviteeID,
				Type:            entities.TypeInvitation,
				Payload:         payload,
				InvitationID:    e.InvitationID,
				InvitationScope: e.Scope,
			})
		})
	case *eventsv1.InvitationUpdated:
		return c.once(ctx, envelope, func(ctx context.Context) error {
			return c.dismissInvitation(ctx, envelope, e)
		})
	default:
		return nil
	}
}

func (c EventConsumer) HandleBoardEvent(ctx context.Context, envelope ports.EventEnvelope) error {
	event, err := eventsv1.DecodeBoardEvent(envelope)
	if err != nil {
		return c.rejected(envelope, err)
	}
	removed, ok := event.(*eventsv1.BoardMemberRemoved)
	if !ok {
		return nil
	}
	return c.once(ctx, envelope, func(ctx context.Context) error {
		payload, err := json.Marshal(entities.RemovedFromBoardPayload{
			BoardID:   removed.BoardID,
			BoardName: removed.BoardName,
		})
		if err != nil {
			return err
		}
		return c.create(ctx, envelope, entities.Notification{
			UserID:  removed.UserID,
			Type:    entities.TypeRemovedFromBoard,
			Payload: payload,
		})
	})
}

func (c EventConsumer) HandleTaskEvent(ctx context.Context, envelope ports.EventEnvelope) error {
	event, err := eventsv1.DecodeTaskEvent(envelope)
	if err != nil {
		return c.rejected(envelope, err)
	}
	var (
		assignment eventsv1.TaskAssignment
		assigned   bool
	)
	switch e := event.(type) {
	case *eventsv1.TaskAssigned:
		assignment, assigned = e.TaskAssignment, true
	case *eventsv1.TaskUnassigned:
		assignment = e.TaskAssignment
	default:
		return nil
	}
	return c.once(ctx, envelope, func(ctx context.Context) error {
		body := entities.AssignmentPayload{
			BoardID:   assignment.BoardID,
			TaskID:    assignment.TaskID,
			TaskTitle: assignment.TaskTitle,
			Assigned:  assigned,
		}
		if assignment.ActorID > 0 && c.Users != nil {
			actor, found, err := c.Users.GetUser(ctx, assignment.ActorID)
			if err != nil {
				return err
			}
			if found {
				body.ActorUsername = actor.Username
			}
		}
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		return c.create(ctx, envelope, entities.Notification{
			UserID:  assignment.UserID,
			Type:    entities.TypeAssignment,
			Payload: payload,
		})
	})
}

func (c EventConsumer) HandleUserEvent(ctx context.Context, envelope ports.EventEnvelope) error {
	event, err := eventsv1.DecodeUserEvent(envelope)
	if err != nil {
		return c.rejected(envelope, err)
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

func (c EventConsumer) create(ctx context.Context, envelope ports.EventEnvelope, notification entities.Notification) error {
	notification.Status = entities.StatusUnread
	notification.SentAt = c.now()
	created, err := c.Notifications.CreateNotification(ctx, notification)
	if err != nil {
		return err
	}
	if err := c.Emitter.Created(ctx, created); err != nil {
		return err
	}
	application.ResolveLogger(c.Logger).Info("notification created",
		"event", "notification_created",
		"module", moduleName,
		"layer", "worker",
		"source_event_type", envelope.EventType,
		"notification_id", created.ID,
		"user_id", created.UserID,
	)
	return nil
}

func (c EventConsumer) dismissInvitation(ctx context.Context, envelope ports.EventEnvelope, event *eventsv1.InvitationUpdated) error {
	notification, found, err := c.Notifications.FindInvitationNotification(ctx, event.InviteeID, event.InvitationID, event.Scope)
	if err != nil {
		return err
	}
	if !found || notification.Status == entities.StatusDismissed {
		return nil
	}
	if err := c.Notifications.UpdateStatus(ctx, notification.ID, entities.StatusDismissed); err != nil {
		return err
	}
	notification.Status = entities.StatusDismissed
	if err := c.Emitter.Updated(ctx, notification); err != nil {
		return err
	}
	application.ResolveLogger(c.Logger).Info("invitation notification dismissed",
		"event", "notification_invitation_dismissed",
		"module", moduleName,
		"layer", "worker",
		"source_event_type", envelope.EventType,
		"notification_id", notification.ID,
		"invitation_status", event.Status,
	)
	return nil
}

// once runs fn in a transaction, skipping envelopes whose eventId was
// already reserved.
func (c EventConsumer) once(ctx context.Context, envelope ports.EventEnvelope, fn func(ctx context.Context) error) error {
	eventID := strings.TrimSpace(envelope.EventID)
	return c.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if eventID != "" && c.Dedup != nil {
			duplicate, err := c.Dedup.ReserveEvent(ctx, eventID, hashPayload(envelope.Payload), c.now().Add(c.dedupTTL()))
			if err != nil {
				return err
			}
			if duplicate {
				application.ResolveLogger(c.Logger).Debug("duplicate event skipped",
					"event", "notification_duplicate_event_skipped",
					"module", moduleName,
					"layer", "worker",
					"event_id", eventID,
					"event_type", envelope.EventType,
				)
				return nil
			}
		}
		return fn(ctx)
	})
}

func (c EventConsumer) rejected(envelope ports.EventEnvelope, err error) error {
	if errors.Is(err, eventsv1.ErrUnknownEventType) {
		return nil
	}
	application.ResolveLogger(c.Logger).Error("event rejected",
		"event", "notification_event_rejected",
		"module", moduleName,
		"layer", "worker",
		"event_type", envelope.EventType,
		"event_id", envelope.EventID,
		"error", err.Error(),
	)
	return err
}

func (c EventConsumer) now() time.Time {
	if c.Clock != nil {
		return c.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (c EventConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
