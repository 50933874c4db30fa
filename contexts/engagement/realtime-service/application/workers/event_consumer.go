package workers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"kanvas/contexts/engagement/realtime-service/application"
	"kanvas/contexts/engagement/realtime-service/domain/entities"
	"kanvas/contexts/engagement/realtime-service/domain/services"
	"kanvas/contexts/engagement/realtime-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
)

const (
	ConsumerGroup = "realtime-service"
	moduleName    = "engagement/realtime-service"
)

// EventConsumer appends translated events to the replay log and pushes
// them to live subscribers.
type EventConsumer struct {
	Subscriber ports.EventSubscriber
	Replay     ports.ReplayLog
	Hub        *application.Hub
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (c EventConsumer) Start(ctx context.Context) error {
	if c.Subscriber == nil {
		return nil
	}
	if err := c.Subscriber.Subscribe(ctx, eventsv1.TopicBoard, ConsumerGroup, c.HandleBoardEvent); err != nil {
		return err
	}
	if err := c.Subscriber.Subscribe(ctx, eventsv1.TopicTask, ConsumerGroup, c.HandleTaskEvent); err != nil {
		return err
	}
	return c.Subscriber.Subscribe(ctx, eventsv1.TopicNotification, ConsumerGroup, c.HandleNotificationEvent)
}

func (c EventConsumer) HandleBoardEvent(ctx context.Context, envelope ports.EventEnvelope) error {
	event, err := eventsv1.DecodeBoardEvent(envelope)
	if err != nil {
		return c.rejected(envelope, err)
	}
	out, ok := services.TranslateBoardEvent(event)
	if !ok {
		return nil
	}
	if err := c.push(ctx, envelope, out); err != nil {
		return err
	}

	switch e := event.(type) {
	case *eventsv1.BoardMemberRemoved:
		c.evict(out.Channel, e.UserID)
	case *eventsv1.BoardMemberLeft:
		c.evict(out.Channel, e.UserID)
	case *eventsv1.BoardDeleted:
		c.Hub.CloseChannel(out.Channel)
	}
	return nil
}

func (c EventConsumer) HandleTaskEvent(ctx context.Context, envelope ports.EventEnvelope) error {
	event, err := eventsv1.DecodeTaskEvent(envelope)
	if err != nil {
		return c.rejected(envelope, err)
	}
	out, ok := services.TranslateTaskEvent(event)
	if !ok {
		return nil
	}
	return c.push(ctx, envelope, out)
}

func (c EventConsumer) HandleNotificationEvent(ctx context.Context, envelope ports.EventEnvelope) error {
	event, err := eventsv1.DecodeNotificationEvent(envelope)
	if err != nil {
		return c.rejected(envelope, err)
	}
	out, ok := services.TranslateNotificationEvent(event)
	if !ok {
		return nil
	}
	return c.push(ctx, envelope, out)
}

func (c EventConsumer) push(ctx context.Context, envelope ports.EventEnvelope, out services.Outbound) error {
	body, err := json.Marshal(out.Body)
	if err != nil {
		return err
	}
	occurredAt := envelope.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = c.now()
	}
	stored, err := c.Replay.Append(ctx, entities.Message{
		Channel:    out.Channel,
		Type:       out.Type,
		Payload:    body,
		OccurredAt: occurredAt.UTC(),
	})
	if err != nil {
		application.ResolveLogger(c.Logger).Error("replay append failed",
			"event", "realtime_replay_append_failed",
			"module", moduleName,
			"layer", "worker",
			"channel", string(out.Channel),
			"message_type", out.Type,
			"error", err.Error(),
		)
		return err
	}
	delivered := c.Hub.Publish(stored)
	application.ResolveLogger(c.Logger).Debug("realtime message pushed",
		"event", "realtime_message_pushed",
		"module", moduleName,
		"layer", "worker",
		"channel", string(stored.Channel),
		"message_type", stored.Type,
		"message_id", stored.ID,
		"delivered", delivered,
	)
	return nil
}

func (c EventConsumer) evict(channel entities.Channel, userID int64) {
	if removed := c.Hub.Evict(channel, userID); removed > 0 {
		application.ResolveLogger(c.Logger).Info("board stream closed for removed member",
			"event", "realtime_member_evicted",
			"module", moduleName,
			"layer", "worker",
			"channel", string(channel),
			"user_id", userID,
			"streams", removed,
		)
	}
}

func (c EventConsumer) rejected(envelope ports.EventEnvelope, err error) error {
	if errors.Is(err, eventsv1.ErrUnknownEventType) {
		return nil
	}
	application.ResolveLogger(c.Logger).Error("event rejected",
		"event", "realtime_event_rejected",
		"module", moduleName,
		"layer", "worker",
		"event_type", envelope.EventType,
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
