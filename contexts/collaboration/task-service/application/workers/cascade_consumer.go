package workers

import (
	"context"
	"errors"
	"log/slog"

	"kanvas/contexts/collaboration/task-service/application"
	"kanvas/contexts/collaboration/task-service/domain/entities"
	"kanvas/contexts/collaboration/task-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
)

const (
	ConsumerGroup = "task-service"
	moduleName    = "collaboration/task-service"
)

// CascadeConsumer applies deletions and membership removals announced by
// board-service, and keeps the user replica current. Every handler is safe
// to run again for the same event.
type CascadeConsumer struct {
	Subscriber ports.EventSubscriber
	Cleaner    ports.BoardContentCleaner
	Users      ports.UserReplica
	Tx         ports.TxRunner
	Logger     *slog.Logger
}

func (c CascadeConsumer) Start(ctx context.Context) error {
	if c.Subscriber == nil {
		return nil
	}
	subscriptions := []struct {
		topic   string
		handler func(context.Context, ports.EventEnvelope) error
	}{
		{topic: eventsv1.TopicBoard, handler: c.HandleBoardEvent},
		{topic: eventsv1.TopicWorkspace, handler: c.HandleWorkspaceEvent},
		{topic: eventsv1.TopicUser, handler: c.HandleUserEvent},
	}
	for _, subscription := range subscriptions {
		if err := c.Subscriber.Subscribe(ctx, subscription.topic, ConsumerGroup, subscription.handler); err != nil {
			return err
		}
	}
	return nil
}

func (c CascadeConsumer) HandleBoardEvent(ctx context.Context, envelope ports.EventEnvelope) error {
	event, err := eventsv1.DecodeBoardEvent(envelope)
	if err != nil {
		return c.rejected(envelope, err)
	}

	switch e := event.(type) {
	case *eventsv1.BoardDeleted:
		return c.deleteBoards(ctx, envelope, []int64{e.BoardID})
	case *eventsv1.BoardMemberRemoved:
		return c.deleteAssignments(ctx, envelope, e.BoardMembership)
	case *eventsv1.BoardMemberLeft:
		return c.deleteAssignments(ctx, envelope, e.BoardMembership)
	default:
		return nil
	}
}

func (c CascadeConsumer) HandleWorkspaceEvent(ctx context.Context, envelope ports.EventEnvelope) error {
	event, err := eventsv1.DecodeWorkspaceEvent(envelope)
	if err != nil {
		return c.rejected(envelope, err)
	}
	if deleted, ok := event.(*eventsv1.WorkspaceDeleted); ok {
		return c.deleteBoards(ctx, envelope, deleted.BoardIDs)
	}
	return nil
}

func (c CascadeConsumer) HandleUserEvent(ctx context.Context, envelope ports.EventEnvelope) error {
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

func (c CascadeConsumer) deleteBoards(ctx context.Context, envelope ports.EventEnvelope, boardIDs []int64) error {
	if len(boardIDs) == 0 {
		return nil
	}
	var removed int
	err := c.Tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		removed, err = c.Cleaner.DeleteBoardContent(ctx, boardIDs)
		return err
	})
	if err != nil {
		return err
	}
	application.ResolveLogger(c.Logger).Info("board content removed",
		"event", "task_board_content_removed",
		"module", moduleName,
		"layer", "worker",
		"event_type", envelope.EventType,
		"board_ids", boardIDs,
		"rows", removed,
	)
	return nil
}

func (c CascadeConsumer) deleteAssignments(ctx context.Context, envelope ports.EventEnvelope, membership eventsv1.BoardMembership) error {
	removed, err := c.Cleaner.DeleteMemberAssignments(ctx, membership.BoardID, membership.MemberID)
	if err != nil {
		return err
	}
	application.ResolveLogger(c.Logger).Info("member assignments removed",
		"event", "task_member_assignments_removed",
		"module", moduleName,
		"layer", "worker",
		"event_type", envelope.EventType,
		"board_id", membership.BoardID,
		"member_id", membership.MemberID,
		"rows", removed,
	)
	return nil
}

// rejected swallows event types this service does not know and returns
// decoding failures so the message is redelivered.
func (c CascadeConsumer) rejected(envelope ports.EventEnvelope, err error) error {
	if errors.Is(err, eventsv1.ErrUnknownEventType) {
		return nil
	}
	application.ResolveLogger(c.Logger).Error("event rejected",
		"event", "task_event_rejected",
		"module", moduleName,
		"layer", "worker",
		"event_type", envelope.EventType,
		"event_id", envelope.EventID,
		"error", err.Error(),
	)
	return err
}
