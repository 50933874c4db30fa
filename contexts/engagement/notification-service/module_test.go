package notificationservice

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	"kanvas/contexts/engagement/notification-service/application/commands"
	"kanvas/contexts/engagement/notification-service/domain/entities"
	domainerrors "kanvas/contexts/engagement/notification-service/domain/errors"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/faults"
)

const (
	inviteeID int64 = 21
	actorID   int64 = 3
)

func newModule(t *testing.T) Module {
	t.Helper()
	module := NewInMemoryModule(nil, nil)
	base := time.Date(2026, time.May, 4, 8, 0, 0, 0, time.UTC)
	module.Store.SetClock(func() time.Time { return base })
	return module
}

func envelope(t *testing.T, eventID string, event eventsv1.Event) eventsv1.Envelope {
	t.Helper()
	env, err := eventsv1.Wrap(event)
	if err != nil {
		t.Fatalf("wrap %T: %v", event, err)
	}
	env.EventID = eventID
	return env
}

func notificationEvents(t *testing.T, module Module) []eventsv1.NotificationEvent {
	t.Helper()
	var items []eventsv1.NotificationEvent
	for _, message := range module.Store.OutboxEvents() {
		var env eventsv1.Envelope
		if err := json.Unmarshal(message.Payload, &env); err != nil {
			t.Fatalf("decode outbox payload: %v", err)
		}
		event, err := eventsv1.DecodeNotificationEvent(env)
		if err != nil {
			t.Fatalf("decode notification event: %v", err)
		}
		if env.Key == "" {
			t.Fatalf("expected recipient key on %s", env.EventType)
		}
		items = append(items, event)
	}
	return items
}

func invitationCreated() eventsv1.InvitationCreated {
	return eventsv1.InvitationCreated{
		InvitationID:    40,
		Scope:           "BOARD",
		ContainerID:     7,
		ContainerName:   "Roadmap",
		InviterID:       actorID,
		InviterUsername: "grace",
		InviteeID:       inviteeID,
		Role:            "EDITOR",
	}
}

func TestInvitationCreatesNotificationOnce(t *testing.T) {
	ctx := context.Background()
	module := newModule(t)
	env := envelope(t, "evt-1", invitationCreated())

	for i := 0; i < 2; i++ {
		if err := module.Consumer.HandleInvitationEvent(ctx, env); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}

	items, err := module.Handler.List.Execute(ctx, inviteeID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one notification after redelivery, got %d", len(items))
	}
	var payload entities.InvitationPayload
	if err := json.Unmarshal(items[0].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.InviterUsername != "grace" || payload.TargetName != "Roadmap" || payload.Scope != "BOARD" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if items[0].Status != entities.StatusUnread {
		t.Fatalf("expected UNREAD, got %s", items[0].Status)
	}

	published := notificationEvents(t, module)
	if len(published) != 1 {
		t.Fatalf("expected one NOTIFICATION_CREATED, got %d", len(published))
	}
	if published[0].Recipient() != inviteeID {
		t.Fatalf("expected recipient %d, got %d", inviteeID, published[0].Recipient())
	}
}

func TestReusedEventIDWithDifferentPayloadConflicts(t *testing.T) {
	ctx := context.Background()
	module := newModule(t)
	if err := module.Consumer.HandleInvitationEvent(ctx, envelope(t, "evt-1", invitationCreated())); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	changed := invitationCreated()
	changed.Role = "VIEWER"
	err := module.Consumer.HandleInvitationEvent(ctx, envelope(t, "evt-1", changed))
	if !errors.Is(err, domainerrors.ErrDedupConflict) {
		t.Fatalf("expected ErrDedupConflict, got %v", err)
	}
}

func TestInvitationUpdateDismissesNotification(t *testing.T) {
	ctx := context.Background()
	module := newModule(t)
	if err := module.Consumer.HandleInvitationEvent(ctx, envelope(t, "evt-1", invitationCreated())); err != nil {
		t.Fatalf("create: %v", err)
	}
	update := eventsv1.InvitationUpdated{InvitationID: 40, Scope: "BOARD", ContainerID: 7, InviteeID: inviteeID, Status: "ACCEPTED"}
	if err := module.Consumer.HandleInvitationEvent(ctx, envelope(t, "evt-2", update)); err != nil {
		t.Fatalf("update: %v", err)
	}

	items, err := module.Handler.List.Execute(ctx, inviteeID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected dismissed notification to be hidden, got %d", len(items))
	}
	published := notificationEvents(t, module)
	if len(published) != 2 {
		t.Fatalf("expected created and updated events, got %d", len(published))
	}
	updated, ok := published[1].(*eventsv1.NotificationUpdated)
	if !ok || updated.Status != string(entities.StatusDismissed) {
		t.Fatalf("expected NOTIFICATION_UPDATED to DISMISSED, got %#v", published[1])
	}

	other := eventsv1.InvitationUpdated{InvitationID: 99, Scope: "WORKSPACE", InviteeID: inviteeID, Status: "DECLINED"}
	if err := module.Consumer.HandleInvitationEvent(ctx, envelope(t, "evt-3", other)); err != nil {
		t.Fatalf("update for unknown invitation should be a no-op: %v", err)
	}
}

func TestAssignmentUsesReplicatedActorName(t *testing.T) {
	ctx := context.Background()
	module := newModule(t)
	profile := eventsv1.UserCreated{UserProfile: eventsv1.UserProfile{UserID: actorID, Username: "grace"}}
	if err := module.Consumer.HandleUserEvent(ctx, envelope(t, "", profile)); err != nil {
		t.Fatalf("replicate user: %v", err)
	}
	assigned := eventsv1.TaskAssigned{TaskAssignment: eventsv1.TaskAssignment{
		BoardID: 7, TaskID: 12, BoardMemberID: 5, UserID: inviteeID, ActorID: actorID, TaskTitle: "Ship it",
	}}
	if err := module.Consumer.HandleTaskEvent(ctx, envelope(t, "evt-9", assigned)); err != nil {
		t.Fatalf("assignment: %v", err)
	}
	moved := eventsv1.TaskMoved{BoardID: 7, TaskID: 12, ToColumnID: 2, OrderIndex: 512}
	if err := module.Consumer.HandleTaskEvent(ctx, envelope(t, "evt-10", moved)); err != nil {
		t.Fatalf("unrelated task event: %v", err)
	}

	items, err := module.Handler.List.Execute(ctx, inviteeID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Type != entities.TypeAssignment {
		t.Fatalf("expected one assignment notification, got %+v", items)
	}
	var payload entities.AssignmentPayload
	if err := json.Unmarshal(items[0].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.ActorUsername != "grace" || !payload.Assigned || payload.TaskTitle != "Ship it" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestConsumerSkipsUnknownAndRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	module := newModule(t)
	unknown := eventsv1.Envelope{EventType: "BOARD_ARCHIVED", Payload: json.RawMessage(`{"boardId":1}`)}
	if err := module.Consumer.HandleBoardEvent(ctx, unknown); err != nil {
		t.Fatalf("unknown event type should be skipped: %v", err)
	}
	malformed := eventsv1.Envelope{EventType: eventsv1.TypeBoardMemberRemoved, Payload: json.RawMessage(`{"boardId":"x"}`)}
	if err := module.Consumer.HandleBoardEvent(ctx, malformed); !errors.Is(err, eventsv1.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestStatusUpdateRequiresOwner(t *testing.T) {
	ctx := context.Background()
	module := newModule(t)
	removed := eventsv1.BoardMemberRemoved{BoardMembership: eventsv1.BoardMembership{BoardID: 7, MemberID: 5, UserID: inviteeID, BoardName: "Roadmap"}}
	if err := module.Consumer.HandleBoardEvent(ctx, envelope(t, "evt-4", removed)); err != nil {
		t.Fatalf("member removed: %v", err)
	}
	items, err := module.Handler.List.Execute(ctx, inviteeID)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected one notification, got %d (%v)", len(items), err)
	}
	id := items[0].ID

	_, err = module.Handler.UpdateStatus.Execute(ctx, commands.UpdateStatusCommand{UserID: 99, NotificationID: id, Status: "READ"})
	if !errors.Is(err, faults.ErrForbidden) {
		t.Fatalf("expected forbidden for another user, got %v", err)
	}
	_, err = module.Handler.UpdateStatus.Execute(ctx, commands.UpdateStatusCommand{UserID: inviteeID, NotificationID: id, Status: "ARCHIVED"})
	if !errors.Is(err, faults.ErrInvalid) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	_, err = module.Handler.UpdateStatus.Execute(ctx, commands.UpdateStatusCommand{UserID: inviteeID, NotificationID: 404, Status: "READ"})
	if !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	updated, err := module.Handler.UpdateStatus.Execute(ctx, commands.UpdateStatusCommand{UserID: inviteeID, NotificationID: id, Status: "read"})
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if updated.Status != entities.StatusRead {
		t.Fatalf("expected READ, got %s", updated.Status)
	}
	count, err := module.Handler.UnreadCount.Execute(ctx, inviteeID)
	if err != nil || count != 0 {
		t.Fatalf("expected zero unread, got %d (%v)", count, err)
	}
}

func TestMarkAllReadAndPrune(t *testing.T) {
	ctx := context.Background()
	module := newModule(t)
	for i, eventID := range []string{"evt-a", "evt-b"} {
		removed := eventsv1.BoardMemberRemoved{BoardMembership: eventsv1.BoardMembership{BoardID: int64(10 + i), MemberID: 5, UserID: inviteeID}}
		if err := module.Consumer.HandleBoardEvent(ctx, envelope(t, eventID, removed)); err != nil {
			t.Fatalf("member removed: %v", err)
		}
	}
	marked, err := module.Handler.MarkAllRead.Execute(ctx, inviteeID)
	if err != nil || marked != 2 {
		t.Fatalf("expected two marked, got %d (%v)", marked, err)
	}

	later := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	module.Store.SetClock(func() time.Time { return later })
	pruned, err := module.Pruner.RunOnce(ctx)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 2 {
		t.Fatalf("expected both reservations to expire, got %d", pruned)
	}
}

func TestShuffledAndRedeliveredEventsConverge(t *testing.T) {
	removed := eventsv1.BoardMemberRemoved{BoardMembership: eventsv1.BoardMembership{
		BoardID: 7, MemberID: 5, UserID: inviteeID, BoardName: "Roadmap",
	}}
	assigned := eventsv1.TaskAssigned{TaskAssignment: eventsv1.TaskAssignment{
		BoardID: 8, TaskID: 12, BoardMemberID: 6, UserID: inviteeID, ActorID: actorID, TaskTitle: "Ship it",
	}}
	update := eventsv1.InvitationUpdated{InvitationID: 40, Scope: "BOARD", ContainerID: 7, InviteeID: inviteeID, Status: "DECLINED"}

	type delivery struct {
		eventID string
		event   eventsv1.Event
	}
	created := delivery{"evt-1", invitationCreated()}
	updated := delivery{"evt-2", update}
	removal := delivery{"evt-3", removed}
	assignment := delivery{"evt-4", assigned}

	orders := map[string][]delivery{
		"in order":            {created, updated, removal, assignment},
		"topics interleaved":  {assignment, created, removal, updated},
		"redelivered":         {created, removal, created, updated, removal, assignment, assignment},
		"stale create resent": {removal, created, updated, created, updated},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			module := newModule(t)
			for i, d := range order {
				env := envelope(t, d.eventID, d.event)
				var err error
				switch d.event.(type) {
				case eventsv1.InvitationCreated, eventsv1.InvitationUpdated:
					err = module.Consumer.HandleInvitationEvent(ctx, env)
				case eventsv1.BoardMemberRemoved:
					err = module.Consumer.HandleBoardEvent(ctx, env)
				case eventsv1.TaskAssigned:
					err = module.Consumer.HandleTaskEvent(ctx, env)
				}
				if err != nil {
					t.Fatalf("delivery %d (%s): %v", i, d.eventID, err)
				}
			}

			items, err := module.Handler.List.Execute(ctx, inviteeID)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			counts := map[entities.NotificationType]int{}
			for _, item := range items {
				counts[item.Type]++
			}
			wantAssignment := 0
			if slices.Contains(order, assignment) {
				wantAssignment = 1
			}
			if counts[entities.TypeInvitation] != 0 {
				t.Fatalf("expected the invitation notification dismissed, got %+v", counts)
			}
			if counts[entities.TypeRemovedFromBoard] != 1 || counts[entities.TypeAssignment] != wantAssignment {
				t.Fatalf("expected one notification per distinct event, got %+v", counts)
			}
		})
	}
}
