package realtimeservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kanvas/contexts/engagement/realtime-service/domain/entities"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/faults"
)

const (
	boardID  int64 = 4
	viewerID int64 = 5
)

func push(t *testing.T, handle func(context.Context, eventsv1.Envelope) error, event eventsv1.Event) {
	t.Helper()
	env, err := eventsv1.Wrap(event)
	if err != nil {
		t.Fatalf("wrap %T: %v", event, err)
	}
	if err := handle(context.Background(), env); err != nil {
		t.Fatalf("handle %s: %v", env.EventType, err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBoardStreamReplaysThenEndsOnRemoval(t *testing.T) {
	module := NewInMemoryModule(nil, 10, nil)
	consumer := module.Consumer
	push(t, consumer.HandleTaskEvent, eventsv1.TaskCreated{BoardID: boardID, ColumnID: 1, TaskID: 10, Title: "a", OrderIndex: 1024})
	push(t, consumer.HandleTaskEvent, eventsv1.TaskMoved{BoardID: boardID, TaskID: 10, FromColumnID: 1, ToColumnID: 2, OrderIndex: 512})

	request := httptest.NewRequest(http.MethodGet, "/api/v1/realtime/boards/4", nil)
	request.Header.Set("Last-Event-ID", "1")
	recorder := httptest.NewRecorder()
	done := make(chan error, 1)
	go func() {
		done <- module.Handler.BoardStream(recorder, request, viewerID, "VIEWER", boardID)
	}()

	channel := entities.BoardChannel(boardID)
	waitFor(t, func() bool { return module.Hub.Subscribers(channel) == 1 })
	push(t, consumer.HandleBoardEvent, eventsv1.BoardMemberRemoved{
		BoardMembership: eventsv1.BoardMembership{BoardID: boardID, MemberID: 8, UserID: viewerID},
	})

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("stream returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not end after member removal")
	}

	body := recorder.Body.String()
	if strings.Contains(body, "id: 1\n") {
		t.Fatalf("message 1 should not be replayed:\n%s", body)
	}
	for _, want := range []string{"id: 2\n", `"type":"TASK_MOVED"`, "id: 3\n", `"type":"MEMBER_REMOVED"`, "event: closed"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in stream:\n%s", want, body)
		}
	}
	if got := recorder.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
}

func TestBoardStreamRequiresRole(t *testing.T) {
	module := NewInMemoryModule(nil, 10, nil)
	request := httptest.NewRequest(http.MethodGet, "/api/v1/realtime/boards/4", nil)
	recorder := httptest.NewRecorder()

	err := module.Handler.BoardStream(recorder, request, viewerID, "", boardID)
	if !errors.Is(err, faults.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	err = module.Handler.BoardStream(recorder, request, 0, "ADMIN", boardID)
	if !errors.Is(err, faults.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if recorder.Body.Len() != 0 {
		t.Fatalf("nothing should be written for a rejected stream")
	}
}

func TestNotificationReachesOnlyRecipient(t *testing.T) {
	module := NewInMemoryModule(nil, 10, nil)
	mine, cancelMine := module.Hub.Subscribe(entities.UserChannel(viewerID), viewerID)
	defer cancelMine()
	other, cancelOther := module.Hub.Subscribe(entities.UserChannel(99), 99)
	defer cancelOther()

	push(t, module.Consumer.HandleNotificationEvent, eventsv1.NotificationCreated{
		NotificationID: 1,
		UserID:         viewerID,
		Type:           "ASSIGNMENT",
		Status:         "UNREAD",
		Payload:        json.RawMessage(`{"taskId":3}`),
	})

	select {
	case msg := <-mine:
		if msg.Type != eventsv1.TypeNotificationCreated || msg.ID != 1 {
			t.Fatalf("unexpected message %+v", msg)
		}
		var frame entities.NotificationFrame
		if err := json.Unmarshal(msg.Payload, &frame); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if string(frame.Payload) != `{"taskId":3}` {
			t.Fatalf("payload not carried through: %s", frame.Payload)
		}
	default:
		t.Fatalf("recipient received nothing")
	}
	select {
	case msg := <-other:
		t.Fatalf("other user received %+v", msg)
	default:
	}
}

func TestConsumerSkipsUnknownAndRejectsMalformed(t *testing.T) {
	module := NewInMemoryModule(nil, 10, nil)
	ctx := context.Background()
	if err := module.Consumer.HandleTaskEvent(ctx, eventsv1.Envelope{EventType: "TASK_ARCHIVED", Payload: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("unknown type should be ignored: %v", err)
	}
	err := module.Consumer.HandleTaskEvent(ctx, eventsv1.Envelope{EventType: eventsv1.TypeTaskMoved, Payload: json.RawMessage(`[]`)})
	if !errors.Is(err, eventsv1.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestReplayLogIsBounded(t *testing.T) {
	module := NewInMemoryModule(nil, 3, nil)
	for i := int64(1); i <= 5; i++ {
		push(t, module.Consumer.HandleTaskEvent, eventsv1.TaskDeleted{BoardID: boardID, TaskID: i})
	}
	stream, err := module.Handler.Streams.Board(context.Background(), viewerID, "EDITOR", boardID, 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer stream.Close()
	if len(stream.Backlog) != 3 || stream.Backlog[0].ID != 3 || stream.Backlog[2].ID != 5 {
		t.Fatalf("expected ids 3..5, got %+v", stream.Backlog)
	}
}
