package v1

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestWrapAndDecodeBoardEvent(t *testing.T) {
	env, err := Wrap(BoardMemberRemoved{
		BoardMembership: BoardMembership{BoardID: 4, MemberID: 9, UserID: 21, BoardName: "Roadmap"},
		RemovedBy:       2,
	})
	if err != nil {
		t.Fatalf("wrap failed: %v", err)
	}
	if env.EventType != TypeBoardMemberRemoved {
		t.Fatalf("expected %s, got %s", TypeBoardMemberRemoved, env.EventType)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope failed: %v", err)
	}
	var decoded Envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal envelope failed: %v", err)
	}

	event, err := DecodeBoardEvent(decoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	removed, ok := event.(*BoardMemberRemoved)
	if !ok {
		t.Fatalf("expected *BoardMemberRemoved, got %T", event)
	}
	if removed.UserID != 21 || removed.BoardID != 4 || removed.MemberID != 9 {
		t.Fatalf("unexpected payload: %+v", removed)
	}
}

func TestEnvelopeAcceptsMinimalWireShape(t *testing.T) {
	raw := []byte(`{"eventType":"BOARD_DELETED","payload":{"boardId":12}}`)
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	event, err := DecodeBoardEvent(env)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if deleted := event.(*BoardDeleted); deleted.BoardID != 12 {
		t.Fatalf("expected board 12, got %d", deleted.BoardID)
	}
}

func TestDecodeUnknownEventType(t *testing.T) {
	_, err := DecodeTaskEvent(Envelope{EventType: "TASK_ARCHIVED", Payload: json.RawMessage(`{}`)})
	if !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	cases := []Envelope{
		{EventType: TypeBoardDeleted, Payload: json.RawMessage(`{"boardId":"twelve"}`)},
		{EventType: TypeBoardDeleted, Payload: json.RawMessage(`{}`)},
		{EventType: TypeBoardDeleted},
		{EventType: TypeBoardDeleted, Payload: json.RawMessage(`null`)},
	}
	for _, env := range cases {
		if _, err := DecodeBoardEvent(env); !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("expected ErrMalformedPayload for %s, got %v", string(env.Payload), err)
		}
	}
}

func TestTaskEventsExposeBoard(t *testing.T) {
	env, err := Wrap(TaskAssigned{TaskAssignment: TaskAssignment{BoardID: 3, TaskID: 8, BoardMemberID: 5, UserID: 11}})
	if err != nil {
		t.Fatalf("wrap failed: %v", err)
	}
	event, err := DecodeTaskEvent(env)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if event.Board() != 3 {
		t.Fatalf("expected board 3, got %d", event.Board())
	}
	if event.Topic() != TopicTask {
		t.Fatalf("expected topic %s, got %s", TopicTask, event.Topic())
	}
}

func TestUserEventProfile(t *testing.T) {
	env := Envelope{
		EventType: TypeUserCreated,
		Payload:   json.RawMessage(`{"id":5,"username":"ada","email":"ada@example.com","avatarColor":"#aabbcc"}`),
	}
	event, err := DecodeUserEvent(env)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if event.Profile().Username != "ada" || event.Profile().UserID != 5 {
		t.Fatalf("unexpected profile: %+v", event.Profile())
	}
}
