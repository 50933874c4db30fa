package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/internal/shared/events"
)

type fakeStore struct {
	pending []Message
	sent    []string
}

func (s *fakeStore) ListPendingOutbox(_ context.Context, limit int) ([]Message, error) {
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeStore) MarkOutboxSent(_ context.Context, outboxID string, _ time.Time) error {
	s.sent = append(s.sent, outboxID)
	return nil
}

type fakePublisher struct {
	topics []string
	failOn string
}

func (p *fakePublisher) Publish(_ context.Context, topic string, event events.Envelope) error {
	if event.EventType == p.failOn {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	return nil
}

func mustMessage(t *testing.T, id string, event eventsv1.Event) Message {
	t.Helper()
	env, err := eventsv1.Wrap(event)
	if err != nil {
		t.Fatalf("wrap failed: %v", err)
	}
	msg, err := NewMessage(id, event.Topic(), env, time.Now())
	if err != nil {
		t.Fatalf("new message failed: %v", err)
	}
	return msg
}

func TestRelayPublishesToMessageTopic(t *testing.T) {
	store := &fakeStore{pending: []Message{
		mustMessage(t, "out-1", eventsv1.BoardDeleted{BoardID: 1}),
		mustMessage(t, "out-2", eventsv1.WorkspaceDeleted{WorkspaceID: 2, BoardIDs: []int64{1}}),
	}}
	publisher := &fakePublisher{}

	sent, err := Relay{Store: store, Publisher: publisher, Module: "test"}.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if sent != 2 || len(store.sent) != 2 {
		t.Fatalf("expected 2 sent, got %d marked=%v", sent, store.sent)
	}
	if publisher.topics[0] != eventsv1.TopicBoard || publisher.topics[1] != eventsv1.TopicWorkspace {
		t.Fatalf("unexpected topics %v", publisher.topics)
	}
}

func TestRelayStopsAtFirstFailure(t *testing.T) {
	store := &fakeStore{pending: []Message{
		mustMessage(t, "out-1", eventsv1.BoardDeleted{BoardID: 1}),
		mustMessage(t, "out-2", eventsv1.BoardUpdated{BoardID: 1, Name: "x"}),
		mustMessage(t, "out-3", eventsv1.BoardDeleted{BoardID: 3}),
	}}
	publisher := &fakePublisher{failOn: eventsv1.TypeBoardUpdated}

	sent, err := Relay{Store: store, Publisher: publisher}.RunOnce(context.Background())
	if err == nil {
		t.Fatalf("expected publish error")
	}
	if sent != 1 || len(store.sent) != 1 || store.sent[0] != "out-1" {
		t.Fatalf("expected only out-1 marked sent, got %v", store.sent)
	}
}
