package workers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"kanvas/contexts/collaboration/board-service/adapters/memory"
	eventsv1 "kanvas/contracts/events/v1"
)

func TestUserReplicaConsumerUpsertsProfile(t *testing.T) {
	store := memory.NewStore()
	consumer := UserReplicaConsumer{Users: store}

	env, err := eventsv1.Wrap(eventsv1.UserCreated{UserProfile: eventsv1.UserProfile{
		UserID:   7,
		Username: "grace",
		Email:    "grace@example.com",
	}})
	if err != nil {
		t.Fatalf("wrap failed: %v", err)
	}
	if err := consumer.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	env, _ = eventsv1.Wrap(eventsv1.UserUpdated{UserProfile: eventsv1.UserProfile{
		UserID:   7,
		Username: "grace.h",
		Email:    "grace@example.com",
	}})
	if err := consumer.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle update failed: %v", err)
	}

	users, err := store.GetUsers(context.Background(), []int64{7})
	if err != nil {
		t.Fatalf("get users failed: %v", err)
	}
	if users[7].Username != "grace.h" {
		t.Fatalf("expected replica to follow update, got %+v", users[7])
	}
}

func TestUserReplicaConsumerSkipsUnknownAndRejectsMalformed(t *testing.T) {
	consumer := UserReplicaConsumer{Users: memory.NewStore()}

	unknown := eventsv1.Envelope{EventType: "USER_ARCHIVED", Payload: json.RawMessage(`{"id":1}`)}
	if err := consumer.Handle(context.Background(), unknown); err != nil {
		t.Fatalf("expected unknown type to be skipped, got %v", err)
	}

	malformed := eventsv1.Envelope{EventType: eventsv1.TypeUserCreated, Payload: json.RawMessage(`{"id":"x"}`)}
	if err := consumer.Handle(context.Background(), malformed); !errors.Is(err, eventsv1.ErrMalformedPayload) {
		t.Fatalf("expected malformed payload error, got %v", err)
	}
}
