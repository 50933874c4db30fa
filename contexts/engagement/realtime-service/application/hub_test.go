package application

import (
	"testing"

	"kanvas/contexts/engagement/realtime-service/domain/entities"
)

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub()
	channel := entities.BoardChannel(1)
	ch, cancel := hub.Subscribe(channel, 7)
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(entities.Message{ID: int64(i + 1), Channel: channel})
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("expected a full buffer of %d, got %d", subscriberBuffer, len(ch))
	}
}

func TestHubEvictClosesOnlyThatUser(t *testing.T) {
	hub := NewHub()
	channel := entities.BoardChannel(1)
	evicted, cancelEvicted := hub.Subscribe(channel, 7)
	kept, cancelKept := hub.Subscribe(channel, 8)
	defer cancelKept()

	if removed := hub.Evict(channel, 7); removed != 1 {
		t.Fatalf("expected one stream evicted, got %d", removed)
	}
	if _, ok := <-evicted; ok {
		t.Fatalf("evicted channel should be closed")
	}
	cancelEvicted()

	hub.Publish(entities.Message{ID: 1, Channel: channel})
	if msg := <-kept; msg.ID != 1 {
		t.Fatalf("remaining subscriber should still receive, got %+v", msg)
	}
	if hub.Subscribers(channel) != 1 {
		t.Fatalf("expected one subscriber left, got %d", hub.Subscribers(channel))
	}
}
