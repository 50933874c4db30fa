// Package outbox relays envelopes that producers persisted in the same
// transaction as their state change.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"kanvas/internal/shared/events"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
)

// Message is one outbox row. Payload holds the JSON encoded envelope.
type Message struct {
	ID        string
	Topic     string
	EventType string
	Key       string
	Payload   []byte
	CreatedAt time.Time
}

// NewMessage encodes env for storage under id.
func NewMessage(id string, topic string, env events.Envelope, createdAt time.Time) (Message, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return Message{}, fmt.Errorf("encode outbox envelope: %w", err)
	}
	return Message{
		ID:        id,
		Topic:     topic,
		EventType: env.EventType,
		Key:       env.Key,
		Payload:   payload,
		CreatedAt: createdAt.UTC(),
	}, nil
}

// Store is the polling side of a service outbox.
type Store interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]Message, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

type Relay struct {
	Store     Store
	Publisher events.Publisher
	Module    string
	BatchSize int
	Now       func() time.Time
	Logger    *slog.Logger
}

// RunOnce publishes one batch in creation order and stops at the first
// failure so later rows never overtake an unsent one.
func (r Relay) RunOnce(ctx context.Context) (int, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Store.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox list pending failed",
			"event", "outbox_list_failed",
			"module", r.Module,
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	sent := 0
	for _, message := range pending {
		var envelope events.Envelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("outbox payload decode failed",
				"event", "outbox_decode_failed",
				"module", r.Module,
				"layer", "worker",
				"outbox_id", message.ID,
				"error", err.Error(),
			)
			return sent, err
		}

		if err := r.Publisher.Publish(ctx, message.Topic, envelope); err != nil {
			logger.Error("outbox publish failed",
				"event", "outbox_publish_failed",
				"module", r.Module,
				"layer", "worker",
				"outbox_id", message.ID,
				"topic", message.Topic,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return sent, err
		}
		if err := r.Store.MarkOutboxSent(ctx, message.ID, r.now()); err != nil {
			logger.Error("outbox mark sent failed",
				"event", "outbox_mark_sent_failed",
				"module", r.Module,
				"layer", "worker",
				"outbox_id", message.ID,
				"error", err.Error(),
			)
			return sent, err
		}
		sent++
	}

	if sent > 0 {
		logger.Info("outbox relay cycle completed",
			"event", "outbox_relay_completed",
			"module", r.Module,
			"layer", "worker",
			"sent_count", sent,
		)
	}
	return sent, nil
}

func (r Relay) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}
