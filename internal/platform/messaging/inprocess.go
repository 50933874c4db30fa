package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"kanvas/internal/platform/metrics"
	"kanvas/internal/shared/events"
)

// InProcess is the bus used when a binary runs with IN_MEMORY=true and in
// tests. Each consumer group receives every envelope once, in publish order;
// a failed handler is retried before the next envelope is delivered.
type InProcess struct {
	mu           sync.RWMutex
	groups       map[string]map[string]chan events.Envelope
	logger       *slog.Logger
	MaxAttempts  int
	RetryBackoff time.Duration
	wg           sync.WaitGroup
}

func NewInProcess(logger *slog.Logger) *InProcess {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcess{
		groups:       make(map[string]map[string]chan events.Envelope),
		logger:       logger,
		MaxAttempts:  3,
		RetryBackoff: 10 * time.Millisecond,
	}
}

func (b *InProcess) Publish(ctx context.Context, topic string, event events.Envelope) error {
	b.mu.RLock()
	subs := make([]chan events.Envelope, 0, len(b.groups[topic]))
	for _, ch := range b.groups[topic] {
		subs = append(subs, ch)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		}
	}
	metrics.RecordPublished(topic)
	b.logger.Debug("event published",
		"event", "inprocess_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"subscriber_count", len(subs),
	)
	return nil
}

// Subscribe registers handler for topic. A second subscription for the same
// topic and group replaces nothing and is ignored.
func (b *InProcess) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler events.Handler,
) error {
	ch := make(chan events.Envelope, 128)

	b.mu.Lock()
	if b.groups[topic] == nil {
		b.groups[topic] = make(map[string]chan events.Envelope)
	}
	if _, exists := b.groups[topic][consumerGroup]; exists {
		b.mu.Unlock()
		return nil
	}
	b.groups[topic][consumerGroup] = ch
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, consumerGroup)
				return
			case event := <-ch:
				metrics.RecordConsumed(topic, consumerGroup, b.deliver(ctx, topic, consumerGroup, handler, event))
			}
		}
	}()
	return nil
}

func (b *InProcess) deliver(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler events.Handler,
	event events.Envelope,
) string {
	attempts := b.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		err := handler(ctx, event)
		if err == nil {
			return "ok"
		}
		b.logger.Error("consumer handler failed",
			"event", "inprocess_consume_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"consumer_group", consumerGroup,
			"event_id", event.EventID,
			"event_type", event.EventType,
			"attempt", attempt,
			"error", err.Error(),
		)
		if !sleepCtx(ctx, b.RetryBackoff) {
			return "cancelled"
		}
	}
	return "dead_letter"
}

// Wait blocks until every subscription goroutine has exited.
func (b *InProcess) Wait() {
	b.wg.Wait()
}

func (b *InProcess) removeSubscriber(topic string, consumerGroup string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.groups[topic], consumerGroup)
}
