package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"kanvas/internal/platform/metrics"
	"kanvas/internal/shared/events"

	"github.com/segmentio/kafka-go"
)

const (
	defaultHandlerTimeout = 10 * time.Second
	defaultMaxAttempts    = 10
	maxRetryBackoff       = 30 * time.Second

	// DeadLetterSuffix names the topic that receives messages a consumer
	// group gave up on: "<topic>.dlq".
	DeadLetterSuffix = ".dlq"
)

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Reader is the subset of kafka.Reader a consumer loop needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReaderFactory opens a consumer-group reader for one topic.
type ReaderFactory func(topic string, consumerGroup string) Reader

// Kafka publishes envelopes keyed by their partition key and runs one
// consumer-group reader per subscription. An offset is committed only after
// the handler succeeds or the message is parked on the dead-letter topic;
// failures are retried in place with backoff, which keeps per-key ordering.
type Kafka struct {
	writer         Writer
	newReader      ReaderFactory
	logger         *slog.Logger
	HandlerTimeout time.Duration
	MaxAttempts    int
	RetryBackoff   time.Duration

	mu      sync.Mutex
	readers []Reader
	closed  bool
	wg      sync.WaitGroup
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	newReader := func(topic string, consumerGroup string) Reader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  consumerGroup,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
	}
	return NewKafkaWithIO(writer, newReader, logger), nil
}

// NewKafkaWithIO allows injecting test writers and readers.
func NewKafkaWithIO(writer Writer, newReader ReaderFactory, logger *slog.Logger) *Kafka {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		writer:         writer,
		newReader:      newReader,
		logger:         logger,
		HandlerTimeout: defaultHandlerTimeout,
		MaxAttempts:    defaultMaxAttempts,
		RetryBackoff:   200 * time.Millisecond,
	}
}

func (k *Kafka) Publish(ctx context.Context, topic string, event events.Envelope) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(event.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(event.EventType)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to %s: %w", event.EventType, topic, err)
	}

	metrics.RecordPublished(topic)
	k.logger.Debug("event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler events.Handler,
) error {
	if k.newReader == nil {
		return errors.New("kafka subscriber has no reader factory")
	}
	reader := k.newReader(topic, consumerGroup)

	k.mu.Lock()
	k.readers = append(k.readers, reader)
	k.mu.Unlock()

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		k.consume(ctx, reader, topic, consumerGroup, handler)
	}()
	return nil
}

func (k *Kafka) consume(
	ctx context.Context,
	reader Reader,
	topic string,
	consumerGroup string,
	handler events.Handler,
) {
	k.logger.Info("kafka consumer started",
		"event", "kafka_consumer_started",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"consumer_group", consumerGroup,
	)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || k.isClosed() {
				return
			}
			k.logger.Warn("kafka fetch failed",
				"event", "kafka_fetch_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"error", err.Error(),
			)
			if !sleepCtx(ctx, time.Second) {
				return
			}
			continue
		}

		outcome, cause := k.deliver(ctx, msg, topic, consumerGroup, handler)
		if ctx.Err() != nil {
			return
		}
		if cause != nil && !k.deadLetter(ctx, msg, topic, consumerGroup, cause) {
			return
		}
		metrics.RecordConsumed(topic, consumerGroup, outcome)
		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			k.logger.Error("kafka commit failed",
				"event", "kafka_commit_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"offset", msg.Offset,
				"error", err.Error(),
			)
		}
	}
}

// deliver runs handler until it succeeds or MaxAttempts is reached. A
// non-nil error means the message must go to the dead-letter topic.
func (k *Kafka) deliver(
	ctx context.Context,
	msg kafka.Message,
	topic string,
	consumerGroup string,
	handler events.Handler,
) (string, error) {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		k.logger.Error("kafka message is not an envelope",
			"event", "kafka_consume_undecodable",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"offset", msg.Offset,
			"error", err.Error(),
		)
		return "undecodable", fmt.Errorf("decode envelope: %w", err)
	}

	backoff := k.RetryBackoff
	for attempt := 1; ; attempt++ {
		err := k.invoke(ctx, handler, envelope)
		if err == nil {
			return "ok", nil
		}
		k.logger.Error("consumer handler failed",
			"event", "kafka_consume_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"consumer_group", consumerGroup,
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
			"attempt", attempt,
			"error", err.Error(),
		)
		if k.MaxAttempts > 0 && attempt >= k.MaxAttempts {
			k.logger.Error("consumer giving up on event",
				"event", "kafka_consume_dead_letter",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", consumerGroup,
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"offset", msg.Offset,
			)
			return "dead_letter", err
		}
		if !sleepCtx(ctx, backoff) {
			return "cancelled", nil
		}
		backoff *= 2
		if backoff > maxRetryBackoff {
			backoff = maxRetryBackoff
		}
	}
}

// deadLetter copies msg to the dead-letter topic with the failure in its
// headers, retrying until the write succeeds. It returns false when ctx ends
// first, in which case the offset must not be committed.
func (k *Kafka) deadLetter(ctx context.Context, msg kafka.Message, topic string, consumerGroup string, cause error) bool {
	dlq := kafka.Message{
		Topic: topic + DeadLetterSuffix,
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(append([]kafka.Header(nil), msg.Headers...),
			kafka.Header{Key: "dlqSourceTopic", Value: []byte(topic)},
			kafka.Header{Key: "dlqConsumerGroup", Value: []byte(consumerGroup)},
			kafka.Header{Key: "dlqSourcePartition", Value: []byte(strconv.Itoa(msg.Partition))},
			kafka.Header{Key: "dlqSourceOffset", Value: []byte(strconv.FormatInt(msg.Offset, 10))},
			kafka.Header{Key: "dlqError", Value: []byte(cause.Error())},
		),
	}
	backoff := k.RetryBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	for {
		err := k.writer.WriteMessages(ctx, dlq)
		if err == nil {
			metrics.RecordPublished(dlq.Topic)
			return true
		}
		k.logger.Error("dead-letter publish failed",
			"event", "kafka_dead_letter_publish_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", dlq.Topic,
			"offset", msg.Offset,
			"error", err.Error(),
		)
		if !sleepCtx(ctx, backoff) {
			return false
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}
}

func (k *Kafka) invoke(ctx context.Context, handler events.Handler, envelope events.Envelope) error {
	timeout := k.HandlerTimeout
	if timeout <= 0 {
		timeout = defaultHandlerTimeout
	}
	handlerCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return handler(handlerCtx, envelope)
}

// Close stops every reader, waits for consumer loops and closes the writer.
func (k *Kafka) Close() error {
	k.mu.Lock()
	readers := k.readers
	k.readers = nil
	k.closed = true
	k.mu.Unlock()

	var errs []error
	for _, reader := range readers {
		if err := reader.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	k.wg.Wait()
	if k.writer != nil {
		if err := k.writer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (k *Kafka) isClosed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.closed
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
