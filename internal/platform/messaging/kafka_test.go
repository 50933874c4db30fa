package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/internal/shared/events"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	msgs     []kafka.Message
	failures int
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("broker unavailable")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) written() []kafka.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]kafka.Message(nil), f.msgs...)
}

func (f *fakeWriter) Close() error { return nil }

type fakeReader struct {
	mu        sync.Mutex
	queue     chan kafka.Message
	committed []int64
	closed    chan struct{}
	once      sync.Once
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{queue: make(chan kafka.Message, len(msgs)), closed: make(chan struct{})}
	for _, msg := range msgs {
		r.queue <- msg
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case <-r.closed:
		return kafka.Message{}, errors.New("reader closed")
	case msg := <-r.queue:
		return msg, nil
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range msgs {
		r.committed = append(r.committed, msg.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.once.Do(func() { close(r.closed) })
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func envelopeMessage(t *testing.T, offset int64, event eventsv1.Event) kafka.Message {
	t.Helper()
	env, err := eventsv1.Wrap(event)
	if err != nil {
		t.Fatalf("wrap failed: %v", err)
	}
	value, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return kafka.Message{Offset: offset, Value: value}
}

func TestKafkaPublishWritesKeyedEnvelope(t *testing.T) {
	writer := &fakeWriter{}
	bus := NewKafkaWithIO(writer, nil, nil)

	env, err := eventsv1.Wrap(eventsv1.BoardDeleted{BoardID: 5})
	if err != nil {
		t.Fatalf("wrap failed: %v", err)
	}
	env.Key = "5"
	if err := bus.Publish(context.Background(), eventsv1.TopicBoard, env); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	msgs := writer.written()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	msg := msgs[0]
	if msg.Topic != eventsv1.TopicBoard || string(msg.Key) != "5" {
		t.Fatalf("unexpected topic/key %s/%s", msg.Topic, msg.Key)
	}
	var decoded events.Envelope
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("message value is not an envelope: %v", err)
	}
	if decoded.EventType != eventsv1.TypeBoardDeleted {
		t.Fatalf("expected BOARD_DELETED, got %s", decoded.EventType)
	}
}

func TestKafkaCommitsOnlyAfterHandlerSucceeds(t *testing.T) {
	reader := newFakeReader(envelopeMessage(t, 7, eventsv1.BoardDeleted{BoardID: 1}))
	bus := NewKafkaWithIO(&fakeWriter{}, func(string, string) Reader { return reader }, nil)
	bus.RetryBackoff = time.Millisecond

	var mu sync.Mutex
	calls := 0
	done := make(chan struct{})
	handler := func(context.Context, events.Envelope) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			if len(reader.commits()) != 0 {
				t.Errorf("offset committed before handler succeeded")
			}
			return errors.New("transient")
		}
		close(done)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := bus.Subscribe(ctx, eventsv1.TopicBoard, "task-service", handler); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("handler never succeeded")
	}
	deadline := time.Now().Add(time.Second)
	for len(reader.commits()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if commits := reader.commits(); len(commits) != 1 || commits[0] != 7 {
		t.Fatalf("expected offset 7 committed once, got %v", commits)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestInProcessDeliversOncePerGroup(t *testing.T) {
	bus := NewInProcess(nil)
	ctx, cancel := context.WithCancel(context.Background())

	received := make(chan string, 4)
	for _, group := range []string{"task-service", "notification-service"} {
		group := group
		if err := bus.Subscribe(ctx, eventsv1.TopicBoard, group, func(context.Context, events.Envelope) error {
			received <- group
			return nil
		}); err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
	}

	env, _ := eventsv1.Wrap(eventsv1.BoardDeleted{BoardID: 2})
	if err := bus.Publish(ctx, eventsv1.TopicBoard, env); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	seen := map[string]int{}
	for i := 0; i < 2; i++ {
		select {
		case group := <-received:
			seen[group]++
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for delivery, seen=%v", seen)
		}
	}
	if seen["task-service"] != 1 || seen["notification-service"] != 1 {
		t.Fatalf("expected one delivery per group, got %v", seen)
	}
	cancel()
	bus.Wait()
}

func TestInProcessRetriesFailedHandler(t *testing.T) {
	bus := NewInProcess(nil)
	bus.RetryBackoff = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		bus.Wait()
	}()

	attempts := make(chan int, 3)
	count := 0
	if err := bus.Subscribe(ctx, eventsv1.TopicTask, "realtime-service", func(context.Context, events.Envelope) error {
		count++
		attempts <- count
		if count < 2 {
			return errors.New("transient")
		}
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	env, _ := eventsv1.Wrap(eventsv1.ColumnDeleted{BoardID: 1, ColumnID: 2})
	if err := bus.Publish(ctx, eventsv1.TopicTask, env); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	for want := 1; want <= 2; want++ {
		select {
		case got := <-attempts:
			if got != want {
				t.Fatalf("expected attempt %d, got %d", want, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for attempt %d", want)
		}
	}
}

func waitForCommit(t *testing.T, reader *fakeReader) []int64 {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(reader.commits()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	return reader.commits()
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaParksExhaustedMessageOnDeadLetterTopic(t *testing.T) {
	reader := newFakeReader(envelopeMessage(t, 9, eventsv1.BoardDeleted{BoardID: 3}))
	writer := &fakeWriter{failures: 1}
	bus := NewKafkaWithIO(writer, func(string, string) Reader { return reader }, nil)
	bus.RetryBackoff = time.Millisecond
	bus.MaxAttempts = 2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := func(context.Context, events.Envelope) error { return errors.New("board store down") }
	if err := bus.Subscribe(ctx, eventsv1.TopicBoard, "task-service", handler); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if commits := waitForCommit(t, reader); len(commits) != 1 || commits[0] != 9 {
		t.Fatalf("expected offset 9 committed after dead-lettering, got %v", commits)
	}
	msgs := writer.written()
	if len(msgs) != 1 {
		t.Fatalf("expected one dead-letter message after a failed write, got %d", len(msgs))
	}
	dlq := msgs[0]
	if dlq.Topic != eventsv1.TopicBoard+DeadLetterSuffix {
		t.Fatalf("unexpected dead-letter topic %q", dlq.Topic)
	}
	if header(dlq, "dlqSourceOffset") != "9" || header(dlq, "dlqConsumerGroup") != "task-service" {
		t.Fatalf("unexpected dead-letter headers %+v", dlq.Headers)
	}
	if header(dlq, "dlqError") != "board store down" {
		t.Fatalf("expected handler error in headers, got %q", header(dlq, "dlqError"))
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestKafkaParksUndecodableMessage(t *testing.T) {
	reader := newFakeReader(kafka.Message{Offset: 4, Value: []byte("not json")})
	writer := &fakeWriter{}
	bus := NewKafkaWithIO(writer, func(string, string) Reader { return reader }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	called := false
	handler := func(context.Context, events.Envelope) error { called = true; return nil }
	if err := bus.Subscribe(ctx, eventsv1.TopicTask, "notification-service", handler); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if commits := waitForCommit(t, reader); len(commits) != 1 || commits[0] != 4 {
		t.Fatalf("expected offset 4 committed, got %v", commits)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if called {
		t.Fatalf("handler must not see undecodable messages")
	}
	msgs := writer.written()
	if len(msgs) != 1 || msgs[0].Topic != eventsv1.TopicTask+DeadLetterSuffix || string(msgs[0].Value) != "not json" {
		t.Fatalf("expected raw message on dead-letter topic, got %+v", msgs)
	}
}
