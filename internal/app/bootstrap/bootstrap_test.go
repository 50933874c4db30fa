package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type fakeServer struct {
	stopped chan struct{}
	started atomic.Bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{stopped: make(chan struct{})}
}

func (s *fakeServer) Start() error {
	s.started.Store(true)
	<-s.stopped
	return nil
}

func (s *fakeServer) Shutdown(context.Context) error {
	close(s.stopped)
	return nil
}

func TestAppRunsLoopsUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	var consumers atomic.Int32
	server := newFakeServer()
	app := &App{
		name:   "test",
		server: server,
		consumers: []func(ctx context.Context) error{
			func(context.Context) error { consumers.Add(1); return nil },
		},
		loops: []loop{{
			name:     "relay",
			interval: 5 * time.Millisecond,
			run: func(context.Context) (int, error) {
				if runs.Add(1) == 1 {
					return 0, errors.New("broker unavailable")
				}
				return 1, nil
			},
		}},
		logger: slog.Default(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("loop did not keep running after a failure, runs=%d", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("app did not stop after cancellation")
	}
	if !server.started.Load() {
		t.Fatalf("expected server to start")
	}
	if consumers.Load() != 1 {
		t.Fatalf("expected consumer started once, got %d", consumers.Load())
	}
}

func TestAppRunFailsWhenConsumerCannotStart(t *testing.T) {
	app := &App{
		name:   "test",
		server: newFakeServer(),
		consumers: []func(ctx context.Context) error{
			func(context.Context) error { return errors.New("no reader factory") },
		},
		logger: slog.Default(),
	}
	if err := app.Run(context.Background()); err == nil {
		t.Fatalf("expected consumer start error")
	}
}

func TestCloseRunsInReverseOrder(t *testing.T) {
	var order []string
	app := &App{closers: []func() error{
		func() error { order = append(order, "postgres"); return nil },
		func() error { order = append(order, "kafka"); return errors.New("flush failed") },
	}}
	err := app.Close()
	if err == nil {
		t.Fatalf("expected joined close error")
	}
	if len(order) != 2 || order[0] != "kafka" || order[1] != "postgres" {
		t.Fatalf("unexpected close order %v", order)
	}
}

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
