package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"kanvas/internal/platform/config"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const (
	moduleName      = "internal/app/bootstrap"
	shutdownTimeout = 10 * time.Second
	pruneInterval   = time.Hour
)

type server interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// loop is a periodic job such as an outbox relay. A failed run is logged
// and retried on the next tick.
type loop struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) (int, error)
}

// App is one service process: an HTTP server, the consumers it starts and
// the periodic jobs it runs.
type App struct {
	name      string
	server    server
	consumers []func(ctx context.Context) error
	loops     []loop
	closers   []func() error
	logger    *slog.Logger
}

func newLogger(cfg config.Config, service string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	return logger
}

// Run blocks until ctx is cancelled or a component fails, then shuts the
// server down gracefully.
func (a *App) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, start := range a.consumers {
		if err := start(ctx); err != nil {
			return err
		}
	}
	for _, job := range a.loops {
		group.Go(func() error {
			a.runLoop(ctx, job)
			return nil
		})
	}

	group.Go(a.server.Start)
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	a.logger.Info("app started",
		"event", "bootstrap_app_started",
		"module", moduleName,
		"layer", "platform",
		"app", a.name,
		"consumers", len(a.consumers),
		"loops", len(a.loops),
	)
	err := group.Wait()
	a.logger.Info("app stopped",
		"event", "bootstrap_app_stopped",
		"module", moduleName,
		"layer", "platform",
		"app", a.name,
	)
	return err
}

func (a *App) runLoop(ctx context.Context, job loop) {
	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()
	for {
		if n, err := job.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("periodic job failed",
				"event", "bootstrap_loop_failed",
				"module", moduleName,
				"layer", "platform",
				"job", job.name,
				"error", err.Error(),
			)
		} else if n > 0 {
			a.logger.Debug("periodic job progressed",
				"event", "bootstrap_loop_progressed",
				"module", moduleName,
				"layer", "platform",
				"job", job.name,
				"count", n,
			)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// handlerServer runs a plain http.Handler, used by the gateway whose
// router is built by its own module.
type handlerServer struct {
	http   *http.Server
	logger *slog.Logger
}

func newHandlerServer(handler http.Handler, addr string, logger *slog.Logger) *handlerServer {
	return &handlerServer{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (s *handlerServer) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", moduleName,
		"layer", "platform",
		"addr", s.http.Addr,
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *handlerServer) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
