package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	boardservice "kanvas/contexts/collaboration/board-service"
	taskservice "kanvas/contexts/collaboration/task-service"
	notificationservice "kanvas/contexts/engagement/notification-service"
	realtimeservice "kanvas/contexts/engagement/realtime-service"
	userservice "kanvas/contexts/identity-access/user-service"
	"kanvas/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "kanvas/internal/platform/httpserver/docs"
)

// Services selects which modules a process exposes. A nil module mounts no
// routes, so each binary passes only the service it runs.
type Services struct {
	Board        *boardservice.Module
	Task         *taskservice.Module
	User         *userservice.Module
	Notification *notificationservice.Module
	Realtime     *realtimeservice.Module
	// Health reports readiness of the process dependencies. Nil means ready.
	Health func(ctx context.Context) error
}

type Options struct {
	// CookieSecure marks the access cookie Secure.
	CookieSecure bool
}

type Server struct {
	router   chi.Router
	logger   *slog.Logger
	addr     string
	services Services
	options  Options
	http     *http.Server
}

func New(services Services, options Options, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		addr:     addr,
		services: services,
		options:  options,
	}
	s.registerRoutes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Open event streams end when ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		if s.services.Board != nil {
			s.mountBoardRoutes(r)
		}
		if s.services.Task != nil {
			s.mountTaskRoutes(r)
		}
		if s.services.User != nil {
			s.mountUserRoutes(r)
		}
		if s.services.Notification != nil {
			s.mountNotificationRoutes(r)
		}
		if s.services.Realtime != nil {
			s.mountRealtimeRoutes(r)
		}
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.services.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.services.Health(ctx); err != nil {
			s.logger.Warn("health check failed",
				"event", "http_health_check_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"error", err.Error(),
			)
			writeError(w, http.StatusServiceUnavailable, "unavailable", "dependency unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
