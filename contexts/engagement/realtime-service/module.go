package realtimeservice

import (
	"log/slog"
	"time"

	httpadapter "kanvas/contexts/engagement/realtime-service/adapters/http"
	"kanvas/contexts/engagement/realtime-service/adapters/memory"
	"kanvas/contexts/engagement/realtime-service/application"
	"kanvas/contexts/engagement/realtime-service/application/workers"
	"kanvas/contexts/engagement/realtime-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.EventConsumer
	Hub      *application.Hub
}

type Dependencies struct {
	Replay     ports.ReplayLog
	Subscriber ports.EventSubscriber
	Clock      ports.Clock
	Heartbeat  time.Duration
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	hub := application.NewHub()
	return Module{
		Handler: httpadapter.Handler{
			Streams:   application.OpenStreamUseCase{Hub: hub, Replay: deps.Replay, Logger: deps.Logger},
			Heartbeat: deps.Heartbeat,
			Logger:    deps.Logger,
		},
		Consumer: workers.EventConsumer{
			Subscriber: deps.Subscriber,
			Replay:     deps.Replay,
			Hub:        hub,
			Clock:      deps.Clock,
			Logger:     deps.Logger,
		},
		Hub: hub,
	}
}

// NewInMemoryModule keeps the replay log in process memory.
func NewInMemoryModule(subscriber ports.EventSubscriber, replaySize int, logger *slog.Logger) Module {
	replay := memory.NewReplayLog(replaySize)
	return NewModule(Dependencies{
		Replay:     replay,
		Subscriber: subscriber,
		Clock:      replay,
		Logger:     logger,
	})
}
