package notificationservice

import (
	"log/slog"
	"time"

	httpadapter "kanvas/contexts/engagement/notification-service/adapters/http"
	"kanvas/contexts/engagement/notification-service/adapters/memory"
	"kanvas/contexts/engagement/notification-service/application"
	"kanvas/contexts/engagement/notification-service/application/commands"
	"kanvas/contexts/engagement/notification-service/application/queries"
	"kanvas/contexts/engagement/notification-service/application/workers"
	"kanvas/contexts/engagement/notification-service/ports"
	"kanvas/internal/shared/events"
	"kanvas/internal/shared/outbox"

	"github.com/go-playground/validator/v10"
)

type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.EventConsumer
	Pruner   workers.DedupPruner
	Relay    outbox.Relay
	Store    *memory.Store
}

type Repository interface {
	ports.NotificationRepository
	ports.EventDedupStore
	ports.UserReplica
	ports.OutboxWriter
	outbox.Store
}

type Dependencies struct {
	Repository  Repository
	Tx          ports.TxRunner
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Subscriber  ports.EventSubscriber
	Publisher   events.Publisher
	DedupTTL    time.Duration
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	repo := deps.Repository
	logger := deps.Logger
	emitter := application.Emitter{Outbox: repo, IDs: deps.IDGenerator, Clock: deps.Clock}

	return Module{
		Handler: httpadapter.Handler{
			List:        queries.ListNotificationsUseCase{Notifications: repo},
			UnreadCount: queries.UnreadCountUseCase{Notifications: repo},
			UpdateStatus: commands.UpdateStatusUseCase{
				Notifications: repo, Tx: deps.Tx, Emitter: emitter, Logger: logger,
			},
			MarkAllRead: commands.MarkAllReadUseCase{
				Notifications: repo, Tx: deps.Tx, Emitter: emitter, Logger: logger,
			},
			Validate: validator.New(),
		},
		Consumer: workers.EventConsumer{
			Subscriber:    deps.Subscriber,
			Notifications: repo,
			Dedup:         repo,
			Users:         repo,
			Tx:            deps.Tx,
			Emitter:       emitter,
			Clock:         deps.Clock,
			DedupTTL:      deps.DedupTTL,
			Logger:        logger,
		},
		Pruner: workers.DedupPruner{Dedup: repo, Clock: deps.Clock, Logger: logger},
		Relay: outbox.Relay{
			Store:     repo,
			Publisher: deps.Publisher,
			Module:    "engagement/notification-service",
			Now:       deps.Clock.Now,
			Logger:    logger,
		},
	}
}

func NewInMemoryModule(bus events.Bus, logger *slog.Logger) Module {
	store := memory.NewStore()
	deps := Dependencies{
		Repository:  store,
		Tx:          store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	}
	if bus != nil {
		deps.Subscriber = bus
		deps.Publisher = bus
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
