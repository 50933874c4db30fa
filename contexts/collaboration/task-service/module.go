package taskservice

import (
	"log/slog"

	httpadapter "kanvas/contexts/collaboration/task-service/adapters/http"
	"kanvas/contexts/collaboration/task-service/adapters/memory"
	"kanvas/contexts/collaboration/task-service/application"
	"kanvas/contexts/collaboration/task-service/application/commands"
	"kanvas/contexts/collaboration/task-service/application/queries"
	"kanvas/contexts/collaboration/task-service/application/workers"
	"kanvas/contexts/collaboration/task-service/domain/services"
	"kanvas/contexts/collaboration/task-service/ports"
	"kanvas/internal/shared/events"
	"kanvas/internal/shared/outbox"

	"github.com/go-playground/validator/v10"
)

type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.CascadeConsumer
	Relay    outbox.Relay
	Store    *memory.Store
}

type Repository interface {
	ports.ColumnRepository
	ports.TaskRepository
	ports.AssigneeRepository
	ports.BoardContentCleaner
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
	// OrderStep is the gap between consecutive order indexes. Zero means
	// services.DefaultStep.
	OrderStep float64
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	repo := deps.Repository
	logger := deps.Logger
	emitter := application.Emitter{Outbox: repo, IDs: deps.IDGenerator, Clock: deps.Clock}
	allocator := services.Allocator{Step: deps.OrderStep}
	if allocator.Step <= 0 {
		allocator.Step = services.DefaultStep
	}

	handler := httpadapter.Handler{
		CreateColumn: commands.CreateColumnUseCase{
			Columns: repo, Tx: deps.Tx, Emitter: emitter, Allocator: allocator, Clock: deps.Clock, Logger: logger,
		},
		RenameColumn: commands.RenameColumnUseCase{
			Columns: repo, Tx: deps.Tx, Emitter: emitter, Clock: deps.Clock, Logger: logger,
		},
		MoveColumn: commands.MoveColumnUseCase{
			Columns: repo, Tx: deps.Tx, Emitter: emitter, Allocator: allocator, Logger: logger,
		},
		DeleteColumn: commands.DeleteColumnUseCase{
			Columns: repo, Tx: deps.Tx, Emitter: emitter, Logger: logger,
		},
		CreateTask: commands.CreateTaskUseCase{
			Columns: repo, Tasks: repo, Tx: deps.Tx, Emitter: emitter, Allocator: allocator, Clock: deps.Clock, Logger: logger,
		},
		UpdateTask: commands.UpdateTaskUseCase{
			Tasks: repo, Tx: deps.Tx, Emitter: emitter, Clock: deps.Clock, Logger: logger,
		},
		MoveTask: commands.MoveTaskUseCase{
			Columns: repo, Tasks: repo, Tx: deps.Tx, Emitter: emitter, Allocator: allocator, Logger: logger,
		},
		DeleteTask: commands.DeleteTaskUseCase{
			Tasks: repo, Tx: deps.Tx, Emitter: emitter, Logger: logger,
		},
		AssignTask: commands.AssignTaskUseCase{
			Tasks: repo, Assignees: repo, Tx: deps.Tx, Emitter: emitter, Clock: deps.Clock, Logger: logger,
		},
		UnassignTask: commands.UnassignTaskUseCase{
			Tasks: repo, Assignees: repo, Tx: deps.Tx, Emitter: emitter, Logger: logger,
		},
		ListBoard: queries.ListBoardUseCase{
			Columns: repo, Tasks: repo, Assignees: repo, Users: repo, Clock: deps.Clock,
		},
		GetTask: queries.GetTaskUseCase{
			Tasks: repo, Assignees: repo, Users: repo, Clock: deps.Clock,
		},
		Validate: validator.New(),
		Clock:    deps.Clock.Now,
		Logger:   logger,
	}

	return Module{
		Handler: handler,
		Consumer: workers.CascadeConsumer{
			Subscriber: deps.Subscriber,
			Cleaner:    repo,
			Users:      repo,
			Tx:         deps.Tx,
			Logger:     logger,
		},
		Relay: outbox.Relay{
			Store:     repo,
			Publisher: deps.Publisher,
			Module:    "collaboration/task-service",
			Now:       deps.Clock.Now,
			Logger:    logger,
		},
	}
}

// NewInMemoryModule wires the module on a fresh memory store with the
// default order step.
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
