package userservice

import (
	"log/slog"

	"kanvas/contexts/identity-access/user-service/adapters/crypto"
	httpadapter "kanvas/contexts/identity-access/user-service/adapters/http"
	"kanvas/contexts/identity-access/user-service/adapters/memory"
	"kanvas/contexts/identity-access/user-service/application"
	"kanvas/contexts/identity-access/user-service/ports"
	"kanvas/internal/shared/events"
	"kanvas/internal/shared/outbox"

	"github.com/go-playground/validator/v10"
)

type Module struct {
	Handler httpadapter.Handler
	Relay   outbox.Relay
	Store   *memory.Store
}

type Repository interface {
	ports.Repository
	ports.OutboxWriter
	outbox.Store
}

type Dependencies struct {
	Repository  Repository
	Tx          ports.TxRunner
	Hasher      ports.PasswordHasher
	Tokens      ports.TokenIssuer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Publisher   events.Publisher
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	hasher := deps.Hasher
	if hasher == nil {
		hasher = crypto.BcryptHasher{}
	}
	service := application.Service{
		Repo:   deps.Repository,
		Tx:     deps.Tx,
		Hasher: hasher,
		Tokens: deps.Tokens,
		Outbox: deps.Repository,
		IDs:    deps.IDGenerator,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Validate: validator.New()},
		Relay: outbox.Relay{
			Store:     deps.Repository,
			Publisher: deps.Publisher,
			Module:    "identity-access/user-service",
			Now:       deps.Clock.Now,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module on a memory store. Tests pass a low
// bcrypt cost through hasher; nil uses the default cost.
func NewInMemoryModule(tokens ports.TokenIssuer, hasher ports.PasswordHasher, publisher events.Publisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Tx:          store,
		Hasher:      hasher,
		Tokens:      tokens,
		Clock:       store,
		IDGenerator: store,
		Publisher:   publisher,
		Logger:      logger,
	})
	module.Store = store
	return module
}
