package bootstrap

import (
	"context"

	boardservice "kanvas/contexts/collaboration/board-service"
	boardmemory "kanvas/contexts/collaboration/board-service/adapters/memory"
	boardpostgres "kanvas/contexts/collaboration/board-service/adapters/postgres"
	taskservice "kanvas/contexts/collaboration/task-service"
	taskmemory "kanvas/contexts/collaboration/task-service/adapters/memory"
	taskpostgres "kanvas/contexts/collaboration/task-service/adapters/postgres"
	notificationservice "kanvas/contexts/engagement/notification-service"
	notificationmemory "kanvas/contexts/engagement/notification-service/adapters/memory"
	notificationpostgres "kanvas/contexts/engagement/notification-service/adapters/postgres"
	realtimeservice "kanvas/contexts/engagement/realtime-service"
	realtimememory "kanvas/contexts/engagement/realtime-service/adapters/memory"
	realtimeredis "kanvas/contexts/engagement/realtime-service/adapters/redis"
	realtimeports "kanvas/contexts/engagement/realtime-service/ports"
	userservice "kanvas/contexts/identity-access/user-service"
	"kanvas/contexts/identity-access/user-service/adapters/crypto"
	usermemory "kanvas/contexts/identity-access/user-service/adapters/memory"
	userpostgres "kanvas/contexts/identity-access/user-service/adapters/postgres"
	"kanvas/internal/platform/auth"
	"kanvas/internal/platform/cache"
	"kanvas/internal/platform/config"
	"kanvas/internal/platform/httpserver"
)

func BuildBoardService() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, "board-service")
	in, err := openInfra(cfg, logger, true)
	if err != nil {
		return nil, err
	}

	deps := boardservice.Dependencies{
		Subscriber:    in.bus,
		Publisher:     in.bus,
		InvitationTTL: cfg.InvitationTTL,
		Logger:        logger,
	}
	if in.postgres == nil {
		store := boardmemory.NewStore()
		deps.Repository, deps.Tx, deps.Clock, deps.IDGenerator = store, store, store, store
	} else {
		if err := boardpostgres.Migrate(in.postgres.DB); err != nil {
			in.close()
			return nil, err
		}
		deps.Repository = boardpostgres.NewRepository(in.postgres.DB, logger)
		deps.Tx = in.postgres
		deps.Clock = boardpostgres.Clock{}
		deps.IDGenerator = boardpostgres.IDGenerator{}
	}

	module := boardservice.NewModule(deps)
	module.Relay.BatchSize = cfg.OutboxBatchSize
	return &App{
		name: "board-service",
		server: httpserver.New(httpserver.Services{
			Board:  &module,
			Health: in.health,
		}, httpserver.Options{}, logger, normalizeAddr(cfg.HTTPPort)),
		consumers: []func(ctx context.Context) error{module.Consumer.Start},
		loops:     []loop{in.outboxLoop("board", module.Relay.RunOnce)},
		closers:   in.closers,
		logger:    logger,
	}, nil
}

func BuildTaskService() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, "task-service")
	in, err := openInfra(cfg, logger, true)
	if err != nil {
		return nil, err
	}

	deps := taskservice.Dependencies{
		Subscriber: in.bus,
		Publisher:  in.bus,
		OrderStep:  cfg.OrderStep,
		Logger:     logger,
	}
	if in.postgres == nil {
		store := taskmemory.NewStore()
		deps.Repository, deps.Tx, deps.Clock, deps.IDGenerator = store, store, store, store
	} else {
		if err := taskpostgres.Migrate(in.postgres.DB); err != nil {
			in.close()
			return nil, err
		}
		deps.Repository = taskpostgres.NewRepository(in.postgres.DB, logger)
		deps.Tx = in.postgres
		deps.Clock = taskpostgres.Clock{}
		deps.IDGenerator = taskpostgres.IDGenerator{}
	}

	module := taskservice.NewModule(deps)
	module.Relay.BatchSize = cfg.OutboxBatchSize
	return &App{
		name: "task-service",
		server: httpserver.New(httpserver.Services{
			Task:   &module,
			Health: in.health,
		}, httpserver.Options{}, logger, normalizeAddr(cfg.HTTPPort)),
		consumers: []func(ctx context.Context) error{module.Consumer.Start},
		loops:     []loop{in.outboxLoop("task", module.Relay.RunOnce)},
		closers:   in.closers,
		logger:    logger,
	}, nil
}

func BuildUserService() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, "user-service")
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}
	in, err := openInfra(cfg, logger, true)
	if err != nil {
		return nil, err
	}

	deps := userservice.Dependencies{
		Hasher:    crypto.BcryptHasher{},
		Tokens:    tokens,
		Publisher: in.bus,
		Logger:    logger,
	}
	if in.postgres == nil {
		store := usermemory.NewStore()
		deps.Repository, deps.Tx, deps.Clock, deps.IDGenerator = store, store, store, store
	} else {
		if err := userpostgres.Migrate(in.postgres.DB); err != nil {
			in.close()
			return nil, err
		}
		deps.Repository = userpostgres.NewRepository(in.postgres.DB, logger)
		deps.Tx = in.postgres
		deps.Clock = userpostgres.Clock{}
		deps.IDGenerator = userpostgres.IDGenerator{}
	}

	module := userservice.NewModule(deps)
	module.Relay.BatchSize = cfg.OutboxBatchSize
	return &App{
		name: "user-service",
		server: httpserver.New(httpserver.Services{
			User:   &module,
			Health: in.health,
		}, httpserver.Options{CookieSecure: cfg.CookieSecure}, logger, normalizeAddr(cfg.HTTPPort)),
		loops:   []loop{in.outboxLoop("user", module.Relay.RunOnce)},
		closers: in.closers,
		logger:  logger,
	}, nil
}

func BuildNotificationService() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, "notification-service")
	in, err := openInfra(cfg, logger, true)
	if err != nil {
		return nil, err
	}

	deps := notificationservice.Dependencies{
		Subscriber: in.bus,
		Publisher:  in.bus,
		DedupTTL:   cfg.DedupTTL,
		Logger:     logger,
	}
	if in.postgres == nil {
		store := notificationmemory.NewStore()
		deps.Repository, deps.Tx, deps.Clock, deps.IDGenerator = store, store, store, store
	} else {
		if err := notificationpostgres.Migrate(in.postgres.DB); err != nil {
			in.close()
			return nil, err
		}
		deps.Repository = notificationpostgres.NewRepository(in.postgres.DB, logger)
		deps.Tx = in.postgres
		deps.Clock = notificationpostgres.Clock{}
		deps.IDGenerator = notificationpostgres.IDGenerator{}
	}

	module := notificationservice.NewModule(deps)
	module.Relay.BatchSize = cfg.OutboxBatchSize
	return &App{
		name: "notification-service",
		server: httpserver.New(httpserver.Services{
			Notification: &module,
			Health:       in.health,
		}, httpserver.Options{}, logger, normalizeAddr(cfg.HTTPPort)),
		consumers: []func(ctx context.Context) error{module.Consumer.Start},
		loops: []loop{
			in.outboxLoop("notification", module.Relay.RunOnce),
			{name: "notification_dedup_prune", interval: pruneInterval, run: module.Pruner.RunOnce},
		},
		closers: in.closers,
		logger:  logger,
	}, nil
}

func BuildRealtimeService() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, "realtime-service")
	in, err := openInfra(cfg, logger, false)
	if err != nil {
		return nil, err
	}

	var (
		replay realtimeports.ReplayLog
		clock  realtimeports.Clock = systemClock{}
	)
	if cfg.InMemory {
		memoryLog := realtimememory.NewReplayLog(int(cfg.ReplayLogSize))
		replay, clock = memoryLog, memoryLog
	} else {
		client, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			in.close()
			return nil, err
		}
		in.closers = append(in.closers, client.Close)
		in.checks = append(in.checks, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		replay = realtimeredis.ReplayLog{
			Client: client,
			Size:   int(cfg.ReplayLogSize),
			TTL:    cfg.ReplayTTL,
			Logger: logger,
		}
	}

	module := realtimeservice.NewModule(realtimeservice.Dependencies{
		Replay:     replay,
		Subscriber: in.bus,
		Clock:      clock,
		Logger:     logger,
	})
	return &App{
		name: "realtime-service",
		server: httpserver.New(httpserver.Services{
			Realtime: &module,
			Health:   in.health,
		}, httpserver.Options{}, logger, normalizeAddr(cfg.HTTPPort)),
		consumers: []func(ctx context.Context) error{module.Consumer.Start},
		closers:   in.closers,
		logger:    logger,
	}, nil
}
