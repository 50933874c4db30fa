package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kanvas/internal/platform/config"
	"kanvas/internal/platform/db"
	"kanvas/internal/platform/messaging"
	"kanvas/internal/shared/events"
)

// infra holds the shared connections of one process. Memory mode skips
// Postgres and swaps Kafka for the in-process bus.
type infra struct {
	cfg      config.Config
	logger   *slog.Logger
	postgres *db.Postgres
	bus      events.Bus
	checks   []func(ctx context.Context) error
	closers  []func() error
}

func openInfra(cfg config.Config, logger *slog.Logger, needsPostgres bool) (*infra, error) {
	in := &infra{cfg: cfg, logger: logger}

	if cfg.InMemory {
		in.bus = messaging.NewInProcess(logger)
		logger.Warn("running with in-memory adapters",
			"event", "bootstrap_in_memory",
			"module", moduleName,
			"layer", "platform",
		)
	} else {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
		if err != nil {
			return nil, fmt.Errorf("connect kafka: %w", err)
		}
		in.bus = kafka
		in.closers = append(in.closers, kafka.Close)
	}

	if needsPostgres && !cfg.InMemory {
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			in.close()
			return nil, errors.New("POSTGRES_DSN is required")
		}
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			in.close()
			return nil, err
		}
		in.postgres = pg
		in.closers = append(in.closers, pg.Close)
		in.checks = append(in.checks, pg.Ping)
	}
	return in, nil
}

func (in *infra) health(ctx context.Context) error {
	for _, check := range in.checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (in *infra) close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		_ = in.closers[i]()
	}
}

func (in *infra) outboxLoop(name string, run func(ctx context.Context) (int, error)) loop {
	interval := in.cfg.OutboxPollInterval
	if interval <= 0 {
		interval = time.Second
	}
	return loop{name: name + "_outbox_relay", interval: interval, run: run}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
