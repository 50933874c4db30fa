package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is centralized process configuration.
// Every binary loads the same struct and reads the fields it needs.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"kanvas"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// InMemory wires memory adapters and the in-process bus instead of
	// Postgres and Kafka.
	InMemory bool `env:"IN_MEMORY" envDefault:"false"`

	PostgresDSN   string   `env:"POSTGRES_DSN"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	RedisAddr     string   `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string   `env:"REDIS_PASSWORD"`
	RedisDB       int      `env:"REDIS_DB" envDefault:"0"`

	JWTSecret    string        `env:"JWT_SECRET"`
	JWTIssuer    string        `env:"JWT_ISSUER" envDefault:"kanvas"`
	JWTTTL       time.Duration `env:"JWT_TTL" envDefault:"24h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`

	InvitationTTL      time.Duration `env:"INVITATION_TTL" envDefault:"336h"`
	OrderStep          float64       `env:"ORDER_STEP" envDefault:"1024"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	DedupTTL           time.Duration `env:"EVENT_DEDUP_TTL" envDefault:"168h"`
	ReplayLogSize      int64         `env:"REPLAY_LOG_SIZE" envDefault:"500"`
	ReplayTTL          time.Duration `env:"REPLAY_TTL" envDefault:"24h"`

	BoardServiceURL        string        `env:"BOARD_SERVICE_URL" envDefault:"http://localhost:8081"`
	TaskServiceURL         string        `env:"TASK_SERVICE_URL" envDefault:"http://localhost:8082"`
	UserServiceURL         string        `env:"USER_SERVICE_URL" envDefault:"http://localhost:8083"`
	NotificationServiceURL string        `env:"NOTIFICATION_SERVICE_URL" envDefault:"http://localhost:8084"`
	RealtimeServiceURL     string        `env:"REALTIME_SERVICE_URL" envDefault:"http://localhost:8085"`
	RoleLookupTimeout      time.Duration `env:"ROLE_LOOKUP_TIMEOUT" envDefault:"2s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	brokers := cfg.KafkaBrokers[:0]
	for _, broker := range cfg.KafkaBrokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	cfg.KafkaBrokers = brokers
	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
