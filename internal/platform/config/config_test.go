package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.InvitationTTL != 14*24*time.Hour {
		t.Fatalf("expected 14 day invitation ttl, got %s", cfg.InvitationTTL)
	}
	if cfg.OrderStep != 1024 {
		t.Fatalf("expected order step 1024, got %v", cfg.OrderStep)
	}
}

func TestLoadBrokerList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("ROLE_LOOKUP_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSlogLevel(t *testing.T) {
	if (Config{LogLevel: "DEBUG"}).SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level")
	}
	if (Config{LogLevel: "nope"}).SlogLevel() != slog.LevelInfo {
		t.Fatalf("expected info fallback")
	}
}
