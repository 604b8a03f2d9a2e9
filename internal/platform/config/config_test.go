package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "SQLite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver != DatabaseDriverSQLite {
		t.Fatalf("expected normalized sqlite driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.EventBus != EventBusInProcess {
		t.Fatalf("expected in-process bus, got %q", cfg.EventBus)
	}
	if cfg.IdempotencyTTL != 7*24*time.Hour || cfg.OutboxBatchSize != 100 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.HTTPAddr() != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr())
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "postgres without dsn", env: map[string]string{"DATABASE_DRIVER": "postgres", "POSTGRES_DSN": ""}},
		{name: "unknown driver", env: map[string]string{"DATABASE_DRIVER": "mysql"}},
		{name: "unknown bus", env: map[string]string{"DATABASE_DRIVER": "sqlite", "EVENT_BUS": "kafka"}},
		{name: "bad duration", env: map[string]string{"DATABASE_DRIVER": "sqlite", "IDEMPOTENCY_TTL": "soon"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestHTTPAddr(t *testing.T) {
	if got := (Config{HTTPPort: "9090"}).HTTPAddr(); got != ":9090" {
		t.Fatalf("unexpected addr %q", got)
	}
	if got := (Config{HTTPPort: "127.0.0.1:9090"}).HTTPAddr(); got != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr %q", got)
	}
}
