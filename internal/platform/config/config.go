package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"

	EventBusInProcess = "inprocess"
	EventBusNATS      = "nats"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"creatorflow-fulfillment"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	PostgresDSN    string `env:"POSTGRES_DSN"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"fulfillment.sqlite"`
	AutoMigrate    bool   `env:"DATABASE_AUTO_MIGRATE" envDefault:"true"`

	UploadRoot         string   `env:"UPLOAD_ROOT" envDefault:"./data/uploads"`
	UploadMaxBytes     int64    `env:"UPLOAD_MAX_BYTES" envDefault:"524288000"`
	UploadContentTypes []string `env:"UPLOAD_CONTENT_TYPES" envSeparator:","`

	EventBus      string `env:"EVENT_BUS" envDefault:"inprocess"`
	NATSURL       string `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`
	NATSStream    string `env:"NATS_STREAM" envDefault:"FULFILLMENT"`
	ConsumerGroup string `env:"CONSUMER_GROUP" envDefault:"fulfillment-service"`

	JWTSigningSecret string `env:"JWT_SIGNING_SECRET"`

	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`

	IdempotencyTTL     time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"168h"`
	EventDedupTTL      time.Duration `env:"EVENT_DEDUP_TTL" envDefault:"168h"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse reads the environment without validating, so callers can layer
// overrides before calling Validate.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

func (c *Config) Normalize() {
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	c.EventBus = strings.ToLower(strings.TrimSpace(c.EventBus))
}

func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DatabaseDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("POSTGRES_DSN is required when DATABASE_DRIVER=%s", DatabaseDriverPostgres)
		}
	case DatabaseDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when DATABASE_DRIVER=%s", DatabaseDriverSQLite)
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.EventBus {
	case EventBusInProcess, EventBusNATS:
	default:
		return fmt.Errorf("unsupported EVENT_BUS %q", c.EventBus)
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive")
	}
	if c.OutboxPollInterval <= 0 {
		return fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive")
	}
	return nil
}

// HTTPAddr normalizes HTTP_PORT into a listen address.
func (c Config) HTTPAddr() string {
	value := strings.TrimSpace(c.HTTPPort)
	if value == "" {
		return ":8080"
	}
	if strings.Contains(value, ":") {
		return value
	}
	return ":" + value
}
