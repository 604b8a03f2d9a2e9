package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	fulfillmentservice "creatorflow/contexts/campaign-fulfillment/fulfillment-service"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/adapters/filestore"
	postgresadapter "creatorflow/contexts/campaign-fulfillment/fulfillment-service/adapters/postgres"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/services"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
	"creatorflow/internal/platform/config"
	"creatorflow/internal/platform/db"
	"creatorflow/internal/platform/httpserver"
	"creatorflow/internal/platform/messaging"
	"creatorflow/internal/platform/telemetry"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const moduleName = "internal/app/bootstrap"

type eventBus interface {
	ports.EventPublisher
	ports.EventSubscriber
}

// Runtime holds the process-wide resources shared by the API, the worker
// and the operator CLI.
type Runtime struct {
	Config     config.Config
	Module     fulfillmentservice.Module
	Repository *postgresadapter.Repository
	Bus        eventBus
	Logger     *slog.Logger

	database          *db.Database
	closeBus          func() error
	telemetryShutdown func(context.Context) error
}

// NewRuntime opens the database, the event bus and the tracer provider and
// wires the fulfillment module against them.
func NewRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		database: database,
	}

	repo := postgresadapter.NewRepository(database.DB, logger)
	rt.Repository = repo
	if cfg.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	switch cfg.EventBus {
	case config.EventBusNATS:
		js, err := messaging.ConnectJetStream(ctx, messaging.JetStreamConfig{
			URL:        cfg.NATSURL,
			Stream:     cfg.NATSStream,
			ClientName: cfg.ServiceName,
		}, logger)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.Bus = js
		rt.closeBus = js.Close
	default:
		rt.Bus = messaging.NewBus(logger)
	}

	shutdown, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.telemetryShutdown = shutdown

	rt.Module = fulfillmentservice.NewModule(fulfillmentservice.Dependencies{
		Campaigns:    repo,
		Applications: repo,
		Tasks:        repo,
		Shipments:    repo,
		Addresses:    repo,
		Content:      repo,
		Payments:     repo,
		Storage:      filestore.NewOSStore(cfg.UploadRoot, logger),
		UnitOfWork:   repo,
		Outbox:       repo,
		OutboxReader: repo,
		Audit:        repo,
		Idempotency:  repo,
		EventDedup:   repo,
		Publisher:    rt.Bus,
		Subscriber:   rt.Bus,
		Clock:        postgresadapter.SystemClock{},
		IDGenerator:  postgresadapter.UUIDGenerator{},
		UploadPolicy: services.UploadPolicy{
			MaxBytes:            cfg.UploadMaxBytes,
			AllowedContentTypes: cfg.UploadContentTypes,
		},
		IdempotencyTTL:  cfg.IdempotencyTTL,
		EventDedupTTL:   cfg.EventDedupTTL,
		OutboxBatchSize: cfg.OutboxBatchSize,
		ConsumerGroup:   cfg.ConsumerGroup,
		Logger:          logger,
	})
	return rt, nil
}

func openDatabase(cfg config.Config) (*db.Database, error) {
	switch cfg.DatabaseDriver {
	case config.DatabaseDriverSQLite:
		return db.ConnectSQLite(cfg.SQLitePath)
	case config.DatabaseDriverPostgres:
		return db.ConnectPostgres(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// runBackground starts the product-added consumer and then relays the
// outbox until ctx is cancelled.
func (rt *Runtime) runBackground(ctx context.Context) error {
	if err := rt.Module.ProductConsumer.Start(ctx); err != nil {
		return err
	}
	return rt.Module.Relay.Run(ctx, rt.Config.OutboxPollInterval)
}

func (rt *Runtime) Close() error {
	var errs []error
	if rt.closeBus != nil {
		errs = append(errs, rt.closeBus())
	}
	if rt.telemetryShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, rt.telemetryShutdown(ctx))
		cancel()
	}
	if rt.database != nil {
		errs = append(errs, rt.database.Close())
	}
	return errors.Join(errs...)
}

type APIApp struct {
	runtime *Runtime
	server  *httpserver.Server
	changes *httpserver.ChangeHub
	logger  *slog.Logger
}

type WorkerApp struct {
	runtime *Runtime
	logger  *slog.Logger
}

func BuildAPI(ctx context.Context, cfg config.Config, logger *slog.Logger) (*APIApp, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName, "process", "api")
	rt, err := NewRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	changes := httpserver.NewChangeHub(logger)
	server := httpserver.New(rt.Module, httpserver.Options{
		Addr:      cfg.HTTPAddr(),
		JWTSecret: cfg.JWTSigningSecret,
		MaxUpload: cfg.UploadMaxBytes,
		Changes:   changes,
		Logger:    logger,
	})
	return &APIApp{
		runtime: rt,
		server:  server,
		changes: changes,
		logger:  logger,
	}, nil
}

func BuildWorker(ctx context.Context, cfg config.Config, logger *slog.Logger) (*WorkerApp, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName, "process", "worker")
	rt, err := NewRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &WorkerApp{runtime: rt, logger: logger}, nil
}

// Run serves HTTP and streams changes. With the in-process bus the outbox
// relay and the consumer run here too, since no other process can reach it.
func (a *APIApp) Run(ctx context.Context) error {
	cfg := a.runtime.Config
	group := changesGroup(cfg.ConsumerGroup)
	if err := a.changes.Start(ctx, a.runtime.Bus, group); err != nil {
		return err
	}

	singleProcess := cfg.EventBus == config.EventBusInProcess
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", moduleName,
		"layer", "platform",
		"event_bus", cfg.EventBus,
		"single_process", singleProcess,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Start(gctx, cfg.ShutdownTimeout)
	})
	if singleProcess {
		g.Go(func() error {
			return a.runtime.runBackground(gctx)
		})
	}
	return g.Wait()
}

func (a *APIApp) Close() error {
	return a.runtime.Close()
}

func (w *WorkerApp) Run(ctx context.Context) error {
	cfg := w.runtime.Config
	if cfg.EventBus == config.EventBusInProcess {
		w.logger.Warn("worker is using the in-process bus; published events stay in this process",
			"event", "bootstrap_worker_inprocess_bus",
			"module", moduleName,
			"layer", "platform",
		)
	}
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", moduleName,
		"layer", "platform",
		"poll_interval", cfg.OutboxPollInterval.String(),
	)
	return w.runtime.runBackground(ctx)
}

func (w *WorkerApp) Close() error {
	return w.runtime.Close()
}

// changesGroup scopes the change stream subscription to this host so every
// API replica receives all events.
func changesGroup(base string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return base + "-changes-" + host
}
