package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"creatorflow/internal/app/bootstrap"
	"creatorflow/internal/platform/config"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Run the catalog consumer and the outbox relay until signalled.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config failed", "event", "worker_config_failed", "error", err.Error())
		os.Exit(1)
	}

	app, err := bootstrap.BuildWorker(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap worker failed", "event", "worker_bootstrap_failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("worker shutdown close failed", "event", "worker_close_failed", "error", err.Error())
		}
	}()

	if err := app.Run(ctx); err != nil {
		logger.Error("worker stopped with error", "event", "worker_stopped", "error", err.Error())
		stop()
		_ = app.Close()
		os.Exit(1)
	}
}
