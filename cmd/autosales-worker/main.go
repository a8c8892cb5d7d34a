// Command autosales-worker consumes report viewed events and records them in
// SQLite, logging a periodic summary of the most viewed selections.
package main

import (
	"context"
	"errors"
	"time"

	"autosales/internal/amqp"
	"autosales/internal/cli"
	applog "autosales/internal/log"
	"autosales/internal/storage"
	"autosales/internal/worker"
)

const amqpConnectAttempts = 5

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, logger := cli.LoadConfig()
	if !cfg.AMQPEnabled() {
		cli.Fatal(logger, "Worker needs a broker", errors.New("AMQP_URL is not set"))
	}

	logger.Info("Starting autosales-worker", applog.FieldOperation, applog.OpStartup)

	ctx, stop := cli.SignalContext()
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err, "path", cfg.SQLiteDBPath)
	}
	defer repo.Close()

	client, err := amqp.Connect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpConnectAttempts)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	views := worker.NewViewWorker(repo, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := client.ConsumeReportViewed(ctx, views.HandleReportViewed); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
		}
		cancel()
	}()

	ticker := time.NewTicker(cfg.ViewSummaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker stopped", applog.FieldOperation, applog.OpShutdown)
			return
		case <-ticker.C:
			if err := views.LogSummary(ctx); err != nil {
				logger.Error("View summary failed", applog.FieldError, err)
			}
		}
	}
}
