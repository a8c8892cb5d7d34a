package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"autosales/internal/amqp"
	"autosales/internal/dataset"
	"autosales/internal/dataset/csvfile"
	"autosales/internal/dataset/google"
	"autosales/internal/storage"
)

// amqpConnectAttempts bounds startup retries against the broker.
const amqpConnectAttempts = 3

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the configured dataset source and, when an AMQP URL
// is set, a publisher. A broker that cannot be reached is logged and
// skipped; the dashboard works without events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		reader  dataset.SalesReader
		cleanup []CleanupFunc
	)
	switch config.Type {
	case CSVBackend:
		reader = csvfile.New(config.CSVPath)
		f.logger.Info("Initialized CSV backend", "path", config.CSVPath)

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		reader = repo
		cleanup = append(cleanup, repo.Close)
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	case SheetsBackend:
		cli, err := google.New(ctx, config.GoogleSpreadsheetID, config.GoogleSalesRange)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		reader = cli
		f.logger.Info("Initialized Google Sheets backend", "range", config.GoogleSalesRange)
	}

	var publisher *amqp.Client
	if config.AMQPURL != "" {
		c, err := amqp.Connect(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPQueue, amqpConnectAttempts)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without report events", "error", err)
		} else {
			publisher = c
			cleanup = append(cleanup, c.Close)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return &Result{
		Reader:    reader,
		Publisher: publisher,
		Cleanup:   joinCleanup(cleanup),
	}, nil
}

// joinCleanup runs fns in reverse order and joins their errors.
func joinCleanup(fns []CleanupFunc) CleanupFunc {
	return func() error {
		var errs []error
		for i := len(fns) - 1; i >= 0; i-- {
			errs = append(errs, fns[i]())
		}
		return errors.Join(errs...)
	}
}
