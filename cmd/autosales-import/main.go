// Command autosales-import copies the sales dataset from a CSV file or a
// Google Sheets range into the SQLite store used by the sqlite backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"autosales/internal/cli"
	"autosales/internal/config"
	"autosales/internal/core"
	"autosales/internal/dataset"
	"autosales/internal/dataset/csvfile"
	"autosales/internal/dataset/google"
	applog "autosales/internal/log"
	"autosales/internal/storage"
)

type options struct {
	source        string
	csvPath       string
	dbPath        string
	spreadsheetID string
	sheetRange    string
}

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	opts := options{}
	flag.StringVar(&opts.source, "source", config.BackendCSV, "dataset source: csv or sheets")
	flag.StringVar(&opts.csvPath, "csv", cfg.SalesCSVPath, "CSV file to import")
	flag.StringVar(&opts.dbPath, "db", cfg.SQLiteDBPath, "SQLite database to write")
	flag.StringVar(&opts.spreadsheetID, "spreadsheet", cfg.GoogleSpreadsheetID, "Google spreadsheet id")
	flag.StringVar(&opts.sheetRange, "range", cfg.GoogleSalesRange, "A1 range holding the sales table")
	flag.Parse()

	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentImport)

	ctx, stop := cli.SignalContext()
	defer stop()

	start := time.Now()
	n, err := run(ctx, opts)
	if err != nil {
		cli.Fatal(logger, "Import failed", err, applog.FieldSource, opts.source)
	}
	logger.Info("Import complete",
		applog.FieldOperation, applog.OpImport,
		applog.FieldSource, opts.source,
		applog.FieldRecords, n,
		"db_path", opts.dbPath,
		applog.FieldDuration, time.Since(start))
}

// run reads the source and opens the database concurrently, then replaces
// the stored rows in one transaction.
func run(ctx context.Context, opts options) (int, error) {
	reader, err := sourceReader(ctx, opts)
	if err != nil {
		return 0, err
	}

	var (
		table *core.Table
		repo  *storage.SQLiteRepository
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := reader.Load(gctx)
		if err != nil {
			return fmt.Errorf("load %s source: %w", opts.source, err)
		}
		table = t
		return nil
	})
	g.Go(func() error {
		r, err := storage.NewSQLiteRepository(opts.dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		repo = r
		return nil
	})
	err = g.Wait()
	if repo != nil {
		defer repo.Close()
	}
	if err != nil {
		return 0, err
	}

	return repo.ReplaceAll(ctx, table.Records())
}

func sourceReader(ctx context.Context, opts options) (dataset.SalesReader, error) {
	switch opts.source {
	case config.BackendCSV:
		if opts.csvPath == "" {
			return nil, errors.New("csv source requires -csv")
		}
		return csvfile.New(opts.csvPath), nil
	case config.BackendSheets:
		if opts.spreadsheetID == "" {
			return nil, errors.New("sheets source requires -spreadsheet")
		}
		return google.New(ctx, opts.spreadsheetID, opts.sheetRange)
	default:
		return nil, fmt.Errorf("unknown source %q: must be csv or sheets", opts.source)
	}
}
