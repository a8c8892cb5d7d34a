package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"autosales/internal/backend"
	"autosales/internal/cache"
	"autosales/internal/cli"
	apphttp "autosales/internal/http"
	applog "autosales/internal/log"
	"autosales/internal/report"
	"autosales/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	cacheSweepEvery = time.Minute
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, logger := cli.LoadConfig()

	logger.Info("Starting autosales dashboard", applog.FieldOperation, applog.OpStartup)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, applog.FieldBackend, backendCfg.Type)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	// The dataset is read once; every report is computed from this table.
	loadStart := time.Now()
	table, err := result.Reader.Load(ctx)
	if err != nil {
		cli.Fatal(logger, "Failed to load sales dataset", err, applog.FieldBackend, backendCfg.Type)
	}
	logger.Info("Sales dataset loaded",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldBackend, backendCfg.Type,
		applog.FieldRecords, table.Len(),
		applog.FieldDuration, time.Since(loadStart))

	reportCache := cache.NewLRUCache[report.Renderable](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	caches := cache.NewManager()
	caches.Register(reportCache)
	caches.StartCleanup(cacheSweepEvery)
	defer caches.Stop()

	opts := []services.Option{
		services.WithCache(reportCache),
		services.WithLogger(logger.WithComponent(applog.ComponentReport)),
	}
	if result.Publisher != nil {
		opts = append(opts, services.WithPublisher(result.Publisher))
	}
	svc := services.NewReportService(table, opts...)

	srv := apphttp.NewServer(cfg.Addr(), svc, apphttp.Options{
		Logger:          logger,
		ExportRateLimit: cfg.ExportRateLimit,
		Backend:         backendCfg.Type.String(),
		CacheStats:      reportCache.Stats,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.Addr(), applog.FieldBackend, backendCfg.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", applog.FieldError, err, "addr", cfg.Addr())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err)
	}

	logger.Info("Server stopped gracefully")
}
