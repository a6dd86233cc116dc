package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledger/internal/cache"
	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	"ledger/internal/log"
	"ledger/internal/repository"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenStore(context.Background(), logger, cfg)
	defer store.Close()

	amqpClient := cli.ConnectAMQP(logger, cfg)
	var publisher services.Publisher
	if amqpClient != nil {
		defer amqpClient.Close()
		publisher = amqpClient
	}
	notifier := services.NewChangePublisher(publisher, logger)

	repos := repository.New(store, logger, notifier)
	reports := services.NewReportService(store, repos.Transactions, cfg.ReportCacheSize, cfg.ReportCacheTTL, logger)
	backup := services.NewBackupService(store, notifier, cfg.SeedExamples, logger)

	caches := cache.NewManager(logger)
	caches.Register(reports.Cache())
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:   store,
		Repos:   repos,
		Reports: reports,
		Backup:  backup,
		Logger:  logger,
	}, apphttp.Options{RateLimitPerMinute: cfg.RateLimitPerMinute})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting ledger server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
