// Command ledger-worker writes ledger backups on a fixed interval and,
// when AMQP is configured, shortly after every committed change.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting ledger-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenStore(context.Background(), logger, cfg)
	defer store.Close()

	backup := services.NewBackupService(store, nil, cfg.SeedExamples, logger)
	backups := worker.NewBackupWorker(backup, cfg.BackupDir, cfg.BackupRetention, logger)

	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Snapshot once at startup so a fresh deployment has a backup.
	if _, err := backups.Snapshot(ctx); err != nil {
		logger.LogError(ctx, "Startup snapshot failed", err, log.OpSnapshot, nil)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return backups.Run(gctx, cfg.BackupInterval)
	})
	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeChanges(gctx, backups.HandleChangeMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("Skipping change consumption, backups run on interval only")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
