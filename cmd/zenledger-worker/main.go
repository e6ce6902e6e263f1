package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"zenledger/internal/backup"
	"zenledger/internal/cli"
	"zenledger/internal/config"
	applog "zenledger/internal/log"
	"zenledger/internal/notify"
	gsheet "zenledger/internal/sheets/google"
	"zenledger/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("zenledger-worker stopped", applog.FieldError, err)
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentWorker, os.Stdout)
	logger.Info("Starting zenledger-worker", "backend", cfg.DataBackend, "sync_interval", cfg.SyncInterval)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	result, err := cli.OpenRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Failed to close backend", applog.FieldError, err)
		}
	}()

	sinks, closeSinks, err := buildSinks(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize sinks: %w", err)
	}
	defer closeSinks()
	if len(sinks) == 0 {
		logger.Warn("No sinks configured; the worker has nothing to do")
	}

	load := worker.PersistedLoader(result.Repository, logger.WithComponent(applog.ComponentStore).Slog())
	syncWorker := worker.NewSyncWorker(load, logger.Slog(), sinks...)
	logger.Info("Sinks configured", "sinks", syncWorker.Sinks())

	amqpClient, err := cli.NewAMQPClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return syncWorker.Run(gctx, cfg.SyncInterval)
	})
	if amqpClient != nil {
		defer amqpClient.Close()
		g.Go(func() error {
			return amqpClient.ConsumeLedgerChanged(gctx, syncWorker.HandleLedgerChanged)
		})
	} else {
		logger.Info("Skipping AMQP message consumption - periodic sync only")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("worker: %w", err)
	}
	logger.Info("Worker shutdown complete")
	return nil
}

// buildSinks creates every sink the configuration enables. The returned
// function releases their clients.
func buildSinks(ctx context.Context, cfg *config.Config, logger *applog.Logger) ([]worker.Sink, func(), error) {
	var (
		sinks   []worker.Sink
		closers []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Error("Failed to close sink client", applog.FieldError, err)
			}
		}
	}

	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, worker.NewSheetsSink(client, cfg.Location()))
		logger.Info("Google Sheets sink enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	}

	if cfg.BackupEnabled() {
		gcs, err := backup.NewGCS(ctx, cfg.BackupBucket)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, gcs.Close)
		sinks = append(sinks, worker.NewBackupSink(backup.New(gcs, cfg.BackupPrefix)))
		logger.Info("Backup sink enabled", "bucket", cfg.BackupBucket, "prefix", cfg.BackupPrefix)
	}

	if cfg.AlertsEnabled() {
		discord, err := notify.NewDiscord(cfg.DiscordBotToken, cfg.DiscordChannelID)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, discord.Close)
		alerter := notify.NewAlerter(discord, logger.WithComponent(applog.ComponentNotify).Slog())
		sinks = append(sinks, worker.NewAlertSink(alerter, cfg.Location()))
		logger.Info("Budget alert sink enabled", "channel_id", cfg.DiscordChannelID)
	}

	return sinks, closeAll, nil
}
