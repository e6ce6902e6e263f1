package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"zenledger/internal/assistant"
	"zenledger/internal/cli"
	apphttp "zenledger/internal/http"
	applog "zenledger/internal/log"
	"zenledger/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("zenledger stopped", applog.FieldError, err)
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentApp, os.Stdout)
	logger.Info("Starting zenledger", "backend", cfg.DataBackend, "port", cfg.Port)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	st, result, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Failed to close backend", applog.FieldError, err)
		}
	}()

	amqpClient, err := cli.NewAMQPClient(cfg, logger)
	if err != nil {
		// The API keeps working without change events.
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
	}
	var publisher services.Publisher
	if amqpClient != nil {
		publisher = amqpClient
		defer amqpClient.Close()
	}

	ledgerSvc := services.NewLedgerService(st, publisher, logger)

	var model assistant.Model
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini client", applog.FieldError, err)
		} else {
			model = gemini
			logger.Info("Assistant enabled", "model", cfg.GeminiModel)
		}
	} else {
		logger.Info("Assistant model disabled - no GEMINI_API_KEY provided")
	}
	assistantSvc := assistant.NewService(ledgerSvc, model, assistant.Options{
		RecentLimit: cfg.AssistantRecentLimit,
		Location:    cfg.Location(),
		Logger:      logger.WithComponent(applog.ComponentAssistant).Slog(),
	})

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Ledger:             ledgerSvc,
		Assistant:          assistantSvc,
		Ready:              result.Repository,
		Location:           cfg.Location(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
