// Package cli holds the bootstrap steps shared by cmd/zenledger,
// cmd/zenledger-worker and cmd/zenledgerctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"zenledger/internal/amqp"
	"zenledger/internal/backend"
	"zenledger/internal/config"
	applog "zenledger/internal/log"
	"zenledger/internal/store"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger at the given LOG_LEVEL and installs
// it as the slog default. An unknown level falls back to info.
func SetupLogger(level, component string, out io.Writer) *applog.Logger {
	cfg := applog.DefaultConfig()
	if out != nil {
		cfg.Output = out
	}
	if parsed, err := applog.ParseLevel(level); err == nil {
		cfg.Level = parsed
	}
	cfg.Component = component
	logger := applog.New(cfg).WithComponent(component)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration, sets up logging at the
// configured level and validates the rest. It exits the process on
// validation failure. Log lines go to out.
func LoadAndValidateConfig(component string, out io.Writer) (*config.Config, *applog.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel, component, out)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenRepository opens the slot backend selected by DATA_BACKEND.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*backend.BackendResult, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).CreateBackend(ctx, backendCfg)
}

// OpenStore opens the backend and loads the entity store from it. The
// returned cleanup closes the backend.
func OpenStore(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*store.Store, *backend.BackendResult, error) {
	result, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Load(ctx, result.Repository, store.WithLogger(logger.WithComponent(applog.ComponentStore).Slog()))
	if err != nil {
		_ = result.Cleanup()
		return nil, nil, fmt.Errorf("load store: %w", err)
	}
	return st, result, nil
}

// NewAMQPClient connects to the broker when AMQP_URL is set. It returns nil
// without error when change events are disabled.
func NewAMQPClient(cfg *config.Config, logger *applog.Logger) (*amqp.Client, error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(applog.ComponentAMQP).Slog())
	if err != nil {
		return nil, fmt.Errorf("amqp client: %w", err)
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// received signal is logged once.
func GracefulShutdown(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
