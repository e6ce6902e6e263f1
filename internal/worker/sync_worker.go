package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"zenledger/internal/amqp"
	applog "zenledger/internal/log"
	"zenledger/internal/snapshot"
	"zenledger/internal/store"
)

// Loader reads the persisted ledger.
type Loader func(ctx context.Context) (store.Snapshot, error)

// PersistedLoader loads a fresh store from p on every call, so the worker
// sees what the server last wrote.
func PersistedLoader(p store.Persister, logger *slog.Logger) Loader {
	var opts []store.Option
	if logger != nil {
		opts = append(opts, store.WithLogger(logger))
	}
	return func(ctx context.Context) (store.Snapshot, error) {
		st, err := store.Load(ctx, p, opts...)
		if err != nil {
			return store.Snapshot{}, err
		}
		return st.Snapshot(), nil
	}
}

// SyncWorker fans ledger changes out to the configured sinks.
type SyncWorker struct {
	load   Loader
	sinks  []Sink
	logger *slog.Logger

	mu         sync.Mutex
	lastSynced string
}

func NewSyncWorker(load Loader, logger *slog.Logger, sinks ...Sink) *SyncWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncWorker{load: load, sinks: sinks, logger: logger}
}

// Sinks returns the names of the configured sinks.
func (w *SyncWorker) Sinks() []string {
	names := make([]string, len(w.sinks))
	for i, s := range w.sinks {
		names[i] = s.Name()
	}
	return names
}

// HandleLedgerChanged runs every sink for one change event. Only a failure to
// load the ledger is returned, so the broker redelivers; sink failures are
// logged and retried by the next periodic pass.
func (w *SyncWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger change",
		applog.FieldEntity, msg.Entity,
		applog.FieldOperation, msg.Op,
		"id", msg.ID)
	return w.sync(ctx, msg, true)
}

// SyncIfChanged runs every sink when the persisted ledger differs from the
// last fully synced one.
func (w *SyncWorker) SyncIfChanged(ctx context.Context) error {
	return w.sync(ctx, nil, false)
}

func (w *SyncWorker) sync(ctx context.Context, msg *amqp.LedgerChangedMessage, force bool) error {
	snap, err := w.load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	sum, err := fingerprint(snap)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !force && sum == w.lastSynced {
		return nil
	}

	if err := w.runSinks(ctx, snap, msg); err != nil {
		w.lastSynced = ""
		return nil
	}
	w.lastSynced = sum
	return nil
}

func (w *SyncWorker) runSinks(ctx context.Context, snap store.Snapshot, msg *amqp.LedgerChangedMessage) error {
	var g errgroup.Group
	for _, sink := range w.sinks {
		g.Go(func() error {
			start := time.Now()
			if err := sink.Sync(ctx, snap, msg); err != nil {
				w.logger.ErrorContext(ctx, "Sink failed", applog.FieldSink, sink.Name(), applog.FieldError, err)
				return fmt.Errorf("%s: %w", sink.Name(), err)
			}
			w.logger.DebugContext(ctx, "Sink synced",
				applog.FieldSink, sink.Name(),
				"duration_ms", time.Since(start).Milliseconds())
			return nil
		})
	}
	return g.Wait()
}

// Run performs a pass immediately and then every interval until ctx is done.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.SyncIfChanged(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup sync failed", applog.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.SyncIfChanged(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic sync failed", applog.FieldError, err)
			}
		}
	}
}

func fingerprint(snap store.Snapshot) (string, error) {
	raw, err := snapshot.Marshal(snap.Document())
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
