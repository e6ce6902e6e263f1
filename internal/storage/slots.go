// Package storage persists the entity store's string slots. Values are opaque
// JSON strings: derived data never reaches this layer.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// ErrSlotNotFound is returned by Get when a slot was never written.
var ErrSlotNotFound = errors.New("slot not found")

// Repository is implemented by every slot backend.
type Repository interface {
	Get(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name, data string) error
	// PutMany writes all slots atomically.
	PutMany(ctx context.Context, slots map[string]string) error
	Ping(ctx context.Context) error
	Close() error
}

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	name   string
	get    string
	upsert string
}

var (
	sqliteDialect = dialect{
		name: "sqlite",
		get:  `SELECT data FROM slots WHERE name = ?`,
		upsert: `INSERT INTO slots (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
	}
	postgresDialect = dialect{
		name: "postgres",
		get:  `SELECT data FROM slots WHERE name = $1`,
		upsert: `INSERT INTO slots (name, data, updated_at) VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
	}
)

// sqlRepository implements Repository over database/sql.
type sqlRepository struct {
	db      *sql.DB
	dialect dialect
}

func (r *sqlRepository) Get(ctx context.Context, name string) (string, error) {
	var data string
	err := r.db.QueryRowContext(ctx, r.dialect.get, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSlotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get slot %s: %w", name, err)
	}
	return data, nil
}

func (r *sqlRepository) Put(ctx context.Context, name, data string) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.upsert, name, data); err != nil {
		return fmt.Errorf("put slot %s: %w", name, err)
	}
	slog.DebugContext(ctx, "Slot written", "backend", r.dialect.name, "slot", name, "bytes", len(data))
	return nil
}

func (r *sqlRepository) PutMany(ctx context.Context, slots map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.dialect.upsert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for name, data := range slots {
		if _, err := stmt.ExecContext(ctx, name, data); err != nil {
			return fmt.Errorf("put slot %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit slots: %w", err)
	}
	slog.DebugContext(ctx, "Slots written", "backend", r.dialect.name, "count", len(slots))
	return nil
}

func (r *sqlRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqlRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
