package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "zenledger_accounts"); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
	if err := repo.Put(ctx, "zenledger_accounts", `[{"id":"a1"}]`); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.Put(ctx, "zenledger_accounts", `[]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := repo.Get(ctx, "zenledger_accounts")
	if err != nil || got != `[]` {
		t.Fatalf("expected overwritten value, got %q (%v)", got, err)
	}

	err = repo.PutMany(ctx, map[string]string{
		"zenledger_transactions": `[{"id":"t1"}]`,
		"zenledger_tags":         `[]`,
	})
	if err != nil {
		t.Fatalf("put many: %v", err)
	}
	if got, _ := repo.Get(ctx, "zenledger_transactions"); got != `[{"id":"t1"}]` {
		t.Fatalf("unexpected transactions slot %q", got)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestMemoryRepositoryFailWrites(t *testing.T) {
	repo := NewMemoryRepository()
	repo.FailWrites = errors.New("disk full")
	if err := repo.Put(context.Background(), "k", "v"); err == nil {
		t.Fatalf("expected write failure")
	}
	if _, err := repo.Get(context.Background(), "k"); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("failed write must not be visible, got %v", err)
	}
}

func TestSQLiteRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "zenledger.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()
	exerciseRepository(t, repo)
}

func TestSQLiteRepositoryReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenledger.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.Put(context.Background(), "zenledger_config", `{"theme":"zen"}`); err != nil {
		t.Fatalf("put: %v", err)
	}
	repo.Close()

	// migrations must be idempotent
	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	if got, err := repo.Get(context.Background(), "zenledger_config"); err != nil || got != `{"theme":"zen"}` {
		t.Fatalf("value lost across reopen: %q (%v)", got, err)
	}
}
