package backup

import (
	"context"
	"errors"
	"testing"
	"time"

	"zenledger/internal/core"
	"zenledger/internal/snapshot"
)

func TestObjectName(t *testing.T) {
	at := time.Date(2024, 3, 5, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	tests := []struct {
		prefix string
		want   string
	}{
		{"backups", "backups/2024/03/05/zenledger_backup_1709677800.json"},
		{"/backups/", "backups/2024/03/05/zenledger_backup_1709677800.json"},
		{"", "2024/03/05/zenledger_backup_1709677800.json"},
	}
	for _, tt := range tests {
		if got := ObjectName(tt.prefix, at); got != tt.want {
			t.Errorf("ObjectName(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestBackupFetchLatest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	b := New(store, "backups")

	clock := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }

	doc := snapshot.Full(core.DefaultAccounts(), core.DefaultTags(), []core.Transaction{
		{ID: "t1", Amount: 10, Type: core.Expense, AccountID: "a1", Tags: []string{"1"},
			Date: core.Date{Time: clock}},
	})
	first, err := b.Backup(ctx, doc)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	clock = clock.Add(26 * time.Hour)
	second, err := b.Backup(ctx, snapshot.Full(core.DefaultAccounts(), core.DefaultTags(), nil))
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if first == second {
		t.Fatalf("backups share a name: %s", first)
	}

	latest, err := b.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest != second {
		t.Errorf("Latest() = %s, want %s", latest, second)
	}

	got, err := b.Fetch(ctx, first)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].ID != "t1" || len(got.Accounts) != 3 {
		t.Errorf("Fetch() = %+v", got)
	}
}

func TestLatestEmpty(t *testing.T) {
	_, err := New(NewMemoryStore(), "backups").Latest(context.Background())
	if !errors.Is(err, ErrNoBackups) {
		t.Fatalf("Latest() error = %v, want ErrNoBackups", err)
	}
}

func TestFetchCorrupt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put(ctx, "backups/bad.json", []byte("not json"))

	_, err := New(store, "backups").Fetch(ctx, "backups/bad.json")
	if !errors.Is(err, snapshot.ErrMalformed) {
		t.Fatalf("Fetch() error = %v, want ErrMalformed", err)
	}
}
