// Package store is the entity store: the exclusive owner of accounts, tags,
// transactions and preferences. Every mutation writes the touched slot through
// to persistence before the in-memory state changes, so a failed write leaves
// the store as it was. Readers receive deep copies.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"zenledger/internal/core"
	"zenledger/internal/snapshot"
	"zenledger/internal/storage"
)

// Slot keys of the persistence boundary.
const (
	SlotTransactions = "zenledger_transactions"
	SlotAccounts     = "zenledger_accounts"
	SlotTags         = "zenledger_tags"
	SlotConfig       = "zenledger_config"
)

// Persister is the key-value boundary the store writes through.
type Persister interface {
	Get(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name, data string) error
	PutMany(ctx context.Context, slots map[string]string) error
}

// Snapshot is a consistent copy of every collection.
type Snapshot struct {
	Accounts     []core.Account
	Tags         []core.Tag
	Transactions []core.Transaction
	Preferences  core.Preferences
}

// Document returns the snapshot as a full backup document.
func (s Snapshot) Document() snapshot.Document {
	return snapshot.Full(s.Accounts, s.Tags, s.Transactions)
}

type Store struct {
	mu      sync.RWMutex
	persist Persister
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	accounts     []core.Account
	tags         []core.Tag
	transactions []core.Transaction
	preferences  core.Preferences
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.logger = l } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithIDs replaces the uuid generator, for tests.
func WithIDs(next func() string) Option { return func(s *Store) { s.newID = next } }

// Load reads every slot from p. A missing slot falls back to the starter
// defaults; a slot that does not decode or validate is an error.
func Load(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persist: p,
		logger:  slog.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}

	var doc snapshot.Document
	var err error
	if doc.Transactions, err = loadSlot(ctx, p, SlotTransactions, []core.Transaction{}); err != nil {
		return nil, err
	}
	if doc.Accounts, err = loadSlot(ctx, p, SlotAccounts, core.DefaultAccounts()); err != nil {
		return nil, err
	}
	if doc.Tags, err = loadSlot(ctx, p, SlotTags, core.DefaultTags()); err != nil {
		return nil, err
	}
	doc = doc.Normalized()
	if err := snapshot.Validate(doc); err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}

	prefs, err := loadSlot(ctx, p, SlotConfig, core.DefaultPreferences())
	if err != nil {
		return nil, err
	}
	if prefs, err = prefs.WithDefaults(); err != nil {
		return nil, err
	}

	s.transactions, s.accounts, s.tags, s.preferences = doc.Transactions, doc.Accounts, doc.Tags, prefs
	s.logger.InfoContext(ctx, "Store loaded",
		"accounts", len(s.accounts),
		"tags", len(s.tags),
		"transactions", len(s.transactions))
	return s, nil
}

func loadSlot[T any](ctx context.Context, p Persister, name string, fallback T) (T, error) {
	raw, err := p.Get(ctx, name)
	if errors.Is(err, storage.ErrSlotNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("read slot %s: %w", name, err)
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fallback, fmt.Errorf("decode slot %s: %w", name, err)
	}
	return v, nil
}

func encodeSlot(name string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode slot %s: %w", name, err)
	}
	return string(b), nil
}

func (s *Store) write(ctx context.Context, name string, v any) error {
	data, err := encodeSlot(name, v)
	if err != nil {
		return err
	}
	if err := s.persist.Put(ctx, name, data); err != nil {
		return fmt.Errorf("persist %s: %w", name, err)
	}
	return nil
}

// Snapshot returns a deep copy of every collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Accounts:     cloneAccounts(s.accounts),
		Tags:         cloneTags(s.tags),
		Transactions: cloneTransactions(s.transactions),
		Preferences:  s.preferences,
	}
}

// Restored reports which collections a restore replaced.
type Restored struct {
	Transactions bool `json:"transactions"`
	Accounts     bool `json:"accounts"`
	Tags         bool `json:"tags"`
}

// Restore replaces every collection present in doc wholesale and leaves the
// absent ones untouched. All present slots are written in one batch.
func (s *Store) Restore(ctx context.Context, doc snapshot.Document) (Restored, error) {
	doc = doc.Normalized()
	if err := snapshot.Validate(doc); err != nil {
		return Restored{}, err
	}
	var r Restored
	r.Transactions, r.Accounts, r.Tags = doc.Has()

	slots := make(map[string]string, 3)
	if r.Transactions {
		if err := putSlot(slots, SlotTransactions, doc.Transactions); err != nil {
			return Restored{}, err
		}
	}
	if r.Accounts {
		if err := putSlot(slots, SlotAccounts, doc.Accounts); err != nil {
			return Restored{}, err
		}
	}
	if r.Tags {
		if err := putSlot(slots, SlotTags, doc.Tags); err != nil {
			return Restored{}, err
		}
	}
	if len(slots) == 0 {
		return r, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist.PutMany(ctx, slots); err != nil {
		return Restored{}, fmt.Errorf("persist restore: %w", err)
	}
	if r.Transactions {
		s.transactions = doc.Transactions
	}
	if r.Accounts {
		s.accounts = doc.Accounts
	}
	if r.Tags {
		s.tags = doc.Tags
	}
	s.logger.InfoContext(ctx, "Snapshot restored",
		"transactions", r.Transactions,
		"accounts", r.Accounts,
		"tags", r.Tags)
	return r, nil
}

func putSlot(slots map[string]string, name string, v any) error {
	data, err := encodeSlot(name, v)
	if err != nil {
		return err
	}
	slots[name] = data
	return nil
}

// Preferences returns the stored preferences with defaults filled in.
func (s *Store) Preferences() core.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferences
}

// SetPreferences replaces the preferences; unset fields take defaults.
func (s *Store) SetPreferences(ctx context.Context, p core.Preferences) (core.Preferences, error) {
	if err := p.Validate(); err != nil {
		return core.Preferences{}, err
	}
	merged, err := p.WithDefaults()
	if err != nil {
		return core.Preferences{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(ctx, SlotConfig, merged); err != nil {
		return core.Preferences{}, err
	}
	s.preferences = merged
	return merged, nil
}

func cloneAccounts(in []core.Account) []core.Account {
	return append([]core.Account{}, in...)
}

func cloneTags(in []core.Tag) []core.Tag {
	out := make([]core.Tag, len(in))
	for i, t := range in {
		out[i] = cloneTag(t)
	}
	return out
}

func cloneTag(t core.Tag) core.Tag {
	t.SubTags = append([]string{}, t.SubTags...)
	if t.BudgetLimit != nil {
		v := *t.BudgetLimit
		t.BudgetLimit = &v
	}
	return t
}

func cloneTransactions(in []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(in))
	for i, tx := range in {
		out[i] = cloneTransaction(tx)
	}
	return out
}

func cloneTransaction(tx core.Transaction) core.Transaction {
	tx.Tags = append([]string{}, tx.Tags...)
	tx.Images = append([]string{}, tx.Images...)
	if tx.SubTags != nil {
		m := make(map[string]string, len(tx.SubTags))
		for k, v := range tx.SubTags {
			m[k] = v
		}
		tx.SubTags = m
	}
	return tx
}
