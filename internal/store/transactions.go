package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zenledger/internal/core"
	applog "zenledger/internal/log"
)

// Transaction returns one transaction by id.
func (s *Store) Transaction(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := core.FindTransaction(s.transactions, id)
	if !ok {
		return core.Transaction{}, false
	}
	return cloneTransaction(tx), true
}

// AddTransaction validates tx, assigns a new id and prepends it to the log.
// A zero date is set to the current time.
func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clean, err := s.prepare(tx)
	if err != nil {
		return core.Transaction{}, err
	}
	clean.ID = s.newID()
	if clean.Date.IsEmpty() {
		clean.Date = core.Date{Time: s.now().Truncate(time.Millisecond)}
	}

	next := make([]core.Transaction, 0, len(s.transactions)+1)
	next = append(next, clean)
	next = append(next, s.transactions...)
	if err := s.write(ctx, SlotTransactions, next); err != nil {
		return core.Transaction{}, err
	}
	s.transactions = next
	s.logger.InfoContext(ctx, "Transaction added",
		applog.FieldTransactionID, clean.ID,
		"type", clean.Type,
		"amount", clean.Amount,
		applog.FieldAccountID, clean.AccountID)
	return cloneTransaction(clean), nil
}

// UpdateTransaction replaces every field of the transaction except its id and
// date.
func (s *Store) UpdateTransaction(ctx context.Context, id string, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.transactions, id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	clean, err := s.prepare(tx)
	if err != nil {
		return core.Transaction{}, err
	}
	clean.ID = id
	clean.Date = s.transactions[i].Date

	next := cloneTransactions(s.transactions)
	next[i] = clean
	if err := s.write(ctx, SlotTransactions, next); err != nil {
		return core.Transaction{}, err
	}
	s.transactions = next
	s.logger.InfoContext(ctx, "Transaction updated", applog.FieldTransactionID, id)
	return cloneTransaction(clean), nil
}

// DeleteTransaction removes a transaction from the log.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.transactions, id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	next := make([]core.Transaction, 0, len(s.transactions)-1)
	next = append(next, s.transactions[:i]...)
	next = append(next, s.transactions[i+1:]...)
	if err := s.write(ctx, SlotTransactions, next); err != nil {
		return err
	}
	s.transactions = next
	s.logger.InfoContext(ctx, "Transaction deleted", applog.FieldTransactionID, id)
	return nil
}

// ValidateTransaction runs the save-time checks against the current
// accounts and tags without saving anything.
func (s *Store) ValidateTransaction(tx core.Transaction) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prepare(tx)
}

// prepare validates tx against the current collections and returns the
// canonical record to store. Callers hold the lock.
func (s *Store) prepare(tx core.Transaction) (core.Transaction, error) {
	tx = cloneTransaction(tx)
	tx.AccountID = strings.TrimSpace(tx.AccountID)
	tx.ToAccountID = strings.TrimSpace(tx.ToAccountID)
	tx.Note = strings.TrimSpace(tx.Note)
	if tx.Type != core.Transfer {
		tx.ToAccountID = ""
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, ok := core.FindAccount(s.accounts, tx.AccountID); !ok {
		return core.Transaction{}, fmt.Errorf("account %s: %w", tx.AccountID, core.ErrUnknownAccount)
	}
	if tx.Type == core.Transfer {
		if _, ok := core.FindAccount(s.accounts, tx.ToAccountID); !ok {
			return core.Transaction{}, fmt.Errorf("account %s: %w", tx.ToAccountID, core.ErrUnknownAccount)
		}
		if len(tx.Tags) > 0 {
			return core.Transaction{}, fmt.Errorf("transfers carry no tags: %w", core.ErrTagPolarity)
		}
	}

	tags := make([]string, 0, len(tx.Tags))
	seen := make(map[string]struct{}, len(tx.Tags))
	for _, id := range tx.Tags {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		tag, ok := core.FindTag(s.tags, id)
		if !ok {
			return core.Transaction{}, fmt.Errorf("tag %s: %w", id, core.ErrUnknownTag)
		}
		if !tag.Polarity.Allows(tx.Type) {
			return core.Transaction{}, fmt.Errorf("tag %s on %s: %w", tag.Name, tx.Type, core.ErrTagPolarity)
		}
		tags = append(tags, id)
	}
	tx.Tags = tags

	var subTags map[string]string
	for tagID, name := range tx.SubTags {
		if _, carried := seen[tagID]; !carried || name == "" {
			continue
		}
		tag, _ := core.FindTag(s.tags, tagID)
		if !tag.HasSubTag(name) {
			return core.Transaction{}, fmt.Errorf("sub-tag %q of %s: %w", name, tag.Name, core.ErrUnknownSubTag)
		}
		if subTags == nil {
			subTags = make(map[string]string)
		}
		subTags[tagID] = name
	}
	tx.SubTags = subTags
	return tx, nil
}

func indexOf(txs []core.Transaction, id string) int {
	for i, tx := range txs {
		if tx.ID == id {
			return i
		}
	}
	return -1
}
