package store

import (
	"context"
	"fmt"
	"strings"

	"zenledger/internal/core"
	applog "zenledger/internal/log"
)

// AccountPatch changes the non-nil fields of an account.
type AccountPatch struct {
	Name              *string           `json:"name,omitempty"`
	Kind              *core.AccountKind `json:"type,omitempty"`
	InitialBalance    *float64          `json:"initialBalance,omitempty"`
	IncludeInNetWorth *bool             `json:"includeInNetWorth,omitempty"`
}

func (p AccountPatch) apply(a core.Account) core.Account {
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Kind != nil {
		a.Kind = *p.Kind
	}
	if p.InitialBalance != nil {
		a.InitialBalance = *p.InitialBalance
	}
	if p.IncludeInNetWorth != nil {
		a.IncludeInNetWorth = *p.IncludeInNetWorth
	}
	return a
}

// AddAccount creates an account with a new id.
func (s *Store) AddAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Kind == "" {
		a.Kind = core.Cash
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.newID()
	next := append(cloneAccounts(s.accounts), a)
	if err := s.write(ctx, SlotAccounts, next); err != nil {
		return core.Account{}, err
	}
	s.accounts = next
	s.logger.InfoContext(ctx, "Account added", applog.FieldAccountID, a.ID, "name", a.Name)
	return a, nil
}

// UpdateAccount applies patch to an account in place.
func (s *Store) UpdateAccount(ctx context.Context, id string, patch AccountPatch) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := -1
	for j, a := range s.accounts {
		if a.ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	updated := patch.apply(s.accounts[i])
	if err := updated.Validate(); err != nil {
		return core.Account{}, err
	}
	next := cloneAccounts(s.accounts)
	next[i] = updated
	if err := s.write(ctx, SlotAccounts, next); err != nil {
		return core.Account{}, err
	}
	s.accounts = next
	s.logger.InfoContext(ctx, "Account updated", applog.FieldAccountID, id)
	return updated, nil
}

// DeleteAccount removes an account. Transactions referencing it are kept as
// they are; their references become orphaned.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if a.ID != id {
			next = append(next, a)
		}
	}
	if len(next) == len(s.accounts) {
		return fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	if err := s.write(ctx, SlotAccounts, next); err != nil {
		return err
	}
	s.accounts = next
	s.logger.InfoContext(ctx, "Account deleted", applog.FieldAccountID, id)
	return nil
}
