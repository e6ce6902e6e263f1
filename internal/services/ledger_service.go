package services

import (
	"context"

	"zenledger/internal/amqp"
	"zenledger/internal/core"
	applog "zenledger/internal/log"
	"zenledger/internal/snapshot"
	"zenledger/internal/store"
)

// Publisher announces ledger changes to downstream consumers.
type Publisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// LedgerService applies mutations to the entity store, logs each successful
// one and announces it. Publishing is best effort: a failure is logged and
// the mutation still succeeds.
type LedgerService struct {
	store     *store.Store
	publisher Publisher
	logger    *applog.Logger
	changes   *applog.StructuredLogger
}

// NewLedgerService wraps st. publisher may be nil when no broker is configured.
func NewLedgerService(st *store.Store, publisher Publisher, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentLedger)
	return &LedgerService{
		store:     st,
		publisher: publisher,
		logger:    logger,
		changes:   applog.NewStructuredLogger(logger),
	}
}

// Snapshot returns a deep copy of every collection.
func (s *LedgerService) Snapshot() store.Snapshot { return s.store.Snapshot() }

// Transaction returns one transaction by id.
func (s *LedgerService) Transaction(id string) (core.Transaction, bool) {
	return s.store.Transaction(id)
}

// ValidateTransaction runs save-time validation without saving.
func (s *LedgerService) ValidateTransaction(tx core.Transaction) (core.Transaction, error) {
	return s.store.ValidateTransaction(tx)
}

// Preferences returns the stored preferences.
func (s *LedgerService) Preferences() core.Preferences { return s.store.Preferences() }

func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	saved, err := s.store.AddTransaction(ctx, tx)
	if err != nil {
		s.rejected(ctx, amqp.EntityTransaction, amqp.OpCreated, err)
		return core.Transaction{}, err
	}
	s.publish(ctx, amqp.EntityTransaction, amqp.OpCreated, saved.ID)
	return saved, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, tx core.Transaction) (core.Transaction, error) {
	saved, err := s.store.UpdateTransaction(ctx, id, tx)
	if err != nil {
		s.rejected(ctx, amqp.EntityTransaction, amqp.OpUpdated, err)
		return core.Transaction{}, err
	}
	s.publish(ctx, amqp.EntityTransaction, amqp.OpUpdated, id)
	return saved, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		s.rejected(ctx, amqp.EntityTransaction, amqp.OpDeleted, err)
		return err
	}
	s.publish(ctx, amqp.EntityTransaction, amqp.OpDeleted, id)
	return nil
}

func (s *LedgerService) AddAccount(ctx context.Context, a core.Account) (core.Account, error) {
	saved, err := s.store.AddAccount(ctx, a)
	if err != nil {
		s.rejected(ctx, amqp.EntityAccount, amqp.OpCreated, err)
		return core.Account{}, err
	}
	s.publish(ctx, amqp.EntityAccount, amqp.OpCreated, saved.ID)
	return saved, nil
}

func (s *LedgerService) UpdateAccount(ctx context.Context, id string, patch store.AccountPatch) (core.Account, error) {
	saved, err := s.store.UpdateAccount(ctx, id, patch)
	if err != nil {
		s.rejected(ctx, amqp.EntityAccount, amqp.OpUpdated, err)
		return core.Account{}, err
	}
	s.publish(ctx, amqp.EntityAccount, amqp.OpUpdated, id)
	return saved, nil
}

func (s *LedgerService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		s.rejected(ctx, amqp.EntityAccount, amqp.OpDeleted, err)
		return err
	}
	s.publish(ctx, amqp.EntityAccount, amqp.OpDeleted, id)
	return nil
}

func (s *LedgerService) AddTag(ctx context.Context, t core.Tag) (core.Tag, error) {
	saved, err := s.store.AddTag(ctx, t)
	if err != nil {
		s.rejected(ctx, amqp.EntityTag, amqp.OpCreated, err)
		return core.Tag{}, err
	}
	s.publish(ctx, amqp.EntityTag, amqp.OpCreated, saved.ID)
	return saved, nil
}

func (s *LedgerService) UpdateTag(ctx context.Context, id string, patch store.TagPatch) (core.Tag, error) {
	return s.tagUpdated(ctx, id)(s.store.UpdateTag(ctx, id, patch))
}

func (s *LedgerService) SetBudget(ctx context.Context, id string, limit *float64) (core.Tag, error) {
	return s.tagUpdated(ctx, id)(s.store.SetBudget(ctx, id, limit))
}

func (s *LedgerService) AddSubTag(ctx context.Context, id, name string) (core.Tag, error) {
	return s.tagUpdated(ctx, id)(s.store.AddSubTag(ctx, id, name))
}

func (s *LedgerService) RemoveSubTag(ctx context.Context, id, name string) (core.Tag, error) {
	return s.tagUpdated(ctx, id)(s.store.RemoveSubTag(ctx, id, name))
}

func (s *LedgerService) tagUpdated(ctx context.Context, id string) func(core.Tag, error) (core.Tag, error) {
	return func(t core.Tag, err error) (core.Tag, error) {
		if err != nil {
			s.rejected(ctx, amqp.EntityTag, amqp.OpUpdated, err)
			return core.Tag{}, err
		}
		s.publish(ctx, amqp.EntityTag, amqp.OpUpdated, id)
		return t, nil
	}
}

func (s *LedgerService) DeleteTag(ctx context.Context, id string) error {
	if err := s.store.DeleteTag(ctx, id); err != nil {
		s.rejected(ctx, amqp.EntityTag, amqp.OpDeleted, err)
		return err
	}
	s.publish(ctx, amqp.EntityTag, amqp.OpDeleted, id)
	return nil
}

func (s *LedgerService) ResetTags(ctx context.Context) ([]core.Tag, error) {
	tags, err := s.store.ResetTags(ctx)
	if err != nil {
		s.rejected(ctx, amqp.EntityTag, amqp.OpReset, err)
		return nil, err
	}
	s.publish(ctx, amqp.EntityTag, amqp.OpReset, "")
	return tags, nil
}

// Restore replaces the collections present in doc.
func (s *LedgerService) Restore(ctx context.Context, doc snapshot.Document) (store.Restored, error) {
	r, err := s.store.Restore(ctx, doc)
	if err != nil {
		s.rejected(ctx, amqp.EntitySnapshot, amqp.OpRestored, err)
		return store.Restored{}, err
	}
	if r.Transactions || r.Accounts || r.Tags {
		s.publish(ctx, amqp.EntitySnapshot, amqp.OpRestored, "")
	}
	return r, nil
}

func (s *LedgerService) SetPreferences(ctx context.Context, p core.Preferences) (core.Preferences, error) {
	saved, err := s.store.SetPreferences(ctx, p)
	if err != nil {
		s.rejected(ctx, amqp.EntityPreferences, amqp.OpUpdated, err)
		return core.Preferences{}, err
	}
	s.publish(ctx, amqp.EntityPreferences, amqp.OpUpdated, "")
	return saved, nil
}

func (s *LedgerService) rejected(ctx context.Context, entity, op string, err error) {
	s.logger.WarnContext(ctx, "Ledger change rejected",
		applog.NewFields().WithChange(entity, "").WithOperation(op).WithError(err).ToSlice()...)
}

// publish logs a successful mutation and announces it when a broker is set.
func (s *LedgerService) publish(ctx context.Context, entity, op, id string) {
	s.changes.LogChange(ctx, entity, op, id)
	if s.publisher == nil {
		return
	}
	msg := amqp.NewLedgerChangedMessage(entity, op, id)
	if err := s.publisher.PublishLedgerChanged(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger change",
			applog.NewFields().WithChange(entity, id).WithOperation(op).WithError(err).ToSlice()...)
	}
}
