package worker

import (
	"context"
	"fmt"
	"time"

	"zenledger/internal/amqp"
	"zenledger/internal/backup"
	"zenledger/internal/ledger"
	"zenledger/internal/notify"
	"zenledger/internal/sheets"
	"zenledger/internal/snapshot"
	"zenledger/internal/store"
)

// Sink receives the current ledger after a change. msg is nil on the
// periodic pass.
type Sink interface {
	Name() string
	Sync(ctx context.Context, snap store.Snapshot, msg *amqp.LedgerChangedMessage) error
}

// SheetsSink replaces a sheet with the tabular export.
type SheetsSink struct {
	writer sheets.RowWriter
	loc    *time.Location
}

func NewSheetsSink(writer sheets.RowWriter, loc *time.Location) *SheetsSink {
	return &SheetsSink{writer: writer, loc: loc}
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Sync(ctx context.Context, snap store.Snapshot, _ *amqp.LedgerChangedMessage) error {
	rows, err := snapshot.Rows(snap.Accounts, snap.Tags, snap.Transactions, s.loc)
	if err != nil {
		return err
	}
	table := make([][]string, 0, len(rows)+1)
	table = append(table, snapshot.Header)
	table = append(table, rows...)
	return s.writer.ReplaceRows(ctx, table)
}

// BackupSink uploads the full snapshot document.
type BackupSink struct {
	backuper *backup.Backuper
}

func NewBackupSink(b *backup.Backuper) *BackupSink {
	return &BackupSink{backuper: b}
}

func (s *BackupSink) Name() string { return "backup" }

func (s *BackupSink) Sync(ctx context.Context, snap store.Snapshot, _ *amqp.LedgerChangedMessage) error {
	_, err := s.backuper.Backup(ctx, snap.Document())
	return err
}

// AlertSink checks the current month's budgets after transaction changes.
type AlertSink struct {
	alerter *notify.Alerter
	loc     *time.Location
	now     func() time.Time
}

func NewAlertSink(alerter *notify.Alerter, loc *time.Location) *AlertSink {
	return &AlertSink{alerter: alerter, loc: loc, now: time.Now}
}

func (s *AlertSink) Name() string { return "alerts" }

func (s *AlertSink) Sync(ctx context.Context, snap store.Snapshot, msg *amqp.LedgerChangedMessage) error {
	if msg != nil && !msg.TouchesTransactions() && msg.Entity != amqp.EntityTag {
		return nil
	}
	w := ledger.CurrentMonth(s.now(), s.loc)
	budgets := ledger.Budgets(snap.Tags, snap.Transactions, w)
	if _, err := s.alerter.Check(ctx, w, budgets); err != nil {
		return fmt.Errorf("budget alerts: %w", err)
	}
	return nil
}
