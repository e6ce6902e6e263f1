package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kingpin"

	"zenledger/internal/backup"
	"zenledger/internal/cli"
	"zenledger/internal/config"
	"zenledger/internal/core"
	"zenledger/internal/ledger"
	applog "zenledger/internal/log"
	"zenledger/internal/services"
	"zenledger/internal/snapshot"
	"zenledger/internal/store"
)

func main() {
	cmdBalances := kingpin.Command("balances", "Show account balances and net worth")

	cmdBudgets := kingpin.Command("budgets", "Show budget usage for a month or a year")
	budgetYear := cmdBudgets.Flag("year", "Calendar year (default current)").Int()
	budgetMonth := cmdBudgets.Flag("month", "Month 1-12 (default current, 0 for the whole year)").Default("-1").Int()

	cmdSetBudget := kingpin.Command("set-budget", "Set or clear a tag's monthly budget")
	setBudgetTag := cmdSetBudget.Arg("tag", "Tag id").Required().String()
	setBudgetLimit := cmdSetBudget.Arg("limit", "Monthly limit such as 250 or 12,50; none clears it").Required().String()

	cmdExport := kingpin.Command("export", "Export transactions")
	cmdExportCSV := cmdExport.Command("csv", "Export transactions as CSV")
	csvOut := cmdExportCSV.Flag("out", "Output file, - for stdout").Short('o').Default("-").String()
	cmdExportXLSX := cmdExport.Command("xlsx", "Export transactions and accounts as XLSX")
	xlsxOut := cmdExportXLSX.Flag("out", "Output file").Short('o').Required().String()

	cmdBackup := kingpin.Command("backup", "Write a snapshot backup")
	backupOut := cmdBackup.Flag("out", "Output file; empty uploads to BACKUP_BUCKET").Short('o').String()

	cmdRestore := kingpin.Command("restore", "Restore a snapshot backup")
	restoreIn := cmdRestore.Flag("in", "Input file; empty fetches the latest backup from BACKUP_BUCKET").Short('i').String()

	cmd := kingpin.Parse()

	err := run(func(ctx context.Context, cfg *config.Config, st *store.Store, logger *applog.Logger) error {
		switch cmd {
		case cmdBalances.FullCommand():
			return balancesReport(os.Stdout, st.Snapshot())
		case cmdBudgets.FullCommand():
			return budgetsReport(os.Stdout, st.Snapshot(), budgetWindow(*budgetYear, *budgetMonth, cfg.Location()))
		case cmdSetBudget.FullCommand():
			return setBudget(ctx, cfg, st, logger, *setBudgetTag, *setBudgetLimit)
		case cmdExportCSV.FullCommand():
			return exportCSV(*csvOut, st.Snapshot(), cfg.Location())
		case cmdExportXLSX.FullCommand():
			return exportXLSX(*xlsxOut, st.Snapshot(), cfg.Location())
		case cmdBackup.FullCommand():
			return writeBackup(ctx, cfg, *backupOut, st.Snapshot(), logger)
		case cmdRestore.FullCommand():
			return restore(ctx, cfg, *restoreIn, st, logger)
		}
		return fmt.Errorf("unknown command %q", cmd)
	})
	if err != nil {
		slog.Error("Command failed", "command", cmd, applog.FieldError, err)
		os.Exit(1)
	}
}

// run opens the ledger store, hands it to command and closes the backend
// before returning.
func run(command func(context.Context, *config.Config, *store.Store, *applog.Logger) error) error {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentCLI, os.Stderr)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	st, result, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Failed to close backend", applog.FieldError, err)
		}
	}()

	return command(ctx, cfg, st, logger)
}

// ledgerService wraps st so mutations publish change events when AMQP_URL is
// set. The returned function closes the broker connection.
func ledgerService(cfg *config.Config, st *store.Store, logger *applog.Logger) (*services.LedgerService, func()) {
	amqpClient, err := cli.NewAMQPClient(cfg, logger)
	if err != nil {
		logger.Warn("Continuing without change events", applog.FieldError, err)
	}
	if amqpClient == nil {
		return services.NewLedgerService(st, nil, logger), func() {}
	}
	return services.NewLedgerService(st, amqpClient, logger), func() { _ = amqpClient.Close() }
}

// parseLimit reads a budget argument. "none" or an empty string clears the
// budget.
func parseLimit(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	v, err := core.ParseBudget(s)
	if err != nil {
		return nil, fmt.Errorf("limit %q: %w", s, err)
	}
	return &v, nil
}

func setBudget(ctx context.Context, cfg *config.Config, st *store.Store, logger *applog.Logger, tagID, limitArg string) error {
	limit, err := parseLimit(limitArg)
	if err != nil {
		return err
	}
	svc, closeFn := ledgerService(cfg, st, logger)
	defer closeFn()
	tag, err := svc.SetBudget(ctx, tagID, limit)
	if err != nil {
		return err
	}
	if tag.BudgetLimit == nil {
		fmt.Fprintf(os.Stdout, "%s: budget cleared\n", tag.Name)
		return nil
	}
	fmt.Fprintf(os.Stdout, "%s: budget %s per month\n", tag.Name, core.HumanAmount(*tag.BudgetLimit))
	return nil
}

func balancesReport(w io.Writer, snap store.Snapshot) error {
	balances := ledger.Balances(snap.Accounts, snap.Transactions)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ACCOUNT\tKIND\tBALANCE\tNET WORTH\t")
	for _, b := range balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", b.Name, b.Kind, core.HumanAmount(b.Balance), yesNo(b.IncludeInNetWorth))
	}
	pos := ledger.PositionOf(balances)
	fmt.Fprintln(tw, "\t\t\t\t")
	fmt.Fprintf(tw, "Assets\t\t%s\t\t\n", core.HumanAmount(pos.Assets))
	fmt.Fprintf(tw, "Liabilities\t\t%s\t\t\n", core.HumanAmount(pos.Liabilities))
	fmt.Fprintf(tw, "Net worth\t\t%s\t\t\n", core.HumanAmount(pos.NetWorth))
	return tw.Flush()
}

// budgetWindow resolves the flags against the current date. A zero year
// means this year; a negative month means this month and zero the whole year.
func budgetWindow(year, month int, loc *time.Location) ledger.Window {
	now := time.Now().In(loc)
	if year == 0 {
		year = now.Year()
	}
	switch {
	case month == 0:
		return ledger.YearWindow(year, loc)
	case month < 0:
		return ledger.MonthWindow(year, now.Month(), loc)
	default:
		return ledger.MonthWindow(year, time.Month(month), loc)
	}
}

func budgetsReport(w io.Writer, snap store.Snapshot, win ledger.Window) error {
	if err := win.Validate(); err != nil {
		return err
	}
	report := ledger.Aggregate(snap.Tags, snap.Transactions, win, "")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tincome %s\texpense %s\tnet %s\t\n", win,
		core.HumanAmount(report.Summary.Income),
		core.HumanAmount(report.Summary.Expense),
		core.HumanAmount(report.Summary.Net))
	fmt.Fprintln(tw, "\t\t\t\t")
	fmt.Fprintln(tw, "TAG\tSPENT\tLIMIT\tUSED\tSTATE\t")
	for _, b := range report.Budgets {
		limit, used := "-", "-"
		if b.State != ledger.BudgetUnbounded {
			limit = core.HumanAmount(b.Limit)
			used = fmt.Sprintf("%.0f%%", b.Percent)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", b.Name, core.HumanAmount(b.Spent), limit, used, b.State)
	}
	return tw.Flush()
}

func exportCSV(path string, snap store.Snapshot, loc *time.Location) error {
	return withOutput(path, func(w io.Writer) error {
		return snapshot.WriteCSV(w, snap.Accounts, snap.Tags, snap.Transactions, loc)
	})
}

func exportXLSX(path string, snap store.Snapshot, loc *time.Location) error {
	data, err := snapshot.XLSX(snap.Accounts, snap.Tags, snap.Transactions, loc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeBackup(ctx context.Context, cfg *config.Config, path string, snap store.Snapshot, logger *applog.Logger) error {
	if path != "" {
		return withOutput(path, func(w io.Writer) error {
			return snapshot.Encode(w, snap.Document())
		})
	}
	b, closeFn, err := openBackups(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	object, err := b.Backup(ctx, snap.Document())
	if err != nil {
		return err
	}
	logger.Info("Backup uploaded", "bucket", cfg.BackupBucket, "object", object)
	return nil
}

func restore(ctx context.Context, cfg *config.Config, path string, st *store.Store, logger *applog.Logger) error {
	var (
		doc snapshot.Document
		err error
	)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if doc, err = snapshot.Decode(f); err != nil {
			return err
		}
	} else {
		b, closeFn, err := openBackups(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		object, err := b.Latest(ctx)
		if err != nil {
			return err
		}
		if doc, err = b.Fetch(ctx, object); err != nil {
			return err
		}
		logger.Info("Restoring latest backup", "bucket", cfg.BackupBucket, "object", object)
	}

	svc, closeFn := ledgerService(cfg, st, logger)
	defer closeFn()
	restored, err := svc.Restore(ctx, doc)
	if err != nil {
		return err
	}
	logger.Info("Snapshot restored",
		"transactions", restored.Transactions,
		"accounts", restored.Accounts,
		"tags", restored.Tags)
	return nil
}

func openBackups(ctx context.Context, cfg *config.Config) (*backup.Backuper, func() error, error) {
	if !cfg.BackupEnabled() {
		return nil, nil, fmt.Errorf("no --out/--in given and BACKUP_BUCKET is not set")
	}
	gcs, err := backup.NewGCS(ctx, cfg.BackupBucket)
	if err != nil {
		return nil, nil, err
	}
	return backup.New(gcs, cfg.BackupPrefix), gcs.Close, nil
}

func withOutput(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
