package snapshot

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"zenledger/internal/core"
)

// Header is the first row of the tabular export.
var Header = []string{"Date", "Type", "Account", "To Account", "Amount", "Tags", "SubTags", "Note", "Confirmed"}

// NoDestination fills the To Account column of non-transfers.
const NoDestination = "-"

// Rows renders one flat row per transaction, in log order, without header.
func Rows(accounts []core.Account, tags []core.Tag, txs []core.Transaction, loc *time.Location) ([][]string, error) {
	if loc == nil {
		loc = time.Local
	}
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		row, err := Row(accounts, tags, tx, loc)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Row renders a single transaction.
func Row(accounts []core.Account, tags []core.Tag, tx core.Transaction, loc *time.Location) ([]string, error) {
	to := NoDestination
	if tx.Type == core.Transfer {
		to = core.AccountName(accounts, tx.ToAccountID)
	}

	names := make([]string, 0, len(tx.Tags))
	for _, id := range tx.Tags {
		if t, ok := core.FindTag(tags, id); ok {
			names = append(names, t.Name)
		} else {
			names = append(names, core.UnknownLabel)
		}
	}

	sub := "{}"
	if len(tx.SubTags) > 0 {
		b, err := json.Marshal(tx.SubTags)
		if err != nil {
			return nil, fmt.Errorf("encode sub-tags of %s: %w", tx.ID, err)
		}
		sub = string(b)
	}

	confirmed := "No"
	if tx.IsConfirmed {
		confirmed = "Yes"
	}

	return []string{
		tx.Date.In(loc).Format("2006-01-02"),
		string(tx.Type),
		core.AccountName(accounts, tx.AccountID),
		to,
		core.FormatAmount(tx.Amount),
		strings.Join(names, "; "),
		sub,
		tx.Note,
		confirmed,
	}, nil
}

// WriteCSV writes the header and every row as comma separated values.
func WriteCSV(w io.Writer, accounts []core.Account, tags []core.Tag, txs []core.Transaction, loc *time.Location) error {
	rows, err := Rows(accounts, tags, txs, loc)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
