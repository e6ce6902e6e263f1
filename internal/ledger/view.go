package ledger

import (
	"sort"
	"time"

	"zenledger/internal/core"
)

// ViewOptions selects and orders the transactions of a view. Empty filter
// fields are inactive.
type ViewOptions struct {
	AccountID string
	TagID     string
	Sort      core.SortOrder
	Location  *time.Location
}

// DayGroup is the transactions of one local calendar day.
type DayGroup struct {
	Date         string             `json:"date"`
	Total        float64            `json:"total"` // income minus expense, transfers excluded
	Transactions []core.Transaction `json:"transactions"`
}

// View is the display-ready projection of the log.
type View struct {
	Sort   core.SortOrder `json:"sort"`
	Count  int            `json:"count"`
	Groups []DayGroup     `json:"groups"`
}

// Match reports whether tx passes both filters. The account filter matches
// the source account or, for transfers, the destination.
func Match(tx core.Transaction, accountID, tagID string) bool {
	if accountID != "" && !tx.Touches(accountID) {
		return false
	}
	if tagID != "" && !tx.HasTag(tagID) {
		return false
	}
	return true
}

// Filter returns the transactions matching both filters, in input order.
func Filter(txs []core.Transaction, accountID, tagID string) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if Match(tx, accountID, tagID) {
			out = append(out, tx)
		}
	}
	return out
}

// Sort returns a sorted copy of txs. Ties keep input order.
func Sort(txs []core.Transaction, order core.SortOrder) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	var less func(a, b core.Transaction) bool
	switch order {
	case core.SortDateAsc:
		less = func(a, b core.Transaction) bool { return a.Date.Before(b.Date.Time) }
	case core.SortAmountDesc:
		less = func(a, b core.Transaction) bool { return a.Amount > b.Amount }
	case core.SortAmountAsc:
		less = func(a, b core.Transaction) bool { return a.Amount < b.Amount }
	default:
		less = func(a, b core.Transaction) bool { return a.Date.After(b.Date.Time) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Project filters, sorts and groups txs by local day. Group keys follow the
// date direction of the sort: ascending only for date-asc.
func Project(txs []core.Transaction, opts ViewOptions) View {
	order := opts.Sort
	if !order.Valid() {
		order = core.SortDateDesc
	}
	sorted := Sort(Filter(txs, opts.AccountID, opts.TagID), order)

	index := make(map[string]int)
	groups := make([]DayGroup, 0)
	for _, tx := range sorted {
		key := DayKey(tx.Date.Time, opts.Location)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: key, Transactions: []core.Transaction{}})
		}
		g := &groups[i]
		g.Transactions = append(g.Transactions, tx)
		switch tx.Type {
		case core.Income:
			g.Total += tx.Amount
		case core.Expense:
			g.Total -= tx.Amount
		}
	}

	// keys are zero-padded ISO dates, so string order is calendar order
	sort.SliceStable(groups, func(i, j int) bool {
		if order == core.SortDateAsc {
			return groups[i].Date < groups[j].Date
		}
		return groups[i].Date > groups[j].Date
	})
	return View{Sort: order, Count: len(sorted), Groups: groups}
}

// Recent returns the n most recent transactions by date.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	sorted := Sort(txs, core.SortDateDesc)
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
