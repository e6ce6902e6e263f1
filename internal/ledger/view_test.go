package ledger

import (
	"testing"
	"time"

	"zenledger/internal/core"
)

func sampleLog() []core.Transaction {
	return []core.Transaction{
		{ID: "t1", Amount: 10, Type: core.Expense, AccountID: "a1", Tags: []string{"1"}, Date: day(2025, 3, 2)},
		{ID: "t2", Amount: 30, Type: core.Transfer, AccountID: "a1", ToAccountID: "a2", Date: day(2025, 3, 1)},
		{ID: "t3", Amount: 100, Type: core.Income, AccountID: "a2", Tags: []string{"5"}, Date: day(2025, 3, 2)},
		{ID: "t4", Amount: 5, Type: core.Expense, AccountID: "a3", Tags: []string{"1", "2"}, Date: day(2025, 3, 3)},
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func TestFilterByDestinationAccount(t *testing.T) {
	got := ids(Filter(sampleLog(), "a2", ""))
	if len(got) != 2 || got[0] != "t2" || got[1] != "t3" {
		t.Fatalf("expected transfer destination to match, got %v", got)
	}
}

func TestFilterComposesWithAnd(t *testing.T) {
	got := ids(Filter(sampleLog(), "a1", "1"))
	if len(got) != 1 || got[0] != "t1" {
		t.Fatalf("expected only t1, got %v", got)
	}
	if got := Filter(sampleLog(), "a2", "1"); len(got) != 0 {
		t.Fatalf("expected nothing, got %v", ids(got))
	}
}

func TestSortOrders(t *testing.T) {
	cases := []struct {
		order core.SortOrder
		want  []string
	}{
		{core.SortDateDesc, []string{"t4", "t1", "t3", "t2"}},
		{core.SortDateAsc, []string{"t2", "t1", "t3", "t4"}},
		{core.SortAmountDesc, []string{"t3", "t2", "t1", "t4"}},
		{core.SortAmountAsc, []string{"t4", "t1", "t2", "t3"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.order), func(t *testing.T) {
			got := ids(Sort(sampleLog(), tc.order))
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestProjectGroupsByDay(t *testing.T) {
	v := Project(sampleLog(), ViewOptions{Location: time.UTC})
	if v.Count != 4 || v.Sort != core.SortDateDesc {
		t.Fatalf("unexpected view header %+v", v)
	}
	keys := []string{"2025-03-03", "2025-03-02", "2025-03-01"}
	if len(v.Groups) != len(keys) {
		t.Fatalf("expected %d groups, got %d", len(keys), len(v.Groups))
	}
	for i, k := range keys {
		if v.Groups[i].Date != k {
			t.Fatalf("group %d: expected %s, got %s", i, k, v.Groups[i].Date)
		}
	}
	if v.Groups[1].Total != 90 {
		t.Fatalf("expected day total 90, got %v", v.Groups[1].Total)
	}
	if v.Groups[2].Total != 0 {
		t.Fatalf("transfers must not count toward day totals, got %v", v.Groups[2].Total)
	}
}

func TestProjectGroupOrderFollowsSortDirection(t *testing.T) {
	asc := Project(sampleLog(), ViewOptions{Sort: core.SortDateAsc, Location: time.UTC})
	if asc.Groups[0].Date != "2025-03-01" {
		t.Fatalf("date-asc should start with the oldest day, got %s", asc.Groups[0].Date)
	}
	// amount sorts interleave days; keys still come out newest first
	byAmount := Project(sampleLog(), ViewOptions{Sort: core.SortAmountAsc, Location: time.UTC})
	if byAmount.Groups[0].Date != "2025-03-03" || byAmount.Groups[2].Date != "2025-03-01" {
		t.Fatalf("unexpected group order %v", byAmount.Groups)
	}
	first := byAmount.Groups[1].Transactions
	if len(first) != 2 || first[0].ID != "t1" || first[1].ID != "t3" {
		t.Fatalf("items inside a group keep sort order, got %v", ids(first))
	}
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	log := sampleLog()
	Project(log, ViewOptions{Sort: core.SortAmountDesc})
	if got := ids(log); got[0] != "t1" || got[3] != "t4" {
		t.Fatalf("input reordered: %v", got)
	}
}

func TestSeriesIncludesEmptyBuckets(t *testing.T) {
	month := Series(sampleLog(), MonthWindow(2025, time.March, time.UTC))
	if len(month) != 31 {
		t.Fatalf("expected 31 day buckets, got %d", len(month))
	}
	if month[1].Income != 100 || month[1].Expense != 10 || month[1].Key != "2025-03-02" {
		t.Fatalf("unexpected bucket %+v", month[1])
	}
	if month[0].Income != 0 || month[0].Expense != 0 {
		t.Fatalf("transfer day must be an empty bucket, got %+v", month[0])
	}
	if feb := Series(nil, MonthWindow(2024, time.February, time.UTC)); len(feb) != 29 {
		t.Fatalf("expected 29 buckets for leap February, got %d", len(feb))
	}
	year := Series(sampleLog(), YearWindow(2025, time.UTC))
	if len(year) != 12 || year[2].Expense != 15 || year[2].Key != "2025-03" || year[0].Expense != 0 {
		t.Fatalf("unexpected year series %+v", year)
	}
}

func TestRecentMonths(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	txs := append(sampleLog(), core.Transaction{Amount: 7, Type: core.Expense, Date: day(2024, 11, 20)})
	got := RecentMonths(txs, now, 6, time.UTC)
	keys := []string{"2024-10", "2024-11", "2024-12", "2025-01", "2025-02", "2025-03"}
	for i, k := range keys {
		if got[i].Key != k {
			t.Fatalf("bucket %d: expected %s, got %s", i, k, got[i].Key)
		}
	}
	if got[1].Expense != 7 || got[5].Expense != 15 || got[5].Income != 100 {
		t.Fatalf("unexpected trend %+v", got)
	}
}

func TestSelectionResolve(t *testing.T) {
	accounts := core.DefaultAccounts()
	tags := core.DefaultTags()
	s := Selection{AccountID: "a2", TagID: "1"}.Resolve(accounts, tags)
	if s.AccountID != "a2" || s.TagID != "1" {
		t.Fatalf("valid selection cleared: %+v", s)
	}
	s = Selection{AccountID: "deleted", TagID: "1"}.Resolve(accounts, tags[1:])
	if s.AccountID != "" || s.TagID != "" {
		t.Fatalf("stale selection kept: %+v", s)
	}
}

func TestRecent(t *testing.T) {
	got := ids(Recent(sampleLog(), 2))
	if len(got) != 2 || got[0] != "t4" {
		t.Fatalf("unexpected recent %v", got)
	}
}
