package ledger

import (
	"math/rand"
	"testing"
	"time"

	"zenledger/internal/core"
)

func day(y int, m time.Month, d int) core.Date {
	return core.Date{Time: time.Date(y, m, d, 12, 0, 0, 0, time.UTC)}
}

func limit(v float64) *float64 { return &v }

func TestTransferBalances(t *testing.T) {
	accounts := []core.Account{
		{ID: "a1", Name: "Cash", Kind: core.Cash, InitialBalance: 100, IncludeInNetWorth: true},
		{ID: "a2", Name: "Card", Kind: core.Bank, InitialBalance: 0, IncludeInNetWorth: true},
	}
	txs := []core.Transaction{{ID: "t1", Amount: 30, Type: core.Transfer, AccountID: "a1", ToAccountID: "a2"}}

	balances := Balances(accounts, txs)
	a1, _ := FindBalance(balances, "a1")
	a2, _ := FindBalance(balances, "a2")
	if a1.Balance != 70 || a2.Balance != 30 {
		t.Fatalf("expected a1=70 a2=30, got a1=%v a2=%v", a1.Balance, a2.Balance)
	}
	if nw := NetWorth(balances); nw != 100 {
		t.Fatalf("expected net worth 100, got %v", nw)
	}
}

func TestBalanceRules(t *testing.T) {
	accounts := []core.Account{
		{ID: "a1", InitialBalance: 50, IncludeInNetWorth: true},
		{ID: "a2", InitialBalance: -20, IncludeInNetWorth: true},
		{ID: "a3", InitialBalance: 1000, IncludeInNetWorth: false},
	}
	txs := []core.Transaction{
		{Amount: 10, Type: core.Expense, AccountID: "a1"},
		{Amount: 5, Type: core.Income, AccountID: "a1"},
		{Amount: 7, Type: core.Transfer, AccountID: "a1", ToAccountID: "a1"}, // self transfer
		{Amount: 99, Type: core.Expense, AccountID: "gone"},                  // orphan source
		{Amount: 15, Type: core.Transfer, AccountID: "a3", ToAccountID: "gone"},
	}
	balances := Balances(accounts, txs)
	reversed := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		reversed[len(txs)-1-i] = tx
	}
	reordered := Balances(accounts, reversed)
	want := map[string]float64{"a1": 45, "a2": -20, "a3": 985}
	for i, b := range balances {
		if b.Balance != want[b.ID] {
			t.Errorf("%s: expected %v, got %v", b.ID, want[b.ID], b.Balance)
		}
		if reordered[i].Balance != b.Balance {
			t.Errorf("%s: balance depends on log order: %v vs %v", b.ID, reordered[i].Balance, b.Balance)
		}
	}
	p := PositionOf(balances)
	if p.NetWorth != 25 || p.Assets != 45 || p.Liabilities != 20 {
		t.Fatalf("unexpected position %+v", p)
	}
	if p.Assets-p.Liabilities != p.NetWorth {
		t.Fatalf("assets minus liabilities must equal net worth")
	}
}

func TestTransferConservesMoney(t *testing.T) {
	accounts := []core.Account{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}
	transfers := []core.Transaction{
		{Amount: 12.34, Type: core.Transfer, AccountID: "a1", ToAccountID: "a2"},
		{Amount: 0.5, Type: core.Transfer, AccountID: "a3", ToAccountID: "a1"},
		{Amount: 8, Type: core.Transfer, AccountID: "a2", ToAccountID: "a2"},
	}
	for _, tx := range transfers {
		var sum float64
		for _, b := range Balances(accounts, []core.Transaction{tx}) {
			sum += b.Balance
		}
		if sum != 0 {
			t.Fatalf("transfer %+v changed total by %v", tx, sum)
		}
	}
}

func TestBalancesOrderIndependent(t *testing.T) {
	accounts := []core.Account{{ID: "a1", InitialBalance: 10}, {ID: "a2"}, {ID: "a3", InitialBalance: -4}}
	var txs []core.Transaction
	types := []core.TransactionType{core.Expense, core.Income, core.Transfer}
	ids := []string{"a1", "a2", "a3"}
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		txs = append(txs, core.Transaction{
			Amount:      float64(r.Intn(10000)) / 4, // exact in binary
			Type:        types[r.Intn(3)],
			AccountID:   ids[r.Intn(3)],
			ToAccountID: ids[r.Intn(3)],
		})
	}
	want := Balances(accounts, txs)
	for run := 0; run < 5; run++ {
		shuffled := append([]core.Transaction(nil), txs...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := Balances(accounts, shuffled)
		for i := range want {
			if got[i].Balance != want[i].Balance {
				t.Fatalf("run %d: %s expected %v, got %v", run, want[i].ID, want[i].Balance, got[i].Balance)
			}
		}
	}
}

func TestBudgetOver(t *testing.T) {
	tags := []core.Tag{{ID: "1", Name: "Food", Polarity: core.PolarityExpense, BudgetLimit: limit(500)}}
	txs := []core.Transaction{
		{Amount: 200, Type: core.Expense, AccountID: "a1", Tags: []string{"1"}, Date: day(2025, 3, 2)},
		{Amount: 300, Type: core.Expense, AccountID: "a1", Tags: []string{"1"}, Date: day(2025, 3, 10)},
		{Amount: 20, Type: core.Expense, AccountID: "a1", Tags: []string{"1"}, Date: day(2025, 3, 31)},
		{Amount: 999, Type: core.Expense, AccountID: "a1", Tags: []string{"1"}, Date: day(2025, 4, 1)},
	}
	got := Budgets(tags, txs, MonthWindow(2025, time.March, time.UTC))
	if len(got) != 1 {
		t.Fatalf("expected one budget, got %d", len(got))
	}
	b := got[0]
	if b.Spent != 520 || b.Percent != 104 || b.State != BudgetOver {
		t.Fatalf("unexpected budget %+v", b)
	}
}

func TestBudgetStates(t *testing.T) {
	tags := []core.Tag{
		{ID: "1", Name: "Food", Polarity: core.PolarityExpense, BudgetLimit: limit(100)},
		{ID: "2", Name: "Transport", Polarity: core.PolarityBoth, BudgetLimit: limit(100)},
		{ID: "3", Name: "Gifts", Polarity: core.PolarityExpense},                        // unbounded, spent
		{ID: "4", Name: "Books", Polarity: core.PolarityExpense},                        // nothing to report
		{ID: "5", Name: "Salary", Polarity: core.PolarityIncome, BudgetLimit: limit(1)}, // income tags skipped
		{ID: "6", Name: "Zero", Polarity: core.PolarityExpense, BudgetLimit: limit(0)},  // zero limit is unbounded
	}
	txs := []core.Transaction{
		{Amount: 80, Type: core.Expense, Tags: []string{"1"}, Date: day(2025, 1, 5)},
		{Amount: 50, Type: core.Expense, Tags: []string{"2"}, Date: day(2025, 1, 6)},
		{Amount: 500, Type: core.Income, Tags: []string{"2"}, Date: day(2025, 1, 6)},
		{Amount: 30, Type: core.Expense, Tags: []string{"3"}, Date: day(2025, 1, 7)},
		{Amount: 5, Type: core.Expense, Tags: []string{"6"}, Date: day(2025, 1, 7)},
	}
	got := Budgets(tags, txs, MonthWindow(2025, time.January, time.UTC))
	states := make(map[string]BudgetState)
	for _, b := range got {
		states[b.TagID] = b.State
	}
	want := map[string]BudgetState{"1": BudgetNear, "2": BudgetNormal, "3": BudgetUnbounded, "6": BudgetUnbounded}
	if len(states) != len(want) {
		t.Fatalf("expected %d budgets, got %v", len(want), states)
	}
	for id, s := range want {
		if states[id] != s {
			t.Errorf("tag %s: expected %s, got %s", id, s, states[id])
		}
	}
	if got[0].TagID != "1" {
		t.Fatalf("budgets should be ordered by spend, got %s first", got[0].TagID)
	}
}

func TestYearBudgetScalesLimit(t *testing.T) {
	tags := []core.Tag{{ID: "1", Name: "Food", Polarity: core.PolarityExpense, BudgetLimit: limit(100)}}
	txs := []core.Transaction{
		{Amount: 600, Type: core.Expense, Tags: []string{"1"}, Date: day(2025, 2, 1)},
	}
	got := Budgets(tags, txs, YearWindow(2025, time.UTC))
	if got[0].Limit != 1200 || got[0].Percent != 50 || got[0].State != BudgetNormal {
		t.Fatalf("unexpected year budget %+v", got[0])
	}
}

func TestDeletedTagFallsInUnsorted(t *testing.T) {
	tags := []core.Tag{
		{ID: "1", Name: "Food", Polarity: core.PolarityExpense},
		{ID: "2", Name: "Transport", Polarity: core.PolarityExpense},
	}
	txs := []core.Transaction{
		{ID: "t1", Amount: 30, Type: core.Expense, Tags: []string{"2", "1"}, Date: day(2025, 5, 1)},
		{ID: "t2", Amount: 10, Type: core.Expense, Tags: []string{"1"}, Date: day(2025, 5, 2)},
		{ID: "t3", Amount: 10, Type: core.Expense, Date: day(2025, 5, 3)},
	}
	w := MonthWindow(2025, time.May, time.UTC)

	before := Breakdown(tags, txs, w, "")
	if len(before) != 3 || before[0].TagID != "2" || before[0].Share != 60 {
		t.Fatalf("unexpected breakdown %+v", before)
	}

	remaining := tags[:1] // Transport deleted
	after := Breakdown(remaining, txs, w, "")
	var unsorted Slice
	for _, s := range after {
		if s.TagID == core.UnsortedID {
			unsorted = s
		}
	}
	if unsorted.Amount != 40 || unsorted.Name != core.UnsortedLabel {
		t.Fatalf("expected 40 unsorted after deletion, got %+v", after)
	}
	if len(txs) != 3 || txs[0].Tags[0] != "2" {
		t.Fatalf("transactions must be untouched")
	}
}

func TestAggregateSummaryAndTagFilter(t *testing.T) {
	tags := core.DefaultTags()
	txs := []core.Transaction{
		{Amount: 40, Type: core.Expense, Tags: []string{"1"}, Date: day(2025, 6, 1)},
		{Amount: 25, Type: core.Expense, Tags: []string{"2"}, Date: day(2025, 6, 2)},
		{Amount: 1000, Type: core.Income, Tags: []string{"5"}, Date: day(2025, 6, 3)},
		{Amount: 300, Type: core.Transfer, AccountID: "a1", ToAccountID: "a2", Date: day(2025, 6, 3)},
		{Amount: 5, Type: core.Expense, Tags: []string{"1"}, Date: day(2025, 7, 1)},
	}
	w := MonthWindow(2025, time.June, time.UTC)
	r := Aggregate(tags, txs, w, "")
	if r.Summary.Income != 1000 || r.Summary.Expense != 65 || r.Summary.Net != 935 || r.Summary.Window != "2025-06" {
		t.Fatalf("unexpected summary %+v", r.Summary)
	}
	filtered := Aggregate(tags, txs, w, "1")
	if filtered.Summary.Expense != 40 || filtered.Summary.Income != 0 {
		t.Fatalf("unexpected filtered summary %+v", filtered.Summary)
	}
	if len(filtered.Budgets) != 1 || filtered.Budgets[0].TagID != "1" {
		t.Fatalf("filtered budgets should only cover the filter tag: %+v", filtered.Budgets)
	}
}

func TestTagTotals(t *testing.T) {
	tags := core.DefaultTags()
	txs := []core.Transaction{
		{Amount: 4, Type: core.Expense, Tags: []string{"1"}, SubTags: map[string]string{"1": "Coffee"}, Date: day(2025, 6, 1)},
		{Amount: 6, Type: core.Expense, Tags: []string{"1"}, SubTags: map[string]string{"1": "Groceries"}, Date: day(2025, 6, 2)},
		{Amount: 3, Type: core.Expense, Tags: []string{"1"}, SubTags: map[string]string{"1": "Coffee"}, Date: day(2025, 6, 2)},
		{Amount: 1, Type: core.Expense, Tags: []string{"1"}, Date: day(2025, 6, 2)},
		{Amount: 2000, Type: core.Income, Tags: []string{"5"}, SubTags: map[string]string{"5": "Bonus"}, Date: day(2025, 6, 3)},
	}
	got := TagTotals(tags, txs, MonthWindow(2025, time.June, time.UTC))
	if len(got) != 2 {
		t.Fatalf("expected 2 tag totals, got %+v", got)
	}
	food := got[0]
	if food.TagID != "1" || food.Expense != 14 {
		t.Fatalf("unexpected food totals %+v", food)
	}
	// configured order: Groceries before Coffee
	if len(food.SubTags) != 2 || food.SubTags[0].Name != "Groceries" || food.SubTags[1].Expense != 7 {
		t.Fatalf("unexpected sub-tag totals %+v", food.SubTags)
	}
	if got[1].Income != 2000 || got[1].SubTags[0].Name != "Bonus" {
		t.Fatalf("unexpected salary totals %+v", got[1])
	}
}

func TestWindowUsesLocalCalendar(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2025-01-31 20:00 UTC is 2025-02-01 in Tokyo
	ts := time.Date(2025, 1, 31, 20, 0, 0, 0, time.UTC)
	if MonthWindow(2025, time.January, tokyo).Contains(ts) {
		t.Fatalf("instant belongs to February in Tokyo")
	}
	if !MonthWindow(2025, time.February, tokyo).Contains(ts) {
		t.Fatalf("instant should be in February in Tokyo")
	}
	if !YearWindow(2025, tokyo).Contains(ts) {
		t.Fatalf("instant should be in 2025")
	}
	if err := (Window{Period: PeriodMonth, Year: 2025, Month: 13}).Validate(); err == nil {
		t.Fatalf("expected invalid month")
	}
}
