package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"zenledger/internal/ledger"
)

type fakeSender struct {
	texts []string
	err   error
}

func (f *fakeSender) Send(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	return nil
}

func march() ledger.Window {
	return ledger.MonthWindow(2024, time.March, time.UTC)
}

func budget(state ledger.BudgetState, percent float64) ledger.Budget {
	return ledger.Budget{TagID: "1", Name: "Food", Spent: percent * 5, Limit: 500, Percent: percent, State: state}
}

func TestFormatAlert(t *testing.T) {
	got := FormatAlert(march(), budget(ledger.BudgetOver, 104))
	want := "🚨 **Food** is over budget for 2024-03: 520.00 of 500.00 (104%)"
	if got != want {
		t.Errorf("FormatAlert() = %q, want %q", got, want)
	}
	got = FormatAlert(march(), ledger.Budget{Name: "Housing", Spent: 1234.5, Limit: 1500, Percent: 82.3, State: ledger.BudgetNear})
	if !strings.Contains(got, "close to its budget") || !strings.Contains(got, "1,234.50 of 1,500.00 (82%)") {
		t.Errorf("FormatAlert() = %q", got)
	}
}

func TestAlerterEscalatesOncePerWindow(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	a := NewAlerter(sender, nil)
	w := march()

	steps := []struct {
		b    ledger.Budget
		want int
	}{
		{budget(ledger.BudgetNormal, 40), 0},
		{budget(ledger.BudgetNear, 85), 1},
		{budget(ledger.BudgetNear, 90), 0},
		{budget(ledger.BudgetOver, 104), 1},
		{budget(ledger.BudgetNear, 95), 0},
		{budget(ledger.BudgetOver, 120), 0},
	}
	for i, s := range steps {
		n, err := a.Check(ctx, w, []ledger.Budget{s.b})
		if err != nil {
			t.Fatalf("step %d: Check() error = %v", i, err)
		}
		if n != s.want {
			t.Errorf("step %d: sent %d, want %d", i, n, s.want)
		}
	}

	april := ledger.MonthWindow(2024, time.April, time.UTC)
	if n, _ := a.Check(ctx, april, []ledger.Budget{budget(ledger.BudgetOver, 110)}); n != 1 {
		t.Errorf("new window should alert again, sent %d", n)
	}
	if len(sender.texts) != 3 {
		t.Errorf("texts = %v", sender.texts)
	}
}

func TestAlerterIgnoresUnbounded(t *testing.T) {
	a := NewAlerter(&fakeSender{}, nil)
	n, _ := a.Check(context.Background(), march(), []ledger.Budget{{TagID: "5", State: ledger.BudgetUnbounded}})
	if n != 0 {
		t.Errorf("unbounded budget alerted")
	}
}

func TestAlerterRetriesFailedSend(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{err: errors.New("rate limited")}
	a := NewAlerter(sender, nil)

	if _, err := a.Check(ctx, march(), []ledger.Budget{budget(ledger.BudgetOver, 104)}); err == nil {
		t.Fatal("expected send error")
	}
	sender.err = nil
	if n, err := a.Check(ctx, march(), []ledger.Budget{budget(ledger.BudgetOver, 104)}); err != nil || n != 1 {
		t.Fatalf("retry sent %d, err %v", n, err)
	}
}
