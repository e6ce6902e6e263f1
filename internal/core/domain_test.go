package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Amount: 12.5, Type: Expense, AccountID: "a1"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"zero amount", Transaction{Amount: 0, Type: Expense, AccountID: "a1"}, ErrInvalidAmount},
		{"negative amount", Transaction{Amount: -1, Type: Expense, AccountID: "a1"}, ErrInvalidAmount},
		{"nan amount", Transaction{Amount: math.NaN(), Type: Expense, AccountID: "a1"}, ErrInvalidAmount},
		{"bad type", Transaction{Amount: 1, Type: "refund", AccountID: "a1"}, ErrInvalidType},
		{"no account", Transaction{Amount: 1, Type: Income}, ErrMissingAccount},
		{"transfer without destination", Transaction{Amount: 1, Type: Transfer, AccountID: "a1"}, ErrMissingDestination},
		{"too many images", Transaction{Amount: 1, Type: Expense, AccountID: "a1", Images: []string{"1", "2", "3", "4", "5"}}, ErrTooManyImages},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAccountAndTagValidate(t *testing.T) {
	if err := (Account{Name: " ", Kind: Cash}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Account{Name: "Wallet", Kind: "crypto"}).Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	neg := -5.0
	if err := (Tag{Name: "Food", Polarity: PolarityExpense, BudgetLimit: &neg}).Validate(); !errors.Is(err, ErrInvalidBudget) {
		t.Fatalf("expected ErrInvalidBudget, got %v", err)
	}
	if err := (Tag{Name: "Food", Polarity: PolarityExpense, SubTags: []string{"Coffee", "Coffee"}}).Validate(); !errors.Is(err, ErrDuplicateSubTag) {
		t.Fatalf("expected ErrDuplicateSubTag, got %v", err)
	}
	if err := (Tag{Name: "Food", Polarity: "sometimes"}).Validate(); !errors.Is(err, ErrInvalidPolarity) {
		t.Fatalf("expected ErrInvalidPolarity, got %v", err)
	}
}

func TestPolarityAllows(t *testing.T) {
	cases := []struct {
		p    TagPolarity
		t    TransactionType
		want bool
	}{
		{PolarityExpense, Expense, true},
		{PolarityExpense, Income, false},
		{PolarityIncome, Income, true},
		{PolarityBoth, Expense, true},
		{PolarityBoth, Income, true},
		{PolarityBoth, Transfer, false},
	}
	for _, tc := range cases {
		if got := tc.p.Allows(tc.t); got != tc.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tc.p, tc.t, got, tc.want)
		}
	}
}

func TestTouches(t *testing.T) {
	tr := Transaction{Type: Transfer, AccountID: "a1", ToAccountID: "a2"}
	if !tr.Touches("a1") || !tr.Touches("a2") || tr.Touches("a3") {
		t.Fatalf("unexpected Touches result for transfer")
	}
	ex := Transaction{Type: Expense, AccountID: "a1", ToAccountID: "a2"}
	if ex.Touches("a2") {
		t.Fatalf("destination must be ignored for non-transfers")
	}
}

func TestDateJSON(t *testing.T) {
	d := DateFromMillis(1735689600123)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "1735689600123" {
		t.Fatalf("unexpected encoding %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v vs %v", back, d)
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &back); err == nil {
		t.Fatalf("expected error for string date")
	}
	var zero Date
	if b, _ := json.Marshal(zero); string(b) != "0" {
		t.Fatalf("zero date should encode as 0, got %s", b)
	}
}

func TestPreferencesWithDefaults(t *testing.T) {
	p, err := Preferences{Theme: "midnight"}.WithDefaults()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if p.Theme != "midnight" || p.Language != "cn" || p.DefaultSort != SortDateDesc {
		t.Fatalf("unexpected merged preferences: %+v", p)
	}
	if err := (Preferences{DefaultSort: "random"}).Validate(); err == nil {
		t.Fatalf("expected invalid sort error")
	}
}

func TestDefaults(t *testing.T) {
	for _, a := range DefaultAccounts() {
		if err := a.Validate(); err != nil {
			t.Fatalf("default account %s invalid: %v", a.ID, err)
		}
	}
	for _, tg := range DefaultTags() {
		if err := tg.Validate(); err != nil {
			t.Fatalf("default tag %s invalid: %v", tg.ID, err)
		}
	}
	food, ok := FindTag(DefaultTags(), "1")
	if !ok {
		t.Fatalf("expected Food tag")
	}
	if l, ok := food.Limit(); !ok || l != 500 {
		t.Fatalf("unexpected Food limit %v %v", l, ok)
	}
}
