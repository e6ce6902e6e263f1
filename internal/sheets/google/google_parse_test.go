package google

import (
	"testing"
)

func TestA1Range(t *testing.T) {
	tests := []struct {
		sheet, cells, want string
	}{
		{"Transactions", "A1", "'Transactions'!A1"},
		{"My Ledger", "A:Z", "'My Ledger'!A:Z"},
		{"Bob's", "A1", "'Bob''s'!A1"},
	}
	for _, tt := range tests {
		if got := a1Range(tt.sheet, tt.cells); got != tt.want {
			t.Errorf("a1Range(%q, %q) = %q, want %q", tt.sheet, tt.cells, got, tt.want)
		}
	}
}

func TestToValues(t *testing.T) {
	got := toValues([][]string{{"a", "b"}, {}})
	if len(got) != 2 || got[0][1] != "b" || len(got[1]) != 0 {
		t.Errorf("toValues() = %v", got)
	}
}
