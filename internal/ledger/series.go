package ledger

import (
	"fmt"
	"time"

	"zenledger/internal/core"
)

// Bucket is one point of a trend chart.
type Bucket struct {
	Key     string  `json:"key"`   // 2006-01-02 for days, 2006-01 for months
	Index   int     `json:"index"` // day of month or month of year
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// Series buckets w by day of month (month windows) or month of year (year
// windows). Every bucket of the window is present, empty ones with zeros.
func Series(txs []core.Transaction, w Window) []Bucket {
	loc := location(w.Location)
	var buckets []Bucket
	if w.Period == PeriodYear {
		buckets = make([]Bucket, 12)
		for m := 1; m <= 12; m++ {
			buckets[m-1] = Bucket{Key: fmt.Sprintf("%04d-%02d", w.Year, m), Index: m}
		}
	} else {
		days := w.End().AddDate(0, 0, -1).Day()
		buckets = make([]Bucket, days)
		for d := 1; d <= days; d++ {
			buckets[d-1] = Bucket{Key: fmt.Sprintf("%04d-%02d-%02d", w.Year, int(w.Month), d), Index: d}
		}
	}
	for _, tx := range txs {
		if !w.Contains(tx.Date.Time) {
			continue
		}
		lt := tx.Date.In(loc)
		i := lt.Day() - 1
		if w.Period == PeriodYear {
			i = int(lt.Month()) - 1
		}
		add(&buckets[i], tx)
	}
	return buckets
}

// RecentMonths returns the n calendar months ending with the month of now,
// oldest first.
func RecentMonths(txs []core.Transaction, now time.Time, n int, loc *time.Location) []Bucket {
	if n <= 0 {
		return []Bucket{}
	}
	current := CurrentMonth(now, loc).Start()
	windows := make([]Window, n)
	buckets := make([]Bucket, n)
	for i := 0; i < n; i++ {
		start := current.AddDate(0, i-(n-1), 0)
		windows[i] = MonthWindow(start.Year(), start.Month(), loc)
		buckets[i] = Bucket{Key: windows[i].String(), Index: int(start.Month())}
	}
	for _, tx := range txs {
		for i, w := range windows {
			if w.Contains(tx.Date.Time) {
				add(&buckets[i], tx)
				break
			}
		}
	}
	return buckets
}

func add(b *Bucket, tx core.Transaction) {
	switch tx.Type {
	case core.Income:
		b.Income += tx.Amount
	case core.Expense:
		b.Expense += tx.Amount
	}
}
