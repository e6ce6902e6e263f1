package ledger

import (
	"sort"

	"zenledger/internal/core"
)

// BudgetState classifies spend against a budget limit.
type BudgetState string

const (
	BudgetNormal    BudgetState = "normal"
	BudgetNear      BudgetState = "near"
	BudgetOver      BudgetState = "over"
	BudgetUnbounded BudgetState = "unbounded"
)

// Near-limit and over-budget thresholds, in percent of the limit.
const (
	NearThreshold = 80.0
	OverThreshold = 100.0
)

// Summary is the income/expense total of a window.
type Summary struct {
	Window  string  `json:"window"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// Budget is the spend of one tag compared against its limit for a window.
type Budget struct {
	TagID   string      `json:"tagId"`
	Name    string      `json:"name"`
	Color   string      `json:"color"`
	Spent   float64     `json:"spent"`
	Limit   float64     `json:"limit,omitempty"` // scaled to the window
	Percent float64     `json:"percent"`
	State   BudgetState `json:"state"`
}

// Slice is one bucket of the primary-tag expense breakdown.
type Slice struct {
	TagID  string  `json:"tagId"`
	Name   string  `json:"name"`
	Color  string  `json:"color,omitempty"`
	Amount float64 `json:"amount"`
	Share  float64 `json:"share"` // percent of total expense
}

// SubTagTotal is the spend recorded against one sub-tag.
type SubTagTotal struct {
	Name    string  `json:"name"`
	Expense float64 `json:"expense"`
	Income  float64 `json:"income"`
}

// TagTotal holds the totals of one tag and its sub-tags.
type TagTotal struct {
	TagID   string        `json:"tagId"`
	Name    string        `json:"name"`
	Expense float64       `json:"expense"`
	Income  float64       `json:"income"`
	SubTags []SubTagTotal `json:"subTags"`
}

// Report bundles the category aggregates of one window.
type Report struct {
	Summary   Summary  `json:"summary"`
	Budgets   []Budget `json:"budgets"`
	Breakdown []Slice  `json:"breakdown"`
}

// InWindow returns the transactions inside w that carry tagID, when set.
// The returned slice is new; txs is not modified.
func InWindow(txs []core.Transaction, w Window, tagID string) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !w.Contains(tx.Date.Time) {
			continue
		}
		if tagID != "" && !tx.HasTag(tagID) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Aggregate computes summary, budgets and breakdown for w.
func Aggregate(tags []core.Tag, txs []core.Transaction, w Window, tagID string) Report {
	scoped := InWindow(txs, w, tagID)
	budgetTags := tags
	if tagID != "" {
		budgetTags = nil
		if t, ok := core.FindTag(tags, tagID); ok {
			budgetTags = []core.Tag{t}
		}
	}
	return Report{
		Summary:   summarize(scoped, w),
		Budgets:   budgets(budgetTags, scoped, w.Months()),
		Breakdown: breakdown(tags, scoped),
	}
}

// Summarize returns income and expense totals in w, optionally limited to tagID.
func Summarize(txs []core.Transaction, w Window, tagID string) Summary {
	return summarize(InWindow(txs, w, tagID), w)
}

func summarize(scoped []core.Transaction, w Window) Summary {
	s := Summary{Window: w.String()}
	for _, tx := range scoped {
		switch tx.Type {
		case core.Income:
			s.Income += tx.Amount
		case core.Expense:
			s.Expense += tx.Amount
		}
	}
	s.Net = s.Income - s.Expense
	return s
}

// Budgets evaluates every expense-capable tag against its limit in w. Year
// windows compare against twelve times the monthly limit.
func Budgets(tags []core.Tag, txs []core.Transaction, w Window) []Budget {
	return budgets(tags, InWindow(txs, w, ""), w.Months())
}

func budgets(tags []core.Tag, scoped []core.Transaction, months int) []Budget {
	out := make([]Budget, 0, len(tags))
	for _, tag := range tags {
		if !tag.CountsAsExpense() {
			continue
		}
		var spent float64
		for _, tx := range scoped {
			if tx.Type == core.Expense && tx.HasTag(tag.ID) {
				spent += tx.Amount
			}
		}
		b := Budget{TagID: tag.ID, Name: tag.Name, Color: tag.Color, Spent: spent}
		limit, ok := tag.Limit()
		if !ok || limit <= 0 {
			if spent == 0 {
				continue
			}
			b.State = BudgetUnbounded
			out = append(out, b)
			continue
		}
		b.Limit = limit * float64(months)
		b.Percent = spent * 100 / b.Limit
		b.State = StateFor(b.Percent)
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Spent > out[j].Spent })
	return out
}

// StateFor maps a percentage of a positive limit to its budget state.
func StateFor(percent float64) BudgetState {
	switch {
	case percent >= OverThreshold:
		return BudgetOver
	case percent >= NearThreshold:
		return BudgetNear
	default:
		return BudgetNormal
	}
}

// Breakdown splits expense in w by primary tag. Transactions without tags, or
// whose primary tag no longer exists, fall in the unsorted bucket.
func Breakdown(tags []core.Tag, txs []core.Transaction, w Window, tagID string) []Slice {
	return breakdown(tags, InWindow(txs, w, tagID))
}

func breakdown(tags []core.Tag, scoped []core.Transaction) []Slice {
	var (
		total float64
		order []string
		byKey = make(map[string]*Slice)
	)
	for _, tx := range scoped {
		if tx.Type != core.Expense {
			continue
		}
		key := core.UnsortedID
		if id, ok := tx.PrimaryTag(); ok {
			if _, known := core.FindTag(tags, id); known {
				key = id
			}
		}
		s, ok := byKey[key]
		if !ok {
			s = &Slice{TagID: key, Name: core.UnsortedLabel}
			if t, found := core.FindTag(tags, key); found {
				s.Name, s.Color = t.Name, t.Color
			}
			byKey[key] = s
			order = append(order, key)
		}
		s.Amount += tx.Amount
		total += tx.Amount
	}
	out := make([]Slice, 0, len(order))
	for _, key := range order {
		s := *byKey[key]
		if total > 0 {
			s.Share = s.Amount * 100 / total
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

// TagTotals sums expense and income per tag and sub-tag in w. A transaction
// carrying several tags counts fully toward each of them. Tags with no
// activity and tag ids that no longer resolve are left out.
func TagTotals(tags []core.Tag, txs []core.Transaction, w Window) []TagTotal {
	scoped := InWindow(txs, w, "")
	out := make([]TagTotal, 0, len(tags))
	for _, tag := range tags {
		tt := TagTotal{TagID: tag.ID, Name: tag.Name, SubTags: []SubTagTotal{}}
		subs := make(map[string]*SubTagTotal)
		for _, tx := range scoped {
			if !tx.HasTag(tag.ID) || tx.Type == core.Transfer {
				continue
			}
			var target *SubTagTotal
			if name, ok := tx.SubTags[tag.ID]; ok && name != "" {
				target = subs[name]
				if target == nil {
					target = &SubTagTotal{Name: name}
					subs[name] = target
				}
			}
			if tx.Type == core.Expense {
				tt.Expense += tx.Amount
				if target != nil {
					target.Expense += tx.Amount
				}
			} else {
				tt.Income += tx.Amount
				if target != nil {
					target.Income += tx.Amount
				}
			}
		}
		if tt.Expense == 0 && tt.Income == 0 {
			continue
		}
		// configured sub-tags first, in their configured order
		for _, name := range tag.SubTags {
			if s, ok := subs[name]; ok {
				tt.SubTags = append(tt.SubTags, *s)
				delete(subs, name)
			}
		}
		rest := make([]string, 0, len(subs))
		for name := range subs {
			rest = append(rest, name)
		}
		sort.Strings(rest)
		for _, name := range rest {
			tt.SubTags = append(tt.SubTags, *subs[name])
		}
		out = append(out, tt)
	}
	return out
}
