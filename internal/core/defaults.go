package core

// Starter data used when a persistence slot is absent.

func DefaultAccounts() []Account {
	return []Account{
		{ID: "a1", Name: "Cash", Kind: Cash, InitialBalance: 0, IncludeInNetWorth: true},
		{ID: "a2", Name: "Card", Kind: Bank, InitialBalance: 0, IncludeInNetWorth: true},
		{ID: "a3", Name: "Credit", Kind: Credit, InitialBalance: 0, IncludeInNetWorth: true},
	}
}

func DefaultTags() []Tag {
	limit := func(v float64) *float64 { return &v }
	return []Tag{
		{ID: "1", Name: "Food", Color: "bg-orange-50 text-orange-600 border-orange-100", Polarity: PolarityExpense, BudgetLimit: limit(500), SubTags: []string{"Groceries", "Dining Out", "Snacks", "Coffee"}},
		{ID: "2", Name: "Transport", Color: "bg-blue-50 text-blue-600 border-blue-100", Polarity: PolarityExpense, BudgetLimit: limit(200), SubTags: []string{"Taxi", "Bus", "Fuel"}},
		{ID: "3", Name: "Housing", Color: "bg-slate-50 text-slate-600 border-slate-100", Polarity: PolarityExpense, BudgetLimit: limit(1000), SubTags: []string{"Rent", "Utilities"}},
		{ID: "5", Name: "Salary", Color: "bg-emerald-50 text-emerald-600 border-emerald-100", Polarity: PolarityIncome, SubTags: []string{"Bonus", "Full-time"}},
	}
}

// TagColors are the presentation tokens offered for new tags.
var TagColors = []string{
	"bg-slate-100 text-slate-700 border-slate-200",
	"bg-red-50 text-red-600 border-red-100",
	"bg-orange-50 text-orange-600 border-orange-100",
	"bg-amber-50 text-amber-600 border-amber-100",
	"bg-emerald-50 text-emerald-600 border-emerald-100",
	"bg-cyan-50 text-cyan-600 border-cyan-100",
	"bg-blue-50 text-blue-600 border-blue-100",
	"bg-indigo-50 text-indigo-600 border-indigo-100",
	"bg-violet-50 text-violet-600 border-violet-100",
	"bg-rose-50 text-rose-600 border-rose-100",
}
