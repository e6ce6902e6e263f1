// Package ledger derives balances, category summaries and display views from
// a snapshot of the entity store. Every function here is pure: inputs are
// never mutated and nothing is cached.
package ledger

import "zenledger/internal/core"

// AccountBalance is an account together with its derived balance.
type AccountBalance struct {
	core.Account
	Balance float64 `json:"balance"`
}

// Position summarizes net-worth accounts.
type Position struct {
	NetWorth    float64 `json:"netWorth"`
	Assets      float64 `json:"assets"`      // sum of positive balances
	Liabilities float64 `json:"liabilities"` // absolute sum of negative balances
}

// Delta returns the signed effect of tx on accountID. A transfer whose
// source equals its destination nets to zero.
func Delta(tx core.Transaction, accountID string) float64 {
	var d float64
	switch tx.Type {
	case core.Expense:
		if tx.AccountID == accountID {
			d -= tx.Amount
		}
	case core.Income:
		if tx.AccountID == accountID {
			d += tx.Amount
		}
	case core.Transfer:
		if tx.AccountID == accountID {
			d -= tx.Amount
		}
		if tx.ToAccountID == accountID {
			d += tx.Amount
		}
	}
	return d
}

// Balances computes every account's balance from its initial balance and the
// full log. Transactions referencing unknown accounts contribute nothing.
func Balances(accounts []core.Account, txs []core.Transaction) []AccountBalance {
	index := make(map[string]int, len(accounts))
	out := make([]AccountBalance, len(accounts))
	for i, a := range accounts {
		out[i] = AccountBalance{Account: a, Balance: a.InitialBalance}
		index[a.ID] = i
	}
	for _, tx := range txs {
		for _, id := range touched(tx) {
			if i, ok := index[id]; ok {
				out[i].Balance += Delta(tx, id)
			}
		}
	}
	return out
}

// touched lists the distinct accounts a transaction can move money on.
func touched(tx core.Transaction) []string {
	if tx.Type == core.Transfer && tx.ToAccountID != tx.AccountID {
		return []string{tx.AccountID, tx.ToAccountID}
	}
	return []string{tx.AccountID}
}

// NetWorth sums balances of accounts included in net worth.
func NetWorth(balances []AccountBalance) float64 {
	return PositionOf(balances).NetWorth
}

// PositionOf splits net-worth accounts into assets and liabilities.
func PositionOf(balances []AccountBalance) Position {
	var p Position
	for _, b := range balances {
		if !b.IncludeInNetWorth {
			continue
		}
		p.NetWorth += b.Balance
		if b.Balance > 0 {
			p.Assets += b.Balance
		} else {
			p.Liabilities -= b.Balance
		}
	}
	return p
}

// FindBalance returns the derived balance of one account.
func FindBalance(balances []AccountBalance, id string) (AccountBalance, bool) {
	for _, b := range balances {
		if b.ID == id {
			return b, true
		}
	}
	return AccountBalance{}, false
}
