package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"zenledger/internal/core"
	"zenledger/internal/ledger"
	"zenledger/internal/store"
)

// Context is what the model is told about the ledger.
type Context struct {
	Accounts []core.Account
	Tags     []core.Tag
	Recent   []core.Transaction
}

// BuildContext picks the accounts, the tags with their sub-tags, and the
// limit most recent transactions by date out of snap.
func BuildContext(snap store.Snapshot, limit int) Context {
	if limit < 0 {
		limit = 0
	}
	return Context{
		Accounts: snap.Accounts,
		Tags:     snap.Tags,
		Recent:   ledger.Recent(snap.Transactions, limit),
	}
}

type recentLine struct {
	Date   string               `json:"date"`
	Amount float64              `json:"amount"`
	Type   core.TransactionType `json:"type"`
	Note   string               `json:"note,omitempty"`
}

// SystemPrompt renders the instruction sent with every request.
func (c Context) SystemPrompt(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var accounts strings.Builder
	for _, a := range c.Accounts {
		fmt.Fprintf(&accounts, "    Account: %q (ID: %s)\n", a.Name, a.ID)
	}
	var tags strings.Builder
	for _, t := range c.Tags {
		fmt.Fprintf(&tags, "    Tag: %q (ID: %s, type: %s)", t.Name, t.ID, t.Polarity)
		if len(t.SubTags) > 0 {
			fmt.Fprintf(&tags, ", SubTags: [%s]", strings.Join(t.SubTags, ", "))
		}
		tags.WriteByte('\n')
	}
	lines := make([]recentLine, 0, len(c.Recent))
	for _, tx := range c.Recent {
		lines = append(lines, recentLine{
			Date:   tx.Date.In(loc).Format("2006-01-02"),
			Amount: tx.Amount,
			Type:   tx.Type,
			Note:   tx.Note,
		})
	}
	recent, _ := json.Marshal(lines)

	return fmt.Sprintf(systemTemplate,
		now.In(loc).Format("2006-01-02"),
		accounts.String(),
		tags.String(),
		recent)
}

const systemTemplate = `You are the financial assistant of ZenLedger, a minimalist bookkeeping app.

Current context:
- Current date: %s
- Available accounts:
%s- Available tags (categories):
%s- Recent transactions:
    %s

Analyze the user input and answer with one JSON object.

1. Recording a transaction. When the user wants to log spending or income,
   extract amount (number), type (expense or income), accountId, tags (array
   of tag IDs) and note:
   {"action": "create", "data": {"amount": 20, "type": "expense", "accountId": "a1", "tags": ["1"], "note": "lunch"}, "text": "I've prepared the transaction for you."}

2. Analysis. When the user asks for insights:
   {"action": "analysis", "text": "Your food spending increased by 20%% this week..."}

3. Anything else:
   {"action": "chat", "text": "Hello! How can I help with your finances today?"}

Return raw JSON only, without Markdown or code fences.
`
