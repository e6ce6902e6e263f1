// Package notify posts budget alerts to a chat channel.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/bwmarrin/discordgo"

	"zenledger/internal/core"
	"zenledger/internal/ledger"
)

// Sender delivers one text message.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Discord sends messages to one channel through the bot REST API. No gateway
// connection is opened.
type Discord struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscord(token, channelID string) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return &Discord{session: session, channelID: channelID}, nil
}

func (d *Discord) Send(ctx context.Context, text string) error {
	if _, err := d.session.ChannelMessageSend(d.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

func (d *Discord) Close() error {
	return d.session.Close()
}

// Alerter announces a tag the first time it reaches the near-limit or
// over-budget state within a window. Reaching over after near announces
// again; dropping back does not, and nothing is announced twice per window.
type Alerter struct {
	sender Sender
	logger *slog.Logger

	mu   sync.Mutex
	sent map[string]ledger.BudgetState
}

func NewAlerter(sender Sender, logger *slog.Logger) *Alerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Alerter{sender: sender, logger: logger, sent: make(map[string]ledger.BudgetState)}
}

// Check sends an alert for every budget that escalated since the last check
// and returns how many were sent. A failed send is retried on the next check.
func (a *Alerter) Check(ctx context.Context, w ledger.Window, budgets []ledger.Budget) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sent := 0
	for _, b := range budgets {
		if severity(b.State) == 0 {
			continue
		}
		key := w.String() + "/" + b.TagID
		if severity(b.State) <= severity(a.sent[key]) {
			continue
		}
		if err := a.sender.Send(ctx, FormatAlert(w, b)); err != nil {
			return sent, err
		}
		a.sent[key] = b.State
		sent++
		a.logger.InfoContext(ctx, "Budget alert sent",
			"tag_id", b.TagID,
			"state", b.State,
			"period", w.String())
	}
	return sent, nil
}

func severity(s ledger.BudgetState) int {
	switch s {
	case ledger.BudgetNear:
		return 1
	case ledger.BudgetOver:
		return 2
	}
	return 0
}

// FormatAlert renders the alert text for one budget.
func FormatAlert(w ledger.Window, b ledger.Budget) string {
	percent := int(math.Round(b.Percent))
	spent := core.HumanAmount(b.Spent)
	limit := core.HumanAmount(b.Limit)
	if b.State == ledger.BudgetOver {
		return fmt.Sprintf("🚨 **%s** is over budget for %s: %s of %s (%d%%)", b.Name, w, spent, limit, percent)
	}
	return fmt.Sprintf("⚠️ **%s** is close to its budget for %s: %s of %s (%d%%)", b.Name, w, spent, limit, percent)
}
