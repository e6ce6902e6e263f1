// Package assistant turns free-text requests into transaction drafts or
// short answers about the ledger, backed by a generative model.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"zenledger/internal/core"
	applog "zenledger/internal/log"
	"zenledger/internal/store"
)

type Action string

const (
	ActionCreate   Action = "create"
	ActionAnalysis Action = "analysis"
	ActionChat     Action = "chat"
)

// Replies used when the model cannot be asked or its draft cannot be saved.
const (
	MissingKeyText = "The assistant is not configured: GEMINI_API_KEY is missing."
	FailureText    = "I'm having trouble thinking right now. Please try again."
	RejectedText   = "I couldn't turn that into a transaction I can save. Please add the amount and account."
)

var ErrEmptyInput = errors.New("empty input")

// Response is the assistant's answer. Draft is set only for create actions
// and is never saved by the assistant itself.
type Response struct {
	Action Action            `json:"action"`
	Text   string            `json:"text"`
	Draft  *core.Transaction `json:"draft,omitempty"`
}

// Model generates a JSON answer for input under the given system instruction.
type Model interface {
	Generate(ctx context.Context, system, input string) (string, error)
}

// Source provides the ledger state the prompt is built from and the
// save-time checks drafts must pass.
type Source interface {
	Snapshot() store.Snapshot
	ValidateTransaction(tx core.Transaction) (core.Transaction, error)
}

type Service struct {
	source Source
	model  Model
	limit  int
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

type Options struct {
	RecentLimit int
	Location    *time.Location
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewService builds the assistant. A nil model is allowed; every request
// then answers with MissingKeyText.
func NewService(source Source, model Model, opts Options) *Service {
	s := &Service{
		source: source,
		model:  model,
		limit:  opts.RecentLimit,
		loc:    opts.Location,
		now:    opts.Now,
		logger: opts.Logger,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Ask sends input to the model. Model failures degrade to a chat response;
// the only error is ErrEmptyInput.
func (s *Service) Ask(ctx context.Context, input string) (Response, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Response{}, ErrEmptyInput
	}
	if s.model == nil {
		return Response{Action: ActionChat, Text: MissingKeyText}, nil
	}

	snap := s.source.Snapshot()
	now := s.now()
	system := BuildContext(snap, s.limit).SystemPrompt(now, s.loc)

	raw, err := s.model.Generate(ctx, system, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "Assistant request failed", applog.FieldError, err)
		return Response{Action: ActionChat, Text: FailureText}, nil
	}
	resp, err := parseReply(raw, snap, now)
	if err != nil {
		s.logger.WarnContext(ctx, "Assistant reply unusable", applog.FieldError, err, "raw", raw)
		return Response{Action: ActionChat, Text: FailureText}, nil
	}
	if resp.Draft != nil {
		valid, err := s.source.ValidateTransaction(*resp.Draft)
		if err != nil {
			s.logger.WarnContext(ctx, "Assistant draft rejected", applog.FieldError, err)
			return Response{Action: ActionChat, Text: RejectedText}, nil
		}
		resp.Draft = &valid
	}
	s.logger.DebugContext(ctx, "Assistant replied", "action", resp.Action)
	return resp, nil
}

type reply struct {
	Action Action     `json:"action"`
	Text   string     `json:"text"`
	Data   *draftData `json:"data"`
}

type draftData struct {
	Amount    draftAmount          `json:"amount"`
	Type      core.TransactionType `json:"type"`
	AccountID string               `json:"accountId"`
	Tags      []string             `json:"tags"`
	Note      string               `json:"note"`
}

func parseReply(raw string, snap store.Snapshot, now time.Time) (Response, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return Response{}, errors.New("empty reply")
	}
	var r reply
	if err := json.Unmarshal([]byte(clean), &r); err != nil {
		return Response{}, fmt.Errorf("decode reply: %w", err)
	}

	switch r.Action {
	case ActionAnalysis, ActionChat:
		return Response{Action: r.Action, Text: r.Text}, nil
	case ActionCreate:
		if r.Data == nil {
			return Response{Action: ActionChat, Text: r.Text}, nil
		}
		draft := r.Data.draft(snap, now)
		return Response{Action: ActionCreate, Text: r.Text, Draft: &draft}, nil
	}
	return Response{Action: ActionChat, Text: r.Text}, nil
}

// draft maps the model's fields onto a transaction. Unknown tags and tags of
// the wrong polarity are dropped; an unknown account falls back to the first
// account. The result still goes through the normal save validation.
func (d draftData) draft(snap store.Snapshot, now time.Time) core.Transaction {
	tx := core.Transaction{
		Amount:      float64(d.Amount),
		Type:        d.Type,
		AccountID:   strings.TrimSpace(d.AccountID),
		Note:        strings.TrimSpace(d.Note),
		Date:        core.Date{Time: now.Truncate(time.Millisecond)},
		Tags:        []string{},
		Images:      []string{},
		IsConfirmed: true,
	}
	if tx.Type != core.Expense && tx.Type != core.Income {
		tx.Type = core.Expense
	}
	if _, ok := core.FindAccount(snap.Accounts, tx.AccountID); !ok && len(snap.Accounts) > 0 {
		tx.AccountID = snap.Accounts[0].ID
	}
	for _, id := range d.Tags {
		tag, ok := core.FindTag(snap.Tags, id)
		if !ok || !tag.Polarity.Allows(tx.Type) || tx.HasTag(id) {
			continue
		}
		tx.Tags = append(tx.Tags, id)
	}
	return tx
}

// draftAmount accepts the amount as a JSON number or a decimal string and
// rounds it like form input. The sign is dropped since the type carries the
// direction. Anything unparseable reads as zero and fails validation later.
type draftAmount float64

func (a *draftAmount) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err != nil {
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			*a = 0
			return nil
		}
		text = strconv.FormatFloat(math.Abs(n), 'f', -1, 64)
	}
	v, err := core.ParseAmount(strings.TrimPrefix(strings.TrimSpace(text), "-"))
	if err != nil {
		v = 0
	}
	*a = draftAmount(v)
	return nil
}

// cleanModelJSON strips Markdown fences and any text around the outermost
// JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return ""
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
