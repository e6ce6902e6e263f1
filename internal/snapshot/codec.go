// Package snapshot encodes the entity collections to the portable backup
// document and restores them, and renders the one-way tabular exports.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"zenledger/internal/core"
)

// FormatVersion is written into every encoded document.
const FormatVersion = "1.2"

var (
	// ErrMalformed means the input is not a JSON document.
	ErrMalformed = errors.New("malformed snapshot")
	// ErrInvalid means the document parsed but a record is structurally invalid.
	ErrInvalid = errors.New("invalid snapshot")
)

// Document is the decoded backup. A nil collection was absent from the
// document and must be left untouched on restore; a non-nil empty one
// replaces the existing collection with nothing.
type Document struct {
	Version      string
	Transactions []core.Transaction
	Accounts     []core.Account
	Tags         []core.Tag
}

type wireDocument struct {
	Transactions *[]core.Transaction `json:"transactions,omitempty"`
	Accounts     *[]core.Account     `json:"accounts,omitempty"`
	Tags         *[]core.Tag         `json:"tags,omitempty"`
	Version      string              `json:"version"`
}

// Full builds a document carrying all three collections.
func Full(accounts []core.Account, tags []core.Tag, txs []core.Transaction) Document {
	if accounts == nil {
		accounts = []core.Account{}
	}
	if tags == nil {
		tags = []core.Tag{}
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return Document{Version: FormatVersion, Transactions: txs, Accounts: accounts, Tags: tags}
}

// Has reports which collections the document carries.
func (d Document) Has() (transactions, accounts, tags bool) {
	return d.Transactions != nil, d.Accounts != nil, d.Tags != nil
}

// Encode writes d as JSON. Nil collections are omitted. Nil lists inside
// records are written as empty arrays so decode and re-encode are identical.
func Encode(w io.Writer, d Document) error {
	b, err := Marshal(d)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Marshal returns the JSON encoding of d.
func Marshal(d Document) ([]byte, error) {
	wd := wireDocument{Version: d.Version}
	if wd.Version == "" {
		wd.Version = FormatVersion
	}
	if d.Transactions != nil {
		txs := NormalizeTransactions(d.Transactions)
		wd.Transactions = &txs
	}
	if d.Accounts != nil {
		accounts := NormalizeAccounts(d.Accounts)
		wd.Accounts = &accounts
	}
	if d.Tags != nil {
		tags := NormalizeTags(d.Tags)
		wd.Tags = &tags
	}
	b, err := json.Marshal(wd)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// Decode reads and validates a document. Nothing is returned unless every
// present record is well formed.
func Decode(r io.Reader) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read snapshot: %w", err)
	}
	return Unmarshal(raw)
}

// Unmarshal parses and validates a document held in memory.
func Unmarshal(raw []byte) (Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Document{}, fmt.Errorf("%w: expected a JSON object", ErrMalformed)
	}
	var wd wireDocument
	if err := json.Unmarshal(raw, &wd); err != nil {
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return Document{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	d := Document{Version: wd.Version}
	if wd.Transactions != nil {
		d.Transactions = *wd.Transactions
	}
	if wd.Accounts != nil {
		d.Accounts = *wd.Accounts
	}
	if wd.Tags != nil {
		d.Tags = *wd.Tags
	}
	d = d.Normalized()
	if err := Validate(d); err != nil {
		return Document{}, err
	}
	return d, nil
}

// Validate checks the structure of every record present in d.
func Validate(d Document) error {
	seen := make(map[string]struct{}, len(d.Accounts))
	for i, a := range d.Accounts {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("%w: account %d has no id", ErrInvalid, i)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%w: duplicate account id %q", ErrInvalid, a.ID)
		}
		seen[a.ID] = struct{}{}
		if !a.Kind.Valid() {
			return fmt.Errorf("%w: account %q: %v", ErrInvalid, a.ID, core.ErrInvalidKind)
		}
		if !finite(a.InitialBalance) {
			return fmt.Errorf("%w: account %q: %v", ErrInvalid, a.ID, core.ErrInvalidAmount)
		}
	}

	seen = make(map[string]struct{}, len(d.Tags))
	for i, t := range d.Tags {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("%w: tag %d has no id", ErrInvalid, i)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate tag id %q", ErrInvalid, t.ID)
		}
		seen[t.ID] = struct{}{}
		if !t.Polarity.Valid() {
			return fmt.Errorf("%w: tag %q: %v", ErrInvalid, t.ID, core.ErrInvalidPolarity)
		}
		if t.BudgetLimit != nil {
			if err := core.ValidateBudget(*t.BudgetLimit); err != nil {
				return fmt.Errorf("%w: tag %q: %v", ErrInvalid, t.ID, err)
			}
		}
	}

	seen = make(map[string]struct{}, len(d.Transactions))
	for i, tx := range d.Transactions {
		if strings.TrimSpace(tx.ID) == "" {
			return fmt.Errorf("%w: transaction %d has no id", ErrInvalid, i)
		}
		if _, dup := seen[tx.ID]; dup {
			return fmt.Errorf("%w: duplicate transaction id %q", ErrInvalid, tx.ID)
		}
		seen[tx.ID] = struct{}{}
		if !tx.Type.Valid() {
			return fmt.Errorf("%w: transaction %q: %v", ErrInvalid, tx.ID, core.ErrInvalidType)
		}
		if !finite(tx.Amount) || tx.Amount < 0 {
			return fmt.Errorf("%w: transaction %q: %v", ErrInvalid, tx.ID, core.ErrInvalidAmount)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Normalized returns a copy of d with every present collection normalized.
// Absent collections stay nil.
func (d Document) Normalized() Document {
	out := Document{Version: d.Version}
	if d.Transactions != nil {
		out.Transactions = NormalizeTransactions(d.Transactions)
	}
	if d.Accounts != nil {
		out.Accounts = NormalizeAccounts(d.Accounts)
	}
	if d.Tags != nil {
		out.Tags = NormalizeTags(d.Tags)
	}
	return out
}

// NormalizeTransactions returns a copy with nil lists replaced by empty ones.
func NormalizeTransactions(in []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(in))
	for i, tx := range in {
		if tx.Tags == nil {
			tx.Tags = []string{}
		}
		if tx.Images == nil {
			tx.Images = []string{}
		}
		if len(tx.SubTags) == 0 {
			tx.SubTags = nil
		}
		out[i] = tx
	}
	return out
}

// NormalizeAccounts returns a copy with an empty kind read as cash.
func NormalizeAccounts(in []core.Account) []core.Account {
	out := make([]core.Account, len(in))
	for i, a := range in {
		if a.Kind == "" {
			a.Kind = core.Cash
		}
		out[i] = a
	}
	return out
}

// NormalizeTags returns a copy with nil sub-tag lists replaced by empty ones.
func NormalizeTags(in []core.Tag) []core.Tag {
	out := make([]core.Tag, len(in))
	for i, t := range in {
		if t.SubTags == nil {
			t.SubTags = []string{}
		}
		out[i] = t
	}
	return out
}
