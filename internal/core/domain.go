package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Expense  TransactionType = "expense"
	Income   TransactionType = "income"
	Transfer TransactionType = "transfer"
)

const (
	Cash    AccountKind = "cash"
	Bank    AccountKind = "bank"
	Credit  AccountKind = "credit"
	EWallet AccountKind = "ewallet"
)

const (
	PolarityExpense TagPolarity = "expense"
	PolarityIncome  TagPolarity = "income"
	PolarityBoth    TagPolarity = "both"
)

// MaxImages is the number of attachments a transaction may carry.
const MaxImages = 4

type (
	TransactionType string
	AccountKind     string
	TagPolarity     string

	Account struct {
		ID                string      `json:"id"`
		Name              string      `json:"name"`
		Kind              AccountKind `json:"type"`
		InitialBalance    float64     `json:"initialBalance"`
		IncludeInNetWorth bool        `json:"includeInNetWorth"`
	}

	Tag struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Color       string      `json:"color"`
		Polarity    TagPolarity `json:"type"`
		BudgetLimit *float64    `json:"budgetLimit,omitempty"` // monthly; nil means unlimited
		SubTags     []string    `json:"subTags"`
	}

	Transaction struct {
		ID          string            `json:"id"`
		Amount      float64           `json:"amount"`
		Type        TransactionType   `json:"type"`
		AccountID   string            `json:"accountId"`
		ToAccountID string            `json:"toAccountId,omitempty"`
		Tags        []string          `json:"tags"`
		SubTags     map[string]string `json:"subTags,omitempty"` // tag id -> sub-tag name
		Date        Date              `json:"date"`
		Note        string            `json:"note,omitempty"`
		Images      []string          `json:"images"`
		IsConfirmed bool              `json:"isConfirmed"`
	}
)

var (
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidKind        = errors.New("invalid account kind")
	ErrInvalidPolarity    = errors.New("invalid tag polarity")
	ErrInvalidBudget      = errors.New("invalid budget limit")
	ErrMissingAccount     = errors.New("missing source account")
	ErrMissingDestination = errors.New("missing destination account")
	ErrUnknownAccount     = errors.New("unknown account")
	ErrUnknownTag         = errors.New("unknown tag")
	ErrUnknownSubTag      = errors.New("unknown sub-tag")
	ErrDuplicateSubTag    = errors.New("duplicate sub-tag")
	ErrTagPolarity        = errors.New("tag does not apply to this transaction type")
	ErrTooManyImages      = errors.New("too many images")
	ErrInvalidSort        = errors.New("invalid sort order")
	ErrNotFound           = errors.New("not found")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Expense, Income, Transfer:
		return true
	}
	return false
}

func (k AccountKind) Valid() bool {
	switch k {
	case Cash, Bank, Credit, EWallet:
		return true
	}
	return false
}

func (p TagPolarity) Valid() bool {
	switch p {
	case PolarityExpense, PolarityIncome, PolarityBoth:
		return true
	}
	return false
}

// Allows reports whether a tag of this polarity may be carried by t.
func (p TagPolarity) Allows(t TransactionType) bool {
	switch t {
	case Expense:
		return p == PolarityExpense || p == PolarityBoth
	case Income:
		return p == PolarityIncome || p == PolarityBoth
	}
	return false
}

// CountsAsExpense reports whether budget evaluation applies to the tag.
func (t Tag) CountsAsExpense() bool {
	return t.Polarity == PolarityExpense || t.Polarity == PolarityBoth
}

// HasSubTag reports whether name is one of the tag's sub-tags.
func (t Tag) HasSubTag(name string) bool {
	for _, s := range t.SubTags {
		if s == name {
			return true
		}
	}
	return false
}

// Limit returns the budget limit and whether one is configured.
func (t Tag) Limit() (float64, bool) {
	if t.BudgetLimit == nil {
		return 0, false
	}
	return *t.BudgetLimit, true
}

// HasTag reports whether the transaction carries tagID.
func (tx Transaction) HasTag(tagID string) bool {
	for _, id := range tx.Tags {
		if id == tagID {
			return true
		}
	}
	return false
}

// PrimaryTag returns the first tag id, if any.
func (tx Transaction) PrimaryTag() (string, bool) {
	if len(tx.Tags) == 0 {
		return "", false
	}
	return tx.Tags[0], true
}

// Touches reports whether the transaction moves money in or out of accountID.
func (tx Transaction) Touches(accountID string) bool {
	if tx.AccountID == accountID {
		return true
	}
	return tx.Type == Transfer && tx.ToAccountID == accountID
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Kind.Valid() {
		return ErrInvalidKind
	}
	if math.IsNaN(a.InitialBalance) || math.IsInf(a.InitialBalance, 0) {
		return ErrInvalidAmount
	}
	return nil
}

func (t Tag) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if !t.Polarity.Valid() {
		return ErrInvalidPolarity
	}
	if t.BudgetLimit != nil {
		if err := ValidateBudget(*t.BudgetLimit); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(t.SubTags))
	for _, s := range t.SubTags {
		if strings.TrimSpace(s) == "" {
			return ErrEmptyName
		}
		if _, dup := seen[s]; dup {
			return ErrDuplicateSubTag
		}
		seen[s] = struct{}{}
	}
	return nil
}

// ValidateBudget checks a monthly budget limit.
func ValidateBudget(limit float64) error {
	if math.IsNaN(limit) || math.IsInf(limit, 0) || limit < 0 {
		return ErrInvalidBudget
	}
	return nil
}

// Validate checks the fields that do not depend on other entities.
func (tx Transaction) Validate() error {
	if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) || tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(tx.AccountID) == "" {
		return ErrMissingAccount
	}
	if tx.Type == Transfer && strings.TrimSpace(tx.ToAccountID) == "" {
		return ErrMissingDestination
	}
	if len(tx.Images) > MaxImages {
		return ErrTooManyImages
	}
	return nil
}

// Date is a point in time serialized as milliseconds since the Unix epoch.
type Date struct {
	time.Time
}

// DateFromMillis converts epoch milliseconds to a Date in the local zone.
func DateFromMillis(ms int64) Date {
	return Date{Time: time.UnixMilli(ms)}
}

// Millis returns the epoch milliseconds of d.
func (d Date) Millis() int64 {
	return d.UnixMilli()
}

// IsEmpty returns true if the date was never set.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}
