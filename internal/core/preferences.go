package core

import (
	"fmt"

	"dario.cat/mergo"
)

// SortOrder selects the ordering of transaction views.
type SortOrder string

const (
	SortDateDesc   SortOrder = "date-desc"
	SortDateAsc    SortOrder = "date-asc"
	SortAmountDesc SortOrder = "amount-desc"
	SortAmountAsc  SortOrder = "amount-asc"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc:
		return true
	}
	return false
}

// Preferences is the configuration blob persisted next to the collections.
// The engine only reads DefaultSort; the rest is carried for clients.
type Preferences struct {
	Theme       string    `json:"theme,omitempty"`
	Language    string    `json:"language,omitempty"`
	Layout      string    `json:"layout,omitempty"`
	DefaultSort SortOrder `json:"defaultSort,omitempty"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:       "zen",
		Language:    "cn",
		Layout:      "mobile",
		DefaultSort: SortDateDesc,
	}
}

// WithDefaults fills every unset field from DefaultPreferences.
func (p Preferences) WithDefaults() (Preferences, error) {
	out := p
	if err := mergo.Merge(&out, DefaultPreferences()); err != nil {
		return p, fmt.Errorf("merge preference defaults: %w", err)
	}
	return out, nil
}

func (p Preferences) Validate() error {
	if p.DefaultSort != "" && !p.DefaultSort.Valid() {
		return fmt.Errorf("default sort %q: %w", p.DefaultSort, ErrInvalidSort)
	}
	return nil
}
