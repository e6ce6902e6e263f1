package ledger

import "zenledger/internal/core"

// Selection is the active account/tag filter of a client. It is never stored:
// callers resolve it against the current snapshot on every request.
type Selection struct {
	AccountID string `json:"accountId,omitempty"`
	TagID     string `json:"tagId,omitempty"`
}

// Resolve clears the parts of s whose referent no longer exists.
func (s Selection) Resolve(accounts []core.Account, tags []core.Tag) Selection {
	if s.AccountID != "" {
		if _, ok := core.FindAccount(accounts, s.AccountID); !ok {
			s.AccountID = ""
		}
	}
	if s.TagID != "" {
		if _, ok := core.FindTag(tags, s.TagID); !ok {
			s.TagID = ""
		}
	}
	return s
}
