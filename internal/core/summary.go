package core

// UnsortedID is the bucket key for expenses without a resolvable primary tag.
const UnsortedID = "unsorted"

// Display fallbacks for references that no longer resolve.
const (
	UnsortedLabel = "Unsorted"
	UnknownLabel  = "Unknown"
)

// AccountName resolves an account id, with UnknownLabel as fallback.
func AccountName(accounts []Account, id string) string {
	if a, ok := FindAccount(accounts, id); ok {
		return a.Name
	}
	return UnknownLabel
}

// FindAccount looks up an account by id.
func FindAccount(accounts []Account, id string) (Account, bool) {
	for _, a := range accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// FindTag looks up a tag by id.
func FindTag(tags []Tag, id string) (Tag, bool) {
	for _, t := range tags {
		if t.ID == id {
			return t, true
		}
	}
	return Tag{}, false
}

// FindTransaction looks up a transaction by id.
func FindTransaction(txs []Transaction, id string) (Transaction, bool) {
	for _, t := range txs {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}
