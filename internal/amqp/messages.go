package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entity kinds carried by a change event.
const (
	EntityTransaction = "transaction"
	EntityAccount     = "account"
	EntityTag         = "tag"
	EntityPreferences = "preferences"
	EntitySnapshot    = "snapshot"
)

// Operations carried by a change event.
const (
	OpCreated  = "created"
	OpUpdated  = "updated"
	OpDeleted  = "deleted"
	OpRestored = "restored"
	OpReset    = "reset"
)

// LedgerChangedMessage announces that a persisted collection changed.
// Consumers reload the slots themselves; the message only says what moved.
type LedgerChangedMessage struct {
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a change event stamped with the current time
func NewLedgerChangedMessage(entity, op, id string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Entity:    entity,
		Op:        op,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// TouchesTransactions reports whether the change can move budget totals.
func (m *LedgerChangedMessage) TouchesTransactions() bool {
	return m.Entity == EntityTransaction || m.Entity == EntitySnapshot
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Entity == "" || msg.Op == "" {
		return nil, fmt.Errorf("change event without entity or op")
	}
	return &msg, nil
}
