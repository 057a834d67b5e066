package model

import "time"

// EventType names a ledger change published to subscribers.
type EventType string

// Ledger event types.
const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionUpdated EventType = "transaction.updated"
	EventTransactionDeleted EventType = "transaction.deleted"
	EventInstallmentPaid    EventType = "installment.paid"
	EventIntegrityViolation EventType = "ledger.integrity"
)

// LedgerEvent describes a committed change, or an integrity problem that needs attention.
type LedgerEvent struct {
	OccurredAt time.Time         `json:"occurred_at"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Type       EventType         `json:"type"`
	OwnerID    string            `json:"owner_id"`
	EntityID   string            `json:"entity_id"`
}
