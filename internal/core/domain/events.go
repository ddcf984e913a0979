package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies the type of a domain event.
type EventKind string

const (
	EventTransactionCreated    EventKind = "transaction.created"
	EventSplitsUpdated         EventKind = "transaction.splits_updated"
	EventTransactionUpdated    EventKind = "transaction.updated"
	EventTransactionCleared    EventKind = "transaction.cleared"
	EventTransactionReconciled EventKind = "transaction.reconciled"
	EventTransactionDeleted    EventKind = "transaction.deleted"
	EventMirrorCreated         EventKind = "transaction.mirror_created"
	EventMirrorDeleted         EventKind = "transaction.mirror_deleted"
)

// Event is an immutable record of a state change on a transaction. Events are
// buffered per unit of work and handed to the delivery collaborator only after
// the unit of work commits.
type Event struct {
	EventID       string            `json:"eventID"`
	Kind          EventKind         `json:"kind"`
	TransactionID string            `json:"transactionID"`
	AccountID     string            `json:"accountID"`
	OccurredAt    time.Time         `json:"occurredAt"`
	Detail        map[string]string `json:"detail,omitempty"`
}

// NewEvent creates an event record for the given transaction.
func NewEvent(kind EventKind, transactionID, accountID string, at time.Time, detail map[string]string) Event {
	return Event{
		EventID:       uuid.NewString(),
		Kind:          kind,
		TransactionID: transactionID,
		AccountID:     accountID,
		OccurredAt:    at,
		Detail:        detail,
	}
}
