// Package queue defines the domain events exchanged over the message broker,
// the publisher used by the services and the audit consumer.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	AccountRegistered = "account.registered"
	AccountLoggedIn   = "account.logged_in"
	WordCreated       = "word.created"
	WordUpdated       = "word.updated"
	WordDeleted       = "word.deleted"
)

// Event is published after a state change succeeded.  It carries enough
// information for downstream consumers to log or trigger analytics without
// querying the primary database.  Credentials and tokens are never part of
// an event.
type Event struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	AccountID  uint64 `json:"account_id"`
	Username   string `json:"username,omitempty"`
	WordID     uint64 `json:"word_id,omitempty"`
	Word       string `json:"word,omitempty"`
	Language   string `json:"language,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// NewEvent stamps an event of the given type with a fresh id and the
// current UTC time.
func NewEvent(typ string, accountID uint64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		AccountID:  accountID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
