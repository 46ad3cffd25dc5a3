// Package domain defines the core persistence models for the application.
// This file declares the closed set of domain events emitted by the envelope
// state machine and consumed by the webhook dispatcher and notification
// scheduler. Each variant carries exactly the fields its consumers need.
package domain

import "time"

// Event type names as they appear in Connect filters and webhook payloads.
const (
	EventEnvelopeSent       = "envelope.sent"
	EventEnvelopeDelivered  = "envelope.delivered"
	EventEnvelopeCompleted  = "envelope.completed"
	EventEnvelopeDeclined   = "envelope.declined"
	EventEnvelopeVoided     = "envelope.voided"
	EventRecipientActivated = "recipient.activated"
)

// AllEventTypes lists every event name a Connect filter may subscribe to.
var AllEventTypes = []string{
	EventEnvelopeSent,
	EventEnvelopeDelivered,
	EventEnvelopeCompleted,
	EventEnvelopeDeclined,
	EventEnvelopeVoided,
	EventRecipientActivated,
}

// Event is the interface implemented by every domain event variant.
type Event interface {
	// EventType returns the stable event name (e.g. "envelope.sent").
	EventType() string
	// EventAccountID returns the owning account, used for Connect filtering.
	EventAccountID() string
	// EventEnvelopeID returns the envelope the event concerns.
	EventEnvelopeID() string
	// OccurredAt returns when the event happened.
	OccurredAt() time.Time
}

// base carries the fields shared by all event variants.
type base struct {
	AccountID  string
	EnvelopeID string
	At         time.Time
}

func (b base) EventAccountID() string  { return b.AccountID }
func (b base) EventEnvelopeID() string { return b.EnvelopeID }
func (b base) OccurredAt() time.Time   { return b.At }

// EnvelopeSent is emitted when a draft envelope is sent and its first routing
// group is activated.
type EnvelopeSent struct {
	base
	Subject string
}

// NewEnvelopeSent builds an EnvelopeSent event.
func NewEnvelopeSent(accountID, envelopeID, subject string, at time.Time) EnvelopeSent {
	return EnvelopeSent{base: base{AccountID: accountID, EnvelopeID: envelopeID, At: at}, Subject: subject}
}

func (EnvelopeSent) EventType() string { return EventEnvelopeSent }

// EnvelopeDelivered is emitted when every recipient of the active group has
// seen the envelope.
type EnvelopeDelivered struct {
	base
}

// NewEnvelopeDelivered builds an EnvelopeDelivered event.
func NewEnvelopeDelivered(accountID, envelopeID string, at time.Time) EnvelopeDelivered {
	return EnvelopeDelivered{base: base{AccountID: accountID, EnvelopeID: envelopeID, At: at}}
}

func (EnvelopeDelivered) EventType() string { return EventEnvelopeDelivered }

// EnvelopeCompleted is emitted when the final recipient completes.
type EnvelopeCompleted struct {
	base
}

// NewEnvelopeCompleted builds an EnvelopeCompleted event.
func NewEnvelopeCompleted(accountID, envelopeID string, at time.Time) EnvelopeCompleted {
	return EnvelopeCompleted{base: base{AccountID: accountID, EnvelopeID: envelopeID, At: at}}
}

func (EnvelopeCompleted) EventType() string { return EventEnvelopeCompleted }

// EnvelopeDeclined is emitted when any recipient declines, which terminates
// the whole envelope.
type EnvelopeDeclined struct {
	base
	RecipientID string
	Reason      string
}

// NewEnvelopeDeclined builds an EnvelopeDeclined event.
func NewEnvelopeDeclined(accountID, envelopeID, recipientID, reason string, at time.Time) EnvelopeDeclined {
	return EnvelopeDeclined{
		base:        base{AccountID: accountID, EnvelopeID: envelopeID, At: at},
		RecipientID: recipientID,
		Reason:      reason,
	}
}

func (EnvelopeDeclined) EventType() string { return EventEnvelopeDeclined }

// EnvelopeVoided is emitted when the sender voids an in-flight envelope.
type EnvelopeVoided struct {
	base
	Reason string
}

// NewEnvelopeVoided builds an EnvelopeVoided event.
func NewEnvelopeVoided(accountID, envelopeID, reason string, at time.Time) EnvelopeVoided {
	return EnvelopeVoided{base: base{AccountID: accountID, EnvelopeID: envelopeID, At: at}, Reason: reason}
}

func (EnvelopeVoided) EventType() string { return EventEnvelopeVoided }

// RecipientActivated is emitted once per recipient whose routing group becomes
// actionable (on send, on group advance, and on resend for still-pending
// recipients).
type RecipientActivated struct {
	base
	RecipientID  string
	Email        string
	RoutingOrder int
}

// NewRecipientActivated builds a RecipientActivated event.
func NewRecipientActivated(accountID, envelopeID, recipientID, email string, routingOrder int, at time.Time) RecipientActivated {
	return RecipientActivated{
		base:         base{AccountID: accountID, EnvelopeID: envelopeID, At: at},
		RecipientID:  recipientID,
		Email:        email,
		RoutingOrder: routingOrder,
	}
}

func (RecipientActivated) EventType() string { return EventRecipientActivated }
