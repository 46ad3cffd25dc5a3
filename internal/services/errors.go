// Package services defines the business logic for envelopes, locks, Connect
// subscriptions, and notifications. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer. Validation errors ("fix your
// input") and state errors ("this operation doesn't apply right now") are
// distinct values so handlers can map them to distinguishable status codes.
package services

import "errors"

// Envelope-related errors.
var (
	// ErrEnvelopeNotFound indicates that the requested envelope does not exist
	// or is not accessible to the current account.
	ErrEnvelopeNotFound = errors.New("envelope not found")

	// ErrInvalidState is returned when an operation is not legal for the
	// envelope's current status (double-send, void-a-draft, etc.).
	ErrInvalidState = errors.New("operation not allowed in current envelope status")

	// ErrMissingDocuments is returned when sending an envelope that has no
	// documents attached.
	ErrMissingDocuments = errors.New("envelope has no documents")

	// ErrMissingRecipients is returned when sending an envelope that has no
	// recipients.
	ErrMissingRecipients = errors.New("envelope has no recipients")

	// ErrEmptyVoidReason is returned when voiding without a reason.
	ErrEmptyVoidReason = errors.New("void reason must not be empty")

	// ErrEmptyRecipientEmail is returned when a recipient is created or
	// corrected with a blank email address.
	ErrEmptyRecipientEmail = errors.New("recipient email must not be empty")

	// ErrRecipientNotFound indicates that the requested recipient does not
	// exist on the envelope.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrRecipientNotActive is returned when completing or declining a
	// recipient whose routing group has not been activated yet.
	ErrRecipientNotActive = errors.New("recipient has not been activated")

	// ErrRecipientSettled is returned when acting on a recipient who has
	// already completed or declined.
	ErrRecipientSettled = errors.New("recipient already completed or declined")
)

// Lock-related errors.
var (
	// ErrAlreadyLocked indicates an unexpired lock held by someone else.
	ErrAlreadyLocked = errors.New("resource is locked by another editor")

	// ErrLockNotFound is returned when extending a lock that does not exist
	// or whose token does not match.
	ErrLockNotFound = errors.New("lock not found")

	// ErrInvalidLockDuration is returned when a requested lock duration is
	// outside the configured bounds.
	ErrInvalidLockDuration = errors.New("lock duration out of range")
)

// Connect-related errors.
var (
	// ErrConfigNotFound indicates that the requested Connect subscription
	// does not exist or belongs to another account.
	ErrConfigNotFound = errors.New("connect configuration not found")

	// ErrInvalidConfigURL is returned when a subscription is created or
	// updated without a usable target URL.
	ErrInvalidConfigURL = errors.New("connect url must not be empty")

	// ErrUnknownEventType is returned when a subscription filter names an
	// event that the platform never emits.
	ErrUnknownEventType = errors.New("unknown event type in filter")

	// ErrInvalidDateRange is returned by historical publishing when the
	// range is empty or inverted.
	ErrInvalidDateRange = errors.New("from_date must not be after to_date")
)
