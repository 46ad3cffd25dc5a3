// Package domain defines the persistence models for envelopes, documents,
// recipients, and workflow steps. These types are mapped with GORM and form
// the core data layer of the signing platform.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Envelope statuses. Status only moves forward through the state machine:
// draft → sent → delivered → completed/declined, with sent|delivered → voided.
const (
	EnvelopeStatusDraft     = "draft"
	EnvelopeStatusSent      = "sent"
	EnvelopeStatusDelivered = "delivered"
	EnvelopeStatusCompleted = "completed"
	EnvelopeStatusDeclined  = "declined"
	EnvelopeStatusVoided    = "voided"
)

// Recipient statuses.
const (
	RecipientStatusCreated   = "created"
	RecipientStatusSent      = "sent"
	RecipientStatusDelivered = "delivered"
	RecipientStatusCompleted = "completed"
	RecipientStatusDeclined  = "declined"
)

// Recipient types. Signing types gate routing; carbon copies and similar
// receive-only types are activated with their group but never block it.
const (
	RecipientTypeSigner            = "signer"
	RecipientTypeViewer            = "viewer"
	RecipientTypeApprover          = "approver"
	RecipientTypeCertifiedDelivery = "certified_delivery"
	RecipientTypeCarbonCopy        = "carbon_copy"
	RecipientTypeWitness           = "witness"
	RecipientTypeNotary            = "notary"
	RecipientTypeInPersonSigner    = "in_person_signer"
	RecipientTypeAgent             = "agent"
	RecipientTypeIntermediary      = "intermediary"
)

// Envelope represents one signing transaction owned by an account. It bundles
// documents and recipients and carries the lifecycle status plus the void and
// expiration bookkeeping fields.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - AccountID: identifier of the owning account; indexed for retrieval.
//   - Status: lifecycle status (see EnvelopeStatus* constants).
//   - Subject / EmailBlurb: email settings shown to recipients.
//   - SentAt / VoidedAt / VoidedReason: transition bookkeeping. VoidedReason
//     is set if and only if Status is "voided".
//   - ExpiresAt: optional absolute expiration.
//   - Reminder/expiration day settings: zero means "use platform defaults".
//   - DeletedAt: soft deletion marker; deletion is legal only while in draft.
type Envelope struct {
	ID           string     `json:"envelope_id" gorm:"type:char(36);primaryKey"`
	AccountID    string     `json:"account_id"  gorm:"type:varchar(64);not null;index:idx_account_envelopes"`
	Status       string     `json:"status"      gorm:"type:varchar(16);not null;default:'draft';check:status IN ('draft','sent','delivered','completed','declined','voided')"`
	Subject      string     `json:"email_subject" gorm:"type:varchar(255);not null;default:''"`
	EmailBlurb   string     `json:"email_blurb"   gorm:"type:text;not null;default:''"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	VoidedAt     *time.Time `json:"voided_at,omitempty"`
	VoidedReason string     `json:"voided_reason,omitempty" gorm:"type:varchar(255);not null;default:''"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`

	// Reminder / expiration configuration (days; 0 = platform default).
	ReminderDelayDays     int        `json:"reminder_delay_days"     gorm:"not null;default:0"`
	ReminderFrequencyDays int        `json:"reminder_frequency_days" gorm:"not null;default:0"`
	ExpireAfterDays       int        `json:"expire_after_days"       gorm:"not null;default:0"`
	LastReminderAt        *time.Time `json:"last_reminder_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Envelope.
func (Envelope) TableName() string { return "envelopes" }

// IsTerminal reports whether the envelope is in an absorbing status.
func (e *Envelope) IsTerminal() bool {
	switch e.Status {
	case EnvelopeStatusCompleted, EnvelopeStatusDeclined, EnvelopeStatusVoided:
		return true
	}
	return false
}

// Document is one file attached to an envelope. Content storage is external;
// only metadata needed for ordering and webhook payloads is kept here.
type Document struct {
	ID         string         `json:"document_id" gorm:"type:char(36);primaryKey"`
	EnvelopeID string         `json:"envelope_id" gorm:"type:char(36);not null;index:idx_envelope_docs,priority:1"`
	Name       string         `json:"name"        gorm:"type:varchar(255);not null"`
	Order      int            `json:"order"       gorm:"column:doc_order;not null;default:1;index:idx_envelope_docs,priority:2"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Envelope is the parent transaction. Documents are cascade-deleted
	// if their envelope is removed.
	Envelope Envelope `json:"-" gorm:"foreignKey:EnvelopeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string { return "documents" }

// Recipient is one addressee of an envelope. RoutingOrder controls signing
// sequence; recipients sharing a routing order form a parallel group that is
// activated together.
//
// Invariants:
//   - RoutingOrder >= 1.
//   - Status follows created → sent → delivered → completed/declined.
type Recipient struct {
	ID             string         `json:"recipient_id"  gorm:"type:char(36);primaryKey"`
	EnvelopeID     string         `json:"envelope_id"   gorm:"type:char(36);not null;index:idx_envelope_recipients"`
	Type           string         `json:"type"          gorm:"type:varchar(32);not null;default:'signer'"`
	RoutingOrder   int            `json:"routing_order" gorm:"not null;default:1;check:routing_order >= 1"`
	Status         string         `json:"status"        gorm:"type:varchar(16);not null;default:'created';check:status IN ('created','sent','delivered','completed','declined')"`
	Name           string         `json:"name"          gorm:"type:varchar(255);not null;default:''"`
	Email          string         `json:"email"         gorm:"type:varchar(255);not null"`
	AccessCode     string         `json:"-"             gorm:"type:varchar(64);not null;default:''"`
	DeclinedReason string         `json:"declined_reason,omitempty" gorm:"type:varchar(255);not null;default:''"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	Envelope Envelope `json:"-" gorm:"foreignKey:EnvelopeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Recipient.
func (Recipient) TableName() string { return "recipients" }

// IsSettled reports whether the recipient no longer needs to act.
func (r *Recipient) IsSettled() bool {
	return r.Status == RecipientStatusCompleted || r.Status == RecipientStatusDeclined
}

// WorkflowStep actions.
const (
	WorkflowActionSign    = "sign"
	WorkflowActionApprove = "approve"
	WorkflowActionView    = "view"
	WorkflowActionCertify = "certify"
)

// WorkflowStep is the materialized per-recipient routing record. Steps exist
// only once an envelope has been sent; draft envelopes have none. Each step
// mirrors its recipient's routing order and tracks the action outcome.
type WorkflowStep struct {
	ID           string     `json:"step_id"       gorm:"type:char(36);primaryKey"`
	EnvelopeID   string     `json:"envelope_id"   gorm:"type:char(36);not null;index:idx_envelope_steps"`
	RecipientID  string     `json:"recipient_id"  gorm:"type:char(36);not null;uniqueIndex:ux_step_recipient"`
	RoutingOrder int        `json:"routing_order" gorm:"not null"`
	Action       string     `json:"action"        gorm:"type:varchar(16);not null;check:action IN ('sign','approve','view','certify')"`
	Status       string     `json:"status"        gorm:"type:varchar(16);not null;default:'created'"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Envelope Envelope `json:"-" gorm:"foreignKey:EnvelopeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for WorkflowStep.
func (WorkflowStep) TableName() string { return "workflow_steps" }

// WorkflowActionFor maps a recipient type to the action recorded on its
// workflow step when the envelope is sent.
func WorkflowActionFor(recipientType string) string {
	switch recipientType {
	case RecipientTypeApprover:
		return WorkflowActionApprove
	case RecipientTypeViewer, RecipientTypeCarbonCopy:
		return WorkflowActionView
	case RecipientTypeCertifiedDelivery:
		return WorkflowActionCertify
	default:
		return WorkflowActionSign
	}
}

// CustomField is a free-form name/value pair attached to an envelope, carried
// through to webhook payloads when document metadata is included.
type CustomField struct {
	ID         string    `json:"field_id"    gorm:"type:char(36);primaryKey"`
	EnvelopeID string    `json:"envelope_id" gorm:"type:char(36);not null;index"`
	Name       string    `json:"name"        gorm:"type:varchar(128);not null"`
	Value      string    `json:"value"       gorm:"type:varchar(255);not null;default:''"`
	Required   bool      `json:"required"    gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Envelope Envelope `json:"-" gorm:"foreignKey:EnvelopeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CustomField.
func (CustomField) TableName() string { return "envelope_custom_fields" }
