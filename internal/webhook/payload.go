// Package webhook delivers envelope lifecycle events to Connect
// subscriptions. This file builds the outbound payload and its HMAC
// signature.
//
// Payloads are reconstructed from current envelope state at delivery time,
// not captured when the event fires. A retried delivery therefore reflects
// the envelope as it is now, and initial and retried deliveries of the same
// event are built identically.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
	"github.com/tbourn/go-esign-backend/internal/repo"
)

// Outbound request headers.
const (
	HeaderSignature = "X-Hmac-Signature"
	HeaderEventID   = "X-Event-Id"
	HeaderEventType = "X-Event-Type"
)

// Payload is the JSON body POSTed to a subscription URL. The top-level
// envelope_id, event_type and timestamp keys identify the event; the nested
// envelope and recipients blocks carry the current envelope state.
type Payload struct {
	EnvelopeID string    `json:"envelope_id"`
	EventType  string    `json:"event_type"`
	Timestamp  time.Time `json:"timestamp"`
	AccountID  string    `json:"account_id"`

	Envelope   EnvelopeSummary    `json:"envelope"`
	Recipients []RecipientSummary `json:"recipients"`

	// Populated only when the subscription opts in.
	Documents    []DocumentSummary `json:"documents,omitempty"`
	CustomFields []FieldSummary    `json:"custom_fields,omitempty"`
	VoidedReason string            `json:"voided_reason,omitempty"`

	// HMACSignature is set, together with the X-Hmac-Signature header, when
	// the subscription signs deliveries. The signature covers the body as
	// serialized without this key.
	HMACSignature string `json:"hmac_signature,omitempty"`
}

// EnvelopeSummary is the envelope portion of a payload.
type EnvelopeSummary struct {
	EnvelopeID  string     `json:"envelope_id"`
	Status      string     `json:"status"`
	Subject     string     `json:"email_subject"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	VoidedAt    *time.Time `json:"voided_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// RecipientSummary is one recipient line in a payload.
type RecipientSummary struct {
	RecipientID    string     `json:"recipient_id"`
	Type           string     `json:"type"`
	RoutingOrder   int        `json:"routing_order"`
	Status         string     `json:"status"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	DeclinedReason string     `json:"declined_reason,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// DocumentSummary is one document line in a payload.
type DocumentSummary struct {
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	Order      int    `json:"order"`
}

// FieldSummary is one custom field line in a payload.
type FieldSummary struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// BuildPayload assembles the payload for one event against one subscription,
// honoring the subscription's inclusion flags.
func BuildPayload(ctx context.Context, db *gorm.DB, cfg *domain.ConnectConfiguration, eventType, envelopeID string, at time.Time) (*Payload, error) {
	e, err := repo.GetEnvelope(ctx, db, envelopeID, cfg.AccountID)
	if err != nil {
		return nil, err
	}
	recips, err := repo.ListRecipients(ctx, db, envelopeID)
	if err != nil {
		return nil, err
	}

	p := &Payload{
		EnvelopeID: e.ID,
		EventType:  eventType,
		Timestamp:  at,
		AccountID:  cfg.AccountID,
		Envelope: EnvelopeSummary{
			EnvelopeID:  e.ID,
			Status:      e.Status,
			Subject:     e.Subject,
			SentAt:      e.SentAt,
			CompletedAt: e.CompletedAt,
			VoidedAt:    e.VoidedAt,
			ExpiresAt:   e.ExpiresAt,
		},
		Recipients: make([]RecipientSummary, 0, len(recips)),
	}
	for _, r := range recips {
		p.Recipients = append(p.Recipients, RecipientSummary{
			RecipientID:    r.ID,
			Type:           r.Type,
			RoutingOrder:   r.RoutingOrder,
			Status:         r.Status,
			Name:           r.Name,
			Email:          r.Email,
			DeclinedReason: r.DeclinedReason,
			CompletedAt:    r.CompletedAt,
		})
	}

	if cfg.IncludeDocuments {
		docs, err := repo.ListDocuments(ctx, db, envelopeID)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			p.Documents = append(p.Documents, DocumentSummary{DocumentID: d.ID, Name: d.Name, Order: d.Order})
		}
		fields, err := repo.ListCustomFields(ctx, db, envelopeID)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			p.CustomFields = append(p.CustomFields, FieldSummary{Name: f.Name, Value: f.Value})
		}
	}
	if cfg.IncludeVoidReason && e.VoidedReason != "" {
		p.VoidedReason = e.VoidedReason
	}
	return p, nil
}

// Sign returns the lowercase hex HMAC-SHA256 of body under secret, as carried
// in the X-Hmac-Signature header and the hmac_signature payload key.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether sigHex is a valid signature for body, the
// payload serialized without its hmac_signature key. Used by receiving ends
// and tests; comparison is constant-time.
func VerifySignature(body []byte, secret, sigHex string) bool {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), sig)
}
