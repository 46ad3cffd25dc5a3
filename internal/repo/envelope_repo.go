// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Envelope
// aggregate: envelopes, their documents, and custom fields.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an envelope is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience). Cross-account
//     lookups surface identically as not-found.
//   - CompareAndSwapStatus returns ErrStaleStatus when the status guard does
//     not match, which is how concurrent double-send/double-void lose.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrStaleStatus is returned by CompareAndSwapStatus when the envelope's
// current status no longer matches the expected one. Exactly one of two
// concurrent single-shot transitions observes this.
var ErrStaleStatus = errors.New("envelope status changed concurrently")

// CreateEnvelope inserts a new draft envelope. A UUID primary key is assigned
// when the caller has not set one, and CreatedAt is set to UTC.
func CreateEnvelope(ctx context.Context, db *gorm.DB, e *domain.Envelope) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Status = domain.EnvelopeStatusDraft
	e.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(e).Error
}

// GetEnvelope fetches a single envelope by ID scoped to its owning account.
// If the record does not exist (or belongs to another account), it returns
// ErrNotFound.
func GetEnvelope(ctx context.Context, db *gorm.DB, id, accountID string) (*domain.Envelope, error) {
	var e domain.Envelope
	err := db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CountEnvelopes returns the total number of envelopes owned by accountID.
func CountEnvelopes(ctx context.Context, db *gorm.DB, accountID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Envelope{}).
		Where("account_id = ?", accountID).
		Count(&total).Error
	return total, err
}

// ListEnvelopesPage returns a paginated slice of envelopes for accountID,
// ordered by creation time descending. The caller computes offset and limit.
func ListEnvelopesPage(ctx context.Context, db *gorm.DB, accountID string, offset, limit int) ([]domain.Envelope, error) {
	var out []domain.Envelope
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CompareAndSwapStatus transitions an envelope from one status to another,
// applying extra column updates in the same statement. The WHERE guard on the
// current status makes the read-modify-write atomic: when zero rows are
// affected the envelope either moved status concurrently (ErrStaleStatus) or
// does not exist (ErrNotFound).
func CompareAndSwapStatus(ctx context.Context, db *gorm.DB, id, fromStatus, toStatus string, extra map[string]any) error {
	updates := map[string]any{"status": toStatus}
	for k, v := range extra {
		updates[k] = v
	}
	res := db.WithContext(ctx).
		Model(&domain.Envelope{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.WithContext(ctx).Model(&domain.Envelope{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrStaleStatus
	}
	return nil
}

// CompareAndSwapStatusIn is CompareAndSwapStatus with a set of acceptable
// source statuses. Used for transitions legal from more than one status,
// e.g. sent|delivered → voided.
func CompareAndSwapStatusIn(ctx context.Context, db *gorm.DB, id string, fromStatuses []string, toStatus string, extra map[string]any) error {
	updates := map[string]any{"status": toStatus}
	for k, v := range extra {
		updates[k] = v
	}
	res := db.WithContext(ctx).
		Model(&domain.Envelope{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.WithContext(ctx).Model(&domain.Envelope{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrStaleStatus
	}
	return nil
}

// ListExpiredEnvelopes returns in-flight envelopes whose expiration instant
// has passed. Terminal envelopes are never returned.
func ListExpiredEnvelopes(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Envelope, error) {
	var out []domain.Envelope
	err := db.WithContext(ctx).
		Where("status IN ?", []string{domain.EnvelopeStatusSent, domain.EnvelopeStatusDelivered}).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Order("expires_at asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListInFlightEnvelopes returns sent/delivered envelopes that have actually
// been sent, oldest first. The notification scheduler works off this set.
func ListInFlightEnvelopes(ctx context.Context, db *gorm.DB, limit int) ([]domain.Envelope, error) {
	var out []domain.Envelope
	err := db.WithContext(ctx).
		Where("status IN ?", []string{domain.EnvelopeStatusSent, domain.EnvelopeStatusDelivered}).
		Where("sent_at IS NOT NULL").
		Order("sent_at asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SoftDeleteEnvelope soft-deletes an envelope, permitted only while it is a
// draft. Returns ErrNotFound when no matching draft exists.
func SoftDeleteEnvelope(ctx context.Context, db *gorm.DB, id, accountID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND account_id = ? AND status = ?", id, accountID, domain.EnvelopeStatusDraft).
		Delete(&domain.Envelope{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddDocument attaches a document to an envelope.
func AddDocument(ctx context.Context, db *gorm.DB, d *domain.Document) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Order <= 0 {
		d.Order = 1
	}
	return db.WithContext(ctx).Create(d).Error
}

// ListDocuments returns an envelope's documents ordered by document order.
func ListDocuments(ctx context.Context, db *gorm.DB, envelopeID string) ([]domain.Document, error) {
	var out []domain.Document
	err := db.WithContext(ctx).
		Where("envelope_id = ?", envelopeID).
		Order("doc_order asc").
		Find(&out).Error
	return out, err
}

// CountDocuments returns the number of documents attached to an envelope.
func CountDocuments(ctx context.Context, db *gorm.DB, envelopeID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("envelope_id = ?", envelopeID).
		Count(&total).Error
	return total, err
}

// AddCustomField attaches a custom field to an envelope.
func AddCustomField(ctx context.Context, db *gorm.DB, f *domain.CustomField) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(f).Error
}

// ListCustomFields returns an envelope's custom fields ordered by name.
func ListCustomFields(ctx context.Context, db *gorm.DB, envelopeID string) ([]domain.CustomField, error) {
	var out []domain.CustomField
	err := db.WithContext(ctx).
		Where("envelope_id = ?", envelopeID).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// ListEnvelopesWithEventsBetween returns the account's envelopes that emitted
// at least one lifecycle event (sent, completed, voided) inside [from, to].
// Used by historical webhook replay.
func ListEnvelopesWithEventsBetween(ctx context.Context, db *gorm.DB, accountID string, from, to time.Time) ([]domain.Envelope, error) {
	var out []domain.Envelope
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where(
			db.Where("sent_at BETWEEN ? AND ?", from, to).
				Or("completed_at BETWEEN ? AND ?", from, to).
				Or("voided_at BETWEEN ? AND ?", from, to),
		).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
