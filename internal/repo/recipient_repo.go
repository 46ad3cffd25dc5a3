// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for recipients and
// their materialized workflow steps.
//
// The routing engine receives recipient sets from these explicit query
// functions; nothing in the service layer traverses ORM relations lazily.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
)

// AddRecipient attaches a recipient to an envelope. A UUID primary key is
// assigned when unset, and the status starts as "created".
func AddRecipient(ctx context.Context, db *gorm.DB, r *domain.Recipient) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.RoutingOrder <= 0 {
		r.RoutingOrder = 1
	}
	if r.Type == "" {
		r.Type = domain.RecipientTypeSigner
	}
	r.Status = domain.RecipientStatusCreated
	return db.WithContext(ctx).Create(r).Error
}

// ListRecipients returns every recipient of an envelope ordered by routing
// order then recipient ID. This is the exact input shape the routing engine
// expects.
func ListRecipients(ctx context.Context, db *gorm.DB, envelopeID string) ([]domain.Recipient, error) {
	var out []domain.Recipient
	err := db.WithContext(ctx).
		Where("envelope_id = ?", envelopeID).
		Order("routing_order asc, id asc").
		Find(&out).Error
	return out, err
}

// CountRecipients returns the number of recipients on an envelope.
func CountRecipients(ctx context.Context, db *gorm.DB, envelopeID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Recipient{}).
		Where("envelope_id = ?", envelopeID).
		Count(&total).Error
	return total, err
}

// GetRecipient fetches one recipient scoped to its envelope, or ErrNotFound.
func GetRecipient(ctx context.Context, db *gorm.DB, id, envelopeID string) (*domain.Recipient, error) {
	var r domain.Recipient
	err := db.WithContext(ctx).
		Where("id = ? AND envelope_id = ?", id, envelopeID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRecipientStatus sets a recipient's status (and optional completion
// time and decline reason). Returns ErrNotFound when no row matches.
func UpdateRecipientStatus(ctx context.Context, db *gorm.DB, id, status string, completedAt *time.Time, declinedReason string) error {
	updates := map[string]any{"status": status}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}
	if declinedReason != "" {
		updates["declined_reason"] = declinedReason
	}
	res := db.WithContext(ctx).
		Model(&domain.Recipient{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRecipientsSent flips a batch of recipients to "sent" in one statement.
// Used when a routing group is activated: all members move together.
func MarkRecipientsSent(ctx context.Context, db *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.Recipient{}).
		Where("id IN ?", ids).
		Update("status", domain.RecipientStatusSent).Error
}

// UpdateRecipientContact rewrites a recipient's name and email in place
// (envelope correction). Routing order and status are never touched here.
// Returns ErrNotFound when no row matches.
func UpdateRecipientContact(ctx context.Context, db *gorm.DB, id, envelopeID, name, email string) error {
	res := db.WithContext(ctx).
		Model(&domain.Recipient{}).
		Where("id = ? AND envelope_id = ?", id, envelopeID).
		Updates(map[string]any{"name": name, "email": email})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateWorkflowSteps materializes one step per recipient. Called inside the
// send transaction; draft envelopes never have steps.
func CreateWorkflowSteps(ctx context.Context, db *gorm.DB, steps []domain.WorkflowStep) error {
	if len(steps) == 0 {
		return nil
	}
	for i := range steps {
		if steps[i].ID == "" {
			steps[i].ID = uuid.NewString()
		}
		if steps[i].Status == "" {
			steps[i].Status = domain.RecipientStatusCreated
		}
	}
	return db.WithContext(ctx).Create(&steps).Error
}

// ListWorkflowSteps returns an envelope's steps ordered like its recipients.
func ListWorkflowSteps(ctx context.Context, db *gorm.DB, envelopeID string) ([]domain.WorkflowStep, error) {
	var out []domain.WorkflowStep
	err := db.WithContext(ctx).
		Where("envelope_id = ?", envelopeID).
		Order("routing_order asc, recipient_id asc").
		Find(&out).Error
	return out, err
}

// UpdateWorkflowStepStatus mirrors a recipient status change onto its step.
// Missing steps are tolerated (draft envelopes have none).
func UpdateWorkflowStepStatus(ctx context.Context, db *gorm.DB, recipientID, status string, completedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}
	return db.WithContext(ctx).
		Model(&domain.WorkflowStep{}).
		Where("recipient_id = ?", recipientID).
		Updates(updates).Error
}

// MarkWorkflowStepsSent flips the steps of a batch of recipients to "sent".
func MarkWorkflowStepsSent(ctx context.Context, db *gorm.DB, recipientIDs []string) error {
	if len(recipientIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.WorkflowStep{}).
		Where("recipient_id IN ?", recipientIDs).
		Update("status", domain.RecipientStatusSent).Error
}
