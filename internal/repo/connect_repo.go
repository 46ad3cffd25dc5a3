// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for Connect
// webhook subscriptions and their delivery bookkeeping (logs and failures).
//
// Logs are append-only; failures are upserted by the dispatcher only.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
)

// CreateConnectConfiguration inserts a new webhook subscription.
func CreateConnectConfiguration(ctx context.Context, db *gorm.DB, c *domain.ConnectConfiguration) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(c).Error
}

// GetConnectConfiguration fetches a subscription by ID scoped to its account,
// or ErrNotFound.
func GetConnectConfiguration(ctx context.Context, db *gorm.DB, id, accountID string) (*domain.ConnectConfiguration, error) {
	var c domain.ConnectConfiguration
	err := db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetConnectConfigurationByID fetches a subscription by primary key without
// account scoping. Only the dispatcher's retry loop, which works off stored
// failure rows, uses this.
func GetConnectConfigurationByID(ctx context.Context, db *gorm.DB, id string) (*domain.ConnectConfiguration, error) {
	var c domain.ConnectConfiguration
	err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConnectConfigurations returns every subscription for an account.
func ListConnectConfigurations(ctx context.Context, db *gorm.DB, accountID string) ([]domain.ConnectConfiguration, error) {
	var out []domain.ConnectConfiguration
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// ListEnabledConfigurations returns the account's enabled subscriptions; the
// dispatcher filters these further by event name.
func ListEnabledConfigurations(ctx context.Context, db *gorm.DB, accountID string) ([]domain.ConnectConfiguration, error) {
	var out []domain.ConnectConfiguration
	err := db.WithContext(ctx).
		Where("account_id = ? AND enabled = ?", accountID, true).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// SaveConnectConfiguration persists changes to an existing subscription.
func SaveConnectConfiguration(ctx context.Context, db *gorm.DB, c *domain.ConnectConfiguration) error {
	return db.WithContext(ctx).Save(c).Error
}

// DeleteConnectConfiguration soft-deletes a subscription, or ErrNotFound.
func DeleteConnectConfiguration(ctx context.Context, db *gorm.DB, id, accountID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		Delete(&domain.ConnectConfiguration{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendConnectLog writes one append-only delivery attempt record.
func AppendConnectLog(ctx context.Context, db *gorm.DB, l *domain.ConnectLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(l).Error
}

// CountConnectLogs returns the number of delivery logs for a subscription.
func CountConnectLogs(ctx context.Context, db *gorm.DB, connectID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ConnectLog{}).
		Where("connect_id = ?", connectID).
		Count(&total).Error
	return total, err
}

// ListConnectLogsPage returns a page of delivery logs for a subscription,
// newest first.
func ListConnectLogsPage(ctx context.Context, db *gorm.DB, connectID string, offset, limit int) ([]domain.ConnectLog, error) {
	var out []domain.ConnectLog
	err := db.WithContext(ctx).
		Where("connect_id = ?", connectID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetConnectFailure fetches the pending failure row for one
// (subscription, envelope, event) triple, or ErrNotFound.
func GetConnectFailure(ctx context.Context, db *gorm.DB, connectID, envelopeID, eventType string) (*domain.ConnectFailure, error) {
	var f domain.ConnectFailure
	err := db.WithContext(ctx).
		Where("connect_id = ? AND envelope_id = ? AND event_type = ?", connectID, envelopeID, eventType).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateConnectFailure inserts a failure row; ErrDuplicate when one already
// exists for the triple.
func CreateConnectFailure(ctx context.Context, db *gorm.DB, f *domain.ConnectFailure) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = domain.ConnectFailureStatusRetrying
	}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// SaveConnectFailure persists changes to an existing failure row.
func SaveConnectFailure(ctx context.Context, db *gorm.DB, f *domain.ConnectFailure) error {
	return db.WithContext(ctx).Save(f).Error
}

// DeleteConnectFailure removes a failure row after a successful delivery.
// Idempotent: zero affected rows is not an error.
func DeleteConnectFailure(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.ConnectFailure{}).Error
}

// ListDueFailures returns retrying failures whose next attempt is due,
// oldest first, capped at limit.
func ListDueFailures(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.ConnectFailure, error) {
	var out []domain.ConnectFailure
	err := db.WithContext(ctx).
		Where("status = ? AND next_attempt_at IS NOT NULL AND next_attempt_at <= ?", domain.ConnectFailureStatusRetrying, now).
		Order("next_attempt_at asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListFailuresByEnvelope returns every failure row for an envelope within an
// account, exhausted ones included (operator retry queue).
func ListFailuresByEnvelope(ctx context.Context, db *gorm.DB, accountID, envelopeID string) ([]domain.ConnectFailure, error) {
	var out []domain.ConnectFailure
	err := db.WithContext(ctx).
		Where("account_id = ? AND envelope_id = ?", accountID, envelopeID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// CountConnectFailures returns the number of failure rows for an account.
func CountConnectFailures(ctx context.Context, db *gorm.DB, accountID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ConnectFailure{}).
		Where("account_id = ?", accountID).
		Count(&total).Error
	return total, err
}

// ListConnectFailuresPage returns a page of an account's failure rows,
// newest first.
func ListConnectFailuresPage(ctx context.Context, db *gorm.DB, accountID string, offset, limit int) ([]domain.ConnectFailure, error) {
	var out []domain.ConnectFailure
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
