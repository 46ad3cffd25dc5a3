// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the ephemeral
// envelope/template edit-lock rows.
//
// A unique index on (resource_type, resource_id) guarantees at most one lock
// row per resource; expiry is decided by the service layer comparing
// locked_until against the current time, never by a background job.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
)

// ErrDuplicate indicates that a row already exists for a unique key
// (lock resource, idempotency tuple, pending failure record).
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation detects unique-constraint failures across the error
// shapes the pure-Go sqlite driver produces.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

// GetLock returns the lock row for a resource regardless of expiry, or
// ErrNotFound. Callers decide whether the row still counts as held.
func GetLock(ctx context.Context, db *gorm.DB, resourceType, resourceID string) (*domain.EnvelopeLock, error) {
	var l domain.EnvelopeLock
	err := db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLock inserts a lock row, returning ErrDuplicate when a row for the
// resource already exists (even an expired one — purge it first).
func CreateLock(ctx context.Context, db *gorm.DB, l *domain.EnvelopeLock) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Token == "" {
		l.Token = uuid.NewString()
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ExtendLock bumps locked_until on the row matching both resource and token.
// Returns ErrNotFound when the token does not match (a non-holder must not be
// able to extend).
func ExtendLock(ctx context.Context, db *gorm.DB, resourceType, resourceID, token string, until time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.EnvelopeLock{}).
		Where("resource_type = ? AND resource_id = ? AND token = ?", resourceType, resourceID, token).
		Update("locked_until", until)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLock removes the lock row matching resource and token, returning the
// number of rows removed. Zero rows is not an error: release is idempotent.
func DeleteLock(ctx context.Context, db *gorm.DB, resourceType, resourceID, token string) (int64, error) {
	res := db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ? AND token = ?", resourceType, resourceID, token).
		Delete(&domain.EnvelopeLock{})
	return res.RowsAffected, res.Error
}

// DeleteExpiredLock removes the resource's lock row only if it has lapsed.
// Used on acquire so a stale row does not block the unique-index insert.
func DeleteExpiredLock(ctx context.Context, db *gorm.DB, resourceType, resourceID string, now time.Time) error {
	return db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ? AND locked_until <= ?", resourceType, resourceID, now).
		Delete(&domain.EnvelopeLock{}).Error
}

// PurgeExpiredLocks removes every lapsed lock row. Correctness never depends
// on this; it only bounds storage growth.
func PurgeExpiredLocks(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("locked_until <= ?", now).
		Delete(&domain.EnvelopeLock{})
	return res.RowsAffected, res.Error
}
