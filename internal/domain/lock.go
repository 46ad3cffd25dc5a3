// Package domain defines the core persistence models for the application.
// This file holds the ephemeral edit-lock record for envelopes and templates.
package domain

import "time"

// Lockable resource types.
const (
	LockResourceEnvelope = "envelope"
	LockResourceTemplate = "template"
)

// EnvelopeLock is a short-lived exclusive edit lock on an envelope or
// template. At most one unexpired lock may exist per resource; expiry is
// evaluated lazily against LockedUntil, so an expired row is treated as
// absent even before it is purged.
type EnvelopeLock struct {
	ID           string    `gorm:"type:char(36);primaryKey"`
	ResourceType string    `gorm:"type:varchar(16);not null;default:'envelope';uniqueIndex:ux_lock_resource,priority:1"`
	ResourceID   string    `gorm:"type:char(36);not null;uniqueIndex:ux_lock_resource,priority:2"`
	Token        string    `gorm:"type:char(36);not null"`
	LockedBy     string    `gorm:"type:varchar(64);not null"`
	LockedUntil  time.Time `gorm:"type:DATETIME NOT NULL;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName implements the GORM tabler interface.
func (EnvelopeLock) TableName() string { return "envelope_locks" }

// ExpiredAt reports whether the lock has lapsed at the given instant.
func (l *EnvelopeLock) ExpiredAt(now time.Time) bool {
	return !l.LockedUntil.After(now)
}
