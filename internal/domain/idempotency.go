// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency represents a recorded result of a previously processed request,
// keyed by (account_id, envelope_id, key). It enables safe retries for
// single-shot transitions such as send and void by returning the originally
// produced response without re-executing side effects.
type Idempotency struct {
	ID         string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	AccountID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_account_envelope_key,priority:1"`
	EnvelopeID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_account_envelope_key,priority:2"`
	Key        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_account_envelope_key,priority:3"`
	Operation  string    `gorm:"type:TEXT NOT NULL"`
	Status     int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt  time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
