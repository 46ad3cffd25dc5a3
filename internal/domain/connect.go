// Package domain defines the core persistence models for the application.
// This file holds the Connect (outbound webhook) configuration and its
// delivery bookkeeping records.
package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ConnectFailure statuses.
const (
	ConnectFailureStatusRetrying  = "retrying"
	ConnectFailureStatusExhausted = "exhausted"
)

// ConnectConfiguration is one per-account webhook subscription: where to POST,
// which events to push, and which optional payload parts to include.
//
// Events is stored as a comma-separated list of event names; an empty list
// means the subscription receives no events (it must opt in explicitly).
type ConnectConfiguration struct {
	ID        string `json:"connect_id" gorm:"type:char(36);primaryKey"`
	AccountID string `json:"account_id" gorm:"type:varchar(64);not null;index:idx_account_connect"`
	Name      string `json:"name"       gorm:"type:varchar(128);not null;default:''"`
	URL       string `json:"url"        gorm:"type:varchar(2048);not null"`
	Enabled   bool   `json:"enabled"    gorm:"not null;default:true"`
	Events    string `json:"events"     gorm:"type:text;not null;default:''"`

	// Payload inclusion flags.
	IncludeDocuments  bool   `json:"include_documents"   gorm:"not null;default:false"`
	IncludeVoidReason bool   `json:"include_void_reason" gorm:"not null;default:true"`
	SignHMAC          bool   `json:"sign_hmac"           gorm:"not null;default:false"`
	HMACSecret        string `json:"-"                   gorm:"type:varchar(128);not null;default:''"`

	// Retry policy. RetryCount caps automatic attempts; RetryDelayMinutes is
	// the fixed gap between attempts. Zero values fall back to platform
	// defaults.
	RetryCount        int `json:"retry_count"         gorm:"not null;default:3"`
	RetryDelayMinutes int `json:"retry_delay_minutes" gorm:"not null;default:15"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for ConnectConfiguration.
func (ConnectConfiguration) TableName() string { return "connect_configurations" }

// EventList splits the stored event filter into individual event names.
func (c *ConnectConfiguration) EventList() []string {
	if strings.TrimSpace(c.Events) == "" {
		return nil
	}
	parts := strings.Split(c.Events, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// WantsEvent reports whether the subscription's filter includes eventType.
func (c *ConnectConfiguration) WantsEvent(eventType string) bool {
	for _, e := range c.EventList() {
		if e == eventType {
			return true
		}
	}
	return false
}

// ConnectLog is one append-only record of a webhook delivery attempt.
type ConnectLog struct {
	ID         string    `json:"log_id"      gorm:"type:char(36);primaryKey"`
	ConnectID  string    `json:"connect_id"  gorm:"type:char(36);not null;index:idx_connect_logs"`
	AccountID  string    `json:"account_id"  gorm:"type:varchar(64);not null;index"`
	EnvelopeID string    `json:"envelope_id" gorm:"type:char(36);not null;index"`
	EventType  string    `json:"event_type"  gorm:"type:varchar(64);not null"`
	Success    bool      `json:"success"     gorm:"not null"`
	StatusCode int       `json:"status_code" gorm:"not null;default:0"`
	Error      string    `json:"error,omitempty" gorm:"type:varchar(512);not null;default:''"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for ConnectLog.
func (ConnectLog) TableName() string { return "connect_logs" }

// ConnectFailure tracks one (subscription, event) delivery that has not yet
// succeeded. RetryCount counts attempts already made; NextAttemptAt schedules
// the next one. Rows are deleted on eventual success and retained with status
// "exhausted" once the configured attempt cap is reached.
type ConnectFailure struct {
	ID            string     `json:"failure_id"  gorm:"type:char(36);primaryKey"`
	ConnectID     string     `json:"connect_id"  gorm:"type:char(36);not null;uniqueIndex:ux_failure_event,priority:1"`
	AccountID     string     `json:"account_id"  gorm:"type:varchar(64);not null;index"`
	EnvelopeID    string     `json:"envelope_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_failure_event,priority:2"`
	EventType     string     `json:"event_type"  gorm:"type:varchar(64);not null;uniqueIndex:ux_failure_event,priority:3"`
	Status        string     `json:"status"      gorm:"type:varchar(16);not null;default:'retrying';check:status IN ('retrying','exhausted')"`
	RetryCount    int        `json:"retry_count" gorm:"not null;default:0"`
	LastStatus    int        `json:"last_status" gorm:"not null;default:0"`
	LastError     string     `json:"last_error"  gorm:"type:varchar(512);not null;default:''"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty" gorm:"index"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the database table name for ConnectFailure.
func (ConnectFailure) TableName() string { return "connect_failures" }
