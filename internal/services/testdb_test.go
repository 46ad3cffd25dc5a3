package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-esign-backend/internal/domain"
)

// newTestDB opens a throwaway sqlite database with the full schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := db.AutoMigrate(
		&domain.Envelope{},
		&domain.Document{},
		&domain.Recipient{},
		&domain.WorkflowStep{},
		&domain.CustomField{},
		&domain.EnvelopeLock{},
		&domain.ConnectConfiguration{},
		&domain.ConnectLog{},
		&domain.ConnectFailure{},
		&domain.Idempotency{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// sinkRecorder captures published events for assertions.
type sinkRecorder struct {
	events []domain.Event
}

func (s *sinkRecorder) Publish(ev domain.Event) { s.events = append(s.events, ev) }

func (s *sinkRecorder) types() []string {
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.EventType())
	}
	return out
}

func (s *sinkRecorder) count(eventType string) int {
	n := 0
	for _, ev := range s.events {
		if ev.EventType() == eventType {
			n++
		}
	}
	return n
}
