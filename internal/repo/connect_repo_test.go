package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-esign-backend/internal/domain"
)

func TestConnectConfiguration_CRUD(t *testing.T) {
	db := newTestDB(t, &domain.ConnectConfiguration{})
	ctx := context.Background()

	c := &domain.ConnectConfiguration{
		AccountID: "acct1",
		URL:       "https://hooks.example.com/esign",
		Enabled:   true,
		Events:    domain.EventEnvelopeSent,
	}
	if err := CreateConnectConfiguration(ctx, db, c); err != nil {
		t.Fatalf("CreateConnectConfiguration: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("ID not assigned")
	}

	if _, err := GetConnectConfiguration(ctx, db, c.ID, "other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-account read must be not found, got %v", err)
	}

	c.Enabled = false
	if err := SaveConnectConfiguration(ctx, db, c); err != nil {
		t.Fatalf("SaveConnectConfiguration: %v", err)
	}
	got, err := GetConnectConfiguration(ctx, db, c.ID, "acct1")
	if err != nil || got.Enabled {
		t.Fatalf("update lost: %+v err=%v", got, err)
	}

	if err := DeleteConnectConfiguration(ctx, db, c.ID, "acct1"); err != nil {
		t.Fatalf("DeleteConnectConfiguration: %v", err)
	}
	if err := DeleteConnectConfiguration(ctx, db, c.ID, "acct1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete should be not found, got %v", err)
	}
}

func TestListEnabledConfigurations_FiltersDisabled(t *testing.T) {
	db := newTestDB(t, &domain.ConnectConfiguration{})
	ctx := context.Background()

	for _, c := range []*domain.ConnectConfiguration{
		{AccountID: "acct1", URL: "https://a", Enabled: true},
		{AccountID: "acct1", URL: "https://b", Enabled: false},
		{AccountID: "acct2", URL: "https://c", Enabled: true},
	} {
		if err := CreateConnectConfiguration(ctx, db, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := ListEnabledConfigurations(ctx, db, "acct1")
	if err != nil {
		t.Fatalf("ListEnabledConfigurations: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://a" {
		t.Fatalf("unexpected configs: %+v", got)
	}
}

func TestConnectLogs_AppendAndPage(t *testing.T) {
	db := newTestDB(t, &domain.ConnectLog{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l := &domain.ConnectLog{
			ConnectID:  "c1",
			AccountID:  "acct1",
			EnvelopeID: "e1",
			EventType:  domain.EventEnvelopeSent,
			Success:    i == 2,
			StatusCode: 200,
		}
		if err := AppendConnectLog(ctx, db, l); err != nil {
			t.Fatalf("AppendConnectLog: %v", err)
		}
	}

	n, err := CountConnectLogs(ctx, db, "c1")
	if err != nil || n != 3 {
		t.Fatalf("CountConnectLogs = %d, %v", n, err)
	}
	page, err := ListConnectLogsPage(ctx, db, "c1", 0, 2)
	if err != nil || len(page) != 2 {
		t.Fatalf("ListConnectLogsPage: %v (%d)", err, len(page))
	}
}

func TestConnectFailure_Lifecycle(t *testing.T) {
	db := newTestDB(t, &domain.ConnectFailure{})
	ctx := context.Background()
	now := time.Now().UTC()

	next := now.Add(-time.Minute) // already due
	f := &domain.ConnectFailure{
		ConnectID:     "c1",
		AccountID:     "acct1",
		EnvelopeID:    "e1",
		EventType:     domain.EventEnvelopeSent,
		RetryCount:    1,
		LastStatus:    500,
		LastError:     "boom",
		NextAttemptAt: &next,
	}
	if err := CreateConnectFailure(ctx, db, f); err != nil {
		t.Fatalf("CreateConnectFailure: %v", err)
	}
	if f.Status != domain.ConnectFailureStatusRetrying {
		t.Fatalf("default status: %q", f.Status)
	}

	dup := &domain.ConnectFailure{ConnectID: "c1", AccountID: "acct1", EnvelopeID: "e1", EventType: domain.EventEnvelopeSent}
	if err := CreateConnectFailure(ctx, db, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate triple must be rejected, got %v", err)
	}

	due, err := ListDueFailures(ctx, db, now, 10)
	if err != nil || len(due) != 1 {
		t.Fatalf("ListDueFailures: %v (%d)", err, len(due))
	}

	got, err := GetConnectFailure(ctx, db, "c1", "e1", domain.EventEnvelopeSent)
	if err != nil {
		t.Fatalf("GetConnectFailure: %v", err)
	}
	got.RetryCount = 3
	got.Status = domain.ConnectFailureStatusExhausted
	got.NextAttemptAt = nil
	if err := SaveConnectFailure(ctx, db, got); err != nil {
		t.Fatalf("SaveConnectFailure: %v", err)
	}

	if due, _ := ListDueFailures(ctx, db, now.Add(time.Hour), 10); len(due) != 0 {
		t.Fatalf("exhausted failures must never be due, got %d", len(due))
	}

	byEnv, err := ListFailuresByEnvelope(ctx, db, "acct1", "e1")
	if err != nil || len(byEnv) != 1 || byEnv[0].Status != domain.ConnectFailureStatusExhausted {
		t.Fatalf("ListFailuresByEnvelope: %v %+v", err, byEnv)
	}

	if err := DeleteConnectFailure(ctx, db, got.ID); err != nil {
		t.Fatalf("DeleteConnectFailure: %v", err)
	}
	if err := DeleteConnectFailure(ctx, db, got.ID); err != nil {
		t.Fatalf("delete must be idempotent: %v", err)
	}
}

func TestIdempotency_RoundTripAndDuplicate(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()
	now := time.Now().UTC()

	rec, err := CreateIdempotency(ctx, db, "acct1", "e1", "k1", "send", 200, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || rec.Operation != "send" {
		t.Fatalf("record fields: %+v", rec)
	}

	if _, err := CreateIdempotency(ctx, db, "acct1", "e1", "k1", "send", 200, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, err := GetIdempotency(ctx, db, "acct1", "e1", "k1", now)
	if err != nil || got.Key != "k1" {
		t.Fatalf("GetIdempotency: %v %+v", err, got)
	}

	// Expired records are invisible.
	if _, err := GetIdempotency(ctx, db, "acct1", "e1", "k1", now.Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record should be not found, got %v", err)
	}

	// Blank envelope id short-circuits.
	if _, err := GetIdempotency(ctx, db, "acct1", " ", "k1", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank envelope id should be not found, got %v", err)
	}
}
