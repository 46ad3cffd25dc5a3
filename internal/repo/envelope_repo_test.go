package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-esign-backend/internal/domain"
)

func TestCreateEnvelope_AssignsIDAndDraftStatus(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{})

	e := &domain.Envelope{AccountID: "acct1", Subject: "Q3 contract", Status: "sent"}
	if err := CreateEnvelope(context.Background(), db, e); err != nil {
		t.Fatalf("CreateEnvelope: %v", err)
	}
	if e.ID == "" {
		t.Fatalf("ID not assigned")
	}
	if e.Status != domain.EnvelopeStatusDraft {
		t.Fatalf("new envelopes must start as draft, got %q", e.Status)
	}

	got, err := GetEnvelope(context.Background(), db, e.ID, "acct1")
	if err != nil {
		t.Fatalf("GetEnvelope: %v", err)
	}
	if got.Subject != "Q3 contract" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestGetEnvelope_CrossAccountIsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{})

	e := &domain.Envelope{AccountID: "acct1"}
	if err := CreateEnvelope(context.Background(), db, e); err != nil {
		t.Fatalf("CreateEnvelope: %v", err)
	}
	if _, err := GetEnvelope(context.Background(), db, e.ID, "acct2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-account access must surface as not found, got %v", err)
	}
}

func TestCompareAndSwapStatus_GuardsCurrentStatus(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{})
	ctx := context.Background()

	e := &domain.Envelope{AccountID: "acct1"}
	if err := CreateEnvelope(ctx, db, e); err != nil {
		t.Fatalf("CreateEnvelope: %v", err)
	}

	now := time.Now().UTC()
	err := CompareAndSwapStatus(ctx, db, e.ID, domain.EnvelopeStatusDraft, domain.EnvelopeStatusSent,
		map[string]any{"sent_at": &now})
	if err != nil {
		t.Fatalf("first CAS should succeed: %v", err)
	}

	// Second identical transition loses: status is no longer draft.
	err = CompareAndSwapStatus(ctx, db, e.ID, domain.EnvelopeStatusDraft, domain.EnvelopeStatusSent, nil)
	if !errors.Is(err, ErrStaleStatus) {
		t.Fatalf("expected ErrStaleStatus, got %v", err)
	}

	got, err := GetEnvelope(ctx, db, e.ID, "acct1")
	if err != nil {
		t.Fatalf("GetEnvelope: %v", err)
	}
	if got.Status != domain.EnvelopeStatusSent || got.SentAt == nil {
		t.Fatalf("transition not applied: %+v", got)
	}
}

func TestCompareAndSwapStatus_MissingEnvelope(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{})
	err := CompareAndSwapStatus(context.Background(), db, "nope", domain.EnvelopeStatusDraft, domain.EnvelopeStatusSent, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSoftDeleteEnvelope_DraftOnly(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{})
	ctx := context.Background()

	e := &domain.Envelope{AccountID: "acct1"}
	if err := CreateEnvelope(ctx, db, e); err != nil {
		t.Fatalf("CreateEnvelope: %v", err)
	}
	if err := CompareAndSwapStatus(ctx, db, e.ID, domain.EnvelopeStatusDraft, domain.EnvelopeStatusSent, nil); err != nil {
		t.Fatalf("CAS: %v", err)
	}
	if err := SoftDeleteEnvelope(ctx, db, e.ID, "acct1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("sent envelope must not be deletable, got %v", err)
	}

	draft := &domain.Envelope{AccountID: "acct1"}
	if err := CreateEnvelope(ctx, db, draft); err != nil {
		t.Fatalf("CreateEnvelope: %v", err)
	}
	if err := SoftDeleteEnvelope(ctx, db, draft.ID, "acct1"); err != nil {
		t.Fatalf("draft delete: %v", err)
	}
	if _, err := GetEnvelope(ctx, db, draft.ID, "acct1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted draft should be gone, got %v", err)
	}
}

func TestDocuments_AddListCount(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{}, &domain.Document{})
	ctx := context.Background()

	e := &domain.Envelope{AccountID: "acct1"}
	if err := CreateEnvelope(ctx, db, e); err != nil {
		t.Fatalf("CreateEnvelope: %v", err)
	}
	if err := AddDocument(ctx, db, &domain.Document{EnvelopeID: e.ID, Name: "b.pdf", Order: 2}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if err := AddDocument(ctx, db, &domain.Document{EnvelopeID: e.ID, Name: "a.pdf", Order: 1}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	docs, err := ListDocuments(ctx, db, e.ID)
	if err != nil || len(docs) != 2 {
		t.Fatalf("ListDocuments: %v (%d)", err, len(docs))
	}
	if docs[0].Name != "a.pdf" || docs[1].Name != "b.pdf" {
		t.Fatalf("documents not in order: %+v", docs)
	}
	n, err := CountDocuments(ctx, db, e.ID)
	if err != nil || n != 2 {
		t.Fatalf("CountDocuments = %d, %v", n, err)
	}
}

func TestListEnvelopesWithEventsBetween(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{})
	ctx := context.Background()

	mk := func(sentAt *time.Time) *domain.Envelope {
		e := &domain.Envelope{AccountID: "acct1"}
		if err := CreateEnvelope(ctx, db, e); err != nil {
			t.Fatalf("CreateEnvelope: %v", err)
		}
		if sentAt != nil {
			if err := CompareAndSwapStatus(ctx, db, e.ID, domain.EnvelopeStatusDraft, domain.EnvelopeStatusSent,
				map[string]any{"sent_at": sentAt}); err != nil {
				t.Fatalf("CAS: %v", err)
			}
		}
		return e
	}

	inRange := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	outOfRange := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hit := mk(&inRange)
	mk(&outOfRange)
	mk(nil) // never sent

	got, err := ListEnvelopesWithEventsBetween(ctx, db, "acct1",
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListEnvelopesWithEventsBetween: %v", err)
	}
	if len(got) != 1 || got[0].ID != hit.ID {
		t.Fatalf("expected only the in-range envelope, got %+v", got)
	}
}
