package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-esign-backend/internal/domain"
)

func TestAddRecipient_DefaultsApplied(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{}, &domain.Recipient{})
	ctx := context.Background()

	e := &domain.Envelope{AccountID: "acct1"}
	if err := CreateEnvelope(ctx, db, e); err != nil {
		t.Fatalf("CreateEnvelope: %v", err)
	}

	r := &domain.Recipient{EnvelopeID: e.ID, Email: "a@b.c", RoutingOrder: 0, Status: "completed"}
	if err := AddRecipient(ctx, db, r); err != nil {
		t.Fatalf("AddRecipient: %v", err)
	}
	if r.ID == "" || r.RoutingOrder != 1 || r.Type != domain.RecipientTypeSigner {
		t.Fatalf("defaults not applied: %+v", r)
	}
	if r.Status != domain.RecipientStatusCreated {
		t.Fatalf("new recipients must start as created, got %q", r.Status)
	}
}

func TestListRecipients_RoutingOrderThenID(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{}, &domain.Recipient{})
	ctx := context.Background()

	e := &domain.Envelope{AccountID: "acct1"}
	if err := CreateEnvelope(ctx, db, e); err != nil {
		t.Fatalf("CreateEnvelope: %v", err)
	}
	for _, r := range []*domain.Recipient{
		{ID: "r-b", EnvelopeID: e.ID, Email: "b@x", RoutingOrder: 1},
		{ID: "r-c", EnvelopeID: e.ID, Email: "c@x", RoutingOrder: 2},
		{ID: "r-a", EnvelopeID: e.ID, Email: "a@x", RoutingOrder: 1},
	} {
		if err := AddRecipient(ctx, db, r); err != nil {
			t.Fatalf("AddRecipient: %v", err)
		}
	}

	got, err := ListRecipients(ctx, db, e.ID)
	if err != nil {
		t.Fatalf("ListRecipients: %v", err)
	}
	if len(got) != 3 || got[0].ID != "r-a" || got[1].ID != "r-b" || got[2].ID != "r-c" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestMarkRecipientsSent_BatchAndEmpty(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{}, &domain.Recipient{})
	ctx := context.Background()

	e := &domain.Envelope{AccountID: "acct1"}
	if err := CreateEnvelope(ctx, db, e); err != nil {
		t.Fatalf("CreateEnvelope: %v", err)
	}
	r1 := &domain.Recipient{ID: "r1", EnvelopeID: e.ID, Email: "a@x", RoutingOrder: 1}
	r2 := &domain.Recipient{ID: "r2", EnvelopeID: e.ID, Email: "b@x", RoutingOrder: 1}
	for _, r := range []*domain.Recipient{r1, r2} {
		if err := AddRecipient(ctx, db, r); err != nil {
			t.Fatalf("AddRecipient: %v", err)
		}
	}

	if err := MarkRecipientsSent(ctx, db, nil); err != nil {
		t.Fatalf("empty batch must be a no-op: %v", err)
	}
	if err := MarkRecipientsSent(ctx, db, []string{"r1", "r2"}); err != nil {
		t.Fatalf("MarkRecipientsSent: %v", err)
	}

	got, _ := ListRecipients(ctx, db, e.ID)
	for _, r := range got {
		if r.Status != domain.RecipientStatusSent {
			t.Fatalf("recipient %s not sent: %q", r.ID, r.Status)
		}
	}
}

func TestUpdateRecipientStatus_AndContact(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{}, &domain.Recipient{})
	ctx := context.Background()

	e := &domain.Envelope{AccountID: "acct1"}
	if err := CreateEnvelope(ctx, db, e); err != nil {
		t.Fatalf("CreateEnvelope: %v", err)
	}
	r := &domain.Recipient{ID: "r1", EnvelopeID: e.ID, Email: "old@x", Name: "Old"}
	if err := AddRecipient(ctx, db, r); err != nil {
		t.Fatalf("AddRecipient: %v", err)
	}

	now := time.Now().UTC()
	if err := UpdateRecipientStatus(ctx, db, "r1", domain.RecipientStatusCompleted, &now, ""); err != nil {
		t.Fatalf("UpdateRecipientStatus: %v", err)
	}
	if err := UpdateRecipientStatus(ctx, db, "missing", domain.RecipientStatusSent, nil, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing recipient should be not found, got %v", err)
	}

	if err := UpdateRecipientContact(ctx, db, "r1", e.ID, "New Name", "new@x"); err != nil {
		t.Fatalf("UpdateRecipientContact: %v", err)
	}
	got, err := GetRecipient(ctx, db, "r1", e.ID)
	if err != nil {
		t.Fatalf("GetRecipient: %v", err)
	}
	if got.Name != "New Name" || got.Email != "new@x" {
		t.Fatalf("contact not rewritten: %+v", got)
	}
	if got.Status != domain.RecipientStatusCompleted || got.CompletedAt == nil {
		t.Fatalf("status update lost: %+v", got)
	}
}

func TestWorkflowSteps_CreateAndMirrorStatus(t *testing.T) {
	db := newTestDB(t, &domain.Envelope{}, &domain.Recipient{}, &domain.WorkflowStep{})
	ctx := context.Background()

	e := &domain.Envelope{AccountID: "acct1"}
	if err := CreateEnvelope(ctx, db, e); err != nil {
		t.Fatalf("CreateEnvelope: %v", err)
	}

	steps := []domain.WorkflowStep{
		{EnvelopeID: e.ID, RecipientID: "r2", RoutingOrder: 2, Action: domain.WorkflowActionSign},
		{EnvelopeID: e.ID, RecipientID: "r1", RoutingOrder: 1, Action: domain.WorkflowActionApprove},
	}
	if err := CreateWorkflowSteps(ctx, db, steps); err != nil {
		t.Fatalf("CreateWorkflowSteps: %v", err)
	}
	if err := CreateWorkflowSteps(ctx, db, nil); err != nil {
		t.Fatalf("empty steps must be a no-op: %v", err)
	}

	got, err := ListWorkflowSteps(ctx, db, e.ID)
	if err != nil || len(got) != 2 {
		t.Fatalf("ListWorkflowSteps: %v (%d)", err, len(got))
	}
	if got[0].RecipientID != "r1" || got[1].RecipientID != "r2" {
		t.Fatalf("steps not in routing order: %+v", got)
	}
	if got[0].Status != domain.RecipientStatusCreated {
		t.Fatalf("step status default missing: %+v", got[0])
	}

	now := time.Now().UTC()
	if err := UpdateWorkflowStepStatus(ctx, db, "r1", domain.RecipientStatusCompleted, &now); err != nil {
		t.Fatalf("UpdateWorkflowStepStatus: %v", err)
	}
	if err := MarkWorkflowStepsSent(ctx, db, []string{"r2"}); err != nil {
		t.Fatalf("MarkWorkflowStepsSent: %v", err)
	}

	got, _ = ListWorkflowSteps(ctx, db, e.ID)
	if got[0].Status != domain.RecipientStatusCompleted || got[0].CompletedAt == nil {
		t.Fatalf("r1 step not completed: %+v", got[0])
	}
	if got[1].Status != domain.RecipientStatusSent {
		t.Fatalf("r2 step not sent: %+v", got[1])
	}
}
