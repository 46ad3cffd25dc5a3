package domain

import (
	"testing"
	"time"
)

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		Envelope{}.TableName():             "envelopes",
		Document{}.TableName():             "documents",
		Recipient{}.TableName():            "recipients",
		WorkflowStep{}.TableName():         "workflow_steps",
		CustomField{}.TableName():          "envelope_custom_fields",
		EnvelopeLock{}.TableName():         "envelope_locks",
		ConnectConfiguration{}.TableName(): "connect_configurations",
		ConnectLog{}.TableName():           "connect_logs",
		ConnectFailure{}.TableName():       "connect_failures",
		Idempotency{}.TableName():          "idempotency",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("TableName = %q; want %q", got, want)
		}
	}
}

func TestEnvelope_IsTerminal(t *testing.T) {
	for _, st := range []string{EnvelopeStatusCompleted, EnvelopeStatusDeclined, EnvelopeStatusVoided} {
		e := Envelope{Status: st}
		if !e.IsTerminal() {
			t.Errorf("status %q should be terminal", st)
		}
	}
	for _, st := range []string{EnvelopeStatusDraft, EnvelopeStatusSent, EnvelopeStatusDelivered} {
		e := Envelope{Status: st}
		if e.IsTerminal() {
			t.Errorf("status %q should not be terminal", st)
		}
	}
}

func TestRecipient_IsSettled(t *testing.T) {
	r := Recipient{Status: RecipientStatusCompleted}
	if !r.IsSettled() {
		t.Fatalf("completed recipient should be settled")
	}
	r.Status = RecipientStatusSent
	if r.IsSettled() {
		t.Fatalf("sent recipient should not be settled")
	}
}

func TestWorkflowActionFor(t *testing.T) {
	cases := map[string]string{
		RecipientTypeSigner:            WorkflowActionSign,
		RecipientTypeWitness:           WorkflowActionSign,
		RecipientTypeNotary:            WorkflowActionSign,
		RecipientTypeApprover:          WorkflowActionApprove,
		RecipientTypeViewer:            WorkflowActionView,
		RecipientTypeCarbonCopy:        WorkflowActionView,
		RecipientTypeCertifiedDelivery: WorkflowActionCertify,
		"unknown":                      WorkflowActionSign,
	}
	for typ, want := range cases {
		if got := WorkflowActionFor(typ); got != want {
			t.Errorf("WorkflowActionFor(%q) = %q; want %q", typ, got, want)
		}
	}
}

func TestConnectConfiguration_EventFilter(t *testing.T) {
	c := ConnectConfiguration{Events: " envelope.sent , envelope.voided ,,"}
	list := c.EventList()
	if len(list) != 2 || list[0] != EventEnvelopeSent || list[1] != EventEnvelopeVoided {
		t.Fatalf("EventList = %v", list)
	}
	if !c.WantsEvent(EventEnvelopeSent) {
		t.Fatalf("filter should include envelope.sent")
	}
	if c.WantsEvent(EventEnvelopeCompleted) {
		t.Fatalf("filter should not include envelope.completed")
	}

	empty := ConnectConfiguration{}
	if empty.EventList() != nil || empty.WantsEvent(EventEnvelopeSent) {
		t.Fatalf("empty filter should match nothing")
	}
}

func TestEnvelopeLock_ExpiredAt(t *testing.T) {
	now := time.Now().UTC()
	l := EnvelopeLock{LockedUntil: now.Add(time.Minute)}
	if l.ExpiredAt(now) {
		t.Fatalf("future lock should not be expired")
	}
	if !l.ExpiredAt(now.Add(2 * time.Minute)) {
		t.Fatalf("past lock should be expired")
	}
	// boundary: locked_until == now counts as expired
	if !l.ExpiredAt(now.Add(time.Minute)) {
		t.Fatalf("lock at exact expiry instant should be expired")
	}
}

func TestEventVariants_CarryIdentity(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	events := []Event{
		NewEnvelopeSent("a1", "e1", "subj", at),
		NewEnvelopeDelivered("a1", "e1", at),
		NewEnvelopeCompleted("a1", "e1", at),
		NewEnvelopeDeclined("a1", "e1", "r1", "no", at),
		NewEnvelopeVoided("a1", "e1", "mistake", at),
		NewRecipientActivated("a1", "e1", "r1", "x@y.z", 2, at),
	}
	wantTypes := []string{
		EventEnvelopeSent, EventEnvelopeDelivered, EventEnvelopeCompleted,
		EventEnvelopeDeclined, EventEnvelopeVoided, EventRecipientActivated,
	}
	for i, ev := range events {
		if ev.EventType() != wantTypes[i] {
			t.Errorf("event %d type = %q; want %q", i, ev.EventType(), wantTypes[i])
		}
		if ev.EventAccountID() != "a1" || ev.EventEnvelopeID() != "e1" || !ev.OccurredAt().Equal(at) {
			t.Errorf("event %d lost identity fields", i)
		}
	}

	ra := events[5].(RecipientActivated)
	if ra.RecipientID != "r1" || ra.Email != "x@y.z" || ra.RoutingOrder != 2 {
		t.Fatalf("RecipientActivated fields: %+v", ra)
	}
}
