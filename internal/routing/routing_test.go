package routing

import (
	"reflect"
	"testing"

	"github.com/tbourn/go-esign-backend/internal/domain"
)

func rcpt(id string, order int, status string) domain.Recipient {
	return domain.Recipient{ID: id, RoutingOrder: order, Status: status, Type: domain.RecipientTypeSigner}
}

func TestGroups_OrdersAscendingAndSortsMembers(t *testing.T) {
	rs := []domain.Recipient{
		rcpt("b", 2, domain.RecipientStatusCreated),
		rcpt("z", 1, domain.RecipientStatusCreated),
		rcpt("a", 1, domain.RecipientStatusCreated),
		rcpt("m", 5, domain.RecipientStatusCreated),
	}
	gs := Groups(rs)
	if len(gs) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(gs))
	}
	if gs[0].Order != 1 || gs[1].Order != 2 || gs[2].Order != 5 {
		t.Fatalf("group orders: %v %v %v", gs[0].Order, gs[1].Order, gs[2].Order)
	}
	if gs[0].Members[0].ID != "a" || gs[0].Members[1].ID != "z" {
		t.Fatalf("members not in ID order: %+v", gs[0].Members)
	}
}

func TestGroups_GapsAreLegal(t *testing.T) {
	rs := []domain.Recipient{
		rcpt("a", 1, domain.RecipientStatusCompleted),
		rcpt("b", 1, domain.RecipientStatusCompleted),
		rcpt("c", 3, domain.RecipientStatusCreated), // no group 2
	}
	g, ok := ActiveGroup(rs)
	if !ok || g.Order != 3 {
		t.Fatalf("expected group 3 active, got %+v ok=%v", g, ok)
	}
}

func TestActiveGroup_LowestIncompleteWins(t *testing.T) {
	rs := []domain.Recipient{
		rcpt("a", 1, domain.RecipientStatusCompleted),
		rcpt("b", 2, domain.RecipientStatusSent),
		rcpt("c", 3, domain.RecipientStatusCreated),
	}
	g, ok := ActiveGroup(rs)
	if !ok || g.Order != 2 {
		t.Fatalf("expected group 2 active, got %+v ok=%v", g, ok)
	}
}

func TestActiveGroup_ParallelGroupStaysActiveUntilAllSettle(t *testing.T) {
	rs := []domain.Recipient{
		rcpt("a", 1, domain.RecipientStatusCompleted),
		rcpt("b", 1, domain.RecipientStatusSent),
		rcpt("c", 2, domain.RecipientStatusCreated),
	}
	g, ok := ActiveGroup(rs)
	if !ok || g.Order != 1 {
		t.Fatalf("group 1 should remain active while b is pending; got %+v", g)
	}
}

func TestActiveGroup_DeclineShortCircuits(t *testing.T) {
	rs := []domain.Recipient{
		rcpt("a", 1, domain.RecipientStatusDeclined),
		rcpt("b", 2, domain.RecipientStatusCreated),
	}
	if _, ok := ActiveGroup(rs); ok {
		t.Fatalf("no group should be active after a decline")
	}
	d, declined := AnyDeclined(rs)
	if !declined || d.ID != "a" {
		t.Fatalf("AnyDeclined = %+v %v", d, declined)
	}
}

func TestActiveGroup_AllSettledMeansNoActiveGroup(t *testing.T) {
	rs := []domain.Recipient{
		rcpt("a", 1, domain.RecipientStatusCompleted),
		rcpt("b", 2, domain.RecipientStatusCompleted),
	}
	if _, ok := ActiveGroup(rs); ok {
		t.Fatalf("no group should be active when all are complete")
	}
	if !AllSatisfied(rs) {
		t.Fatalf("all completed should satisfy")
	}
}

func TestAllSatisfied_EdgeCases(t *testing.T) {
	if AllSatisfied(nil) {
		t.Fatalf("empty recipient set is never satisfied")
	}
	rs := []domain.Recipient{
		rcpt("a", 1, domain.RecipientStatusCompleted),
		rcpt("b", 2, domain.RecipientStatusDeclined),
	}
	if AllSatisfied(rs) {
		t.Fatalf("a declined recipient must not count as satisfied")
	}
}

// ActiveGroup must be a pure function: repeated calls over the same input
// yield identical results and never mutate the input.
func TestActiveGroup_Deterministic(t *testing.T) {
	rs := []domain.Recipient{
		rcpt("c", 2, domain.RecipientStatusCreated),
		rcpt("a", 1, domain.RecipientStatusSent),
		rcpt("b", 1, domain.RecipientStatusSent),
	}
	snapshot := append([]domain.Recipient(nil), rs...)

	first, ok1 := ActiveGroup(rs)
	second, ok2 := ActiveGroup(rs)
	if !ok1 || !ok2 || !reflect.DeepEqual(first, second) {
		t.Fatalf("ActiveGroup not deterministic: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(rs, snapshot) {
		t.Fatalf("input slice was mutated")
	}
}

func TestBlocking_TypeClassification(t *testing.T) {
	blocking := []string{
		domain.RecipientTypeSigner, domain.RecipientTypeApprover,
		domain.RecipientTypeWitness, domain.RecipientTypeNotary,
		domain.RecipientTypeInPersonSigner, domain.RecipientTypeAgent,
		domain.RecipientTypeIntermediary,
	}
	for _, typ := range blocking {
		if !Blocking(typ) {
			t.Errorf("%s should block routing", typ)
		}
	}
	for _, typ := range []string{domain.RecipientTypeCarbonCopy, domain.RecipientTypeCertifiedDelivery, domain.RecipientTypeViewer} {
		if Blocking(typ) {
			t.Errorf("%s should not block routing", typ)
		}
	}
}

func TestUnactivated_SkipsAlreadyActivated(t *testing.T) {
	g := Group{Order: 1, Members: []domain.Recipient{
		rcpt("a", 1, domain.RecipientStatusCreated),
		rcpt("b", 1, domain.RecipientStatusSent),
	}}
	got := Unactivated(g)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("Unactivated = %+v", got)
	}
}
