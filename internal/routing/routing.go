// Package routing computes the signing order for an envelope's recipients.
//
// Recipients are grouped by routing order; equal orders form a parallel group
// whose members act simultaneously. The engine is a pure function of the
// recipient set it is given: it never reads or writes storage, and repeated
// calls over the same input always produce the same output. Group ordering is
// by routing order ascending; within a group, members are returned in
// recipient-ID lexical order, which fixes emission order only and never
// affects gating.
//
// Gap semantics: routing orders need not be contiguous (1,1,3 is legal); the
// engine orders by the values present.
package routing

import (
	"sort"

	"github.com/tbourn/go-esign-backend/internal/domain"
)

// Group is one parallel routing group: all recipients sharing a routing order.
type Group struct {
	Order   int
	Members []domain.Recipient
}

// Blocking reports whether a recipient type gates group advancement. Receive-
// only types (carbon copy, certified delivery, viewer) get the envelope when
// their group activates but never hold up routing.
func Blocking(recipientType string) bool {
	switch recipientType {
	case domain.RecipientTypeCarbonCopy, domain.RecipientTypeCertifiedDelivery, domain.RecipientTypeViewer:
		return false
	}
	return true
}

// Groups partitions recipients into parallel groups sorted by routing order
// ascending. Members within each group are sorted by recipient ID. The input
// slice is not mutated.
func Groups(recipients []domain.Recipient) []Group {
	byOrder := make(map[int][]domain.Recipient)
	for _, r := range recipients {
		byOrder[r.RoutingOrder] = append(byOrder[r.RoutingOrder], r)
	}

	orders := make([]int, 0, len(byOrder))
	for o := range byOrder {
		orders = append(orders, o)
	}
	sort.Ints(orders)

	out := make([]Group, 0, len(orders))
	for _, o := range orders {
		members := append([]domain.Recipient(nil), byOrder[o]...)
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		out = append(out, Group{Order: o, Members: members})
	}
	return out
}

// AnyDeclined returns the first declined recipient (in group/ID order) if one
// exists. A decline anywhere short-circuits the whole envelope; no group past
// it is ever activated.
func AnyDeclined(recipients []domain.Recipient) (domain.Recipient, bool) {
	for _, g := range Groups(recipients) {
		for _, m := range g.Members {
			if m.Status == domain.RecipientStatusDeclined {
				return m, true
			}
		}
	}
	return domain.Recipient{}, false
}

// ActiveGroup returns the lowest routing-order group containing at least one
// recipient who still needs to act. The second return is false when every
// recipient is settled (envelope complete) or when any recipient has declined
// (routing does not continue past a decline).
func ActiveGroup(recipients []domain.Recipient) (Group, bool) {
	if _, declined := AnyDeclined(recipients); declined {
		return Group{}, false
	}
	for _, g := range Groups(recipients) {
		for _, m := range g.Members {
			if !m.IsSettled() {
				return g, true
			}
		}
	}
	return Group{}, false
}

// AllSatisfied reports whether every recipient has completed. A declined
// recipient means the set is not satisfied (the envelope terminates as
// declined, not completed).
func AllSatisfied(recipients []domain.Recipient) bool {
	if len(recipients) == 0 {
		return false
	}
	for _, r := range recipients {
		if r.Status != domain.RecipientStatusCompleted {
			return false
		}
	}
	return true
}

// Unactivated returns, in group/ID order, the members of g whose status is
// still "created". Used when a group becomes actionable: previously activated
// members (e.g. after a correction) are not re-activated.
func Unactivated(g Group) []domain.Recipient {
	out := make([]domain.Recipient, 0, len(g.Members))
	for _, m := range g.Members {
		if m.Status == domain.RecipientStatusCreated {
			out = append(out, m)
		}
	}
	return out
}
