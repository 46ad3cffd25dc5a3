// Package services – EnvelopeService
//
// This file implements EnvelopeService, the application-level component that
// owns the envelope lifecycle. It validates send/void/correct/resend requests,
// drives the routing engine when recipients act, and persists every transition
// atomically. Status only ever moves forward; concurrent conflicting
// transitions are resolved by compare-and-swap at the persistence layer plus a
// per-envelope mutex around routing recomputation.
//
// Lifecycle events are handed to an EventSink after the owning transaction
// commits, never before, so consumers cannot observe a transition that later
// rolled back.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include account/envelope identifiers.

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
	"github.com/tbourn/go-esign-backend/internal/repo"
	"github.com/tbourn/go-esign-backend/internal/routing"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EventSink receives lifecycle events after their transaction has committed.
// Implementations must not block; the events bus satisfies this.
type EventSink interface {
	Publish(ev domain.Event)
}

// CreateEnvelopeInput is the payload for building a draft envelope.
type CreateEnvelopeInput struct {
	Subject    string
	EmailBlurb string

	// Days; zero means "use platform defaults".
	ReminderDelayDays     int
	ReminderFrequencyDays int
	ExpireAfterDays       int

	Documents    []DocumentInput
	Recipients   []RecipientInput
	CustomFields []CustomFieldInput
}

// DocumentInput describes one document attached at creation time.
type DocumentInput struct {
	Name  string
	Order int
}

// RecipientInput describes one recipient attached at creation time.
type RecipientInput struct {
	Type         string
	RoutingOrder int
	Name         string
	Email        string
	AccessCode   string
}

// CustomFieldInput describes one custom field attached at creation time.
type CustomFieldInput struct {
	Name     string
	Value    string
	Required bool
}

// RecipientCorrection rewrites one recipient's contact details in place.
type RecipientCorrection struct {
	RecipientID string
	Name        string
	Email       string
}

// EnvelopeService coordinates envelope state transitions and recipient routing.
type EnvelopeService struct {
	DB     *gorm.DB
	Events EventSink

	// DefaultExpireDays applies when an envelope carries no expiration
	// setting of its own. Zero disables expiration entirely.
	DefaultExpireDays int

	locks keyedMutex
}

// Create persists a draft envelope together with its documents, recipients,
// and custom fields in one transaction.
func (s *EnvelopeService) Create(ctx context.Context, accountID string, in CreateEnvelopeInput) (*domain.Envelope, error) {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("account.id", accountID)),
	)
	defer span.End()

	for _, r := range in.Recipients {
		if strings.TrimSpace(r.Email) == "" {
			return nil, ErrEmptyRecipientEmail
		}
	}

	e := &domain.Envelope{
		AccountID:             accountID,
		Subject:               strings.TrimSpace(in.Subject),
		EmailBlurb:            in.EmailBlurb,
		ReminderDelayDays:     in.ReminderDelayDays,
		ReminderFrequencyDays: in.ReminderFrequencyDays,
		ExpireAfterDays:       in.ExpireAfterDays,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateEnvelope(ctx, tx, e); err != nil {
			return err
		}
		for _, d := range in.Documents {
			doc := &domain.Document{EnvelopeID: e.ID, Name: d.Name, Order: d.Order}
			if err := repo.AddDocument(ctx, tx, doc); err != nil {
				return err
			}
		}
		for _, r := range in.Recipients {
			rec := &domain.Recipient{
				EnvelopeID:   e.ID,
				Type:         r.Type,
				RoutingOrder: r.RoutingOrder,
				Name:         r.Name,
				Email:        strings.TrimSpace(r.Email),
				AccessCode:   r.AccessCode,
			}
			if err := repo.AddRecipient(ctx, tx, rec); err != nil {
				return err
			}
		}
		for _, f := range in.CustomFields {
			cf := &domain.CustomField{EnvelopeID: e.ID, Name: f.Name, Value: f.Value, Required: f.Required}
			if err := repo.AddCustomField(ctx, tx, cf); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns one envelope scoped to its owning account.
func (s *EnvelopeService) Get(ctx context.Context, accountID, envelopeID string) (*domain.Envelope, error) {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("envelope.id", envelopeID)),
	)
	defer span.End()

	e, err := repo.GetEnvelope(ctx, s.DB, envelopeID, accountID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrEnvelopeNotFound
	}
	return e, err
}

// ListPage returns paginated envelopes for an account.
func (s *EnvelopeService) ListPage(ctx context.Context, accountID string, page, pageSize int) ([]domain.Envelope, int64, error) {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("account.id", accountID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountEnvelopes(ctx, s.DB, accountID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Envelope{}, 0, nil
	}
	items, err := repo.ListEnvelopesPage(ctx, s.DB, accountID, offset, pageSize)
	return items, total, err
}

// Delete soft-deletes a draft envelope. Sent or terminal envelopes cannot be
// deleted; void them instead.
func (s *EnvelopeService) Delete(ctx context.Context, accountID, envelopeID string) error {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("envelope.id", envelopeID)),
	)
	defer span.End()

	e, err := s.Get(ctx, accountID, envelopeID)
	if err != nil {
		return err
	}
	if e.Status != domain.EnvelopeStatusDraft {
		return ErrInvalidState
	}
	err = repo.SoftDeleteEnvelope(ctx, s.DB, envelopeID, accountID)
	if errors.Is(err, repo.ErrNotFound) {
		// Raced with a concurrent send.
		return ErrInvalidState
	}
	return err
}

// Send transitions a draft envelope to sent, materializes its workflow steps,
// and activates the first routing group. Envelopes whose recipients are all
// receive-only complete immediately.
func (s *EnvelopeService) Send(ctx context.Context, accountID, envelopeID string) (*domain.Envelope, error) {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("account.id", accountID),
			attribute.String("envelope.id", envelopeID),
		),
	)
	defer span.End()

	e, err := s.Get(ctx, accountID, envelopeID)
	if err != nil {
		return nil, err
	}
	if e.Status != domain.EnvelopeStatusDraft {
		return nil, ErrInvalidState
	}

	docs, err := repo.CountDocuments(ctx, s.DB, envelopeID)
	if err != nil {
		return nil, err
	}
	if docs == 0 {
		return nil, ErrMissingDocuments
	}
	recips, err := repo.CountRecipients(ctx, s.DB, envelopeID)
	if err != nil {
		return nil, err
	}
	if recips == 0 {
		return nil, ErrMissingRecipients
	}

	now := time.Now().UTC()
	extra := map[string]any{"sent_at": &now}
	if exp := s.expireAfter(e); exp > 0 {
		at := now.AddDate(0, 0, exp)
		extra["expires_at"] = &at
	}

	var activated []domain.Recipient
	var completed bool
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CompareAndSwapStatus(ctx, tx, envelopeID, domain.EnvelopeStatusDraft, domain.EnvelopeStatusSent, extra); err != nil {
			if errors.Is(err, repo.ErrStaleStatus) {
				return ErrInvalidState
			}
			return err
		}

		all, err := repo.ListRecipients(ctx, tx, envelopeID)
		if err != nil {
			return err
		}
		steps := make([]domain.WorkflowStep, 0, len(all))
		for _, r := range all {
			steps = append(steps, domain.WorkflowStep{
				EnvelopeID:   envelopeID,
				RecipientID:  r.ID,
				RoutingOrder: r.RoutingOrder,
				Action:       domain.WorkflowActionFor(r.Type),
			})
		}
		if err := repo.CreateWorkflowSteps(ctx, tx, steps); err != nil {
			return err
		}

		activated, completed, err = advanceRouting(ctx, tx, envelopeID)
		if err != nil {
			return err
		}
		if completed {
			return repo.CompareAndSwapStatus(ctx, tx, envelopeID, domain.EnvelopeStatusSent, domain.EnvelopeStatusCompleted,
				map[string]any{"completed_at": &now})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(domain.NewEnvelopeSent(accountID, envelopeID, e.Subject, now))
	for _, r := range activated {
		s.emit(domain.NewRecipientActivated(accountID, envelopeID, r.ID, r.Email, r.RoutingOrder, now))
	}
	if completed {
		s.emit(domain.NewEnvelopeCompleted(accountID, envelopeID, now))
	}
	return s.Get(ctx, accountID, envelopeID)
}

// Void terminates an in-flight envelope with a mandatory reason. Drafts are
// deleted instead of voided; terminal envelopes cannot move again.
func (s *EnvelopeService) Void(ctx context.Context, accountID, envelopeID, reason string) (*domain.Envelope, error) {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "Void",
		trace.WithAttributes(attribute.String("envelope.id", envelopeID)),
	)
	defer span.End()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyVoidReason
	}

	e, err := s.Get(ctx, accountID, envelopeID)
	if err != nil {
		return nil, err
	}
	if e.Status != domain.EnvelopeStatusSent && e.Status != domain.EnvelopeStatusDelivered {
		return nil, ErrInvalidState
	}

	now := time.Now().UTC()
	err = repo.CompareAndSwapStatusIn(ctx, s.DB, envelopeID,
		[]string{domain.EnvelopeStatusSent, domain.EnvelopeStatusDelivered},
		domain.EnvelopeStatusVoided,
		map[string]any{"voided_at": &now, "voided_reason": reason})
	switch {
	case errors.Is(err, repo.ErrStaleStatus):
		// A concurrent transition won; exactly one void succeeds.
		return nil, ErrInvalidState
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrEnvelopeNotFound
	case err != nil:
		return nil, err
	}

	s.emit(domain.NewEnvelopeVoided(accountID, envelopeID, reason, now))
	return s.Get(ctx, accountID, envelopeID)
}

// Correct rewrites recipient contact details while the envelope is still
// correctable (draft or sent). Recipients who already completed or declined
// cannot be corrected.
func (s *EnvelopeService) Correct(ctx context.Context, accountID, envelopeID string, corrections []RecipientCorrection) error {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "Correct",
		trace.WithAttributes(
			attribute.String("envelope.id", envelopeID),
			attribute.Int("corrections", len(corrections)),
		),
	)
	defer span.End()

	e, err := s.Get(ctx, accountID, envelopeID)
	if err != nil {
		return err
	}
	if e.Status != domain.EnvelopeStatusDraft && e.Status != domain.EnvelopeStatusSent {
		return ErrInvalidState
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range corrections {
			email := strings.TrimSpace(c.Email)
			if email == "" {
				return ErrEmptyRecipientEmail
			}
			r, err := repo.GetRecipient(ctx, tx, c.RecipientID, envelopeID)
			if errors.Is(err, repo.ErrNotFound) {
				return ErrRecipientNotFound
			}
			if err != nil {
				return err
			}
			if r.IsSettled() {
				return ErrRecipientSettled
			}
			if err := repo.UpdateRecipientContact(ctx, tx, c.RecipientID, envelopeID, c.Name, email); err != nil {
				return err
			}
		}
		return nil
	})
}

// Resend re-notifies every activated recipient who has not yet acted. The
// envelope status does not change; one activation event is emitted per
// pending recipient. Returns the number of recipients notified.
func (s *EnvelopeService) Resend(ctx context.Context, accountID, envelopeID string) (int, error) {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "Resend",
		trace.WithAttributes(attribute.String("envelope.id", envelopeID)),
	)
	defer span.End()

	e, err := s.Get(ctx, accountID, envelopeID)
	if err != nil {
		return 0, err
	}
	if e.Status != domain.EnvelopeStatusSent && e.Status != domain.EnvelopeStatusDelivered {
		return 0, ErrInvalidState
	}

	recips, err := repo.ListRecipients(ctx, s.DB, envelopeID)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	n := 0
	for _, r := range recips {
		if r.Status != domain.RecipientStatusSent && r.Status != domain.RecipientStatusDelivered {
			continue
		}
		s.emit(domain.NewRecipientActivated(accountID, envelopeID, r.ID, r.Email, r.RoutingOrder, now))
		n++
	}
	return n, nil
}

// RecordRecipientDelivery marks a recipient as having seen the envelope. The
// first delivery moves the envelope from sent to delivered; repeat deliveries
// are no-ops.
func (s *EnvelopeService) RecordRecipientDelivery(ctx context.Context, accountID, envelopeID, recipientID string) error {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "RecordRecipientDelivery",
		trace.WithAttributes(
			attribute.String("envelope.id", envelopeID),
			attribute.String("recipient.id", recipientID),
		),
	)
	defer span.End()

	unlock := s.locks.lock(envelopeID)
	defer unlock()

	e, err := s.Get(ctx, accountID, envelopeID)
	if err != nil {
		return err
	}
	if e.Status != domain.EnvelopeStatusSent && e.Status != domain.EnvelopeStatusDelivered {
		return ErrInvalidState
	}

	r, err := repo.GetRecipient(ctx, s.DB, recipientID, envelopeID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrRecipientNotFound
	}
	if err != nil {
		return err
	}
	switch {
	case r.Status == domain.RecipientStatusCreated:
		return ErrRecipientNotActive
	case r.IsSettled():
		return ErrRecipientSettled
	case r.Status == domain.RecipientStatusDelivered:
		return nil
	}

	if err := repo.UpdateRecipientStatus(ctx, s.DB, recipientID, domain.RecipientStatusDelivered, nil, ""); err != nil {
		return err
	}
	if err := repo.UpdateWorkflowStepStatus(ctx, s.DB, recipientID, domain.RecipientStatusDelivered, nil); err != nil {
		return err
	}

	now := time.Now().UTC()
	err = repo.CompareAndSwapStatus(ctx, s.DB, envelopeID, domain.EnvelopeStatusSent, domain.EnvelopeStatusDelivered, nil)
	switch {
	case errors.Is(err, repo.ErrStaleStatus):
		// Already delivered (or moved on); only the first delivery flips it.
		return nil
	case err != nil:
		return err
	}
	s.emit(domain.NewEnvelopeDelivered(accountID, envelopeID, now))
	return nil
}

// RecordRecipientCompletion marks a recipient as done and advances routing:
// when the recipient's group is exhausted the next group activates, and when
// every recipient has completed the envelope completes. Completion processing
// for one envelope is serialized.
func (s *EnvelopeService) RecordRecipientCompletion(ctx context.Context, accountID, envelopeID, recipientID string) error {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "RecordRecipientCompletion",
		trace.WithAttributes(
			attribute.String("envelope.id", envelopeID),
			attribute.String("recipient.id", recipientID),
		),
	)
	defer span.End()

	unlock := s.locks.lock(envelopeID)
	defer unlock()

	now := time.Now().UTC()
	var activated []domain.Recipient
	var completed bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireActionable(ctx, tx, accountID, envelopeID, recipientID); err != nil {
			return err
		}
		if err := repo.UpdateRecipientStatus(ctx, tx, recipientID, domain.RecipientStatusCompleted, &now, ""); err != nil {
			return err
		}
		if err := repo.UpdateWorkflowStepStatus(ctx, tx, recipientID, domain.RecipientStatusCompleted, &now); err != nil {
			return err
		}

		var err error
		activated, completed, err = advanceRouting(ctx, tx, envelopeID)
		if err != nil {
			return err
		}
		if completed {
			return repo.CompareAndSwapStatusIn(ctx, tx, envelopeID,
				[]string{domain.EnvelopeStatusSent, domain.EnvelopeStatusDelivered},
				domain.EnvelopeStatusCompleted,
				map[string]any{"completed_at": &now})
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, r := range activated {
		s.emit(domain.NewRecipientActivated(accountID, envelopeID, r.ID, r.Email, r.RoutingOrder, now))
	}
	if completed {
		s.emit(domain.NewEnvelopeCompleted(accountID, envelopeID, now))
	}
	return nil
}

// RecordRecipientDecline marks a recipient as declined, which terminates the
// whole envelope. No further groups are ever activated.
func (s *EnvelopeService) RecordRecipientDecline(ctx context.Context, accountID, envelopeID, recipientID, reason string) error {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "RecordRecipientDecline",
		trace.WithAttributes(
			attribute.String("envelope.id", envelopeID),
			attribute.String("recipient.id", recipientID),
		),
	)
	defer span.End()

	unlock := s.locks.lock(envelopeID)
	defer unlock()

	now := time.Now().UTC()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireActionable(ctx, tx, accountID, envelopeID, recipientID); err != nil {
			return err
		}
		if err := repo.UpdateRecipientStatus(ctx, tx, recipientID, domain.RecipientStatusDeclined, nil, reason); err != nil {
			return err
		}
		if err := repo.UpdateWorkflowStepStatus(ctx, tx, recipientID, domain.RecipientStatusDeclined, nil); err != nil {
			return err
		}
		return repo.CompareAndSwapStatusIn(ctx, tx, envelopeID,
			[]string{domain.EnvelopeStatusSent, domain.EnvelopeStatusDelivered},
			domain.EnvelopeStatusDeclined, nil)
	})
	if err != nil {
		return err
	}

	s.emit(domain.NewEnvelopeDeclined(accountID, envelopeID, recipientID, reason, now))
	return nil
}

// ExpireOverdue voids every in-flight envelope whose expiration instant has
// passed, emitting a voided event per envelope. Called periodically by the
// notification scheduler. Returns the number of envelopes expired.
func (s *EnvelopeService) ExpireOverdue(ctx context.Context, now time.Time, limit int) (int, error) {
	tr := otel.Tracer("services/EnvelopeService")
	ctx, span := tr.Start(ctx, "ExpireOverdue")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}
	overdue, err := repo.ListExpiredEnvelopes(ctx, s.DB, now, limit)
	if err != nil {
		return 0, err
	}

	const reason = "envelope expired"
	n := 0
	for _, e := range overdue {
		err := repo.CompareAndSwapStatusIn(ctx, s.DB, e.ID,
			[]string{domain.EnvelopeStatusSent, domain.EnvelopeStatusDelivered},
			domain.EnvelopeStatusVoided,
			map[string]any{"voided_at": &now, "voided_reason": reason})
		if errors.Is(err, repo.ErrStaleStatus) || errors.Is(err, repo.ErrNotFound) {
			continue // raced with completion/void; nothing to do
		}
		if err != nil {
			return n, err
		}
		s.emit(domain.NewEnvelopeVoided(e.AccountID, e.ID, reason, now))
		n++
	}
	return n, nil
}

// requireActionable verifies that the envelope is in flight, the recipient
// exists, and the recipient has been activated but not yet settled.
func (s *EnvelopeService) requireActionable(ctx context.Context, tx *gorm.DB, accountID, envelopeID, recipientID string) error {
	e, err := repo.GetEnvelope(ctx, tx, envelopeID, accountID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrEnvelopeNotFound
	}
	if err != nil {
		return err
	}
	if e.Status != domain.EnvelopeStatusSent && e.Status != domain.EnvelopeStatusDelivered {
		return ErrInvalidState
	}

	r, err := repo.GetRecipient(ctx, tx, recipientID, envelopeID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrRecipientNotFound
	}
	if err != nil {
		return err
	}
	if r.Status == domain.RecipientStatusCreated {
		return ErrRecipientNotActive
	}
	if r.IsSettled() {
		return ErrRecipientSettled
	}
	return nil
}

// advanceRouting activates routing groups until progress stops: it marks each
// newly actionable group as sent, auto-completes its receive-only members, and
// repeats while auto-completion exhausts the group. It returns the recipients
// activated during this pass and whether every recipient has now completed.
func advanceRouting(ctx context.Context, tx *gorm.DB, envelopeID string) ([]domain.Recipient, bool, error) {
	var activated []domain.Recipient
	for {
		recips, err := repo.ListRecipients(ctx, tx, envelopeID)
		if err != nil {
			return nil, false, err
		}
		if routing.AllSatisfied(recips) {
			return activated, true, nil
		}
		g, ok := routing.ActiveGroup(recips)
		if !ok {
			// A decline blocks all further routing.
			return activated, false, nil
		}
		pending := routing.Unactivated(g)
		if len(pending) == 0 {
			// Group already notified; waiting on a blocking member.
			return activated, false, nil
		}

		ids := make([]string, 0, len(pending))
		for _, m := range pending {
			ids = append(ids, m.ID)
		}
		if err := repo.MarkRecipientsSent(ctx, tx, ids); err != nil {
			return nil, false, err
		}
		if err := repo.MarkWorkflowStepsSent(ctx, tx, ids); err != nil {
			return nil, false, err
		}
		activated = append(activated, pending...)

		// Receive-only members are done the moment they are notified.
		now := time.Now().UTC()
		for _, m := range pending {
			if routing.Blocking(m.Type) {
				continue
			}
			if err := repo.UpdateRecipientStatus(ctx, tx, m.ID, domain.RecipientStatusCompleted, &now, ""); err != nil {
				return nil, false, err
			}
			if err := repo.UpdateWorkflowStepStatus(ctx, tx, m.ID, domain.RecipientStatusCompleted, &now); err != nil {
				return nil, false, err
			}
		}
	}
}

// expireAfter resolves the effective expiration setting for an envelope.
func (s *EnvelopeService) expireAfter(e *domain.Envelope) int {
	if e.ExpireAfterDays > 0 {
		return e.ExpireAfterDays
	}
	return s.DefaultExpireDays
}

func (s *EnvelopeService) emit(ev domain.Event) {
	if s.Events != nil {
		s.Events.Publish(ev)
	}
}
