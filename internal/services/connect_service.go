// Package services – ConnectService
//
// This file implements ConnectService, which manages Connect webhook
// subscriptions and their operator-facing bookkeeping: delivery logs, the
// retry queue of failed deliveries, and historical republishing. Actual
// delivery is owned by the webhook dispatcher; this service only validates,
// persists, and hands synthesized events over.

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
	"github.com/tbourn/go-esign-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Dispatcher delivers one event to one specific subscription. The webhook
// dispatcher satisfies this; historical republishing uses it to target a
// single subscription instead of fanning out.
type Dispatcher interface {
	EnqueueTo(cfg domain.ConnectConfiguration, ev domain.Event)
}

// ConnectInput is the payload for creating or updating a subscription.
type ConnectInput struct {
	Name              string
	URL               string
	Enabled           bool
	Events            []string
	IncludeDocuments  bool
	IncludeVoidReason bool
	SignHMAC          bool
	HMACSecret        string
	RetryCount        int
	RetryDelayMinutes int
}

// ConnectService manages webhook subscriptions and delivery bookkeeping.
type ConnectService struct {
	DB       *gorm.DB
	Outbound Dispatcher
}

// Create validates and persists a new subscription.
func (s *ConnectService) Create(ctx context.Context, accountID string, in ConnectInput) (*domain.ConnectConfiguration, error) {
	tr := otel.Tracer("services/ConnectService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("account.id", accountID)),
	)
	defer span.End()

	c := &domain.ConnectConfiguration{AccountID: accountID}
	if err := applyConnectInput(c, in); err != nil {
		return nil, err
	}
	if err := repo.CreateConnectConfiguration(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns one subscription scoped to its account.
func (s *ConnectService) Get(ctx context.Context, accountID, connectID string) (*domain.ConnectConfiguration, error) {
	tr := otel.Tracer("services/ConnectService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("connect.id", connectID)),
	)
	defer span.End()

	c, err := repo.GetConnectConfiguration(ctx, s.DB, connectID, accountID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrConfigNotFound
	}
	return c, err
}

// List returns every subscription for an account.
func (s *ConnectService) List(ctx context.Context, accountID string) ([]domain.ConnectConfiguration, error) {
	tr := otel.Tracer("services/ConnectService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.String("account.id", accountID)),
	)
	defer span.End()

	return repo.ListConnectConfigurations(ctx, s.DB, accountID)
}

// Update rewrites an existing subscription in place.
func (s *ConnectService) Update(ctx context.Context, accountID, connectID string, in ConnectInput) (*domain.ConnectConfiguration, error) {
	tr := otel.Tracer("services/ConnectService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.String("connect.id", connectID)),
	)
	defer span.End()

	c, err := s.Get(ctx, accountID, connectID)
	if err != nil {
		return nil, err
	}
	if err := applyConnectInput(c, in); err != nil {
		return nil, err
	}
	if err := repo.SaveConnectConfiguration(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete soft-deletes a subscription. Its logs and failure rows remain for
// audit.
func (s *ConnectService) Delete(ctx context.Context, accountID, connectID string) error {
	tr := otel.Tracer("services/ConnectService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("connect.id", connectID)),
	)
	defer span.End()

	err := repo.DeleteConnectConfiguration(ctx, s.DB, connectID, accountID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrConfigNotFound
	}
	return err
}

// Logs returns a page of delivery attempt records for a subscription.
func (s *ConnectService) Logs(ctx context.Context, accountID, connectID string, page, pageSize int) ([]domain.ConnectLog, int64, error) {
	tr := otel.Tracer("services/ConnectService")
	ctx, span := tr.Start(ctx, "Logs",
		trace.WithAttributes(
			attribute.String("connect.id", connectID),
			attribute.Int("page", page),
		),
	)
	defer span.End()

	if _, err := s.Get(ctx, accountID, connectID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := repo.CountConnectLogs(ctx, s.DB, connectID)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListConnectLogsPage(ctx, s.DB, connectID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// RetryQueue returns a page of the account's failure rows, exhausted ones
// included, newest first.
func (s *ConnectService) RetryQueue(ctx context.Context, accountID string, page, pageSize int) ([]domain.ConnectFailure, int64, error) {
	tr := otel.Tracer("services/ConnectService")
	ctx, span := tr.Start(ctx, "RetryQueue",
		trace.WithAttributes(attribute.String("account.id", accountID)),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := repo.CountConnectFailures(ctx, s.DB, accountID)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListConnectFailuresPage(ctx, s.DB, accountID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// RequeueEnvelopeFailures puts every failure row of an envelope back into the
// retrying state with an immediate next attempt, exhausted rows included. The
// attempt counter restarts so the full retry budget applies again. Returns the
// number of rows requeued.
func (s *ConnectService) RequeueEnvelopeFailures(ctx context.Context, accountID, envelopeID string) (int, error) {
	tr := otel.Tracer("services/ConnectService")
	ctx, span := tr.Start(ctx, "RequeueEnvelopeFailures",
		trace.WithAttributes(attribute.String("envelope.id", envelopeID)),
	)
	defer span.End()

	failures, err := repo.ListFailuresByEnvelope(ctx, s.DB, accountID, envelopeID)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	for i := range failures {
		f := failures[i]
		f.Status = domain.ConnectFailureStatusRetrying
		f.RetryCount = 0
		f.NextAttemptAt = &now
		if err := repo.SaveConnectFailure(ctx, s.DB, &f); err != nil {
			return i, err
		}
	}
	return len(failures), nil
}

// PublishHistorical re-delivers to one subscription the lifecycle events the
// account's envelopes emitted inside [from, to]. Events are synthesized from
// the transition timestamps on the envelope rows, filtered by the
// subscription's event list, and handed to the dispatcher. Returns the number
// of events enqueued.
func (s *ConnectService) PublishHistorical(ctx context.Context, accountID, connectID string, from, to time.Time) (int, error) {
	tr := otel.Tracer("services/ConnectService")
	ctx, span := tr.Start(ctx, "PublishHistorical",
		trace.WithAttributes(
			attribute.String("connect.id", connectID),
			attribute.String("from", from.Format(time.RFC3339)),
			attribute.String("to", to.Format(time.RFC3339)),
		),
	)
	defer span.End()

	if to.Before(from) {
		return 0, ErrInvalidDateRange
	}
	cfg, err := s.Get(ctx, accountID, connectID)
	if err != nil {
		return 0, err
	}
	if s.Outbound == nil {
		return 0, nil
	}

	envelopes, err := repo.ListEnvelopesWithEventsBetween(ctx, s.DB, accountID, from, to)
	if err != nil {
		return 0, err
	}

	inRange := func(t *time.Time) bool {
		return t != nil && !t.Before(from) && !t.After(to)
	}
	n := 0
	for _, e := range envelopes {
		if cfg.WantsEvent(domain.EventEnvelopeSent) && inRange(e.SentAt) {
			s.Outbound.EnqueueTo(*cfg, domain.NewEnvelopeSent(accountID, e.ID, e.Subject, *e.SentAt))
			n++
		}
		if cfg.WantsEvent(domain.EventEnvelopeCompleted) && inRange(e.CompletedAt) {
			s.Outbound.EnqueueTo(*cfg, domain.NewEnvelopeCompleted(accountID, e.ID, *e.CompletedAt))
			n++
		}
		if cfg.WantsEvent(domain.EventEnvelopeVoided) && inRange(e.VoidedAt) {
			s.Outbound.EnqueueTo(*cfg, domain.NewEnvelopeVoided(accountID, e.ID, e.VoidedReason, *e.VoidedAt))
			n++
		}
	}
	return n, nil
}

// applyConnectInput validates the input and copies it onto the configuration.
func applyConnectInput(c *domain.ConnectConfiguration, in ConnectInput) error {
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return ErrInvalidConfigURL
	}
	for _, e := range in.Events {
		if !knownEventType(e) {
			return ErrUnknownEventType
		}
	}
	c.Name = strings.TrimSpace(in.Name)
	c.URL = url
	c.Enabled = in.Enabled
	c.Events = strings.Join(in.Events, ",")
	c.IncludeDocuments = in.IncludeDocuments
	c.IncludeVoidReason = in.IncludeVoidReason
	c.SignHMAC = in.SignHMAC
	if in.HMACSecret != "" {
		c.HMACSecret = in.HMACSecret
	}
	if in.RetryCount > 0 {
		c.RetryCount = in.RetryCount
	}
	if in.RetryDelayMinutes > 0 {
		c.RetryDelayMinutes = in.RetryDelayMinutes
	}
	return nil
}

func knownEventType(name string) bool {
	for _, e := range domain.AllEventTypes {
		if e == name {
			return true
		}
	}
	return false
}
