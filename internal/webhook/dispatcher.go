// Package webhook – Dispatcher
//
// The dispatcher consumes lifecycle events from the bus, fans each one out to
// the enabled subscriptions whose filter matches, and POSTs JSON payloads
// from a fixed-size worker pool. Every attempt is recorded as an append-only
// log row. Failed deliveries get one pending failure row per
// (subscription, envelope, event) triple; a periodic poll retries due rows at
// the subscription's fixed delay until the attempt cap is reached, after
// which the row is kept as "exhausted" for operator requeueing.

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
	"github.com/tbourn/go-esign-backend/internal/repo"
)

var deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "esign_webhook_deliveries_total",
	Help: "Webhook delivery attempts by outcome.",
}, []string{"outcome"})

// delivery is one (subscription, event) unit of work.
type delivery struct {
	cfg        domain.ConnectConfiguration
	eventType  string
	accountID  string
	envelopeID string
	at         time.Time
}

// Dispatcher owns outbound webhook delivery and its retry bookkeeping.
type Dispatcher struct {
	DB     *gorm.DB
	Client *http.Client
	Log    zerolog.Logger

	// Workers is the POST worker pool size; zero defaults to 4.
	Workers int

	// QueueSize bounds pending deliveries; zero defaults to 256. A full
	// queue drops the delivery, which the retry poll then picks up only if
	// a failure row already exists, so sizing generously matters more here
	// than on the event bus.
	QueueSize int

	// Defaults applied when a subscription carries zero retry settings.
	DefaultRetryCount int
	DefaultRetryDelay time.Duration

	// PollInterval is the due-failure scan period; zero defaults to 30s.
	PollInterval time.Duration

	once  sync.Once
	queue chan delivery
}

// ensureQueue makes the queue usable from both Publish-side callers and Run,
// whichever touches the dispatcher first.
func (d *Dispatcher) ensureQueue() {
	d.once.Do(func() {
		size := d.QueueSize
		if size <= 0 {
			size = 256
		}
		d.queue = make(chan delivery, size)
	})
}

// HandleEvent fans one bus event out to every matching subscription.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev domain.Event) {
	cfgs, err := repo.ListEnabledConfigurations(ctx, d.DB, ev.EventAccountID())
	if err != nil {
		d.Log.Error().Err(err).Str("account_id", ev.EventAccountID()).Msg("listing subscriptions failed")
		return
	}
	for _, cfg := range cfgs {
		if !cfg.WantsEvent(ev.EventType()) {
			continue
		}
		d.EnqueueTo(cfg, ev)
	}
}

// EnqueueTo queues one event for one specific subscription.
func (d *Dispatcher) EnqueueTo(cfg domain.ConnectConfiguration, ev domain.Event) {
	d.enqueue(delivery{
		cfg:        cfg,
		eventType:  ev.EventType(),
		accountID:  ev.EventAccountID(),
		envelopeID: ev.EventEnvelopeID(),
		at:         ev.OccurredAt(),
	})
}

func (d *Dispatcher) enqueue(w delivery) {
	d.ensureQueue()
	select {
	case d.queue <- w:
	default:
		d.Log.Warn().
			Str("connect_id", w.cfg.ID).
			Str("event_type", w.eventType).
			Msg("delivery queue full, delivery dropped")
	}
}

// Run starts the worker pool and the due-failure poll, blocking until the
// context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.ensureQueue()
	workers := d.Workers
	if workers <= 0 {
		workers = 4
	}
	for i := 0; i < workers; i++ {
		go d.worker(ctx)
	}

	interval := d.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			d.retryDue(ctx, now.UTC())
		}
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case w := <-d.queue:
			d.deliver(ctx, w)
		}
	}
}

// retryDue re-attempts every failure whose next attempt has come due.
func (d *Dispatcher) retryDue(ctx context.Context, now time.Time) {
	due, err := repo.ListDueFailures(ctx, d.DB, now, 100)
	if err != nil {
		d.Log.Error().Err(err).Msg("due-failure scan failed")
		return
	}
	for _, f := range due {
		cfg, err := repo.GetConnectConfigurationByID(ctx, d.DB, f.ConnectID)
		if errors.Is(err, repo.ErrNotFound) {
			// Subscription deleted; its pending failures go with it.
			if err := repo.DeleteConnectFailure(ctx, d.DB, f.ID); err != nil {
				d.Log.Error().Err(err).Str("failure_id", f.ID).Msg("orphan failure cleanup failed")
			}
			continue
		}
		if err != nil {
			d.Log.Error().Err(err).Str("connect_id", f.ConnectID).Msg("loading subscription failed")
			continue
		}
		// Push the row's schedule forward before enqueueing so the next poll
		// tick cannot pick it up again while the delivery is still queued.
		// The delivery outcome then reschedules or settles the row.
		next := now.Add(d.retryDelay(cfg))
		f.NextAttemptAt = &next
		if err := repo.SaveConnectFailure(ctx, d.DB, &f); err != nil {
			d.Log.Error().Err(err).Str("failure_id", f.ID).Msg("failure reschedule failed")
			continue
		}
		d.enqueue(delivery{
			cfg:        *cfg,
			eventType:  f.EventType,
			accountID:  f.AccountID,
			envelopeID: f.EnvelopeID,
			at:         now,
		})
	}
}

// retryDelay resolves a subscription's fixed retry delay, falling back to the
// dispatcher default and finally to 15 minutes.
func (d *Dispatcher) retryDelay(cfg *domain.ConnectConfiguration) time.Duration {
	delay := time.Duration(cfg.RetryDelayMinutes) * time.Minute
	if delay <= 0 {
		delay = d.DefaultRetryDelay
	}
	if delay <= 0 {
		delay = 15 * time.Minute
	}
	return delay
}

// deliver POSTs one payload and records the outcome.
func (d *Dispatcher) deliver(ctx context.Context, w delivery) {
	status, err := d.post(ctx, w)
	if err == nil && status >= 200 && status < 300 {
		deliveries.WithLabelValues("success").Inc()
		d.recordSuccess(ctx, w, status)
		return
	}

	deliveries.WithLabelValues("failure").Inc()
	msg := fmt.Sprintf("http status %d", status)
	if err != nil {
		msg = err.Error()
	}
	d.recordFailure(ctx, w, status, msg)
}

func (d *Dispatcher) post(ctx context.Context, w delivery) (int, error) {
	p, err := BuildPayload(ctx, d.DB, &w.cfg, w.eventType, w.envelopeID, w.at)
	if err != nil {
		return 0, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return 0, err
	}
	// The signature is computed over the unsigned body, then carried both as
	// the hmac_signature payload key and the X-Hmac-Signature header.
	var sig string
	if w.cfg.SignHMAC && w.cfg.HMACSecret != "" {
		sig = Sign(body, w.cfg.HMACSecret)
		p.HMACSignature = sig
		if body, err = json.Marshal(p); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEventID, uuid.NewString())
	req.Header.Set(HeaderEventType, w.eventType)
	if sig != "" {
		req.Header.Set(HeaderSignature, sig)
	}

	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (d *Dispatcher) recordSuccess(ctx context.Context, w delivery, status int) {
	if err := repo.AppendConnectLog(ctx, d.DB, &domain.ConnectLog{
		ConnectID:  w.cfg.ID,
		AccountID:  w.accountID,
		EnvelopeID: w.envelopeID,
		EventType:  w.eventType,
		Success:    true,
		StatusCode: status,
	}); err != nil {
		d.Log.Error().Err(err).Msg("delivery log write failed")
	}

	// A success settles any pending failure for the triple.
	f, err := repo.GetConnectFailure(ctx, d.DB, w.cfg.ID, w.envelopeID, w.eventType)
	if errors.Is(err, repo.ErrNotFound) {
		return
	}
	if err != nil {
		d.Log.Error().Err(err).Msg("failure lookup failed")
		return
	}
	if err := repo.DeleteConnectFailure(ctx, d.DB, f.ID); err != nil {
		d.Log.Error().Err(err).Str("failure_id", f.ID).Msg("failure cleanup failed")
	}
}

func (d *Dispatcher) recordFailure(ctx context.Context, w delivery, status int, msg string) {
	d.Log.Warn().
		Str("connect_id", w.cfg.ID).
		Str("envelope_id", w.envelopeID).
		Str("event_type", w.eventType).
		Int("status", status).
		Msg("webhook delivery failed")

	if err := repo.AppendConnectLog(ctx, d.DB, &domain.ConnectLog{
		ConnectID:  w.cfg.ID,
		AccountID:  w.accountID,
		EnvelopeID: w.envelopeID,
		EventType:  w.eventType,
		Success:    false,
		StatusCode: status,
		Error:      clip(msg, 512),
	}); err != nil {
		d.Log.Error().Err(err).Msg("delivery log write failed")
	}

	now := time.Now().UTC()
	maxAttempts := w.cfg.RetryCount
	if maxAttempts <= 0 {
		maxAttempts = d.DefaultRetryCount
	}
	delay := d.retryDelay(&w.cfg)

	f, err := repo.GetConnectFailure(ctx, d.DB, w.cfg.ID, w.envelopeID, w.eventType)
	if errors.Is(err, repo.ErrNotFound) {
		next := now.Add(delay)
		f = &domain.ConnectFailure{
			ConnectID:     w.cfg.ID,
			AccountID:     w.accountID,
			EnvelopeID:    w.envelopeID,
			EventType:     w.eventType,
			RetryCount:    1,
			LastStatus:    status,
			LastError:     clip(msg, 512),
			NextAttemptAt: &next,
		}
		if f.RetryCount >= maxAttempts {
			f.Status = domain.ConnectFailureStatusExhausted
			f.NextAttemptAt = nil
		}
		if cerr := repo.CreateConnectFailure(ctx, d.DB, f); cerr != nil && !errors.Is(cerr, repo.ErrDuplicate) {
			d.Log.Error().Err(cerr).Msg("failure record write failed")
		}
		return
	}
	if err != nil {
		d.Log.Error().Err(err).Msg("failure lookup failed")
		return
	}

	f.RetryCount++
	f.LastStatus = status
	f.LastError = clip(msg, 512)
	if f.RetryCount >= maxAttempts {
		f.Status = domain.ConnectFailureStatusExhausted
		f.NextAttemptAt = nil
	} else {
		next := now.Add(delay)
		f.Status = domain.ConnectFailureStatusRetrying
		f.NextAttemptAt = &next
	}
	if err := repo.SaveConnectFailure(ctx, d.DB, f); err != nil {
		d.Log.Error().Err(err).Msg("failure record update failed")
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
