// Package services – Scheduler
//
// The scheduler is the single background ticker of the platform. Each pass it
// sends due reminders, voids overdue envelopes, and purges lapsed lock rows.
// All three are idempotent, so a missed or doubled pass is harmless.

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler periodically runs the platform's time-driven maintenance.
type Scheduler struct {
	Notify    *NotificationService
	Envelopes *EnvelopeService
	Locks     *LockService

	// Interval between passes; zero defaults to one minute.
	Interval time.Duration

	// BatchLimit caps how many envelopes one pass touches.
	BatchLimit int

	Log zerolog.Logger
}

// Run ticks until the context is cancelled. Call it from its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.pass(ctx, now.UTC())
		}
	}
}

// pass runs one maintenance sweep. Errors are logged, never fatal: the next
// tick retries.
func (s *Scheduler) pass(ctx context.Context, now time.Time) {
	if s.Notify != nil {
		if n, err := s.Notify.SendDueReminders(ctx, now, s.BatchLimit); err != nil {
			s.Log.Error().Err(err).Msg("reminder pass failed")
		} else if n > 0 {
			s.Log.Info().Int("count", n).Msg("reminders sent")
		}
	}
	if s.Envelopes != nil {
		if n, err := s.Envelopes.ExpireOverdue(ctx, now, s.BatchLimit); err != nil {
			s.Log.Error().Err(err).Msg("expiration pass failed")
		} else if n > 0 {
			s.Log.Info().Int("count", n).Msg("envelopes expired")
		}
	}
	if s.Locks != nil {
		if n, err := s.Locks.Purge(ctx, now); err != nil {
			s.Log.Error().Err(err).Msg("lock purge failed")
		} else if n > 0 {
			s.Log.Debug().Int64("count", n).Msg("expired locks purged")
		}
	}
}
