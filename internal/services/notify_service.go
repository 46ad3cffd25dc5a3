// Package services – NotificationService
//
// This file implements NotificationService, which derives reminder due-times
// for in-flight envelopes and hands due reminders to a Mailer. Reminder
// schedules follow the per-envelope settings (delay before the first
// reminder, frequency between repeats) with platform defaults applied when an
// envelope carries none. Delivery is best-effort: a Mailer error skips the
// envelope and the next scheduler pass tries again.

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
	"github.com/tbourn/go-esign-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mailer delivers one reminder email to a pending recipient.
type Mailer interface {
	SendReminder(ctx context.Context, e domain.Envelope, r domain.Recipient) error
}

// NotificationService computes reminder schedules and dispatches due ones.
type NotificationService struct {
	DB     *gorm.DB
	Mailer Mailer

	// Platform defaults (days), applied when the envelope setting is zero.
	DefaultDelayDays     int
	DefaultFrequencyDays int

	// Locale used for subject casing in reminder mail.
	Locale language.Tag
}

// NextReminderAt returns when the envelope's next reminder is due, given the
// current instant. The first reminder is due DelayDays after sending;
// subsequent ones FrequencyDays after the last. Returns false when the
// envelope never reminds (not sent, or frequency disabled after the first).
func (s *NotificationService) NextReminderAt(e *domain.Envelope, now time.Time) (time.Time, bool) {
	if e.SentAt == nil {
		return time.Time{}, false
	}
	delay := e.ReminderDelayDays
	if delay <= 0 {
		delay = s.DefaultDelayDays
	}
	freq := e.ReminderFrequencyDays
	if freq <= 0 {
		freq = s.DefaultFrequencyDays
	}

	if e.LastReminderAt == nil {
		if delay <= 0 {
			return time.Time{}, false
		}
		return e.SentAt.AddDate(0, 0, delay), true
	}
	if freq <= 0 {
		return time.Time{}, false
	}
	return e.LastReminderAt.AddDate(0, 0, freq), true
}

// SendDueReminders mails every pending recipient of every envelope whose
// reminder is due, then stamps the envelope so the frequency interval
// restarts. Returns the number of reminders sent.
func (s *NotificationService) SendDueReminders(ctx context.Context, now time.Time, limit int) (int, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "SendDueReminders")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}
	envelopes, err := repo.ListInFlightEnvelopes(ctx, s.DB, limit)
	if err != nil {
		return 0, err
	}

	log := zerolog.Ctx(ctx)
	sent := 0
	for i := range envelopes {
		e := envelopes[i]
		due, ok := s.NextReminderAt(&e, now)
		if !ok || due.After(now) {
			continue
		}

		recips, err := repo.ListRecipients(ctx, s.DB, e.ID)
		if err != nil {
			return sent, err
		}
		mailed := 0
		for _, r := range recips {
			if r.Status != domain.RecipientStatusSent && r.Status != domain.RecipientStatusDelivered {
				continue
			}
			if s.Mailer != nil {
				if err := s.Mailer.SendReminder(ctx, e, r); err != nil {
					log.Warn().Err(err).
						Str("envelope_id", e.ID).
						Str("recipient_id", r.ID).
						Msg("reminder delivery failed")
					continue
				}
			}
			mailed++
		}
		if mailed == 0 {
			continue
		}
		if err := s.DB.WithContext(ctx).Model(&domain.Envelope{}).
			Where("id = ?", e.ID).
			Update("last_reminder_at", &now).Error; err != nil {
			return sent, err
		}
		sent += mailed
	}
	span.SetAttributes(attribute.Int("reminders.sent", sent))
	return sent, nil
}

// LogMailer is the default Mailer: it records the reminder in the structured
// log instead of sending mail. Real SMTP delivery sits behind the same
// interface.
type LogMailer struct {
	Log    zerolog.Logger
	Locale language.Tag
}

// SendReminder logs the reminder that would have been mailed.
func (m *LogMailer) SendReminder(_ context.Context, e domain.Envelope, r domain.Recipient) error {
	subject := e.Subject
	if subject == "" {
		subject = "signature requested"
	}
	locale := m.Locale
	if locale == language.Und {
		locale = language.English
	}
	m.Log.Info().
		Str("envelope_id", e.ID).
		Str("recipient_id", r.ID).
		Str("email", r.Email).
		Str("subject", "Reminder: "+cases.Title(locale).String(subject)).
		Msg("reminder email queued")
	return nil
}
