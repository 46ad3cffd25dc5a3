// Package services – LockService
//
// This file implements LockService, which arbitrates exclusive edit locks on
// envelopes and templates. A lock is a row with a unique (resource_type,
// resource_id) key, a holder token, and an absolute expiry instant. Expiry is
// lazy: an expired row counts as absent for every operation, whether or not
// it has been purged yet. The unique index is what makes acquisition atomic;
// two concurrent acquires race on the insert and exactly one wins.

package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
	"github.com/tbourn/go-esign-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LockService manages edit locks with bounded durations and lazy expiry.
type LockService struct {
	DB *gorm.DB

	// Duration bounds. Requests outside [MinDuration, MaxDuration] are
	// rejected; a zero request takes DefaultDuration.
	MinDuration     time.Duration
	MaxDuration     time.Duration
	DefaultDuration time.Duration
}

// Acquire takes an exclusive lock on a resource for the requested duration.
// A lapsed lock row left by a previous holder never blocks acquisition.
// Returns ErrAlreadyLocked while another holder's lock is unexpired.
func (s *LockService) Acquire(ctx context.Context, resourceType, resourceID, lockedBy string, d time.Duration) (*domain.EnvelopeLock, error) {
	tr := otel.Tracer("services/LockService")
	ctx, span := tr.Start(ctx, "Acquire",
		trace.WithAttributes(
			attribute.String("lock.resource_type", resourceType),
			attribute.String("lock.resource_id", resourceID),
		),
	)
	defer span.End()

	d, err := s.boundedDuration(d)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := repo.DeleteExpiredLock(ctx, s.DB, resourceType, resourceID, now); err != nil {
		return nil, err
	}

	l := &domain.EnvelopeLock{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		LockedBy:     lockedBy,
		LockedUntil:  now.Add(d),
	}
	err = repo.CreateLock(ctx, s.DB, l)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrAlreadyLocked
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Extend pushes out the expiry of a held lock. Only the holder (proved by the
// token) can extend; an expired lock cannot be extended, it must be
// re-acquired.
func (s *LockService) Extend(ctx context.Context, resourceType, resourceID, token string, d time.Duration) (*domain.EnvelopeLock, error) {
	tr := otel.Tracer("services/LockService")
	ctx, span := tr.Start(ctx, "Extend",
		trace.WithAttributes(
			attribute.String("lock.resource_type", resourceType),
			attribute.String("lock.resource_id", resourceID),
		),
	)
	defer span.End()

	d, err := s.boundedDuration(d)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l, err := repo.GetLock(ctx, s.DB, resourceType, resourceID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrLockNotFound
	}
	if err != nil {
		return nil, err
	}
	if l.ExpiredAt(now) || l.Token != token {
		// A mismatched token looks identical to no lock; holders are not
		// told who else holds the resource.
		return nil, ErrLockNotFound
	}

	until := now.Add(d)
	if err := repo.ExtendLock(ctx, s.DB, resourceType, resourceID, token, until); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrLockNotFound
		}
		return nil, err
	}
	l.LockedUntil = until
	return l, nil
}

// Release drops the lock matching the holder token. Releasing a lock that no
// longer exists (expired and purged, or already released) is a no-op.
func (s *LockService) Release(ctx context.Context, resourceType, resourceID, token string) error {
	tr := otel.Tracer("services/LockService")
	ctx, span := tr.Start(ctx, "Release",
		trace.WithAttributes(
			attribute.String("lock.resource_type", resourceType),
			attribute.String("lock.resource_id", resourceID),
		),
	)
	defer span.End()

	_, err := repo.DeleteLock(ctx, s.DB, resourceType, resourceID, token)
	return err
}

// Status returns the current unexpired lock on a resource, or ErrLockNotFound
// when the resource is free (including when only a lapsed row remains).
func (s *LockService) Status(ctx context.Context, resourceType, resourceID string) (*domain.EnvelopeLock, error) {
	tr := otel.Tracer("services/LockService")
	ctx, span := tr.Start(ctx, "Status",
		trace.WithAttributes(
			attribute.String("lock.resource_type", resourceType),
			attribute.String("lock.resource_id", resourceID),
		),
	)
	defer span.End()

	l, err := repo.GetLock(ctx, s.DB, resourceType, resourceID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrLockNotFound
	}
	if err != nil {
		return nil, err
	}
	if l.ExpiredAt(time.Now().UTC()) {
		return nil, ErrLockNotFound
	}
	return l, nil
}

// Purge removes every lapsed lock row. Correctness never depends on purging;
// the scheduler calls this periodically to bound table growth.
func (s *LockService) Purge(ctx context.Context, now time.Time) (int64, error) {
	tr := otel.Tracer("services/LockService")
	ctx, span := tr.Start(ctx, "Purge")
	defer span.End()

	return repo.PurgeExpiredLocks(ctx, s.DB, now)
}

// boundedDuration applies the default for zero requests and rejects requests
// outside the configured bounds.
func (s *LockService) boundedDuration(d time.Duration) (time.Duration, error) {
	if d == 0 {
		if s.DefaultDuration > 0 {
			return s.DefaultDuration, nil
		}
		d = s.MinDuration
	}
	if d < s.MinDuration || (s.MaxDuration > 0 && d > s.MaxDuration) {
		return 0, ErrInvalidLockDuration
	}
	return d, nil
}
