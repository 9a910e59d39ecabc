package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"exam-service/internal/domain"
	xerrors "exam-service/pkg/xerrors"
)

// Store is the conditional-write contract the lifecycle depends on. Each
// mutation must be atomic at the storage layer; the usecase never does its
// own read-then-write on a timestamp field.
type Store interface {
	StartIfAbsentOrStale(ctx context.Context, candidateID string, now time.Time, duration time.Duration) (time.Time, error)
	SetEndIfUnset(ctx context.Context, candidateID string, now time.Time) (time.Time, error)
	SetCompletionIfUnset(ctx context.Context, candidateID string, seconds int64) (int64, error)
	GetByCandidate(ctx context.Context, candidateID string) (*domain.ExamSession, error)
	UpsertProfile(ctx context.Context, candidateID, fullName, phone, photoURL string) error
}

// Usecase drives the NOT_STARTED -> IN_PROGRESS -> ENDED -> COMPLETED state
// machine. All operations are idempotent: retries and duplicate tabs converge
// on the first successful write.
type Usecase struct {
	store    Store
	duration time.Duration
	clock    func() time.Time
}

func NewUsecase(store Store, duration time.Duration) *Usecase {
	return &Usecase{
		store:    store,
		duration: duration,
		clock:    time.Now,
	}
}

// WithClock overrides the time source.
func (u *Usecase) WithClock(clock func() time.Time) *Usecase {
	u.clock = clock
	return u
}

// Start arms the exam clock for a candidate, or returns the already-armed
// value. A stale abandoned session (window elapsed, no completion) is
// re-armed instead of locking the candidate out.
func (u *Usecase) Start(ctx context.Context, candidateID string) (time.Time, error) {
	if candidateID == "" {
		return time.Time{}, xerrors.ErrCandidateRequired
	}

	startTime, err := u.store.StartIfAbsentOrStale(ctx, candidateID, u.clock(), u.duration)
	if err != nil {
		return time.Time{}, fmt.Errorf("start session for %s: %w", candidateID, err)
	}
	return startTime, nil
}

// End stamps end_time once; repeat calls return the stored value.
func (u *Usecase) End(ctx context.Context, candidateID string) (time.Time, error) {
	if candidateID == "" {
		return time.Time{}, xerrors.ErrCandidateRequired
	}

	endTime, err := u.store.SetEndIfUnset(ctx, candidateID, u.clock())
	if err != nil {
		return time.Time{}, fmt.Errorf("end session for %s: %w", candidateID, err)
	}
	return endTime, nil
}

// Complete derives completion_seconds from the stored start/end pair. Safe to
// call before, after, or concurrently with End: a missing end_time is
// synthesized as now first, and the final value is floor-clamped at zero.
func (u *Usecase) Complete(ctx context.Context, candidateID string) (int64, error) {
	if candidateID == "" {
		return 0, xerrors.ErrCandidateRequired
	}

	rec, err := u.store.GetByCandidate(ctx, candidateID)
	if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return 0, fmt.Errorf("load session for %s: %w", candidateID, err)
	}

	var startTime *time.Time
	var endTime time.Time
	if rec != nil {
		if rec.CompletionSeconds != nil {
			return *rec.CompletionSeconds, nil
		}
		startTime = rec.StartTime
	}

	if rec != nil && rec.EndTime != nil {
		endTime = *rec.EndTime
	} else {
		// End never arrived (or lost the race); stamp it now. The store
		// returns the winning value either way.
		endTime, err = u.store.SetEndIfUnset(ctx, candidateID, u.clock())
		if err != nil {
			return 0, fmt.Errorf("synthesize end for %s: %w", candidateID, err)
		}
	}

	seconds := int64(0)
	if startTime != nil && endTime.After(*startTime) {
		seconds = int64(endTime.Sub(*startTime).Seconds())
	}
	if startTime == nil {
		log.Printf("[WARN] completing session for %s with no start_time, recording 0s", candidateID)
	}

	stored, err := u.store.SetCompletionIfUnset(ctx, candidateID, seconds)
	if err != nil {
		return 0, fmt.Errorf("persist completion for %s: %w", candidateID, err)
	}
	return stored, nil
}

// Get returns the full session record for dashboards.
func (u *Usecase) Get(ctx context.Context, candidateID string) (*domain.ExamSession, error) {
	if candidateID == "" {
		return nil, xerrors.ErrCandidateRequired
	}
	return u.store.GetByCandidate(ctx, candidateID)
}

// RecordProfile copies display fields onto the session row for reporting.
// Not part of the integrity contract; failures only get logged upstream.
func (u *Usecase) RecordProfile(ctx context.Context, candidateID, fullName, phone, photoURL string) error {
	if candidateID == "" {
		return xerrors.ErrCandidateRequired
	}
	return u.store.UpsertProfile(ctx, candidateID, fullName, phone, photoURL)
}
