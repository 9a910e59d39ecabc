package repository

import (
	"context"
	"errors"
	"time"

	"exam-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	xerrors "exam-service/pkg/xerrors"
)

// SessionRepo persists exam sessions keyed by candidate identity.
//
// Every mutation is a single conditional statement executed by Postgres, so
// racing calls for the same candidate converge on one stored value. There is
// no read-modify-write path in here on purpose.
//
// Expected schema:
//
//	CREATE TABLE exam_sessions (
//	    candidate_id       TEXT PRIMARY KEY,
//	    full_name          TEXT,
//	    phone              TEXT,
//	    photo_url          TEXT,
//	    start_time         TIMESTAMPTZ,
//	    end_time           TIMESTAMPTZ,
//	    completion_seconds BIGINT,
//	    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type SessionRepo struct {
	db *pgxpool.Pool
}

func NewSessionRepo(db *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{db: db}
}

// StartIfAbsentOrStale arms start_time exactly once per genuine attempt. The
// write fires only when no start exists, or when the previous start is older
// than the exam duration with no completion recorded (abandoned session).
// Only the stale re-arm clears a leftover end_time, so the fresh attempt is
// not born already ended; a first start against a bare end-only row keeps
// the end_time already recorded. Returns the stored start_time, whoever
// wrote it.
func (r *SessionRepo) StartIfAbsentOrStale(ctx context.Context, candidateID string, now time.Time, duration time.Duration) (time.Time, error) {
	var startTime time.Time

	err := r.db.QueryRow(ctx, `
		INSERT INTO exam_sessions (candidate_id, start_time, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (candidate_id) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    end_time   = CASE WHEN exam_sessions.start_time IS NULL
		                      THEN exam_sessions.end_time
		                      ELSE NULL END,
		    updated_at = NOW()
		WHERE exam_sessions.start_time IS NULL
		   OR (exam_sessions.completion_seconds IS NULL
		       AND exam_sessions.start_time < EXCLUDED.start_time - make_interval(secs => $3))
		RETURNING start_time
	`, candidateID, now, duration.Seconds()).Scan(&startTime)

	if err == nil {
		return startTime, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, err
	}

	// Conditional write did not fire: a live session already holds the
	// clock. Return its start_time unchanged.
	err = r.db.QueryRow(ctx, `
		SELECT start_time FROM exam_sessions WHERE candidate_id = $1
	`, candidateID).Scan(&startTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, xerrors.ErrInvariantViolation
		}
		return time.Time{}, err
	}
	return startTime, nil
}

// SetEndIfUnset stamps end_time once; later calls read back the first value.
// Tolerates a missing row by creating one with only end_time populated,
// reconciled later by the completion pass.
func (r *SessionRepo) SetEndIfUnset(ctx context.Context, candidateID string, now time.Time) (time.Time, error) {
	var endTime time.Time

	err := r.db.QueryRow(ctx, `
		INSERT INTO exam_sessions (candidate_id, end_time, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (candidate_id) DO UPDATE
		SET end_time   = COALESCE(exam_sessions.end_time, EXCLUDED.end_time),
		    updated_at = NOW()
		RETURNING end_time
	`, candidateID, now).Scan(&endTime)
	if err != nil {
		return time.Time{}, err
	}
	return endTime, nil
}

// SetCompletionIfUnset stores the derived duration once; first write wins.
func (r *SessionRepo) SetCompletionIfUnset(ctx context.Context, candidateID string, seconds int64) (int64, error) {
	var stored int64

	err := r.db.QueryRow(ctx, `
		INSERT INTO exam_sessions (candidate_id, completion_seconds, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (candidate_id) DO UPDATE
		SET completion_seconds = COALESCE(exam_sessions.completion_seconds, EXCLUDED.completion_seconds),
		    updated_at         = NOW()
		RETURNING completion_seconds
	`, candidateID, seconds).Scan(&stored)
	if err != nil {
		return 0, err
	}
	return stored, nil
}

// GetByCandidate fetches the full session record.
func (r *SessionRepo) GetByCandidate(ctx context.Context, candidateID string) (*domain.ExamSession, error) {
	var s domain.ExamSession
	err := r.db.QueryRow(ctx, `
		SELECT candidate_id, full_name, phone, photo_url,
		       start_time, end_time, completion_seconds,
		       created_at, updated_at
		FROM exam_sessions
		WHERE candidate_id = $1
	`, candidateID).Scan(
		&s.CandidateID,
		&s.FullName,
		&s.Phone,
		&s.PhotoURL,
		&s.StartTime,
		&s.EndTime,
		&s.CompletionSeconds,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// UpsertProfile copies denormalized display fields from the candidate
// profile. Empty values never blank out what is already stored.
func (r *SessionRepo) UpsertProfile(ctx context.Context, candidateID, fullName, phone, photoURL string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO exam_sessions (candidate_id, full_name, phone, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (candidate_id) DO UPDATE
		SET full_name  = COALESCE(NULLIF(EXCLUDED.full_name, ''), exam_sessions.full_name),
		    phone      = COALESCE(NULLIF(EXCLUDED.phone, ''), exam_sessions.phone),
		    photo_url  = COALESCE(NULLIF(EXCLUDED.photo_url, ''), exam_sessions.photo_url),
		    updated_at = NOW()
	`, candidateID, fullName, phone, photoURL)
	return err
}
