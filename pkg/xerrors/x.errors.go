package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ParsePGErrorCode extracts the SQLSTATE code from a (possibly wrapped)
// Postgres error, "unknown" for anything else.
func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrNotFound = errors.New("not found")
)

// Store availability. Callers are expected to retry the whole idempotent
// operation, never to resume from partial state.
var (
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// Admission / geofence
var (
	ErrUnknownToken        = errors.New("unknown admission token")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrNoCentersConfigured = errors.New("no exam centers configured")
)

// Session lifecycle
var (
	ErrCandidateRequired  = errors.New("candidate identity required")
	ErrInvariantViolation = errors.New("session invariant violation")
)
