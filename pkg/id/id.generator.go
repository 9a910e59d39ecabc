package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a prefixed, lexicographically sortable identifier,
// e.g. "adt_01J8ZQ4R9W2K5S8XKQ3V7T1N6M" for audit trail rows.
func New(prefix string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	return prefix + "_" + id.String()
}
