package meeting

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a meeting identifier of the form
//
//	20260115143027-a1b2c3d4
//
// The second-granularity timestamp prefix keeps identifiers readable and
// roughly sortable by creation time; the random suffix makes uniqueness a
// property of the generator rather than of timing, so two meetings created
// within the same second never collide.
func NewID(now time.Time) string {
	return now.Format("20060102150405") + "-" + uuid.NewString()[:8]
}
