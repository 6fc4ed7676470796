package meeting

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no meeting with the requested ID exists.
var ErrNotFound = errors.New("meeting not found")

// Store holds committed meetings for a session and tracks the single
// "currently open" meeting independently of what has been committed.
//
// All implementations must be safe for concurrent use.
type Store interface {
	// Upsert commits m. An existing meeting with the same ID is replaced and
	// the meeting moves to the end of the list, matching a re-save; otherwise
	// m is appended.
	Upsert(ctx context.Context, m Meeting) error

	// Get retrieves a committed meeting by ID.
	// Returns [ErrNotFound] when no meeting with that ID exists.
	Get(ctx context.Context, id string) (Meeting, error)

	// List returns all committed meetings in insertion order. Callers wanting
	// recency-first must reverse the result.
	List(ctx context.Context) ([]Meeting, error)

	// Active returns the currently open meeting, or nil when none is open.
	Active() *Meeting

	// SetActive marks m as the currently open meeting. Pass nil to clear.
	SetActive(m *Meeting)
}
