// Package extract defines the Extractor interface shared by the two
// transcript analysis paths: the deterministic keyword extractor
// (extract/heuristic) and the text-generation-service adapter
// (extract/llmextract).
//
// The three operations are independent: callers may run them sequentially or
// concurrently, and a failure in one does not invalidate the results of the
// others. Error handling policy (what to substitute when an operation fails)
// belongs to the caller, not to implementations.
package extract

import (
	"context"
	"time"

	"github.com/ltausch/minutes/internal/meeting"
)

// Extractor turns raw transcript text into structured meeting artifacts.
//
// Implementations must be safe for concurrent use.
type Extractor interface {
	// Summarize produces a short prose summary of the transcript.
	Summarize(ctx context.Context, transcript string) (string, error)

	// ExtractTasks produces the action items found in the transcript.
	// attendees is the ordered attendee list used for assignee resolution;
	// today anchors relative due-date estimation.
	ExtractTasks(ctx context.Context, transcript string, attendees []string, today time.Time) ([]meeting.Task, error)

	// ExtractDecisions produces the decision statements found in the
	// transcript.
	ExtractDecisions(ctx context.Context, transcript string) ([]string, error)
}

// ISODate is the wire format for calendar dates (ISO-8601, YYYY-MM-DD).
const ISODate = "2006-01-02"
