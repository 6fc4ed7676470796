// Package meeting defines the core records of the transcript analysis
// pipeline — [Task] and [Meeting] — together with the [Store] that holds
// committed meetings for the lifetime of a session.
package meeting

import "time"

// Unassigned is the sentinel assignee used when no attendee could be matched
// to an action item.
const Unassigned = "Unassigned"

// Priority classifies the urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// IsValid reports whether p is a recognised priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// TaskStatus tracks the lifecycle of a task. Extraction always produces
// [StatusPending]; later states are set by whoever works the task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "Pending"
	StatusDone      TaskStatus = "Done"
	StatusCancelled TaskStatus = "Cancelled"
)

// Task is one action item extracted from a transcript.
type Task struct {
	// Description is free text describing the work. The heuristic path
	// truncates it to 100 characters; the AI path does not.
	Description string `json:"description"`

	// Assignee names the responsible attendee, or [Unassigned].
	Assignee string `json:"assignee"`

	// DueDate is an ISO-8601 calendar date (YYYY-MM-DD).
	DueDate string `json:"due_date"`

	// Priority is High, Medium, or Low.
	Priority Priority `json:"priority"`

	// Status starts as Pending and is never mutated by extraction.
	Status TaskStatus `json:"status"`
}

// Meeting is one meeting session: its metadata, the raw transcript, and the
// artifacts extraction produced from it.
type Meeting struct {
	// ID uniquely identifies the meeting. Generated by [NewID].
	ID string `json:"id"`

	Title string `json:"title"`

	// Date is an ISO-8601 calendar date (YYYY-MM-DD).
	Date string `json:"date"`

	// Duration is the meeting length in minutes.
	Duration int `json:"duration"`

	// Attendees is the ordered attendee list. Order matters for assignee
	// resolution; uniqueness is not enforced.
	Attendees []string `json:"attendees"`

	// Transcript is the raw line-oriented input text.
	Transcript string `json:"transcript"`

	// Summary is empty until the meeting has been processed.
	Summary string `json:"summary"`

	// Tasks is empty until the meeting has been processed.
	Tasks []Task `json:"tasks"`

	// ActionItems is reserved. No extractor populates it; it stays in the
	// wire shape for forward compatibility.
	ActionItems []Task `json:"action_items"`

	// Decisions is empty until the meeting has been processed.
	Decisions []string `json:"decisions"`
}

// New creates a Meeting with a fresh ID and empty extraction artifacts.
// now supplies the creation timestamp embedded in the ID.
func New(title, date string, duration int, attendees []string, now time.Time) *Meeting {
	return &Meeting{
		ID:        NewID(now),
		Title:     title,
		Date:      date,
		Duration:  duration,
		Attendees: attendees,
	}
}

// Processed reports whether extraction has run on this meeting.
func (m *Meeting) Processed() bool {
	return m.Summary != ""
}
