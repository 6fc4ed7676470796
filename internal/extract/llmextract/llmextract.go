// Package llmextract implements transcript extraction by delegating to a
// text-generation service through the llm.Provider abstraction.
//
// Each operation issues exactly one blocking completion request. Prose
// operations (Summarize) return the trimmed response body; structured
// operations (ExtractTasks, ExtractDecisions) ask the model for a bare JSON
// array, strip an optional markdown code fence, and decode against an
// explicit schema with per-field defaults.
//
// Operations return (value, error); the caller decides how a failure is
// rendered. A response that is not valid JSON is NOT an error for the
// structured operations — it decodes to an empty result, because a model
// that answers in prose instead of JSON is an expected degraded outcome.
package llmextract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ltausch/minutes/internal/extract"
	"github.com/ltausch/minutes/internal/meeting"
	"github.com/ltausch/minutes/pkg/provider/llm"
)

// defaultDueDays is the due-date offset applied when the model omits or
// mangles a task's due date.
const defaultDueDays = 7

// extractionTemperature keeps structured outputs close to deterministic.
const extractionTemperature = 0.3

// summarizePrompt asks for a short prose summary. The transcript is appended
// as the user message body.
const summarizePrompt = `Analyze this meeting transcript and provide a concise summary (2-3 sentences) covering the main topics discussed, key points, and overall meeting outcome.

Provide only the summary, no additional formatting or labels.`

// tasksPromptFmt asks for a JSON array of task objects. Verbs are
// deliberately explicit about the output shape; models still wrap the array
// in a ```json fence often enough that stripFence exists.
const tasksPromptFmt = `Analyze this meeting transcript and extract all action items/tasks.

Meeting Transcript:
%s

Attendees: %s
Today's Date: %s

Return a JSON array of tasks. Each task should have:
- "description": clear task description
- "assignee": person responsible (from attendees list, or "Unassigned")
- "due_date": in YYYY-MM-DD format (estimate based on context, default 7 days from today)
- "priority": "High", "Medium", or "Low" based on urgency

Return ONLY valid JSON array, no markdown, no explanation. Example:
[{"description": "Complete report", "assignee": "Alice", "due_date": "2024-01-15", "priority": "High"}]

If no tasks found, return: []`

// decisionsPromptFmt asks for a JSON array of decision strings.
const decisionsPromptFmt = `Analyze this meeting transcript and extract all key decisions that were made.

Meeting Transcript:
%s

Return a JSON array of decision strings. Each decision should be a clear, concise statement.
Return ONLY valid JSON array, no markdown, no explanation. Example:
["Approved Q4 budget", "Decided to use new vendor"]

If no decisions found, return: []`

// DefaultTimeout bounds each completion request unless [WithTimeout]
// overrides it.
const DefaultTimeout = 60 * time.Second

// Option is a functional option for [Adapter].
type Option func(*Adapter)

// WithTimeout bounds each completion request. Zero means [DefaultTimeout].
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// Adapter is the AI extraction path. It is safe for concurrent use when the
// wrapped provider is.
type Adapter struct {
	provider llm.Provider
	timeout  time.Duration
}

// Compile-time interface assertion.
var _ extract.Extractor = (*Adapter)(nil)

// New returns an [Adapter] backed by provider.
func New(provider llm.Provider, opts ...Option) *Adapter {
	a := &Adapter{provider: provider, timeout: DefaultTimeout}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Summarize implements [extract.Extractor]. It returns the trimmed response
// body, or an error when the service call fails.
func (a *Adapter) Summarize(ctx context.Context, transcript string) (string, error) {
	body, err := a.complete(ctx, summarizePrompt, "Meeting Transcript:\n"+transcript)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return body, nil
}

// taskWire is the expected shape of one element of the model's task array.
// Pointers distinguish "absent" from "empty" so defaults apply per-field.
type taskWire struct {
	Description *string `json:"description"`
	Assignee    *string `json:"assignee"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"`
}

// ExtractTasks implements [extract.Extractor].
//
// Schema policy: description is required — elements without one are dropped,
// not guessed. Every other field has a default: assignee "Unassigned" (also
// applied when the named assignee is not on the attendee list), due date
// today+7d (also applied when the date is not YYYY-MM-DD), priority Medium
// (case-insensitive enum match).
//
// A response that fails to decode as a JSON array yields (nil, nil). A
// service failure yields (nil, err).
func (a *Adapter) ExtractTasks(ctx context.Context, transcript string, attendees []string, today time.Time) ([]meeting.Task, error) {
	prompt := fmt.Sprintf(tasksPromptFmt,
		transcript,
		strings.Join(attendees, ", "),
		today.Format(extract.ISODate),
	)

	body, err := a.complete(ctx, "", prompt)
	if err != nil {
		return nil, fmt.Errorf("extract tasks: %w", err)
	}

	var wire []taskWire
	if err := json.Unmarshal([]byte(stripFence(body)), &wire); err != nil {
		return nil, nil
	}

	defaultDue := today.AddDate(0, 0, defaultDueDays).Format(extract.ISODate)
	var tasks []meeting.Task
	for _, w := range wire {
		if w.Description == nil || strings.TrimSpace(*w.Description) == "" {
			continue
		}
		tasks = append(tasks, meeting.Task{
			Description: strings.TrimSpace(*w.Description),
			Assignee:    normalizeAssignee(w.Assignee, attendees),
			DueDate:     normalizeDueDate(w.DueDate, defaultDue),
			Priority:    normalizePriority(w.Priority),
			Status:      meeting.StatusPending,
		})
	}
	return tasks, nil
}

// ExtractDecisions implements [extract.Extractor]. Decode failures yield
// (nil, nil); service failures yield (nil, err). Blank decision strings are
// dropped.
func (a *Adapter) ExtractDecisions(ctx context.Context, transcript string) ([]string, error) {
	body, err := a.complete(ctx, "", fmt.Sprintf(decisionsPromptFmt, transcript))
	if err != nil {
		return nil, fmt.Errorf("extract decisions: %w", err)
	}

	var wire []string
	if err := json.Unmarshal([]byte(stripFence(body)), &wire); err != nil {
		return nil, nil
	}

	var decisions []string
	for _, d := range wire {
		if trimmed := strings.TrimSpace(d); trimmed != "" {
			decisions = append(decisions, trimmed)
		}
	}
	return decisions, nil
}

// complete issues one completion request under the configured timeout and
// returns the trimmed response content.
func (a *Adapter) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: userPrompt},
		},
		Temperature: extractionTemperature,
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("provider returned no response")
	}
	return strings.TrimSpace(resp.Content), nil
}

// stripFence removes an optional leading "```json" fence marker (followed by
// optional whitespace) and an optional trailing "```" marker so the remainder
// can be decoded as JSON. The leading marker is case-sensitive.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "```json"); ok {
		s = strings.TrimLeft(rest, " \t\r\n")
	}
	if rest, ok := strings.CutSuffix(s, "```"); ok {
		s = strings.TrimRight(rest, " \t\r\n")
	}
	return s
}

// normalizeAssignee applies the "Unassigned" default and coerces names that
// are not on the attendee list back to Unassigned rather than inventing an
// assignee.
func normalizeAssignee(assignee *string, attendees []string) string {
	if assignee == nil {
		return meeting.Unassigned
	}
	name := strings.TrimSpace(*assignee)
	if name == "" || name == meeting.Unassigned {
		return meeting.Unassigned
	}
	for _, att := range attendees {
		if strings.EqualFold(att, name) {
			return att
		}
	}
	return meeting.Unassigned
}

// normalizeDueDate validates the wire date against YYYY-MM-DD and falls back
// to the default when absent or malformed.
func normalizeDueDate(due *string, fallback string) string {
	if due == nil {
		return fallback
	}
	d := strings.TrimSpace(*due)
	if _, err := time.Parse(extract.ISODate, d); err != nil {
		return fallback
	}
	return d
}

// normalizePriority matches the priority enum case-insensitively and falls
// back to Medium.
func normalizePriority(priority *string) meeting.Priority {
	if priority == nil {
		return meeting.PriorityMedium
	}
	switch strings.ToLower(strings.TrimSpace(*priority)) {
	case "high":
		return meeting.PriorityHigh
	case "low":
		return meeting.PriorityLow
	case "medium":
		return meeting.PriorityMedium
	default:
		return meeting.PriorityMedium
	}
}
