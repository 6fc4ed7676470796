// Package heuristic implements deterministic, keyword-driven transcript
// extraction. It needs no external service and no I/O: every operation is
// pure string inspection, so the package cannot fail — malformed or empty
// transcripts degrade to empty results.
//
// For a fixed transcript, attendee list, and reference date the output is
// byte-identical across calls.
package heuristic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ltausch/minutes/internal/extract"
	"github.com/ltausch/minutes/internal/meeting"
	"github.com/ltausch/minutes/internal/transcript"
)

// maxDescriptionLen caps heuristic task descriptions.
const maxDescriptionLen = 100

// topicRule maps content keywords to a topic label for the summary.
type topicRule struct {
	label    string
	keywords []string
}

// topicRules are evaluated per line, in order, against the utterance portion.
// A line may contribute several topics.
var topicRules = []topicRule{
	{label: "Project Updates", keywords: []string{"project", "update"}},
	{label: "Timeline Discussion", keywords: []string{"deadline", "timeline"}},
	{label: "Budget Review", keywords: []string{"budget", "cost"}},
	{label: "Blockers & Issues", keywords: []string{"issue", "problem", "blocker"}},
}

// taskTriggers mark a line as containing an action item.
var taskTriggers = []string{
	"will", "need to", "should", "action item", "todo", "task", "follow up", "deadline",
}

// decisionKeywords mark a line as recording a decision.
var decisionKeywords = []string{
	"decided", "agreed", "approved", "confirmed", "will go with", "final decision",
}

var highPriorityWords = []string{"urgent", "asap", "critical"}
var lowPriorityWords = []string{"when possible", "eventually"}

// Extractor is the deterministic extraction path. The zero value is ready to
// use and safe for concurrent use.
type Extractor struct{}

// Compile-time interface assertion.
var _ extract.Extractor = (*Extractor)(nil)

// New returns a new heuristic [Extractor].
func New() *Extractor {
	return &Extractor{}
}

// Summarize implements [extract.Extractor]. It counts discussion points
// (lines) and collects topic labels from lines matching the topic keyword
// sets. Labels are reported in first-match order so the output is stable.
func (e *Extractor) Summarize(_ context.Context, text string) (string, error) {
	lines := transcript.Parse(text)

	var topics []string
	seen := make(map[string]bool, len(topicRules))
	for _, l := range lines {
		if !strings.Contains(l.Raw, ":") {
			continue
		}
		content := strings.ToLower(l.Text)
		for _, rule := range topicRules {
			if seen[rule.label] {
				continue
			}
			if containsAny(content, rule.keywords) {
				seen[rule.label] = true
				topics = append(topics, rule.label)
			}
		}
	}

	summary := fmt.Sprintf("Meeting covered %d discussion points", len(lines))
	if len(topics) > 0 {
		summary += " including: " + strings.Join(topics, ", ") + "."
	}
	return summary, nil
}

// ExtractTasks implements [extract.Extractor]. Each line containing a task
// trigger phrase yields at most one task:
//
//   - assignee: the first attendee (in list order) named anywhere in the
//     line or as the speaker label, else "Unassigned"
//   - priority: High for urgent/asap/critical, Low for "when possible" or
//     "eventually", Medium otherwise
//   - due date: today+1d for "tomorrow", today+5d for "end of week",
//     today+7d otherwise
//   - description: the utterance after the first colon (else the whole
//     line), truncated to 100 characters
func (e *Extractor) ExtractTasks(_ context.Context, text string, attendees []string, today time.Time) ([]meeting.Task, error) {
	var tasks []meeting.Task

	for _, l := range transcript.Parse(text) {
		lower := strings.ToLower(l.Raw)
		if !containsAny(lower, taskTriggers) {
			continue
		}

		tasks = append(tasks, meeting.Task{
			Description: truncate(l.Text, maxDescriptionLen),
			Assignee:    resolveAssignee(l, lower, attendees),
			DueDate:     estimateDueDate(lower, today),
			Priority:    classifyPriority(lower),
			Status:      meeting.StatusPending,
		})
	}

	return tasks, nil
}

// ExtractDecisions implements [extract.Extractor]. Each line containing a
// decision keyword yields the utterance after the first colon (else the
// whole line), trimmed. No deduplication, no truncation.
func (e *Extractor) ExtractDecisions(_ context.Context, text string) ([]string, error) {
	var decisions []string

	for _, l := range transcript.Parse(text) {
		if containsAny(strings.ToLower(l.Raw), decisionKeywords) {
			decisions = append(decisions, l.Text)
		}
	}

	return decisions, nil
}

// resolveAssignee returns the first attendee named in the line, checking both
// the full line text and the speaker label, or [meeting.Unassigned].
func resolveAssignee(l transcript.Line, lower string, attendees []string) string {
	speakerLower := strings.ToLower(l.Speaker)
	for _, att := range attendees {
		attLower := strings.ToLower(att)
		if attLower == "" {
			continue
		}
		if strings.Contains(lower, attLower) || strings.Contains(speakerLower, attLower) {
			return att
		}
	}
	return meeting.Unassigned
}

// classifyPriority maps urgency keywords in the line to a priority.
func classifyPriority(lower string) meeting.Priority {
	switch {
	case containsAny(lower, highPriorityWords):
		return meeting.PriorityHigh
	case containsAny(lower, lowPriorityWords):
		return meeting.PriorityLow
	default:
		return meeting.PriorityMedium
	}
}

// estimateDueDate maps relative-time phrases in the line to a calendar date.
func estimateDueDate(lower string, today time.Time) string {
	days := 7
	switch {
	case strings.Contains(lower, "tomorrow"):
		days = 1
	case strings.Contains(lower, "end of week"):
		days = 5
	}
	return today.AddDate(0, 0, days).Format(extract.ISODate)
}

// containsAny reports whether s contains at least one of the substrings.
func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// truncate limits s to max characters, counting runes so multi-byte text is
// not cut mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
