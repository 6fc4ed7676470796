// Package email renders a processed Meeting into a follow-up email, either
// deterministically from a fixed template or by delegating to the
// text-generation service.
//
// Compose never fails: an AI-mode service error is rendered as an
// explanatory string in place of the email body, matching the degrade policy
// of the rest of the pipeline.
package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ltausch/minutes/internal/meeting"
	"github.com/ltausch/minutes/internal/observe"
	"github.com/ltausch/minutes/pkg/provider/llm"
)

// Mode selects how the email body is produced.
type Mode string

const (
	// ModeAI asks the text-generation service to write the email.
	ModeAI Mode = "ai"

	// ModeTemplate renders the fixed deterministic structure.
	ModeTemplate Mode = "template"
)

// IsValid reports whether m is a recognised mode.
func (m Mode) IsValid() bool {
	return m == ModeAI || m == ModeTemplate
}

// DefaultTimeout bounds the AI-mode completion request unless [WithTimeout]
// overrides it.
const DefaultTimeout = 60 * time.Second

// signature closes every templated email.
const signature = "Best regards,\nMeeting Agent"

// emailPromptFmt instructs the service to produce a five-part follow-up
// email from the meeting's artifacts.
const emailPromptFmt = `Generate a professional follow-up email for this meeting:

Meeting Title: %s
Date: %s
Attendees: %s
Summary: %s
Decisions: %s
Action Items: %s

Create a well-formatted, professional email that:
1. Thanks attendees
2. Summarizes key discussion points
3. Lists decisions made
4. Lists action items with assignees and due dates
5. Ends with a professional closing

Make it concise but comprehensive.`

// Option is a functional option for [Composer].
type Option func(*Composer)

// WithProvider attaches the text-generation service used by [ModeAI].
// Without it, ModeAI falls back to the template.
func WithProvider(p llm.Provider) Option {
	return func(c *Composer) { c.provider = p }
}

// WithTimeout bounds the AI-mode completion request.
// Zero means [DefaultTimeout].
func WithTimeout(d time.Duration) Option {
	return func(c *Composer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMetrics attaches metric instruments. Without it, nothing is recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Composer) { c.metrics = m }
}

// Composer renders follow-up emails. Safe for concurrent use when its
// provider is.
type Composer struct {
	provider llm.Provider
	timeout  time.Duration
	metrics  *observe.Metrics
}

// New creates a [Composer].
func New(opts ...Option) *Composer {
	c := &Composer{timeout: DefaultTimeout}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compose renders m into an email body. An empty mode prefers [ModeAI] when a
// provider is attached. In ModeAI a service failure yields an explanatory
// string rather than an error; [ModeTemplate] cannot fail.
func (c *Composer) Compose(ctx context.Context, m *meeting.Meeting, mode Mode) string {
	ctx, span := observe.StartSpan(ctx, "email.Compose")
	defer span.End()

	if mode != ModeTemplate && c.provider != nil {
		return c.composeAI(ctx, m)
	}
	return ComposeTemplate(m)
}

// composeAI issues one completion request for the email body.
func (c *Composer) composeAI(ctx context.Context, m *meeting.Meeting) string {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "user", Content: buildEmailPrompt(m)},
		},
		Temperature: 0.7,
	})
	failed := err != nil || resp == nil
	c.metrics.RecordExtraction(ctx, "email", "ai", time.Since(start).Seconds(), failed)

	if err != nil {
		observe.Logger(ctx).Warn("email generation failed", "error", err)
		return fmt.Sprintf("Error generating email: %v", err)
	}
	if resp == nil {
		return "Error generating email: provider returned no response"
	}
	return strings.TrimSpace(resp.Content)
}

// buildEmailPrompt embeds the meeting's artifacts into the email prompt.
func buildEmailPrompt(m *meeting.Meeting) string {
	decisions := "None"
	if len(m.Decisions) > 0 {
		var sb strings.Builder
		for _, d := range m.Decisions {
			fmt.Fprintf(&sb, "- %s\n", d)
		}
		decisions = strings.TrimRight(sb.String(), "\n")
	}

	tasks := "None"
	if len(m.Tasks) > 0 {
		var sb strings.Builder
		for _, t := range m.Tasks {
			fmt.Fprintf(&sb, "- %s (Assignee: %s, Due: %s, Priority: %s)\n",
				t.Description, t.Assignee, t.DueDate, t.Priority)
		}
		tasks = strings.TrimRight(sb.String(), "\n")
	}

	return fmt.Sprintf(emailPromptFmt,
		m.Title,
		m.Date,
		strings.Join(m.Attendees, ", "),
		m.Summary,
		decisions,
		tasks,
	)
}

// ComposeTemplate renders the fixed deterministic email structure. Section
// presence and ordering are stable: subject, greeting, SUMMARY, KEY
// DECISIONS (only when decisions exist), ACTION ITEMS (only when tasks
// exist), ATTENDEES, closing. Downstream consumers may parse this output.
func ComposeTemplate(m *meeting.Meeting) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Subject: Meeting Summary - %s (%s)\n\n", m.Title, m.Date)
	sb.WriteString("Hi Team,\n\n")
	sb.WriteString("Thank you for attending today's meeting. Here's a summary of what we discussed:\n\n")

	fmt.Fprintf(&sb, "SUMMARY\n%s\n\n", m.Summary)

	if len(m.Decisions) > 0 {
		sb.WriteString("KEY DECISIONS\n")
		for i, d := range m.Decisions {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, d)
		}
		sb.WriteString("\n")
	}

	if len(m.Tasks) > 0 {
		sb.WriteString("ACTION ITEMS\n")
		for _, t := range m.Tasks {
			fmt.Fprintf(&sb, "  - %s\n", t.Description)
			fmt.Fprintf(&sb, "    Assignee: %s | Due: %s | Priority: %s\n",
				t.Assignee, t.DueDate, t.Priority)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "ATTENDEES\n%s\n\n", strings.Join(m.Attendees, ", "))
	sb.WriteString("Please let me know if I missed anything or if you have any questions.\n\n")
	sb.WriteString(signature)
	sb.WriteString("\n")

	return sb.String()
}
