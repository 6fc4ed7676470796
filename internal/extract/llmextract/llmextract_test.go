package llmextract_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ltausch/minutes/internal/extract/llmextract"
	"github.com/ltausch/minutes/internal/meeting"
	"github.com/ltausch/minutes/pkg/provider/llm"
	"github.com/ltausch/minutes/pkg/provider/llm/mock"
)

var today = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func respond(content string) *mock.Provider {
	return &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: content},
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("returns trimmed body", func(t *testing.T) {
		p := respond("  The team aligned on Q2 goals.  \n")
		a := llmextract.New(p)

		got, err := a.Summarize(context.Background(), "Alice: hello")
		if err != nil {
			t.Fatalf("Summarize returned error: %v", err)
		}
		if got != "The team aligned on Q2 goals." {
			t.Errorf("Summarize=%q, want trimmed content", got)
		}

		calls := p.Calls()
		if len(calls) != 1 {
			t.Fatalf("got %d provider calls, want 1", len(calls))
		}
		if !strings.Contains(calls[0].Req.Messages[0].Content, "Alice: hello") {
			t.Error("transcript missing from the user message")
		}
	})

	t.Run("propagates service failure", func(t *testing.T) {
		boom := errors.New("rate limited")
		a := llmextract.New(&mock.Provider{CompleteErr: boom})

		_, err := a.Summarize(context.Background(), "x")
		if !errors.Is(err, boom) {
			t.Fatalf("Summarize error=%v, want wrapped %v", err, boom)
		}
	})
}

func TestExtractTasks(t *testing.T) {
	t.Parallel()
	attendees := []string{"Alice", "Bob"}

	t.Run("well-formed response", func(t *testing.T) {
		a := llmextract.New(respond(`[{"description": "Ship the report", "assignee": "Bob", "due_date": "2026-03-10", "priority": "High"}]`))

		tasks, err := a.ExtractTasks(context.Background(), "t", attendees, today)
		if err != nil {
			t.Fatalf("ExtractTasks returned error: %v", err)
		}
		want := []meeting.Task{{
			Description: "Ship the report",
			Assignee:    "Bob",
			DueDate:     "2026-03-10",
			Priority:    meeting.PriorityHigh,
			Status:      meeting.StatusPending,
		}}
		if !reflect.DeepEqual(tasks, want) {
			t.Errorf("tasks=%+v, want %+v", tasks, want)
		}
	})

	t.Run("fenced response", func(t *testing.T) {
		a := llmextract.New(respond("```json\n[{\"description\": \"Review PR\"}]\n```"))

		tasks, err := a.ExtractTasks(context.Background(), "t", attendees, today)
		if err != nil {
			t.Fatalf("ExtractTasks returned error: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Description != "Review PR" {
			t.Fatalf("tasks=%+v, want one Review PR task", tasks)
		}
	})

	t.Run("field defaults", func(t *testing.T) {
		a := llmextract.New(respond(`[{"description": "Do the thing"}]`))

		tasks, err := a.ExtractTasks(context.Background(), "t", attendees, today)
		if err != nil {
			t.Fatalf("ExtractTasks returned error: %v", err)
		}
		if len(tasks) != 1 {
			t.Fatalf("got %d tasks, want 1", len(tasks))
		}
		got := tasks[0]
		if got.Assignee != meeting.Unassigned {
			t.Errorf("Assignee=%q, want %q", got.Assignee, meeting.Unassigned)
		}
		if got.DueDate != "2026-03-09" {
			t.Errorf("DueDate=%q, want today+7d", got.DueDate)
		}
		if got.Priority != meeting.PriorityMedium {
			t.Errorf("Priority=%q, want Medium", got.Priority)
		}
	})

	t.Run("unknown assignee coerced to Unassigned", func(t *testing.T) {
		a := llmextract.New(respond(`[{"description": "d", "assignee": "Mallory"}]`))

		tasks, err := a.ExtractTasks(context.Background(), "t", attendees, today)
		if err != nil {
			t.Fatalf("ExtractTasks returned error: %v", err)
		}
		if tasks[0].Assignee != meeting.Unassigned {
			t.Errorf("Assignee=%q, want %q", tasks[0].Assignee, meeting.Unassigned)
		}
	})

	t.Run("assignee matched case-insensitively", func(t *testing.T) {
		a := llmextract.New(respond(`[{"description": "d", "assignee": "alice"}]`))

		tasks, err := a.ExtractTasks(context.Background(), "t", attendees, today)
		if err != nil {
			t.Fatalf("ExtractTasks returned error: %v", err)
		}
		if tasks[0].Assignee != "Alice" {
			t.Errorf("Assignee=%q, want canonical %q", tasks[0].Assignee, "Alice")
		}
	})

	t.Run("malformed due date falls back", func(t *testing.T) {
		a := llmextract.New(respond(`[{"description": "d", "due_date": "next Tuesday"}]`))

		tasks, err := a.ExtractTasks(context.Background(), "t", attendees, today)
		if err != nil {
			t.Fatalf("ExtractTasks returned error: %v", err)
		}
		if tasks[0].DueDate != "2026-03-09" {
			t.Errorf("DueDate=%q, want today+7d", tasks[0].DueDate)
		}
	})

	t.Run("priority matched case-insensitively", func(t *testing.T) {
		a := llmextract.New(respond(`[{"description": "d", "priority": "LOW"}]`))

		tasks, err := a.ExtractTasks(context.Background(), "t", attendees, today)
		if err != nil {
			t.Fatalf("ExtractTasks returned error: %v", err)
		}
		if tasks[0].Priority != meeting.PriorityLow {
			t.Errorf("Priority=%q, want Low", tasks[0].Priority)
		}
	})

	t.Run("element without description dropped", func(t *testing.T) {
		a := llmextract.New(respond(`[{"assignee": "Alice"}, {"description": "keep me"}]`))

		tasks, err := a.ExtractTasks(context.Background(), "t", attendees, today)
		if err != nil {
			t.Fatalf("ExtractTasks returned error: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Description != "keep me" {
			t.Fatalf("tasks=%+v, want only the described element", tasks)
		}
	})

	t.Run("prose response yields empty result without error", func(t *testing.T) {
		a := llmextract.New(respond("I could not find any tasks in this transcript."))

		tasks, err := a.ExtractTasks(context.Background(), "t", attendees, today)
		if err != nil {
			t.Fatalf("ExtractTasks returned error: %v", err)
		}
		if tasks != nil {
			t.Errorf("tasks=%+v, want nil", tasks)
		}
	})

	t.Run("empty array", func(t *testing.T) {
		a := llmextract.New(respond("[]"))

		tasks, err := a.ExtractTasks(context.Background(), "t", attendees, today)
		if err != nil {
			t.Fatalf("ExtractTasks returned error: %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("got %d tasks, want none", len(tasks))
		}
	})

	t.Run("service failure propagates", func(t *testing.T) {
		boom := errors.New("timeout")
		a := llmextract.New(&mock.Provider{CompleteErr: boom})

		_, err := a.ExtractTasks(context.Background(), "t", attendees, today)
		if !errors.Is(err, boom) {
			t.Fatalf("error=%v, want wrapped %v", err, boom)
		}
	})
}

func TestExtractDecisions(t *testing.T) {
	t.Parallel()

	t.Run("fenced array", func(t *testing.T) {
		a := llmextract.New(respond("```json\n[\"Approved Q4 budget\", \"  \", \"Use vendor B\"]\n```"))

		decisions, err := a.ExtractDecisions(context.Background(), "t")
		if err != nil {
			t.Fatalf("ExtractDecisions returned error: %v", err)
		}
		want := []string{"Approved Q4 budget", "Use vendor B"}
		if !reflect.DeepEqual(decisions, want) {
			t.Errorf("decisions=%v, want %v (blank entries dropped)", decisions, want)
		}
	})

	t.Run("prose response yields empty result without error", func(t *testing.T) {
		a := llmextract.New(respond("No decisions were made."))

		decisions, err := a.ExtractDecisions(context.Background(), "t")
		if err != nil {
			t.Fatalf("ExtractDecisions returned error: %v", err)
		}
		if decisions != nil {
			t.Errorf("decisions=%v, want nil", decisions)
		}
	})
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("explicit timeout bounds the request", func(t *testing.T) {
		p := &mock.Provider{
			CompleteFunc: func(ctx context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
				if _, ok := ctx.Deadline(); !ok {
					t.Error("request context has no deadline")
				}
				return &llm.CompletionResponse{Content: "ok"}, nil
			},
		}
		a := llmextract.New(p, llmextract.WithTimeout(30*time.Second))

		if _, err := a.Summarize(context.Background(), "t"); err != nil {
			t.Fatalf("Summarize returned error: %v", err)
		}
	})

	t.Run("default timeout applies without an option", func(t *testing.T) {
		p := &mock.Provider{
			CompleteFunc: func(ctx context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
				deadline, ok := ctx.Deadline()
				if !ok {
					t.Fatal("request context has no deadline")
				}
				if remaining := time.Until(deadline); remaining > llmextract.DefaultTimeout {
					t.Errorf("deadline %v away, want at most %v", remaining, llmextract.DefaultTimeout)
				}
				return &llm.CompletionResponse{Content: "ok"}, nil
			},
		}
		a := llmextract.New(p)

		if _, err := a.Summarize(context.Background(), "t"); err != nil {
			t.Fatalf("Summarize returned error: %v", err)
		}
	})

	t.Run("zero option keeps the default", func(t *testing.T) {
		p := &mock.Provider{
			CompleteFunc: func(ctx context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
				if _, ok := ctx.Deadline(); !ok {
					t.Error("request context has no deadline")
				}
				return &llm.CompletionResponse{Content: "ok"}, nil
			},
		}
		a := llmextract.New(p, llmextract.WithTimeout(0))

		if _, err := a.Summarize(context.Background(), "t"); err != nil {
			t.Fatalf("Summarize returned error: %v", err)
		}
	})
}
