package meeting_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ltausch/minutes/internal/meeting"
)

func TestMemStore_UpsertAndGet(t *testing.T) {
	t.Parallel()
	s := meeting.NewMemStore()
	ctx := context.Background()

	m := meeting.Meeting{ID: "m1", Title: "Standup"}
	if err := s.Upsert(ctx, m); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	got, err := s.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Title != "Standup" {
		t.Errorf("Title=%q, want %q", got.Title, "Standup")
	}
}

func TestMemStore_GetUnknown(t *testing.T) {
	t.Parallel()
	s := meeting.NewMemStore()

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, meeting.ErrNotFound) {
		t.Fatalf("Get error=%v, want ErrNotFound", err)
	}
}

func TestMemStore_UpsertReplacesAndMovesToEnd(t *testing.T) {
	t.Parallel()
	s := meeting.NewMemStore()
	ctx := context.Background()

	for _, m := range []meeting.Meeting{
		{ID: "a", Title: "first"},
		{ID: "b", Title: "second"},
	} {
		if err := s.Upsert(ctx, m); err != nil {
			t.Fatalf("Upsert(%s) returned error: %v", m.ID, err)
		}
	}

	// Re-saving "a" must not duplicate it and must move it behind "b".
	if err := s.Upsert(ctx, meeting.Meeting{ID: "a", Title: "first, processed"}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if n := s.Len(); n != 2 {
		t.Fatalf("Len=%d, want 2", n)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if list[0].ID != "b" || list[1].ID != "a" {
		t.Errorf("order=[%s %s], want [b a]", list[0].ID, list[1].ID)
	}
	if list[1].Title != "first, processed" {
		t.Errorf("Title=%q, want the re-saved fields", list[1].Title)
	}
}

func TestMemStore_ActiveSlot(t *testing.T) {
	t.Parallel()
	s := meeting.NewMemStore()

	if s.Active() != nil {
		t.Fatal("Active()=non-nil on a fresh store")
	}

	m := &meeting.Meeting{ID: "m1"}
	s.SetActive(m)
	if got := s.Active(); got != m {
		t.Errorf("Active()=%p, want %p", got, m)
	}

	s.SetActive(nil)
	if s.Active() != nil {
		t.Error("Active()=non-nil after clearing")
	}
}

func TestMemStore_ConcurrentUpserts(t *testing.T) {
	t.Parallel()
	s := meeting.NewMemStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%5))
			_ = s.Upsert(ctx, meeting.Meeting{ID: id})
			_, _ = s.List(ctx)
		}(i)
	}
	wg.Wait()

	if n := s.Len(); n != 5 {
		t.Errorf("Len=%d, want 5 distinct meetings", n)
	}
}

func TestNewID(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 9, 30, 15, 0, time.UTC)

	id := meeting.NewID(now)
	if !strings.HasPrefix(id, "20260302093015-") {
		t.Errorf("id=%q, want timestamp prefix 20260302093015-", id)
	}
	if got := len(id); got != len("20260302093015-")+8 {
		t.Errorf("len(id)=%d, want timestamp plus 8-char suffix", got)
	}

	if other := meeting.NewID(now); other == id {
		t.Error("two ids from the same instant collided")
	}
}

func TestMeetingNew(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 9, 30, 15, 0, time.UTC)

	m := meeting.New("Planning", "2026-03-02", 45, []string{"Alice"}, now)
	if m.ID == "" {
		t.Error("ID is empty")
	}
	if m.Processed() {
		t.Error("Processed()=true before extraction ran")
	}
	m.Summary = "done"
	if !m.Processed() {
		t.Error("Processed()=false after summary set")
	}
}

func TestMeetingWireShape(t *testing.T) {
	t.Parallel()

	m := meeting.Meeting{
		ID:    "m1",
		Title: "Planning",
		Tasks: []meeting.Task{{
			Description: "Draft the roadmap",
			Assignee:    "Alice",
			DueDate:     "2026-03-09",
			Priority:    meeting.PriorityMedium,
			Status:      meeting.StatusPending,
		}},
	}

	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	var tasks []meeting.Task
	if err := json.Unmarshal(decoded["tasks"], &tasks); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Assignee != "Alice" {
		t.Errorf("tasks=%+v, want the one populated task", tasks)
	}

	// action_items is reserved: present on the wire, never populated.
	reserved, ok := decoded["action_items"]
	if !ok {
		t.Fatal("action_items key missing from the wire record")
	}
	if string(reserved) != "null" {
		t.Errorf("action_items=%s, want null", reserved)
	}
}
