package transcript_test

import (
	"testing"

	"github.com/ltausch/minutes/internal/transcript"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("speaker lines", func(t *testing.T) {
		lines := transcript.Parse("Alice: Hello there\nBob:  All good ")
		if len(lines) != 2 {
			t.Fatalf("got %d lines, want 2", len(lines))
		}
		if lines[0].Speaker != "Alice" || lines[0].Text != "Hello there" {
			t.Errorf("line 0=%+v, want Speaker Alice / trimmed text", lines[0])
		}
		if lines[1].Speaker != "Bob" || lines[1].Text != "All good" {
			t.Errorf("line 1=%+v, want surrounding whitespace trimmed", lines[1])
		}
	})

	t.Run("line without colon", func(t *testing.T) {
		lines := transcript.Parse("General discussion followed")
		if len(lines) != 1 {
			t.Fatalf("got %d lines, want 1", len(lines))
		}
		if lines[0].Speaker != "" {
			t.Errorf("Speaker=%q, want empty", lines[0].Speaker)
		}
		if lines[0].Text != "General discussion followed" {
			t.Errorf("Text=%q, want the whole line", lines[0].Text)
		}
	})

	t.Run("only the first colon splits", func(t *testing.T) {
		lines := transcript.Parse("Alice: the ratio is 3:1")
		if lines[0].Speaker != "Alice" || lines[0].Text != "the ratio is 3:1" {
			t.Errorf("line=%+v, want split on the first colon only", lines[0])
		}
	})

	t.Run("interior blank lines preserved", func(t *testing.T) {
		lines := transcript.Parse("\n\nAlice: hi\n\nBob: bye\n\n")
		if len(lines) != 3 {
			t.Fatalf("got %d lines, want 3 (outer blanks trimmed, inner kept)", len(lines))
		}
		if lines[1].Raw != "" {
			t.Errorf("middle line Raw=%q, want empty", lines[1].Raw)
		}
	})

	t.Run("blank input", func(t *testing.T) {
		if lines := transcript.Parse("  \n\t "); lines != nil {
			t.Errorf("Parse=%v, want nil", lines)
		}
	})
}

func TestAttendeeMatcher_Match(t *testing.T) {
	t.Parallel()
	m := transcript.NewAttendeeMatcher()
	attendees := []string{"John", "Alice"}

	t.Run("exact hit is case-insensitive", func(t *testing.T) {
		got, conf, ok := m.Match("alice", attendees)
		if !ok || got != "Alice" || conf != 1 {
			t.Errorf("Match=%q conf=%v ok=%v, want canonical Alice with confidence 1", got, conf, ok)
		}
	})

	t.Run("phonetic variant", func(t *testing.T) {
		got, conf, ok := m.Match("Jon", attendees)
		if !ok || got != "John" {
			t.Fatalf("Match=%q ok=%v, want John", got, ok)
		}
		if conf <= 0 || conf > 1 {
			t.Errorf("confidence=%v, want within (0, 1]", conf)
		}
	})

	t.Run("unknown label kept", func(t *testing.T) {
		got, conf, ok := m.Match("Zyx", attendees)
		if ok || got != "Zyx" || conf != 0 {
			t.Errorf("Match=%q conf=%v ok=%v, want the label unchanged", got, conf, ok)
		}
	})

	t.Run("empty attendee list", func(t *testing.T) {
		if _, _, ok := m.Match("Alice", nil); ok {
			t.Error("Match succeeded with no attendees")
		}
	})
}

func TestAttendeeMatcher_NormalizeSpeakers(t *testing.T) {
	t.Parallel()
	m := transcript.NewAttendeeMatcher()

	t.Run("rewrites matched labels", func(t *testing.T) {
		got := m.NormalizeSpeakers("Jon: I will send the notes\nAlice: thanks", []string{"John", "Alice"})
		want := "John: I will send the notes\nAlice: thanks"
		if got != want {
			t.Errorf("NormalizeSpeakers=%q, want %q", got, want)
		}
	})

	t.Run("clean transcript unchanged", func(t *testing.T) {
		text := "Alice: hi\nBob: hello"
		if got := m.NormalizeSpeakers(text, []string{"Alice", "Bob"}); got != text {
			t.Errorf("NormalizeSpeakers=%q, want input verbatim", got)
		}
	})

	t.Run("unmatched labels kept", func(t *testing.T) {
		text := "Visitor: just observing"
		if got := m.NormalizeSpeakers(text, []string{"Alice"}); got != text {
			t.Errorf("NormalizeSpeakers=%q, want input verbatim", got)
		}
	})
}
