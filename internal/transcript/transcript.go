// Package transcript provides line-level parsing of meeting transcripts and
// optional phonetic alignment of speaker labels against an attendee list.
//
// A transcript is line-oriented text, typically one "Speaker: utterance" per
// line. Lines without a colon are kept whole: their Speaker is empty and
// their Text is the raw line.
package transcript

import "strings"

// Line is one newline-delimited segment of a transcript.
type Line struct {
	// Speaker is the label before the first colon, trimmed. Empty when the
	// line has no colon.
	Speaker string

	// Text is the utterance after the first colon (or the whole line when no
	// colon is present), trimmed.
	Text string

	// Raw is the original line, untrimmed.
	Raw string
}

// Parse splits text into lines. Leading and trailing blank lines are
// dropped the way the extraction rules expect (the transcript is trimmed as
// a whole before splitting); interior empty lines are preserved because they
// count as discussion points.
func Parse(text string) []Line {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	raw := strings.Split(trimmed, "\n")
	lines := make([]Line, 0, len(raw))
	for _, r := range raw {
		lines = append(lines, parseLine(r))
	}
	return lines
}

func parseLine(raw string) Line {
	l := Line{Raw: raw}
	if speaker, text, ok := strings.Cut(raw, ":"); ok {
		l.Speaker = strings.TrimSpace(speaker)
		l.Text = strings.TrimSpace(text)
	} else {
		l.Text = strings.TrimSpace(raw)
	}
	return l
}
