package transcript

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// MatcherOption is a functional option for configuring an [AttendeeMatcher].
type MatcherOption func(*AttendeeMatcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched attendee to be accepted. Default: 0.70.
func WithPhoneticThreshold(threshold float64) MatcherOption {
	return func(m *AttendeeMatcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic match is found and the matcher falls back to pure string
// similarity. Default: 0.85.
func WithFuzzyThreshold(threshold float64) MatcherOption {
	return func(m *AttendeeMatcher) {
		m.fuzzyThreshold = threshold
	}
}

// AttendeeMatcher aligns misheard speaker labels with the meeting's attendee
// list. Transcription services routinely mangle proper names ("Aleese" for
// "Alice"); aligning labels before extraction lets the assignee rules match
// on the canonical spelling.
//
// The algorithm proceeds in two stages, following standard phonetic entity
// alignment:
//
//  1. Double Metaphone codes are computed for the label and every attendee.
//     Attendees sharing at least one code become phonetic candidates and are
//     ranked by Jaro-Winkler similarity against the phonetic threshold.
//  2. When no phonetic candidate clears the bar, a pure Jaro-Winkler pass
//     over all attendees applies the stricter fuzzy threshold.
//
// All methods are safe for concurrent use; the matcher is read-only after
// construction.
type AttendeeMatcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// NewAttendeeMatcher returns an [AttendeeMatcher] configured with the
// supplied options.
func NewAttendeeMatcher(opts ...MatcherOption) *AttendeeMatcher {
	m := &AttendeeMatcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match returns the attendee most plausibly meant by label. When matched is
// false, corrected equals label unchanged and confidence is 0.
//
// An exact case-insensitive hit short-circuits with confidence 1.
func (m *AttendeeMatcher) Match(label string, attendees []string) (corrected string, confidence float64, matched bool) {
	labelLower := strings.ToLower(strings.TrimSpace(label))
	if labelLower == "" || len(attendees) == 0 {
		return label, 0, false
	}

	for _, att := range attendees {
		if strings.EqualFold(att, labelLower) {
			return att, 1, true
		}
	}

	labelPrimary, labelSecondary := matchr.DoubleMetaphone(labelLower)

	var (
		bestName     string
		bestScore    float64
		bestPhonetic bool
	)

	for _, att := range attendees {
		attLower := strings.ToLower(strings.TrimSpace(att))
		if attLower == "" {
			continue
		}

		attPrimary, attSecondary := matchr.DoubleMetaphone(attLower)
		phonetic := codesOverlap(labelPrimary, labelSecondary, attPrimary, attSecondary)
		score := matchr.JaroWinkler(labelLower, attLower, false)

		switch {
		case phonetic && score >= m.phoneticThreshold:
			if !bestPhonetic || score > bestScore {
				bestName, bestScore, bestPhonetic = att, score, true
			}
		case !bestPhonetic && score >= m.fuzzyThreshold && score > bestScore:
			bestName, bestScore = att, score
		}
	}

	if bestName != "" {
		return bestName, bestScore, true
	}
	return label, 0, false
}

// NormalizeSpeakers rewrites the speaker label of every line that
// phonetically matches an attendee, returning the corrected transcript text.
// Lines without a speaker label and labels that match no attendee are kept
// verbatim, so normalisation is a no-op for already-clean transcripts.
func (m *AttendeeMatcher) NormalizeSpeakers(text string, attendees []string) string {
	lines := Parse(text)
	if len(lines) == 0 {
		return text
	}

	out := make([]string, 0, len(lines))
	changed := false
	for _, l := range lines {
		if l.Speaker == "" {
			out = append(out, l.Raw)
			continue
		}
		corrected, _, ok := m.Match(l.Speaker, attendees)
		if !ok || corrected == l.Speaker {
			out = append(out, l.Raw)
			continue
		}
		out = append(out, corrected+": "+l.Text)
		changed = true
	}

	if !changed {
		return text
	}
	return strings.Join(out, "\n")
}

// codesOverlap reports whether the label's Double Metaphone codes share at
// least one non-empty code with the attendee's.
func codesOverlap(lp, ls, ap, as string) bool {
	for _, l := range []string{lp, ls} {
		if l == "" {
			continue
		}
		if l == ap || (as != "" && l == as) {
			return true
		}
	}
	return false
}
