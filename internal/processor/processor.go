// Package processor orchestrates transcript analysis: it selects the AI or
// heuristic extraction path, runs the three extractions, and assembles the
// results into a Meeting.
//
// The processor owns the degrade-not-abort policy: no extractor failure ever
// propagates to the caller. A failed summary is rendered as an explanatory
// string, failed task or decision extraction as an empty list, and the host
// application keeps running either way. Running without a text-generation
// service is a supported mode, not an error state.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ltausch/minutes/internal/extract"
	"github.com/ltausch/minutes/internal/extract/heuristic"
	"github.com/ltausch/minutes/internal/meeting"
	"github.com/ltausch/minutes/internal/observe"
	"github.com/ltausch/minutes/internal/transcript"
)

// Mode selects the extraction path for one Process invocation.
type Mode string

const (
	// ModeAI delegates extraction to the configured text-generation service.
	ModeAI Mode = "ai"

	// ModeHeuristic uses the local deterministic keyword extractor.
	ModeHeuristic Mode = "heuristic"
)

// IsValid reports whether m is a recognised mode.
func (m Mode) IsValid() bool {
	return m == ModeAI || m == ModeHeuristic
}

// Clock supplies the current time. Inject a fixed clock in tests to make
// due-date estimation deterministic.
type Clock func() time.Time

// Result carries the three extraction artifacts of one Process invocation.
// Fields are independently degraded: a failure in one extraction leaves the
// others intact.
type Result struct {
	Summary   string
	Tasks     []meeting.Task
	Decisions []string
}

// Option is a functional option for [Processor].
type Option func(*Processor)

// WithAI attaches the AI extraction path. Without it, ModeAI silently falls
// back to the heuristic path — the "no service configured" deployment.
func WithAI(e extract.Extractor) Option {
	return func(p *Processor) { p.ai = e }
}

// WithAttendeeMatcher enables phonetic speaker-label normalisation against
// the attendee list before extraction runs.
func WithAttendeeMatcher(m *transcript.AttendeeMatcher) Option {
	return func(p *Processor) { p.matcher = m }
}

// WithMetrics attaches metric instruments. Without it, nothing is recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithClock overrides the time source. Default: time.Now.
func WithClock(c Clock) Option {
	return func(p *Processor) { p.clock = c }
}

// Processor runs transcript extraction and assembles Meetings. It is safe
// for concurrent use when its extractors are.
type Processor struct {
	ai        extract.Extractor
	heuristic extract.Extractor
	matcher   *transcript.AttendeeMatcher
	metrics   *observe.Metrics
	clock     Clock
}

// New creates a [Processor]. The heuristic path is always available; attach
// the AI path with [WithAI].
func New(opts ...Option) *Processor {
	p := &Processor{
		heuristic: heuristic.New(),
		clock:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process runs one full extraction pass over transcriptText and returns the
// assembled artifacts. It never returns an error: every failure mode
// degrades per the rules described in the package comment.
//
// An empty transcript yields degenerate results (a zero-point summary, no
// tasks, no decisions); an empty attendee list makes every task Unassigned.
func (p *Processor) Process(ctx context.Context, transcriptText string, attendees []string, mode Mode) Result {
	ctx, span := observe.StartSpan(ctx, "processor.Process")
	defer span.End()

	ext, path := p.selectPath(mode)

	if p.matcher != nil {
		transcriptText = p.matcher.NormalizeSpeakers(transcriptText, attendees)
	}

	today := p.clock()

	var res Result
	if path == ModeAI {
		res = p.runConcurrent(ctx, ext, transcriptText, attendees, today)
	} else {
		res = p.runSequential(ctx, ext, transcriptText, attendees, today)
	}

	p.metrics.RecordProcessed(ctx, string(path), len(res.Tasks))
	return res
}

// ProcessMeeting runs Process over m's transcript and writes the artifacts
// into m in place.
func (p *Processor) ProcessMeeting(ctx context.Context, m *meeting.Meeting, mode Mode) {
	res := p.Process(ctx, m.Transcript, m.Attendees, mode)
	m.Summary = res.Summary
	m.Tasks = res.Tasks
	m.Decisions = res.Decisions
}

// selectPath resolves the requested mode against what is configured. An empty
// mode prefers the AI path when one is attached.
func (p *Processor) selectPath(mode Mode) (extract.Extractor, Mode) {
	if mode != ModeHeuristic && p.ai != nil {
		return p.ai, ModeAI
	}
	if mode == ModeAI {
		slog.Info("ai mode requested but no text-generation service configured, using heuristic extraction")
	}
	return p.heuristic, ModeHeuristic
}

// runSequential executes the three extractions in order on the heuristic
// path. The heuristic extractor cannot fail, but the degrade policy is
// applied anyway so a future extractor swap keeps the contract.
func (p *Processor) runSequential(ctx context.Context, ext extract.Extractor, text string, attendees []string, today time.Time) Result {
	var res Result
	res.Summary = p.summarize(ctx, ext, ModeHeuristic, text)
	res.Tasks = p.extractTasks(ctx, ext, ModeHeuristic, text, attendees, today)
	res.Decisions = p.extractDecisions(ctx, ext, ModeHeuristic, text)
	return res
}

// runConcurrent executes the three extractions concurrently on the AI path.
// The extractions are independent remote calls with no shared snapshot:
// one may succeed while another fails, and the partial result is kept.
func (p *Processor) runConcurrent(ctx context.Context, ext extract.Extractor, text string, attendees []string, today time.Time) Result {
	var res Result
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res.Summary = p.summarize(gctx, ext, ModeAI, text)
		return nil
	})
	g.Go(func() error {
		res.Tasks = p.extractTasks(gctx, ext, ModeAI, text, attendees, today)
		return nil
	})
	g.Go(func() error {
		res.Decisions = p.extractDecisions(gctx, ext, ModeAI, text)
		return nil
	})

	// The goroutines degrade internally and never return an error.
	_ = g.Wait()
	return res
}

// summarize runs one summary extraction, rendering a failure as an
// explanatory string so downstream display code always has content.
func (p *Processor) summarize(ctx context.Context, ext extract.Extractor, path Mode, text string) string {
	start := time.Now()
	summary, err := ext.Summarize(ctx, text)
	p.metrics.RecordExtraction(ctx, "summary", string(path), time.Since(start).Seconds(), err != nil)

	if err != nil {
		observe.Logger(ctx).Warn("summary extraction failed", "error", err)
		return fmt.Sprintf("Error generating summary: %v", err)
	}
	return summary
}

// extractTasks runs one task extraction, degrading any failure to an empty
// list with a warning.
func (p *Processor) extractTasks(ctx context.Context, ext extract.Extractor, path Mode, text string, attendees []string, today time.Time) []meeting.Task {
	start := time.Now()
	tasks, err := ext.ExtractTasks(ctx, text, attendees, today)
	p.metrics.RecordExtraction(ctx, "tasks", string(path), time.Since(start).Seconds(), err != nil)

	if err != nil {
		observe.Logger(ctx).Warn("task extraction failed", "error", err)
		return nil
	}
	return tasks
}

// extractDecisions runs one decision extraction, degrading any failure to an
// empty list.
func (p *Processor) extractDecisions(ctx context.Context, ext extract.Extractor, path Mode, text string) []string {
	start := time.Now()
	decisions, err := ext.ExtractDecisions(ctx, text)
	p.metrics.RecordExtraction(ctx, "decisions", string(path), time.Since(start).Seconds(), err != nil)

	if err != nil {
		observe.Logger(ctx).Warn("decision extraction failed", "error", err)
		return nil
	}
	return decisions
}
