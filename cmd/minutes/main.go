// Command minutes turns raw meeting transcripts into summaries, action items,
// decisions, and follow-up emails. It runs either as an HTTP service or as a
// one-shot CLI over a transcript file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"go.opentelemetry.io/otel"

	"github.com/ltausch/minutes/internal/api"
	"github.com/ltausch/minutes/internal/config"
	"github.com/ltausch/minutes/internal/email"
	"github.com/ltausch/minutes/internal/extract"
	"github.com/ltausch/minutes/internal/extract/llmextract"
	"github.com/ltausch/minutes/internal/health"
	"github.com/ltausch/minutes/internal/meeting"
	"github.com/ltausch/minutes/internal/observe"
	"github.com/ltausch/minutes/internal/processor"
	"github.com/ltausch/minutes/internal/resilience"
	"github.com/ltausch/minutes/internal/transcript"
	"github.com/ltausch/minutes/pkg/provider/llm"
	"github.com/ltausch/minutes/pkg/provider/llm/anyllm"
	"github.com/ltausch/minutes/pkg/provider/llm/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	transcriptPath := flag.String("transcript", "", "process this transcript file and exit instead of serving")
	title := flag.String("title", "Untitled Meeting", "meeting title for one-shot processing")
	attendeeList := flag.String("attendees", "", "comma-separated attendee names for one-shot processing")
	modeFlag := flag.String("mode", "", "extraction mode override: ai or heuristic")
	emailFlag := flag.Bool("email", false, "also print a follow-up email in one-shot mode")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "minutes: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "minutes: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("minutes starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "minutes"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	provider, err := buildProvider(cfg, reg)
	if err != nil {
		slog.Error("failed to build text-generation provider", "err", err)
		return 1
	}

	// ── Pipeline ──────────────────────────────────────────────────────────────
	procOpts := []processor.Option{processor.WithMetrics(metrics)}
	if provider != nil {
		procOpts = append(procOpts, processor.WithAI(newExtractor(cfg, provider)))
	}
	if cfg.Processing.SpeakerMatching {
		var matcherOpts []transcript.MatcherOption
		if t := cfg.Processing.PhoneticThreshold; t > 0 {
			matcherOpts = append(matcherOpts, transcript.WithPhoneticThreshold(t))
		}
		if t := cfg.Processing.FuzzyThreshold; t > 0 {
			matcherOpts = append(matcherOpts, transcript.WithFuzzyThreshold(t))
		}
		procOpts = append(procOpts, processor.WithAttendeeMatcher(transcript.NewAttendeeMatcher(matcherOpts...)))
	}
	proc := processor.New(procOpts...)

	composerOpts := []email.Option{email.WithMetrics(metrics)}
	if provider != nil {
		composerOpts = append(composerOpts, email.WithProvider(provider))
		if d := cfg.Provider.LLM.RequestTimeout.Duration(); d > 0 {
			composerOpts = append(composerOpts, email.WithTimeout(d))
		}
	}
	composer := email.New(composerOpts...)

	store := meeting.NewMemStore()

	// ── One-shot file mode ────────────────────────────────────────────────────
	if *transcriptPath != "" {
		return runOnce(ctx, cfg, proc, composer, store, onceParams{
			transcriptPath: *transcriptPath,
			title:          *title,
			attendees:      splitAttendees(*attendeeList),
			mode:           *modeFlag,
			email:          *emailFlag,
		})
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	if cfg.Server.ListenAddr == "" {
		fmt.Fprintln(os.Stderr, "minutes: server.listen_addr is empty and no -transcript given — nothing to do")
		return 1
	}

	checks := health.New(health.Checker{
		Name: "store",
		Check: func(ctx context.Context) error {
			_, err := store.List(ctx)
			return err
		},
	})
	server := api.New(store, proc, composer,
		api.WithMetrics(metrics),
		api.WithHealth(checks),
		api.WithDefaultMode(processor.Mode(cfg.Processing.Mode)),
		api.WithEmailMode(email.Mode(cfg.Email.Mode)),
	)

	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", cfg.Server.ListenAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			return 1
		}
	case <-ctx.Done():
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// onceParams carries the one-shot flags.
type onceParams struct {
	transcriptPath string
	title          string
	attendees      []string
	mode           string
	email          bool
}

// runOnce processes a single transcript file and prints the resulting meeting
// record (and optionally a follow-up email) to stdout.
func runOnce(ctx context.Context, cfg *config.Config, proc *processor.Processor, composer *email.Composer, store meeting.Store, p onceParams) int {
	raw, err := os.ReadFile(p.transcriptPath)
	if err != nil {
		slog.Error("read transcript", "path", p.transcriptPath, "err", err)
		return 1
	}

	mode := processor.Mode(p.mode)
	if p.mode != "" && !mode.IsValid() {
		fmt.Fprintf(os.Stderr, "minutes: unknown mode %q (want \"ai\" or \"heuristic\")\n", p.mode)
		return 1
	}
	if p.mode == "" && cfg.Processing.Mode != "" {
		mode = processor.Mode(cfg.Processing.Mode)
	}

	now := time.Now()
	m := meeting.New(p.title, now.Format(extract.ISODate), 0, p.attendees, now)
	m.Transcript = string(raw)

	proc.ProcessMeeting(ctx, m, mode)
	if err := store.Upsert(ctx, *m); err != nil {
		slog.Error("store meeting", "err", err)
		return 1
	}
	store.SetActive(m)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		slog.Error("encode meeting", "err", err)
		return 1
	}

	if p.email {
		emailMode := email.Mode(cfg.Email.Mode)
		fmt.Println()
		fmt.Println(composer.Compose(ctx, m, emailMode))
	}
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in text-generation factories into
// reg. Each factory receives a config.ProviderEntry and constructs the
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// gemini, openai, anthropic, deepseek, mistral, groq, llamacpp, and
	// llamafile all share the same pattern: optional APIKey + optional BaseURL.
	for _, providerName := range []string{
		"gemini", "openai", "anthropic",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	// openai-direct talks to the OpenAI API through the official SDK instead
	// of the any-llm gateway.
	reg.RegisterLLM("openai-direct", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		if d := entry.RequestTimeout.Duration(); d > 0 {
			opts = append(opts, openai.WithTimeout(d))
		}
		return openai.New(entry.APIKey, entry.Model, opts...)
	})

	for _, name := range reg.LLMNames() {
		slog.Debug("registered provider", "kind", "llm", "name", name)
	}
}

// buildProvider instantiates the configured primary provider and, when
// fallbacks are declared, wraps the chain in a circuit-breaking failover.
// Returns nil when no provider is configured; the pipeline then runs the
// keyword path only.
func buildProvider(cfg *config.Config, reg *config.Registry) (llm.Provider, error) {
	if cfg.Provider.LLM.Name == "" {
		slog.Info("no text-generation provider configured — keyword extraction only")
		return nil, nil
	}

	primary, err := reg.CreateLLM(cfg.Provider.LLM)
	if err != nil {
		return nil, err
	}
	slog.Info("provider created", "kind", "llm", "name", cfg.Provider.LLM.Name)

	if len(cfg.Provider.Fallbacks) == 0 {
		return primary, nil
	}

	failover := resilience.NewFailover(primary, cfg.Provider.LLM.Name, resilience.BreakerConfig{})
	for _, entry := range cfg.Provider.Fallbacks {
		fb, err := reg.CreateLLM(entry)
		if err != nil {
			return nil, err
		}
		failover.AddFallback(entry.Name, fb)
		slog.Info("fallback provider created", "kind", "llm", "name", entry.Name)
	}
	return failover, nil
}

// newExtractor builds the AI extraction adapter with the configured timeout.
func newExtractor(cfg *config.Config, provider llm.Provider) *llmextract.Adapter {
	var opts []llmextract.Option
	if d := cfg.Provider.LLM.RequestTimeout.Duration(); d > 0 {
		opts = append(opts, llmextract.WithTimeout(d))
	}
	return llmextract.New(provider, opts...)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// splitAttendees parses the comma-separated -attendees flag.
func splitAttendees(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			out = append(out, name)
		}
	}
	return out
}
