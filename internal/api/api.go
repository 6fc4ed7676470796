// Package api exposes the meeting pipeline over HTTP. Handlers accept and
// return JSON; the mux also hosts the Prometheus scrape endpoint and the
// liveness/readiness probes.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ltausch/minutes/internal/email"
	"github.com/ltausch/minutes/internal/extract"
	"github.com/ltausch/minutes/internal/health"
	"github.com/ltausch/minutes/internal/meeting"
	"github.com/ltausch/minutes/internal/observe"
	"github.com/ltausch/minutes/internal/processor"
)

// Server bundles the handlers for the meeting HTTP surface.
type Server struct {
	store       meeting.Store
	processor   *processor.Processor
	composer    *email.Composer
	metrics     *observe.Metrics
	health      *health.Handler
	defaultMode processor.Mode
	emailMode   email.Mode
	now         func() time.Time
}

// Option configures a [Server].
type Option func(*Server)

// WithMetrics attaches request metrics to the HTTP middleware.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHealth attaches liveness/readiness probes to the mux.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithDefaultMode sets the extraction mode used when a request names none.
func WithDefaultMode(m processor.Mode) Option {
	return func(s *Server) { s.defaultMode = m }
}

// WithEmailMode sets the composition mode used when a request names none.
func WithEmailMode(m email.Mode) Option {
	return func(s *Server) { s.emailMode = m }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New returns a Server backed by the given store, processor, and composer.
func New(store meeting.Store, proc *processor.Processor, composer *email.Composer, opts ...Option) *Server {
	s := &Server{
		store:     store,
		processor: proc,
		composer:  composer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the fully wired request multiplexer.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/meetings/process", s.handleProcess)
	mux.HandleFunc("GET /v1/meetings", s.handleList)
	mux.HandleFunc("GET /v1/meetings/{id}", s.handleGet)
	mux.HandleFunc("POST /v1/meetings/{id}/email", s.handleEmail)
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.health != nil {
		s.health.Register(mux)
	}
	return observe.Middleware(s.metrics)(mux)
}

// processRequest is the body of POST /v1/meetings/process.
type processRequest struct {
	Title           string   `json:"title"`
	Date            string   `json:"date"`
	DurationMinutes int      `json:"duration_minutes"`
	Attendees       []string `json:"attendees"`
	Transcript      string   `json:"transcript"`

	// Mode optionally overrides the configured extraction path.
	Mode string `json:"mode"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, errors.New("transcript is required"))
		return
	}
	mode := processor.Mode(req.Mode)
	if req.Mode != "" && !mode.IsValid() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown mode %q", req.Mode))
		return
	}
	if mode == "" {
		mode = s.defaultMode
	}

	now := s.now()
	date := req.Date
	if date == "" {
		date = now.Format(extract.ISODate)
	}
	title := req.Title
	if title == "" {
		title = "Untitled Meeting"
	}

	m := meeting.New(title, date, req.DurationMinutes, req.Attendees, now)
	m.Transcript = req.Transcript
	s.processor.ProcessMeeting(r.Context(), m, mode)

	if err := s.store.Upsert(r.Context(), *m); err != nil {
		slog.Error("store meeting", "meeting_id", m.ID, "err", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to store meeting"))
		return
	}
	s.store.SetActive(m)

	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	meetings, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("failed to list meetings"))
		return
	}
	type summary struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Date      string `json:"date"`
		Attendees int    `json:"attendees"`
		Tasks     int    `json:"tasks"`
		Processed bool   `json:"processed"`
	}
	out := make([]summary, 0, len(meetings))
	for i := range meetings {
		m := &meetings[i]
		out = append(out, summary{
			ID:        m.ID,
			Title:     m.Title,
			Date:      m.Date,
			Attendees: len(m.Attendees),
			Tasks:     len(m.Tasks),
			Processed: m.Processed(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"meetings": out})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, meeting.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("failed to load meeting"))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// emailRequest is the body of POST /v1/meetings/{id}/email.
type emailRequest struct {
	// Mode optionally overrides the configured composition mode
	// ("ai" or "template").
	Mode string `json:"mode"`
}

func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	mode := email.Mode(req.Mode)
	if req.Mode != "" && !mode.IsValid() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown mode %q", req.Mode))
		return
	}
	if mode == "" {
		mode = s.emailMode
	}

	m, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, meeting.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("failed to load meeting"))
		return
	}

	body := s.composer.Compose(r.Context(), &m, mode)
	writeJSON(w, http.StatusOK, map[string]string{
		"meeting_id": m.ID,
		"email":      body,
	})
}

// maxBodyBytes bounds request bodies; transcripts are text, not uploads.
const maxBodyBytes = 4 << 20

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
