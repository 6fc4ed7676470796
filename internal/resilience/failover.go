package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ltausch/minutes/pkg/provider/llm"
)

// ErrAllBackendsFailed is returned when every backend in a [Failover] fails
// or has an open circuit breaker.
var ErrAllBackendsFailed = errors.New("all text-generation backends failed")

// backend pairs a provider with its dedicated circuit breaker.
type backend struct {
	name     string
	provider llm.Provider
	breaker  *CircuitBreaker
}

// Failover implements [llm.Provider] with automatic failover across multiple
// text-generation backends. Backends are tried in registration order; entries
// with an open breaker are skipped.
//
// From the caller's perspective a Failover behaves exactly like a single
// provider: one blocking Complete call that either returns text or an error.
type Failover struct {
	backends []backend
	breaker  BreakerConfig
}

// Compile-time interface assertion.
var _ llm.Provider = (*Failover)(nil)

// NewFailover creates a [Failover] with primary as the preferred backend.
// breaker configures the per-backend circuit breakers.
func NewFailover(primary llm.Provider, primaryName string, breaker BreakerConfig) *Failover {
	f := &Failover{breaker: breaker}
	f.add(primaryName, primary)
	return f
}

// AddFallback registers an additional backend. Fallbacks are tried in the
// order they are added, after the primary.
func (f *Failover) AddFallback(name string, provider llm.Provider) {
	f.add(name, provider)
}

func (f *Failover) add(name string, provider llm.Provider) {
	cfg := f.breaker
	cfg.Name = name
	f.backends = append(f.backends, backend{
		name:     name,
		provider: provider,
		breaker:  NewCircuitBreaker(cfg),
	})
}

// Complete sends the request to the first healthy backend and returns its
// response. Returns [ErrAllBackendsFailed] wrapped with the last error when
// every backend fails.
func (f *Failover) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	var lastErr error
	for i := range f.backends {
		b := &f.backends[i]

		var resp *llm.CompletionResponse
		err := b.breaker.Execute(func() error {
			var innerErr error
			resp, innerErr = b.provider.Complete(ctx, req)
			return innerErr
		})
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("skipping backend (circuit open)", "backend", b.name)
		} else {
			slog.Warn("backend failed, trying next", "backend", b.name, "error", err)
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrAllBackendsFailed, lastErr)
}
