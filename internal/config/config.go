// Package config provides the configuration schema, loader, and LLM provider
// registry for the minutes service.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can use human-readable
// values like "60s" or "2m". yaml.v3 only decodes integer nanoseconds
// into time.Duration, which nobody wants to write by hand.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the wrapped time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Provider   ProviderConfig   `yaml:"provider"`
	Processing ProcessingConfig `yaml:"processing"`
	Email      EmailConfig      `yaml:"email"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the HTTP surface listens on (e.g.,
	// ":8080"). Empty disables the server; the binary then only supports
	// one-shot file processing.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProviderConfig declares the text-generation backends. LLM selects the
// primary; Fallbacks are tried in order when the primary fails.
type ProviderConfig struct {
	LLM       ProviderEntry   `yaml:"llm"`
	Fallbacks []ProviderEntry `yaml:"fallbacks"`
}

// ProviderEntry configures one text-generation backend. The Name field is
// used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered backend (e.g., "gemini", "openai",
	// "openai-direct", "ollama").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the backend's API, if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend's default API endpoint.
	// Leave empty to use the built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the backend
	// (e.g., "gemini-2.0-flash", "gpt-4o-mini").
	Model string `yaml:"model"`

	// RequestTimeout bounds each completion round trip. Zero means the
	// default of 60s.
	RequestTimeout Duration `yaml:"request_timeout"`
}

// ProcessingConfig tunes the extraction pipeline.
type ProcessingConfig struct {
	// Mode selects the default extraction path: "ai" or "heuristic".
	// Empty means "ai" when a provider is configured, else "heuristic".
	// Callers of the HTTP surface may override per request.
	Mode string `yaml:"mode"`

	// SpeakerMatching enables phonetic alignment of speaker labels against
	// the attendee list before extraction runs.
	SpeakerMatching bool `yaml:"speaker_matching"`

	// PhoneticThreshold is the minimum similarity score for a phonetic
	// speaker match. Zero means the default of 0.70.
	PhoneticThreshold float64 `yaml:"phonetic_threshold"`

	// FuzzyThreshold is the minimum similarity score for a non-phonetic
	// fuzzy speaker match. Zero means the default of 0.85.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// EmailConfig tunes follow-up email composition.
type EmailConfig struct {
	// Mode selects the default composition mode: "ai" or "template".
	// Empty means "ai" when a provider is configured, else "template".
	Mode string `yaml:"mode"`
}
