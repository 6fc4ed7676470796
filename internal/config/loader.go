package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes and validates a YAML configuration from r.
// Unknown fields are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency. All problems found are
// reported at once as a joined error.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.LogLevel != "" && !c.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level: unknown level %q", c.Server.LogLevel))
	}

	if c.Provider.LLM.Name != "" {
		if err := c.Provider.LLM.validate(); err != nil {
			errs = append(errs, fmt.Errorf("provider.llm: %w", err))
		}
	}
	for i, fb := range c.Provider.Fallbacks {
		if fb.Name == "" {
			errs = append(errs, fmt.Errorf("provider.fallbacks[%d]: name is required", i))
			continue
		}
		if err := fb.validate(); err != nil {
			errs = append(errs, fmt.Errorf("provider.fallbacks[%d]: %w", i, err))
		}
	}
	if c.Provider.LLM.Name == "" && len(c.Provider.Fallbacks) > 0 {
		errs = append(errs, errors.New("provider.fallbacks: configured without a primary provider.llm"))
	}

	switch c.Processing.Mode {
	case "", "ai", "heuristic":
	default:
		errs = append(errs, fmt.Errorf("processing.mode: must be \"ai\" or \"heuristic\", got %q", c.Processing.Mode))
	}
	if c.Processing.Mode == "ai" && c.Provider.LLM.Name == "" {
		errs = append(errs, errors.New("processing.mode: \"ai\" requires provider.llm to be configured"))
	}
	if t := c.Processing.PhoneticThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("processing.phonetic_threshold: must be within [0, 1], got %v", t))
	}
	if t := c.Processing.FuzzyThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("processing.fuzzy_threshold: must be within [0, 1], got %v", t))
	}

	switch c.Email.Mode {
	case "", "ai", "template":
	default:
		errs = append(errs, fmt.Errorf("email.mode: must be \"ai\" or \"template\", got %q", c.Email.Mode))
	}
	if c.Email.Mode == "ai" && c.Provider.LLM.Name == "" {
		errs = append(errs, errors.New("email.mode: \"ai\" requires provider.llm to be configured"))
	}

	return errors.Join(errs...)
}

func (e *ProviderEntry) validate() error {
	var errs []error
	if e.Model == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if e.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must not be negative, got %v", e.RequestTimeout.Duration()))
	}
	return errors.Join(errs...)
}
