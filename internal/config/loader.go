package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/caseclockapp/caseclock-mvp/internal/casematch"
	"github.com/caseclockapp/caseclock-mvp/internal/timer"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt": {"whisper", "whisper-native", "mock"},
	"llm": {"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied. It is a convenience wrapper around
// [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Unknown YAML fields are rejected. Useful in tests
// where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero-valued fields with their documented defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = StorageFile
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "."
	}
	if cfg.Resolver.Threshold == 0 {
		cfg.Resolver.Threshold = casematch.DefaultThreshold
	}
	if cfg.Timer.SwitchPolicy == "" {
		cfg.Timer.SwitchPolicy = string(timer.SwitchDiscard)
	}
	if cfg.Listen.WindowSeconds == 0 {
		cfg.Listen.WindowSeconds = 10
	}
	if cfg.Listen.PhraseLimitSeconds == 0 {
		cfg.Listen.PhraseLimitSeconds = 10
	}
	if cfg.Listen.Language == "" {
		cfg.Listen.Language = "en"
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Storage.Backend != "" && !cfg.Storage.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("storage.backend %q is invalid; valid values: file, postgres", cfg.Storage.Backend))
	}
	if cfg.Storage.Backend == StoragePostgres && cfg.Storage.PostgresDSN == "" {
		errs = append(errs, errors.New("storage.postgres_dsn is required when storage.backend is postgres"))
	}

	if cfg.Resolver.Threshold < 0 || cfg.Resolver.Threshold > 100 {
		errs = append(errs, fmt.Errorf("resolver.threshold %d is out of range [0, 100]", cfg.Resolver.Threshold))
	}

	if cfg.Timer.SwitchPolicy != "" {
		if _, err := timer.ParseSwitchPolicy(cfg.Timer.SwitchPolicy); err != nil {
			errs = append(errs, fmt.Errorf("timer.switch_policy %q is invalid; valid values: discard, autoclose", cfg.Timer.SwitchPolicy))
		}
	}

	if cfg.Listen.WindowSeconds < 0 {
		errs = append(errs, fmt.Errorf("listen.window_seconds %d must not be negative", cfg.Listen.WindowSeconds))
	}
	if cfg.Listen.PhraseLimitSeconds < 0 {
		errs = append(errs, fmt.Errorf("listen.phrase_limit_seconds %d must not be negative", cfg.Listen.PhraseLimitSeconds))
	}

	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("llm", cfg.Providers.LLM.Name)

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
