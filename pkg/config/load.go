package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "PETAB_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults. Unknown keys are
// rejected so that misspelled sections do not pass silently.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention PETAB_SECTION_FIELD (e.g., PETAB_STORE_BACKEND).
// Environment variables always take precedence over file-based configuration.
//
// An empty path starts from the defaults.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies PETAB_SECTION_FIELD overrides. Values that do
// not parse are reported rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs []FieldError
	env := func(name string) (string, bool) {
		val := os.Getenv(EnvPrefix + name)
		return val, val != ""
	}
	setInt := func(name, field string, dst *int) {
		if val, ok := env(name); ok {
			i, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("%s%s: %v", EnvPrefix, name, err)})
				return
			}
			*dst = i
		}
	}
	setBool := func(name, field string, dst *bool) {
		if val, ok := env(name); ok {
			b, err := strconv.ParseBool(val)
			if err != nil {
				errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("%s%s: %v", EnvPrefix, name, err)})
				return
			}
			*dst = b
		}
	}
	setString := func(name string, dst *string) {
		if val, ok := env(name); ok {
			*dst = val
		}
	}

	// Lint overrides
	setInt("LINT_WORKERS", "lint.workers", &cfg.Lint.Workers)
	setBool("LINT_STRICT", "lint.strict", &cfg.Lint.Strict)
	setString("LINT_MODEL_SYMBOLS_FILE", &cfg.Lint.ModelSymbolsFile)
	if val, ok := env("LINT_MODEL_SYMBOLS"); ok {
		cfg.Lint.ModelSymbols = splitList(val)
	}
	setInt("LINT_CACHE_SIZE", "lint.cache_size", &cfg.Lint.CacheSize)

	// Sampling overrides
	if val, ok := env("SAMPLING_SEED"); ok {
		seed, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			errs = append(errs, FieldError{Field: "sampling.seed", Message: fmt.Sprintf("%sSAMPLING_SEED: %v", EnvPrefix, err)})
		} else {
			cfg.Sampling.Seed = seed
		}
	}
	setInt("SAMPLING_COUNT", "sampling.count", &cfg.Sampling.Count)
	setBool("SAMPLING_UNSCALED", "sampling.unscaled", &cfg.Sampling.Unscaled)

	// Store overrides
	setString("STORE_BACKEND", &cfg.Store.Backend)
	setString("STORE_PATH", &cfg.Store.Path)
	if val, ok := env("STORE_RETENTION_MAX_AGE"); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			errs = append(errs, FieldError{Field: "store.retention.max_age", Message: fmt.Sprintf("%sSTORE_RETENTION_MAX_AGE: %v", EnvPrefix, err)})
		} else {
			cfg.Store.Retention.MaxAge = d
		}
	}
	setInt("STORE_RETENTION_MAX_BATCHES", "store.retention.max_batches", &cfg.Store.Retention.MaxBatches)
	setString("STORE_RETENTION_SCHEDULE", &cfg.Store.Retention.Schedule)

	// Telemetry overrides
	setString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	setBool("TELEMETRY_METRICS_ENABLED", "telemetry.metrics.enabled", &cfg.Telemetry.Metrics.Enabled)
	setString("TELEMETRY_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)
	setString("TELEMETRY_METRICS_TEXTFILE", &cfg.Telemetry.Metrics.Textfile)
	setBool("TELEMETRY_TRACING_ENABLED", "telemetry.tracing.enabled", &cfg.Telemetry.Tracing.Enabled)
	setString("TELEMETRY_TRACING_EXPORTER", &cfg.Telemetry.Tracing.Exporter)
	setString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Symbols returns ModelSymbols merged with the IDs listed in
// ModelSymbolsFile. Blank lines and lines starting with '#' are skipped.
// The result has no duplicates and keeps first-seen order.
func (c *LintConfig) Symbols() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range c.ModelSymbols {
		add(id)
	}
	if c.ModelSymbolsFile == "" {
		return out, nil
	}

	f, err := os.Open(c.ModelSymbolsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open model symbols file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if !identifierPattern.MatchString(text) {
			return nil, fmt.Errorf("%s:%d: %q is not a valid identifier", c.ModelSymbolsFile, line, text)
		}
		add(text)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read model symbols file: %w", err)
	}
	return out, nil
}
