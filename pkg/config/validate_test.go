package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := NewTestConfig().WithModelSymbols("A", "B_2", "_c").Build()

	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	validationErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// count, backend, level, format
	if len(validationErr.Errors) != 4 {
		t.Errorf("expected 4 errors, got %d: %v", len(validationErr.Errors), validationErr.Errors)
	}
	if !strings.Contains(validationErr.Error(), "validation failed with 4 errors") {
		t.Errorf("error message should mention multiple errors: %s", validationErr.Error())
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		errorField string
	}{
		{
			name:       "negative workers",
			modify:     func(c *Config) { c.Lint.Workers = -1 },
			errorField: "lint.workers",
		},
		{
			name:       "negative cache size",
			modify:     func(c *Config) { c.Lint.CacheSize = -5 },
			errorField: "lint.cache_size",
		},
		{
			name:       "negative max depth",
			modify:     func(c *Config) { c.Lint.MaxDepth = -1 },
			errorField: "lint.max_depth",
		},
		{
			name:       "invalid model symbol",
			modify:     func(c *Config) { c.Lint.ModelSymbols = []string{"ok", "2bad"} },
			errorField: "lint.model_symbols[1]",
		},
		{
			name:       "zero sample count",
			modify:     func(c *Config) { c.Sampling.Count = 0 },
			errorField: "sampling.count",
		},
		{
			name:       "unknown backend",
			modify:     func(c *Config) { c.Store.Backend = "s3" },
			errorField: "store.backend",
		},
		{
			name:       "sqlite without path",
			modify:     func(c *Config) { c.Store.Backend, c.Store.Path = "sqlite", "" },
			errorField: "store.path",
		},
		{
			name:       "negative retention age",
			modify:     func(c *Config) { c.Store.Retention.MaxAge = -time.Hour },
			errorField: "store.retention.max_age",
		},
		{
			name:       "negative retention count",
			modify:     func(c *Config) { c.Store.Retention.MaxBatches = -1 },
			errorField: "store.retention.max_batches",
		},
		{
			name: "invalid retention schedule",
			modify: func(c *Config) {
				c.Store.Retention.MaxBatches = 10
				c.Store.Retention.Schedule = "every day"
			},
			errorField: "store.retention.schedule",
		},
		{
			name:       "retention schedule without limits",
			modify:     func(c *Config) { c.Store.Retention.Schedule = "0 3 * * *" },
			errorField: "store.retention.schedule",
		},
		{
			name:       "invalid level",
			modify:     func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			errorField: "telemetry.logging.level",
		},
		{
			name:       "invalid format",
			modify:     func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			errorField: "telemetry.logging.format",
		},
		{
			name: "invalid namespace",
			modify: func(c *Config) {
				c.Telemetry.Metrics.Enabled = true
				c.Telemetry.Metrics.Namespace = "petab-lint"
			},
			errorField: "telemetry.metrics.namespace",
		},
		{
			name: "relative metrics path",
			modify: func(c *Config) {
				c.Telemetry.Metrics.Enabled = true
				c.Telemetry.Metrics.Path = "metrics"
			},
			errorField: "telemetry.metrics.path",
		},
		{
			name: "listen address without port",
			modify: func(c *Config) {
				c.Telemetry.Metrics.Enabled = true
				c.Telemetry.Metrics.ListenAddress = "localhost"
			},
			errorField: "telemetry.metrics.listen_address",
		},
		{
			name: "unsorted buckets",
			modify: func(c *Config) {
				c.Telemetry.Metrics.Enabled = true
				c.Telemetry.Metrics.DurationBuckets = []float64{1, 0.1}
			},
			errorField: "telemetry.metrics.duration_buckets",
		},
		{
			name: "duplicate buckets",
			modify: func(c *Config) {
				c.Telemetry.Metrics.Enabled = true
				c.Telemetry.Metrics.DurationBuckets = []float64{0.1, 0.1, 1}
			},
			errorField: "telemetry.metrics.duration_buckets",
		},
		{
			name: "unknown exporter",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Exporter = "zipkin"
			},
			errorField: "telemetry.tracing.exporter",
		},
		{
			name: "ratio out of range",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.SampleRatio = 1.5
			},
			errorField: "telemetry.tracing.sample_ratio",
		},
		{
			name: "otlp without endpoint",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Endpoint = ""
			},
			errorField: "telemetry.tracing.endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig().Build()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			validationErr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if len(validationErr.Errors) != 1 {
				t.Fatalf("expected 1 error, got %v", validationErr.Errors)
			}
			if got := validationErr.Errors[0].Field; got != tt.errorField {
				t.Errorf("expected error on field %q, got %q", tt.errorField, got)
			}
		})
	}
}

func TestValidate_MetricsChecksSkippedWhenDisabled(t *testing.T) {
	cfg := NewTestConfig().Build()
	cfg.Telemetry.Metrics.Namespace = "not valid"
	cfg.Telemetry.Metrics.Path = ""

	if err := Validate(cfg); err != nil {
		t.Errorf("expected disabled metrics section to be ignored, got %v", err)
	}
}

func TestFieldError_Error(t *testing.T) {
	err := FieldError{Field: "store.backend", Message: "backend is required"}
	if got, want := err.Error(), "store.backend: backend is required"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	single := ValidationError{Errors: []FieldError{err}}
	if got, want := single.Error(), "configuration validation failed: store.backend: backend is required"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
