package config

import "time"

// Config is the root configuration structure for the petab tool.
// It holds the lint, sampling, sample store and telemetry sections.
type Config struct {
	// Lint contains settings for problem linting and formula validation.
	Lint LintConfig `yaml:"lint"`

	// Sampling contains defaults for drawing prior samples.
	Sampling SamplingConfig `yaml:"sampling"`

	// Store selects where drawn sample batches are persisted.
	Store StoreConfig `yaml:"store"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LintConfig contains settings for the linter and the formula pipeline.
type LintConfig struct {
	// Workers is the number of formulas validated concurrently.
	// Zero means one worker per available CPU.
	// Default: 0
	Workers int `yaml:"workers"`

	// Strict makes warnings fail a lint run.
	// Default: false
	Strict bool `yaml:"strict"`

	// ModelSymbols lists the entity IDs the model defines (species,
	// compartments, assignment targets). When empty, identifiers that are
	// not parameters are assumed to be model entities and reported as
	// warnings.
	ModelSymbols []string `yaml:"model_symbols"`

	// ModelSymbolsFile is a file with one model entity ID per line. It is
	// merged with ModelSymbols.
	ModelSymbolsFile string `yaml:"model_symbols_file"`

	// MaxDepth is the maximum nesting depth accepted by the parser.
	// Default: 256
	MaxDepth int `yaml:"max_depth"`

	// MaxLength is the maximum formula length in bytes.
	// Default: 65536
	MaxLength int `yaml:"max_length"`

	// CacheSize is the number of parsed formulas kept in memory.
	// Zero disables the cache.
	// Default: 4096
	CacheSize int `yaml:"cache_size"`
}

// SamplingConfig contains defaults for "petab sample".
type SamplingConfig struct {
	// Seed seeds the random source. Zero draws a random seed, which is
	// recorded with the stored batch.
	// Default: 0
	Seed uint64 `yaml:"seed"`

	// Count is the number of samples drawn per parameter.
	// Default: 1000
	Count int `yaml:"count"`

	// Unscaled returns samples on linear scale instead of the parameter
	// scale.
	// Default: false
	Unscaled bool `yaml:"unscaled"`
}

// StoreConfig selects the sample store backend.
type StoreConfig struct {
	// Backend is the storage backend.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database path.
	// Default: "data/samples.db"
	Path string `yaml:"path"`

	// Retention controls pruning of saved sample batches.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig limits how many saved sample batches are kept.
// Pruning runs on Schedule while a long-running command (lint --watch)
// is up, and on demand with "petab sample prune".
type RetentionConfig struct {
	// MaxAge deletes batches created longer ago than this.
	// Zero keeps batches regardless of age.
	// Default: 0
	MaxAge time.Duration `yaml:"max_age"`

	// MaxBatches keeps only the newest batches per store.
	// Zero means unlimited.
	// Default: 0
	MaxBatches int `yaml:"max_batches"`

	// Schedule is a standard five-field cron expression, e.g.
	// "0 3 * * *" for daily at 3 AM. Empty disables scheduled pruning.
	// Default: ""
	Schedule string `yaml:"schedule"`
}

// Enabled reports whether any retention limit is set.
func (r RetentionConfig) Enabled() bool {
	return r.MaxAge > 0 || r.MaxBatches > 0
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "warn"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "petab"
	Namespace string `yaml:"namespace"`

	// ListenAddress serves Prometheus metrics over HTTP while a long
	// running command (lint --watch) is active. Empty disables the server.
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Textfile is written in the node exporter textfile format when a
	// command finishes. Empty disables it.
	Textfile string `yaml:"textfile"`

	// DurationBuckets defines histogram buckets for formula compile
	// duration (seconds).
	// Default: [0.00001, 0.0001, 0.001, 0.01, 0.1, 1]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Exporter selects the span exporter.
	// Options: "otlp" (gRPC), "stdout"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces sampled by the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "petab"
	ServiceName string `yaml:"service_name"`

	// Timeout bounds exporting a batch of spans.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
