package config

import "time"

// Default values for configuration fields.
const (
	// Lint defaults
	DefaultLintWorkers   = 0
	DefaultLintMaxDepth  = 256
	DefaultLintMaxLength = 64 * 1024
	DefaultLintCacheSize = 4096

	// Sampling defaults
	DefaultSamplingCount = 1000

	// Store defaults
	DefaultStoreBackend = "sqlite"
	DefaultStorePath    = "data/samples.db"

	// Telemetry defaults
	DefaultLoggingLevel     = "warn"
	DefaultLoggingFormat    = "text"
	DefaultMetricsNamespace = "petab"
	DefaultMetricsPath      = "/metrics"

	// Tracing defaults
	DefaultTracingExporter    = "otlp"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "petab"
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultDurationBuckets are the histogram buckets for formula compile
// duration in seconds.
var DefaultDurationBuckets = []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Lint defaults
	if cfg.Lint.MaxDepth == 0 {
		cfg.Lint.MaxDepth = DefaultLintMaxDepth
	}
	if cfg.Lint.MaxLength == 0 {
		cfg.Lint.MaxLength = DefaultLintMaxLength
	}
	if cfg.Lint.CacheSize == 0 {
		cfg.Lint.CacheSize = DefaultLintCacheSize
	}

	// Sampling defaults
	if cfg.Sampling.Count == 0 {
		cfg.Sampling.Count = DefaultSamplingCount
	}

	// Store defaults
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	// Tracing defaults
	tr := &cfg.Telemetry.Tracing
	if tr.Exporter == "" {
		tr.Exporter = DefaultTracingExporter
	}
	if tr.Endpoint == "" {
		tr.Endpoint = DefaultTracingEndpoint
	}
	if tr.Sampler == "" {
		tr.Sampler = DefaultTracingSampler
	}
	if tr.SampleRatio == 0 {
		tr.SampleRatio = DefaultTracingSampleRatio
	}
	if tr.ServiceName == "" {
		tr.ServiceName = DefaultTracingServiceName
	}
	if tr.Timeout == 0 {
		tr.Timeout = DefaultTracingTimeout
	}
}

// Default returns a configuration with every default applied. It is used
// when no configuration file is given.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}
