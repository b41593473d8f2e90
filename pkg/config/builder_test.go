package config

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with the defaults applied and
// an in-memory store, so tests never touch the filesystem.
func NewTestConfig() *ConfigBuilder {
	var cfg Config
	ApplyDefaults(&cfg)
	cfg.Store.Backend = "memory"
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithWorkers sets the lint worker count.
func (b *ConfigBuilder) WithWorkers(n int) *ConfigBuilder {
	b.cfg.Lint.Workers = n
	return b
}

// WithModelSymbols sets the declared model entity IDs.
func (b *ConfigBuilder) WithModelSymbols(ids ...string) *ConfigBuilder {
	b.cfg.Lint.ModelSymbols = ids
	return b
}

// WithStore sets the sample store backend and path.
func (b *ConfigBuilder) WithStore(backend, path string) *ConfigBuilder {
	b.cfg.Store.Backend = backend
	b.cfg.Store.Path = path
	return b
}

// WithSampling sets the sampling seed and count.
func (b *ConfigBuilder) WithSampling(seed uint64, count int) *ConfigBuilder {
	b.cfg.Sampling.Seed = seed
	b.cfg.Sampling.Count = count
	return b
}

// WithLogging sets the logging level and format.
func (b *ConfigBuilder) WithLogging(level, format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetrics enables metrics with the given namespace.
func (b *ConfigBuilder) WithMetrics(namespace string) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = true
	b.cfg.Telemetry.Metrics.Namespace = namespace
	return b
}
