package metrics

import (
	"time"

	"petab-hq/petab/pkg/config"
	"petab-hq/petab/pkg/distributions"
	formulaErrors "petab-hq/petab/pkg/formula/errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus registry and every metric the tool
// exports. It implements formula.Recorder and lint.PriorRecorder, so it can
// be handed directly to a formula.Pipeline and a lint.Linter.
//
// When the metrics section is disabled every Record method is a no-op.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	formulaMetrics *FormulaMetrics
	cacheMetrics   *CacheMetrics
	priorMetrics   *PriorMetrics
	lintMetrics    *LintMetrics
}

// NewCollector creates a collector with the specified configuration and
// Prometheus registry. If registry is nil, a new registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "petab"}
//	collector := metrics.NewCollector(cfg, nil)
//	pipeline := formula.NewPipeline().WithRecorder(collector)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:         cfg,
		registry:       registry,
		formulaMetrics: NewFormulaMetrics(cfg, registry),
		cacheMetrics:   NewCacheMetrics(cfg, registry),
		priorMetrics:   NewPriorMetrics(cfg, registry),
		lintMetrics:    NewLintMetrics(cfg, registry),
	}
}

// Enabled reports whether metrics are being recorded.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// RecordFormula records one compiled formula and its diagnostics.
func (c *Collector) RecordFormula(duration time.Duration, diags *formulaErrors.DiagnosticList) {
	if !c.config.Enabled {
		return
	}

	c.formulaMetrics.RecordCompile(duration, diags)
}

// RecordCacheLookup records a formula parse cache lookup.
func (c *Collector) RecordCacheLookup(hit bool) {
	if !c.config.Enabled {
		return
	}

	if hit {
		c.cacheMetrics.RecordHit(FormulaCache)
	} else {
		c.cacheMetrics.RecordMiss(FormulaCache)
	}
}

// RecordEvalError records a numeric evaluation failure by kind
// ("domain_error", "unbound_identifier", "overflow", ...).
func (c *Collector) RecordEvalError(kind string) {
	if !c.config.Enabled {
		return
	}

	c.formulaMetrics.RecordEvalError(kind)
}

// UpdateCacheSize updates the current number of entries in a cache.
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.UpdateSize(cacheName, size)
}

// RecordPrior records an attempt to build a prior of the given family.
// Family names that are not registered are counted as "unknown" so table
// content cannot grow the label set.
func (c *Collector) RecordPrior(family string, ok bool) {
	if !c.config.Enabled {
		return
	}

	c.priorMetrics.RecordBuild(familyLabel(family), ok)
}

// RecordSamples records n samples drawn from a prior of the given family.
func (c *Collector) RecordSamples(family string, n int) {
	if !c.config.Enabled {
		return
	}

	c.priorMetrics.RecordSamples(familyLabel(family), n)
}

func familyLabel(name string) string {
	f, err := distributions.ParseFamily(name)
	if err != nil {
		return "unknown"
	}
	return f.String()
}

// RecordLintRun records a finished lint run.
func (c *Collector) RecordLintRun(duration time.Duration, errors, warnings int) {
	if !c.config.Enabled {
		return
	}

	c.lintMetrics.RecordRun(duration, errors, warnings)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
