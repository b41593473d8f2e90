package metrics

import (
	"time"

	"petab-hq/petab/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// LintMetrics tracks lint runs.
//
// Metrics:
//   - petab_lint_runs_total: lint runs by outcome (clean, warnings, errors)
//   - petab_lint_duration_seconds: lint run duration
//   - petab_lint_findings_total: findings by severity
//   - petab_lint_last_run_errors: error count of the most recent run
type LintMetrics struct {
	runsTotal     *prometheus.CounterVec
	duration      prometheus.Histogram
	findingsTotal *prometheus.CounterVec
	lastErrors    prometheus.Gauge
}

// NewLintMetrics creates and registers lint metrics with the provided registry.
func NewLintMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LintMetrics {
	lm := &LintMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "lint_runs_total",
				Help:      "Total number of lint runs",
			},
			[]string{"outcome"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "lint_duration_seconds",
				Help:      "Duration of lint runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms to ~16s
			},
		),

		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "lint_findings_total",
				Help:      "Total number of lint findings",
			},
			[]string{"severity"},
		),

		lastErrors: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "lint_last_run_errors",
				Help:      "Number of errors found by the most recent lint run",
			},
		),
	}

	registry.MustRegister(
		lm.runsTotal,
		lm.duration,
		lm.findingsTotal,
		lm.lastErrors,
	)

	return lm
}

// RecordRun records a finished lint run.
func (lm *LintMetrics) RecordRun(duration time.Duration, errors, warnings int) {
	outcome := "clean"
	switch {
	case errors > 0:
		outcome = "errors"
	case warnings > 0:
		outcome = "warnings"
	}
	lm.runsTotal.WithLabelValues(outcome).Inc()
	lm.duration.Observe(duration.Seconds())
	lm.findingsTotal.WithLabelValues("error").Add(float64(errors))
	lm.findingsTotal.WithLabelValues("warning").Add(float64(warnings))
	lm.lastErrors.Set(float64(errors))
}
