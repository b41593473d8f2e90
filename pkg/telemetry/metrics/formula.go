package metrics

import (
	"time"

	"petab-hq/petab/pkg/config"
	formulaErrors "petab-hq/petab/pkg/formula/errors"

	"github.com/prometheus/client_golang/prometheus"
)

// FormulaMetrics tracks formula compilation and evaluation.
//
// Metrics:
//   - petab_formulas_compiled_total: compiled formulas by result (ok, invalid)
//   - petab_formula_diagnostics_total: diagnostics by severity and type
//   - petab_formula_compile_duration_seconds: parse plus validation time
//   - petab_formula_eval_errors_total: evaluation failures by kind
type FormulaMetrics struct {
	compiledTotal   *prometheus.CounterVec
	diagnostics     *prometheus.CounterVec
	compileDuration prometheus.Histogram
	evalErrors      *prometheus.CounterVec
}

// NewFormulaMetrics creates and registers formula metrics with the provided registry.
func NewFormulaMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FormulaMetrics {
	fm := &FormulaMetrics{
		compiledTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "formulas_compiled_total",
				Help:      "Total number of compiled formulas",
			},
			[]string{"result"},
		),

		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "formula_diagnostics_total",
				Help:      "Total number of formula diagnostics",
			},
			[]string{"severity", "type"},
		),

		compileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "formula_compile_duration_seconds",
				Help:      "Duration of formula parsing and validation in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		evalErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "formula_eval_errors_total",
				Help:      "Total number of formula evaluation errors",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		fm.compiledTotal,
		fm.diagnostics,
		fm.compileDuration,
		fm.evalErrors,
	)

	return fm
}

// RecordCompile records one compiled formula.
func (fm *FormulaMetrics) RecordCompile(duration time.Duration, diags *formulaErrors.DiagnosticList) {
	fm.compileDuration.Observe(duration.Seconds())

	result := "ok"
	if diags.HasErrors() {
		result = "invalid"
	}
	fm.compiledTotal.WithLabelValues(result).Inc()

	if diags == nil {
		return
	}
	for _, d := range diags.Diagnostics {
		fm.diagnostics.WithLabelValues(string(d.Severity), string(d.Type)).Inc()
	}
}

// RecordEvalError records an evaluation failure.
func (fm *FormulaMetrics) RecordEvalError(kind string) {
	fm.evalErrors.WithLabelValues(kind).Inc()
}
