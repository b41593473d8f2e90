package metrics

import (
	"petab-hq/petab/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PriorMetrics tracks prior construction and sampling.
//
// Metrics:
//   - petab_priors_built_total: prior constructions by family and result
//   - petab_prior_samples_total: samples drawn by family
type PriorMetrics struct {
	builtTotal   *prometheus.CounterVec
	samplesTotal *prometheus.CounterVec
}

// NewPriorMetrics creates and registers prior metrics with the provided registry.
func NewPriorMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PriorMetrics {
	pm := &PriorMetrics{
		builtTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "priors_built_total",
				Help:      "Total number of prior constructions",
			},
			[]string{"family", "result"},
		),

		samplesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "prior_samples_total",
				Help:      "Total number of samples drawn from priors",
			},
			[]string{"family"},
		),
	}

	registry.MustRegister(
		pm.builtTotal,
		pm.samplesTotal,
	)

	return pm
}

// RecordBuild records a prior construction. Failed constructions carry
// result "config_error".
func (pm *PriorMetrics) RecordBuild(family string, ok bool) {
	result := "ok"
	if !ok {
		result = "config_error"
	}
	pm.builtTotal.WithLabelValues(family, result).Inc()
}

// RecordSamples adds n drawn samples.
func (pm *PriorMetrics) RecordSamples(family string, n int) {
	if n <= 0 {
		return
	}
	pm.samplesTotal.WithLabelValues(family).Add(float64(n))
}
