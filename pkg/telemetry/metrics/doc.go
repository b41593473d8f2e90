// Package metrics provides Prometheus metrics for the petab tool.
//
// # Metrics Categories
//
//   - Formula metrics: compiled formulas, diagnostics by severity and type,
//     compile duration, evaluation errors by kind
//   - Cache metrics: formula parse cache hits, misses and size
//   - Prior metrics: prior constructions by family and result, samples drawn
//   - Lint metrics: runs by outcome, duration, findings by severity
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	pipeline := formula.NewPipeline().WithRecorder(collector)
//	linter := lint.NewLinter().WithPipeline(pipeline).WithPriorRecorder(collector)
//
// One-shot commands write the registry to a node exporter textfile with
// WriteTextfile; long running commands expose it over HTTP with Serve or
// Handler.
package metrics
