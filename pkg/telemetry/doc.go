// Package telemetry groups the observability packages used by the petab
// command line.
//
//   - logging: slog-based structured logging with context fields
//   - metrics: Prometheus collectors for formulas, caches, priors and lint runs
//   - tracing: OpenTelemetry spans around problem loading, linting and sampling
//   - health: liveness and readiness probes for lint --watch
//
// Each package is configured from the telemetry section of the petab
// configuration file and is a no-op when disabled.
package telemetry
