// Package health provides liveness and readiness probes for long-running
// commands such as lint --watch.
//
// Probes are served next to the metrics endpoint:
//
//   - /healthz: the process is running
//   - /readyz: every registered check passes (sample store reachable,
//     last lint run loaded the problem)
//   - /version: build information
//
// Checks run concurrently, each bounded by the checker timeout.
package health
