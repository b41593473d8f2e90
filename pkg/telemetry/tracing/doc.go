// Package tracing provides OpenTelemetry tracing for lint and sampling runs.
//
// Commands create one Tracer from the telemetry.tracing section; it
// installs the global tracer provider and exports spans over OTLP gRPC or
// to stderr:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
// Library packages start spans through the package level Start, which is
// a noop until a provider is installed:
//
//	ctx, span := tracing.Start(ctx, "lint.Lint", tracing.Problem(path))
//	defer span.End()
package tracing
