// Package logging provides structured logging on top of log/slog.
//
// A Logger writes JSON, text or console output and bounds the length of
// string values, so a long formula in a log field does not flood the
// output. Fields stored in a context.Context with WithProblem, WithTable,
// WithRow, WithParameter and WithRunID are added to every record logged
// with that context:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	ctx = logging.WithTable(logging.WithRunID(ctx, id), "parameters")
//	logger.InfoContext(ctx, "table loaded", "rows", n)
//
// Slog returns the underlying *slog.Logger for packages that take one;
// records logged through it still carry the context fields.
package logging
