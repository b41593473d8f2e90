package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// ProblemKey is the context key for the problem file path.
	ProblemKey contextKey = "problem"

	// TableKey is the context key for the table being processed.
	TableKey contextKey = "table"

	// RowKey is the context key for a 1-based data row number.
	RowKey contextKey = "row"

	// ParameterKey is the context key for a parameter ID.
	ParameterKey contextKey = "parameter"

	// RunIDKey is the context key for the run identifier of a lint or
	// sampling run.
	RunIDKey contextKey = "run_id"
)

// WithProblem adds the problem path to the context.
func WithProblem(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, ProblemKey, path)
}

// GetProblem retrieves the problem path from the context.
func GetProblem(ctx context.Context) string {
	if path, ok := ctx.Value(ProblemKey).(string); ok {
		return path
	}
	return ""
}

// WithTable adds a table name to the context.
func WithTable(ctx context.Context, table string) context.Context {
	return context.WithValue(ctx, TableKey, table)
}

// GetTable retrieves the table name from the context.
func GetTable(ctx context.Context) string {
	if table, ok := ctx.Value(TableKey).(string); ok {
		return table
	}
	return ""
}

// WithRow adds a row number to the context.
func WithRow(ctx context.Context, row int) context.Context {
	return context.WithValue(ctx, RowKey, row)
}

// GetRow retrieves the row number from the context.
func GetRow(ctx context.Context) (int, bool) {
	row, ok := ctx.Value(RowKey).(int)
	return row, ok
}

// WithParameter adds a parameter ID to the context.
func WithParameter(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ParameterKey, id)
}

// GetParameter retrieves the parameter ID from the context.
func GetParameter(ctx context.Context) string {
	if id, ok := ctx.Value(ParameterKey).(string); ok {
		return id
	}
	return ""
}

// WithRunID adds a run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run identifier from the context.
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return ""
}

// extractContextFields returns the context fields of ctx as alternating
// key/value pairs in a fixed order.
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if id := GetRunID(ctx); id != "" {
		fields = append(fields, string(RunIDKey), id)
	}
	if path := GetProblem(ctx); path != "" {
		fields = append(fields, string(ProblemKey), path)
	}
	if table := GetTable(ctx); table != "" {
		fields = append(fields, string(TableKey), table)
	}
	if row, ok := GetRow(ctx); ok {
		fields = append(fields, string(RowKey), row)
	}
	if id := GetParameter(ctx); id != "" {
		fields = append(fields, string(ParameterKey), id)
	}

	return fields
}
