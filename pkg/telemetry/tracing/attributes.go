package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys use the "petab." namespace.
const (
	AttrRunID     = "petab.run_id"
	AttrProblem   = "petab.problem"
	AttrTable     = "petab.table"
	AttrParameter = "petab.parameter"

	AttrFormulaCount   = "petab.formula.count"
	AttrFormulaWorkers = "petab.formula.workers"

	AttrLintErrors   = "petab.lint.errors"
	AttrLintWarnings = "petab.lint.warnings"

	AttrPriorFamily = "petab.prior.family"
	AttrPriorScale  = "petab.prior.scale"
	AttrSampleCount = "petab.sample.count"
	AttrSampleSeed  = "petab.sample.seed"
)

// Problem returns the problem path attribute.
func Problem(path string) attribute.KeyValue {
	return attribute.String(AttrProblem, path)
}

// RunID returns the run ID attribute.
func RunID(id string) attribute.KeyValue {
	return attribute.String(AttrRunID, id)
}

// Table returns the table name attribute.
func Table(name string) attribute.KeyValue {
	return attribute.String(AttrTable, name)
}

// Parameter returns the parameter ID attribute.
func Parameter(id string) attribute.KeyValue {
	return attribute.String(AttrParameter, id)
}

// SetFormulaBatchAttributes records the size of a validation batch.
func SetFormulaBatchAttributes(span trace.Span, count, workers int) {
	span.SetAttributes(
		attribute.Int(AttrFormulaCount, count),
		attribute.Int(AttrFormulaWorkers, workers),
	)
}

// SetLintAttributes records the result counts of a lint run.
func SetLintAttributes(span trace.Span, errors, warnings int) {
	span.SetAttributes(
		attribute.Int(AttrLintErrors, errors),
		attribute.Int(AttrLintWarnings, warnings),
	)
}

// SetSampleAttributes records a sampling request.
func SetSampleAttributes(span trace.Span, family, scale string, count int, seed uint64) {
	span.SetAttributes(
		attribute.String(AttrPriorFamily, family),
		attribute.String(AttrPriorScale, scale),
		attribute.Int(AttrSampleCount, count),
		// Attributes have no unsigned type; the bit pattern is preserved.
		attribute.Int64(AttrSampleSeed, int64(seed)),
	)
}
