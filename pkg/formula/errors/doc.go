// Package errors provides the diagnostic types produced while lexing,
// parsing and validating PEtab formulas.
//
// Diagnostics are accumulated rather than returned one at a time: a single
// formula yields every problem that can be detected in one pass, and a
// caller linting a whole table merges the lists of all its cells.
//
// # Diagnostic Types
//
// ErrorTypeSyntax: malformed formula text (lexer and parser)
//
// ErrorTypeSemantic: unresolved identifier, unknown function, wrong arity,
// reserved-name collision
//
// ErrorTypeDomain: operations that are provably undefined for constant
// operands (division by zero, log of a non-positive literal); reported as
// warnings because evaluation may never reach them
//
// # Basic Usage
//
//	diags := errors.NewDiagnosticList()
//	diags.AddError(errors.ErrorTypeSemantic, `undefined identifier "k3"`, id.Span())
//	if diags.HasErrors() {
//	    fmt.Print(errors.WithSource(diags, text))
//	}
package errors
