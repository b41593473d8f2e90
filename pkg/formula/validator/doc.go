// Package validator checks parsed formulas against a symbol table.
//
// Validation runs two passes over the tree and collects every finding in
// one DiagnosticList:
//
//   - semantic: identifiers resolve, function names exist with a matching
//     arity, no reserved names are used as symbols, no string literals in
//     numeric positions (errors)
//   - domain: operations that are provably undefined once constant operands
//     are folded, such as division by zero or log of a non-positive number
//     (warnings, or errors in strict mode)
//
// # Basic Usage
//
//	table := symbols.NewTable().MustAdd("a", symbols.Parameter)
//	res := parser.ParseString("a + c")
//	diags := validator.NewValidator().Validate(res.Root, table)
//	// diags reports `undefined identifier "c"`
package validator
