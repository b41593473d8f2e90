// Package formula ties the formula front end together: text is tokenized,
// parsed and validated against a symbol table in one call, and compiled
// formulas can be evaluated or simplified.
//
// The sub-packages can be used on their own:
//
//	lexer      text to tokens
//	parser     tokens to AST plus syntax diagnostics
//	validator  AST plus symbol table to semantic and domain diagnostics
//	eval       evaluation and simplification
//
// A Pipeline adds an optional parse cache keyed by formula text and an
// optional Recorder for metrics. ValidateAll compiles many formulas
// concurrently; every formula gets its own diagnostics and one bad cell
// never prevents the others from being checked.
//
// # Basic Usage
//
//	table := symbols.NewTable().MustAdd("k1", symbols.Parameter)
//	f := formula.Compile("2 * k1", table)
//	if err := f.Err(); err != nil {
//	    return err
//	}
//	v, err := f.Evaluate(eval.Bindings{"k1": 0.5})
package formula
