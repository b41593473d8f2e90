// Package parser builds ASTs from PEtab formula tokens.
//
// The parser is a recursive-descent precedence climber. Binding strength,
// lowest first:
//
//	||
//	&&
//	== !=
//	< <= > >=
//	+ -
//	* /
//	unary - + ! ~
//	^            (right associative; -2^2 is -(2^2), 2^-1 is allowed)
//	call, literal, identifier, ( expr ), if C then A else B
//
// Parsing never panics and never returns a Go error. A Result always holds
// the diagnostics and, as far as parsing got, a tree. Callers decide whether
// a partial tree is useful; the evaluator must only be given trees whose
// diagnostics contain no errors.
//
// # Basic Usage
//
//	res := parser.ParseString("k1 * exp(-k2 * time)")
//	if res.Diagnostics.HasErrors() {
//	    return res.Diagnostics.ToError()
//	}
//	fmt.Println(ast.Format(res.Root))
package parser
