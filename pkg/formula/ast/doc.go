// Package ast provides Abstract Syntax Tree (AST) definitions for PEtab math
// formulas, the small expression language found in observable, noise and
// condition table cells.
//
// The AST is a closed set of node types. Every node implements Node and
// carries the byte span of the source text it was parsed from, so that
// diagnostics can point at the offending part of a formula.
//
// # Core Types
//
// NumberLiteral, BooleanLiteral, StringLiteral: literal values
//
// Identifier: reference to a model entity, parameter, observable or constant
//
// UnaryOp, BinaryOp: operator applications
//
// FunctionCall: built-in function application with ordered arguments
//
// Conditional: if/then/else expression
//
// # Basic Usage
//
//	res := parser.ParseString("observableParameter1_obs_a * exp(-k1 * time)")
//	ast.Inspect(res.Root, func(n ast.Node) bool {
//	    if id, ok := n.(*ast.Identifier); ok {
//	        fmt.Println(id.Name, id.Span())
//	    }
//	    return true
//	})
//
//	fmt.Println(ast.Format(res.Root))
//
// Trees are owned by whoever parsed them and are never mutated after
// construction, so a parsed tree may be shared between goroutines.
package ast
