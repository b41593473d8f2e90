// Package eval evaluates and simplifies PEtab formula ASTs.
//
// Evaluate reduces a tree to a float64 under a complete set of bindings.
// Arithmetic follows IEEE-754 doubles with PEtab conventions on top:
// booleans are 1 and 0, 0^0 is 1, and operations that would silently
// produce NaN or Inf from finite operands (division by zero, log of a
// non-positive number, negative base with a fractional exponent) are
// reported as *Error values instead.
//
// Conditionals, piecewise and the logical operators evaluate lazily, so
//
//	if x > 0 then log(x) else 0
//
// is well defined for x = -1.
//
// Simplify substitutes a partial set of bindings, folds constant
// sub-expressions and applies a small set of algebraic identities. It is a
// minimal simplifier, not a computer algebra system. Callers that need more
// can plug in their own implementation of the Simplifier interface.
package eval
