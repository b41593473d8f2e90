// Package builtin is the catalogue of functions, keywords and constants
// predefined by the PEtab formula language.
//
// The catalogue is shared by the validator (arity checks, reserved names)
// and the evaluator (implementations keyed by the same names).
package builtin

import (
	"fmt"
	"math"
	"slices"
)

// Unbounded marks a function without an upper argument limit.
const Unbounded = -1

// Function describes the signature of a built-in function.
type Function struct {
	Name        string
	Description string
	MinArgs     int
	MaxArgs     int  // Unbounded for variadic functions
	OddArgs     bool // argument count must be odd (piecewise)
}

// Accepts reports whether n arguments satisfy the signature.
func (f Function) Accepts(n int) bool {
	if n < f.MinArgs {
		return false
	}
	if f.MaxArgs != Unbounded && n > f.MaxArgs {
		return false
	}
	if f.OddArgs && n%2 == 0 {
		return false
	}
	return true
}

// Arity describes the accepted argument count, e.g. "exactly 1" or "at least 2".
func (f Function) Arity() string {
	switch {
	case f.OddArgs:
		return fmt.Sprintf("an odd number (at least %d)", f.MinArgs)
	case f.MaxArgs == Unbounded:
		return fmt.Sprintf("at least %d", f.MinArgs)
	case f.MinArgs == f.MaxArgs:
		return fmt.Sprintf("exactly %d", f.MinArgs)
	}
	return fmt.Sprintf("%d to %d", f.MinArgs, f.MaxArgs)
}

func unary(name, desc string) Function {
	return Function{Name: name, Description: desc, MinArgs: 1, MaxArgs: 1}
}

var functions = map[string]Function{}

func init() {
	for _, f := range []Function{
		unary("exp", "Exponential function"),
		unary("sqrt", "Square root"),
		unary("abs", "Absolute value"),
		unary("sign", "Sign (-1, 0 or 1)"),
		unary("floor", "Round down"),
		unary("ceil", "Round up"),
		unary("ln", "Natural logarithm"),
		unary("log10", "Logarithm base 10"),
		unary("log2", "Logarithm base 2"),

		unary("sin", "Sine"),
		unary("cos", "Cosine"),
		unary("tan", "Tangent"),
		unary("cot", "Cotangent"),
		unary("sec", "Secant"),
		unary("csc", "Cosecant"),
		unary("arcsin", "Inverse sine"),
		unary("arccos", "Inverse cosine"),
		unary("arctan", "Inverse tangent"),
		unary("arccot", "Inverse cotangent"),
		unary("arcsec", "Inverse secant"),
		unary("arccsc", "Inverse cosecant"),

		unary("sinh", "Hyperbolic sine"),
		unary("cosh", "Hyperbolic cosine"),
		unary("tanh", "Hyperbolic tangent"),
		unary("coth", "Hyperbolic cotangent"),
		unary("sech", "Hyperbolic secant"),
		unary("csch", "Hyperbolic cosecant"),
		unary("arcsinh", "Inverse hyperbolic sine"),
		unary("arccosh", "Inverse hyperbolic cosine"),
		unary("arctanh", "Inverse hyperbolic tangent"),
		unary("arccoth", "Inverse hyperbolic cotangent"),
		unary("arcsech", "Inverse hyperbolic secant"),
		unary("arccsch", "Inverse hyperbolic cosecant"),

		{Name: "log", Description: "Natural logarithm, or log(x, base)", MinArgs: 1, MaxArgs: 2},
		{Name: "pow", Description: "Power pow(base, exponent)", MinArgs: 2, MaxArgs: 2},
		{Name: "min", Description: "Minimum of the arguments", MinArgs: 2, MaxArgs: Unbounded},
		{Name: "max", Description: "Maximum of the arguments", MinArgs: 2, MaxArgs: Unbounded},
		{Name: "piecewise", Description: "piecewise(v1, c1, ..., otherwise)", MinArgs: 3, MaxArgs: Unbounded, OddArgs: true},
	} {
		functions[f.Name] = f
	}
}

// Lookup returns the signature of a built-in function.
func Lookup(name string) (Function, bool) {
	f, ok := functions[name]
	return f, ok
}

// Names returns the sorted names of all built-in functions.
func Names() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Keywords are the reserved words of the grammar.
var Keywords = []string{"if", "then", "else", "true", "false"}

var constants = map[string]float64{
	"inf": math.Inf(1),
	"nan": math.NaN(),
}

// Constant returns the value of a predefined constant.
func Constant(name string) (float64, bool) {
	v, ok := constants[name]
	return v, ok
}

// IsReserved reports whether name may not be used as a model symbol.
func IsReserved(name string) bool {
	if _, ok := functions[name]; ok {
		return true
	}
	if _, ok := constants[name]; ok {
		return true
	}
	return slices.Contains(Keywords, name)
}
