package eval

import (
	"math"

	"petab-hq/petab/pkg/formula/ast"
)

// domainCheck returns a message when x is outside a function's domain.
type domainCheck func(x float64) string

func positive(x float64) string {
	if x <= 0 {
		return "argument must be positive"
	}
	return ""
}

func nonNegative(x float64) string {
	if x < 0 {
		return "argument must not be negative"
	}
	return ""
}

func nonZero(x float64) string {
	if x == 0 {
		return "argument must not be zero"
	}
	return ""
}

func unitInterval(x float64) string {
	if x < -1 || x > 1 {
		return "argument must lie in [-1, 1]"
	}
	return ""
}

func outsideUnitInterval(x float64) string {
	if x > -1 && x < 1 {
		return "argument must satisfy |x| >= 1"
	}
	return ""
}

type unaryFunc struct {
	fn     func(float64) float64
	domain domainCheck
}

// unaryFuncs implements every single-argument built-in.
var unaryFuncs = map[string]unaryFunc{
	"exp":   {fn: math.Exp},
	"sqrt":  {fn: math.Sqrt, domain: nonNegative},
	"abs":   {fn: math.Abs},
	"sign":  {fn: sign},
	"floor": {fn: math.Floor},
	"ceil":  {fn: math.Ceil},
	"ln":    {fn: math.Log, domain: positive},
	"log10": {fn: math.Log10, domain: positive},
	"log2":  {fn: math.Log2, domain: positive},

	"sin": {fn: math.Sin},
	"cos": {fn: math.Cos},
	"tan": {fn: math.Tan},
	"cot": {fn: func(x float64) float64 { return 1 / math.Tan(x) }, domain: func(x float64) string {
		if math.Tan(x) == 0 {
			return "cotangent is undefined at multiples of pi"
		}
		return ""
	}},
	"sec": {fn: func(x float64) float64 { return 1 / math.Cos(x) }},
	"csc": {fn: func(x float64) float64 { return 1 / math.Sin(x) }, domain: func(x float64) string {
		if math.Sin(x) == 0 {
			return "cosecant is undefined at multiples of pi"
		}
		return ""
	}},
	"arcsin": {fn: math.Asin, domain: unitInterval},
	"arccos": {fn: math.Acos, domain: unitInterval},
	"arctan": {fn: math.Atan},
	"arccot": {fn: func(x float64) float64 {
		if x == 0 {
			return math.Pi / 2
		}
		return math.Atan(1 / x)
	}},
	"arcsec": {fn: func(x float64) float64 { return math.Acos(1 / x) }, domain: outsideUnitInterval},
	"arccsc": {fn: func(x float64) float64 { return math.Asin(1 / x) }, domain: outsideUnitInterval},

	"sinh": {fn: math.Sinh},
	"cosh": {fn: math.Cosh},
	"tanh": {fn: math.Tanh},
	"coth": {fn: func(x float64) float64 { return 1 / math.Tanh(x) }, domain: nonZero},
	"sech": {fn: func(x float64) float64 { return 1 / math.Cosh(x) }},
	"csch": {fn: func(x float64) float64 { return 1 / math.Sinh(x) }, domain: nonZero},

	"arcsinh": {fn: math.Asinh},
	"arccosh": {fn: math.Acosh, domain: func(x float64) string {
		if x < 1 {
			return "argument must be >= 1"
		}
		return ""
	}},
	"arctanh": {fn: math.Atanh, domain: func(x float64) string {
		if x <= -1 || x >= 1 {
			return "argument must lie in (-1, 1)"
		}
		return ""
	}},
	"arccoth": {fn: func(x float64) float64 { return math.Atanh(1 / x) }, domain: func(x float64) string {
		if x >= -1 && x <= 1 {
			return "argument must satisfy |x| > 1"
		}
		return ""
	}},
	"arcsech": {fn: func(x float64) float64 { return math.Acosh(1 / x) }, domain: func(x float64) string {
		if x <= 0 || x > 1 {
			return "argument must lie in (0, 1]"
		}
		return ""
	}},
	"arccsch": {fn: func(x float64) float64 { return math.Asinh(1 / x) }, domain: nonZero},
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x // keeps NaN and signed zero
}

// callFunction applies the built-in name to evaluated arguments. Arity has
// already been checked.
func callFunction(n ast.Node, name string, args []float64) (float64, *Error) {
	if f, ok := unaryFuncs[name]; ok {
		x := args[0]
		if f.domain != nil && !math.IsNaN(x) {
			if msg := f.domain(x); msg != "" {
				return 0, newError(ErrorKindDomain, n, "%s(%s): %s", name, ast.FormatNumber(x), msg)
			}
		}
		return checkFinite(n, f.fn(x), x)
	}

	switch name {
	case "log":
		x := args[0]
		if msg := positive(x); msg != "" && !math.IsNaN(x) {
			return 0, newError(ErrorKindDomain, n, "log(%s): %s", ast.FormatNumber(x), msg)
		}
		if len(args) == 1 {
			return checkFinite(n, math.Log(x), x)
		}
		base := args[1]
		if base <= 0 || base == 1 {
			return 0, newError(ErrorKindDomain, n, "log base %s must be positive and not 1", ast.FormatNumber(base))
		}
		return checkFinite(n, math.Log(x)/math.Log(base), x, base)

	case "pow":
		return power(n, args[0], args[1])

	case "min", "max":
		v := args[0]
		for _, a := range args[1:] {
			if name == "min" {
				v = math.Min(v, a)
			} else {
				v = math.Max(v, a)
			}
		}
		return v, nil
	}

	return 0, newError(ErrorKindInvalid, n, "no implementation for %q", name)
}
