package eval

import (
	"math"

	"petab-hq/petab/pkg/formula/ast"
	"petab-hq/petab/pkg/formula/builtin"
)

// Bindings maps identifiers to numeric values.
type Bindings map[string]float64

// Evaluate computes the value of root. Every identifier that is not a
// predefined constant must be bound. The returned error is always an *Error.
func Evaluate(root ast.Node, bindings Bindings) (float64, error) {
	v, err := evaluate(root, bindings)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func evaluate(n ast.Node, b Bindings) (float64, *Error) {
	switch n := n.(type) {
	case nil:
		return 0, &Error{Kind: ErrorKindInvalid, Message: "missing expression"}

	case *ast.NumberLiteral:
		return n.Value, nil

	case *ast.BooleanLiteral:
		return boolValue(n.Value), nil

	case *ast.StringLiteral:
		return 0, newError(ErrorKindInvalid, n, "string %q has no numeric value", n.Value)

	case *ast.Identifier:
		if v, ok := b[n.Name]; ok {
			return v, nil
		}
		if v, ok := builtin.Constant(n.Name); ok {
			return v, nil
		}
		return 0, newError(ErrorKindUnbound, n, "no value bound to %q", n.Name)

	case *ast.UnaryOp:
		x, err := evaluate(n.Operand, b)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case ast.OpSub:
			return -x, nil
		case ast.OpAdd:
			return x, nil
		case ast.OpNot:
			return boolValue(x == 0), nil
		}
		return 0, newError(ErrorKindInvalid, n, "unknown unary operator %q", n.Op)

	case *ast.BinaryOp:
		return evalBinary(n, b)

	case *ast.FunctionCall:
		return evalCall(n, b)

	case *ast.Conditional:
		cond, err := condition(n.Condition, b)
		if err != nil {
			return 0, err
		}
		if cond {
			return evaluate(n.Then, b)
		}
		return evaluate(n.Else, b)
	}
	return 0, newError(ErrorKindInvalid, n, "unsupported node %T", n)
}

// condition evaluates n as a truth value. NaN has no truth value.
func condition(n ast.Node, b Bindings) (bool, *Error) {
	v, err := evaluate(n, b)
	if err != nil {
		return false, err
	}
	if math.IsNaN(v) {
		return false, newError(ErrorKindDomain, n, "condition evaluates to NaN")
	}
	return v != 0, nil
}

func evalBinary(n *ast.BinaryOp, b Bindings) (float64, *Error) {
	// Logical operators short-circuit
	switch n.Op {
	case ast.OpAnd, ast.OpOr:
		left, err := condition(n.Left, b)
		if err != nil {
			return 0, err
		}
		if n.Op == ast.OpAnd && !left {
			return 0, nil
		}
		if n.Op == ast.OpOr && left {
			return 1, nil
		}
		right, err := condition(n.Right, b)
		if err != nil {
			return 0, err
		}
		return boolValue(right), nil
	}

	l, err := evaluate(n.Left, b)
	if err != nil {
		return 0, err
	}
	r, err := evaluate(n.Right, b)
	if err != nil {
		return 0, err
	}
	return applyBinary(n, n.Op, l, r)
}

// applyBinary applies a non-logical binary operator to evaluated operands.
// n is used for error spans.
func applyBinary(n ast.Node, op ast.Operator, l, r float64) (float64, *Error) {
	var v float64
	switch op {
	case ast.OpAdd:
		v = l + r
	case ast.OpSub:
		v = l - r
	case ast.OpMul:
		v = l * r
	case ast.OpDiv:
		if r == 0 {
			return 0, newError(ErrorKindDomain, n, "division by zero")
		}
		v = l / r
	case ast.OpPow:
		var err *Error
		if v, err = power(n, l, r); err != nil {
			return 0, err
		}
	case ast.OpEq:
		return boolValue(l == r), nil
	case ast.OpNe:
		return boolValue(l != r), nil
	case ast.OpLt:
		return boolValue(l < r), nil
	case ast.OpLe:
		return boolValue(l <= r), nil
	case ast.OpGt:
		return boolValue(l > r), nil
	case ast.OpGe:
		return boolValue(l >= r), nil
	case ast.OpAnd:
		return boolValue(l != 0 && r != 0), nil
	case ast.OpOr:
		return boolValue(l != 0 || r != 0), nil
	default:
		return 0, newError(ErrorKindInvalid, n, "unknown binary operator %q", op)
	}
	return checkFinite(n, v, l, r)
}

// power implements ^ and pow(). 0^0 is 1.
func power(n ast.Node, base, exp float64) (float64, *Error) {
	if base == 0 && exp == 0 {
		return 1, nil
	}
	if base == 0 && exp < 0 {
		return 0, newError(ErrorKindDomain, n, "zero raised to negative power %s", ast.FormatNumber(exp))
	}
	if base < 0 && !math.IsInf(exp, 0) && exp != math.Trunc(exp) {
		return 0, newError(ErrorKindDomain, n, "negative base %s raised to non-integer power %s",
			ast.FormatNumber(base), ast.FormatNumber(exp))
	}
	return checkFinite(n, math.Pow(base, exp), base, exp)
}

// checkFinite reports Overflow when finite operands produced Inf or NaN.
func checkFinite(n ast.Node, v float64, operands ...float64) (float64, *Error) {
	if !math.IsInf(v, 0) && !math.IsNaN(v) {
		return v, nil
	}
	for _, o := range operands {
		if math.IsInf(o, 0) || math.IsNaN(o) {
			return v, nil
		}
	}
	return 0, newError(ErrorKindOverflow, n, "result %s is not finite", ast.FormatNumber(v))
}

func evalCall(n *ast.FunctionCall, b Bindings) (float64, *Error) {
	sig, ok := builtin.Lookup(n.Name)
	if !ok {
		return 0, newError(ErrorKindInvalid, n, "unknown function %q", n.Name)
	}
	if !sig.Accepts(len(n.Args)) {
		return 0, newError(ErrorKindInvalid, n, "%s takes %s argument(s), got %d", n.Name, sig.Arity(), len(n.Args))
	}

	if n.Name == "piecewise" {
		return evalPiecewise(n, b)
	}

	args := make([]float64, len(n.Args))
	for i, arg := range n.Args {
		v, err := evaluate(arg, b)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	return callFunction(n, n.Name, args)
}

// evalPiecewise evaluates piecewise(v1, c1, v2, c2, ..., otherwise). Only
// the conditions up to the first true one and the selected value are
// evaluated.
func evalPiecewise(n *ast.FunctionCall, b Bindings) (float64, *Error) {
	last := len(n.Args) - 1
	for i := 0; i < last; i += 2 {
		cond, err := condition(n.Args[i+1], b)
		if err != nil {
			return 0, err
		}
		if cond {
			return evaluate(n.Args[i], b)
		}
	}
	return evaluate(n.Args[last], b)
}

func boolValue(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
