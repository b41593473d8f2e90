package eval

import (
	"math"

	"petab-hq/petab/pkg/formula/ast"
	"petab-hq/petab/pkg/formula/builtin"
)

// Simplifier rewrites a tree under partial bindings. Implementations must
// not modify root.
type Simplifier interface {
	Simplify(root ast.Node, bindings Bindings) ast.Node
}

// Folding is the built-in Simplifier: binding substitution, constant
// folding, neutral and absorbing elements, and pruning of conditionals with
// constant conditions.
//
// The identities x*0 = 0 and x^0 = 1 hold for finite x only. Folding does
// not try to prove finiteness.
type Folding struct{}

// Simplify implements Simplifier.
func (Folding) Simplify(root ast.Node, bindings Bindings) ast.Node {
	if root == nil {
		return nil
	}
	return simplify(root, bindings)
}

// Simplify runs the Folding simplifier.
func Simplify(root ast.Node, bindings Bindings) ast.Node {
	return Folding{}.Simplify(root, bindings)
}

func simplify(n ast.Node, b Bindings) ast.Node {
	switch n := n.(type) {
	case *ast.Identifier:
		if v, ok := b[n.Name]; ok {
			return &ast.NumberLiteral{Value: v, Loc: n.Loc}
		}
		if v, ok := builtin.Constant(n.Name); ok {
			return &ast.NumberLiteral{Value: v, Loc: n.Loc}
		}
		return n

	case *ast.UnaryOp:
		operand := simplify(n.Operand, b)
		if _, ok := literalValue(operand); ok {
			return fold(&ast.UnaryOp{Op: n.Op, Operand: operand, Loc: n.Loc})
		}
		switch n.Op {
		case ast.OpAdd:
			return operand
		case ast.OpSub:
			return negate(operand, n.Loc)
		case ast.OpNot:
			if inner, ok := operand.(*ast.UnaryOp); ok && inner.Op == ast.OpNot && isBoolean(inner.Operand) {
				return inner.Operand
			}
		}
		return &ast.UnaryOp{Op: n.Op, Operand: operand, Loc: n.Loc}

	case *ast.BinaryOp:
		return simplifyBinary(n, b)

	case *ast.FunctionCall:
		if n.Name == "piecewise" {
			return simplifyPiecewise(n, b)
		}
		args := make([]ast.Node, len(n.Args))
		constant := true
		for i, arg := range n.Args {
			args[i] = simplify(arg, b)
			if _, ok := literalValue(args[i]); !ok {
				constant = false
			}
		}
		call := &ast.FunctionCall{Name: n.Name, NameLoc: n.NameLoc, Args: args, Loc: n.Loc}
		if constant {
			return fold(call)
		}
		return call

	case *ast.Conditional:
		cond := simplify(n.Condition, b)
		if v, ok := literalValue(cond); ok && !math.IsNaN(v) {
			if v != 0 {
				return simplify(n.Then, b)
			}
			return simplify(n.Else, b)
		}
		return &ast.Conditional{
			Condition: cond,
			Then:      simplify(n.Then, b),
			Else:      simplify(n.Else, b),
			Loc:       n.Loc,
		}
	}
	return n
}

func simplifyBinary(n *ast.BinaryOp, b Bindings) ast.Node {
	l := simplify(n.Left, b)
	r := simplify(n.Right, b)
	lv, lConst := literalValue(l)
	rv, rConst := literalValue(r)

	if lConst && rConst {
		return fold(&ast.BinaryOp{Op: n.Op, Left: l, Right: r, Loc: n.Loc})
	}

	switch n.Op {
	case ast.OpAnd:
		if lConst && !math.IsNaN(lv) {
			if lv == 0 {
				return &ast.BooleanLiteral{Value: false, Loc: n.Loc}
			}
			if isBoolean(r) {
				return r
			}
		}
	case ast.OpOr:
		if lConst && !math.IsNaN(lv) {
			if lv != 0 {
				return &ast.BooleanLiteral{Value: true, Loc: n.Loc}
			}
			if isBoolean(r) {
				return r
			}
		}
	case ast.OpAdd:
		if rConst && rv == 0 {
			return l
		}
		if lConst && lv == 0 {
			return r
		}
	case ast.OpSub:
		if rConst && rv == 0 {
			return l
		}
		if lConst && lv == 0 {
			return negate(r, n.Loc)
		}
	case ast.OpMul:
		if (rConst && rv == 0) || (lConst && lv == 0) {
			return &ast.NumberLiteral{Value: 0, Loc: n.Loc}
		}
		if rConst && rv == 1 {
			return l
		}
		if lConst && lv == 1 {
			return r
		}
	case ast.OpDiv:
		if rConst && rv == 1 {
			return l
		}
	case ast.OpPow:
		if rConst && rv == 0 {
			return &ast.NumberLiteral{Value: 1, Loc: n.Loc}
		}
		if rConst && rv == 1 {
			return l
		}
		if lConst && lv == 1 {
			return &ast.NumberLiteral{Value: 1, Loc: n.Loc}
		}
	}
	return &ast.BinaryOp{Op: n.Op, Left: l, Right: r, Loc: n.Loc}
}

// simplifyPiecewise drops branches whose condition is constant false and
// truncates at the first constant true condition.
func simplifyPiecewise(n *ast.FunctionCall, b Bindings) ast.Node {
	if len(n.Args) < 3 || len(n.Args)%2 == 0 {
		return n
	}
	var args []ast.Node
	last := len(n.Args) - 1
	otherwise := n.Args[last]
	for i := 0; i < last; i += 2 {
		cond := simplify(n.Args[i+1], b)
		if v, ok := literalValue(cond); ok && !math.IsNaN(v) {
			if v == 0 {
				continue
			}
			otherwise = n.Args[i]
			break
		}
		args = append(args, simplify(n.Args[i], b), cond)
	}
	if len(args) == 0 {
		return simplify(otherwise, b)
	}
	args = append(args, simplify(otherwise, b))
	return &ast.FunctionCall{Name: n.Name, NameLoc: n.NameLoc, Args: args, Loc: n.Loc}
}

// fold evaluates a node whose operands are all literals. Nodes that fail to
// evaluate are returned unchanged so the error surfaces at evaluation time.
func fold(n ast.Node) ast.Node {
	v, err := evaluate(n, nil)
	if err != nil {
		return n
	}
	if isBoolean(n) {
		return &ast.BooleanLiteral{Value: v != 0, Loc: n.Span()}
	}
	return &ast.NumberLiteral{Value: v, Loc: n.Span()}
}

func negate(n ast.Node, loc ast.Span) ast.Node {
	if inner, ok := n.(*ast.UnaryOp); ok && inner.Op == ast.OpSub {
		return inner.Operand
	}
	if lit, ok := n.(*ast.NumberLiteral); ok {
		return &ast.NumberLiteral{Value: -lit.Value, Loc: loc}
	}
	return &ast.UnaryOp{Op: ast.OpSub, Operand: n, Loc: loc}
}

func literalValue(n ast.Node) (float64, bool) {
	switch n := n.(type) {
	case *ast.NumberLiteral:
		return n.Value, true
	case *ast.BooleanLiteral:
		return boolValue(n.Value), true
	}
	return 0, false
}

// isBoolean reports whether n always evaluates to 0 or 1.
func isBoolean(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.BooleanLiteral:
		return true
	case *ast.UnaryOp:
		return n.Op == ast.OpNot
	case *ast.BinaryOp:
		return n.Op.IsComparison() || n.Op.IsLogical()
	}
	return false
}
