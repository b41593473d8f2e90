package ast

import (
	"math"
	"strconv"
	"strings"
)

// Binding strength of each syntactic form, lowest first. The parser uses the
// same ordering.
const (
	precConditional = iota
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPower
	precAtom
)

// Precedence returns the binding strength of a binary operator.
func Precedence(op Operator) int {
	switch op {
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpEq, OpNe:
		return precEquality
	case OpLt, OpLe, OpGt, OpGe:
		return precRelational
	case OpAdd, OpSub:
		return precAdditive
	case OpMul, OpDiv:
		return precMultiplicative
	case OpPow:
		return precPower
	}
	return precAtom
}

func nodePrecedence(n Node) int {
	switch n := n.(type) {
	case *BinaryOp:
		return Precedence(n.Op)
	case *UnaryOp:
		return precUnary
	case *Conditional:
		return precConditional
	case *NumberLiteral:
		if n.Value < 0 || math.Signbit(n.Value) {
			return precUnary
		}
	}
	return precAtom
}

// Format renders n back to PEtab formula syntax, inserting only the
// parentheses required to preserve the tree's structure. Negative number
// literals come back from the parser as a negation of a positive literal;
// apart from that the output parses back to a tree Equal to n.
func Format(n Node) string {
	var sb strings.Builder
	format(&sb, n)
	return sb.String()
}

func format(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *NumberLiteral:
		sb.WriteString(FormatNumber(n.Value))
	case *BooleanLiteral:
		sb.WriteString(strconv.FormatBool(n.Value))
	case *StringLiteral:
		sb.WriteByte('"')
		for _, r := range n.Value {
			if r == '"' || r == '\\' {
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		}
		sb.WriteByte('"')
	case *Identifier:
		sb.WriteString(n.Name)
	case *UnaryOp:
		sb.WriteString(string(n.Op))
		formatChild(sb, n.Operand, nodePrecedence(n.Operand) < precUnary)
	case *BinaryOp:
		p := Precedence(n.Op)
		lp, rp := nodePrecedence(n.Left), nodePrecedence(n.Right)
		// power is right-associative, everything else left-associative
		formatChild(sb, n.Left, lp < p || (lp == p && n.Op == OpPow))
		if n.Op == OpPow {
			sb.WriteString("^")
		} else {
			sb.WriteString(" " + string(n.Op) + " ")
		}
		formatChild(sb, n.Right, rp < p || (rp == p && n.Op != OpPow))
	case *FunctionCall:
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, arg)
		}
		sb.WriteByte(')')
	case *Conditional:
		sb.WriteString("if ")
		format(sb, n.Condition)
		sb.WriteString(" then ")
		format(sb, n.Then)
		sb.WriteString(" else ")
		format(sb, n.Else)
	}
}

func formatChild(sb *strings.Builder, n Node, parens bool) {
	if parens {
		sb.WriteByte('(')
	}
	format(sb, n)
	if parens {
		sb.WriteByte(')')
	}
}

// FormatNumber renders a float the way the lexer reads it back.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
