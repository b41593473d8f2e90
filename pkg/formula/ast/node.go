package ast

// Node is implemented by every AST node. The set of implementations is
// closed: only the types in this package satisfy it.
type Node interface {
	// Span returns the source range the node was parsed from.
	Span() Span

	node()
}

// Operator is a unary or binary operator of the formula language.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpPow Operator = "^"

	OpEq Operator = "=="
	OpNe Operator = "!="
	OpLt Operator = "<"
	OpLe Operator = "<="
	OpGt Operator = ">"
	OpGe Operator = ">="

	OpAnd Operator = "&&"
	OpOr  Operator = "||"
	OpNot Operator = "!"
)

// IsComparison returns true for the relational and equality operators.
func (op Operator) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// IsLogical returns true for &&, || and !.
func (op Operator) IsLogical() bool {
	return op == OpAnd || op == OpOr || op == OpNot
}

// NumberLiteral is a numeric constant such as 1, 2.5 or 1e-3.
type NumberLiteral struct {
	Value float64
	Text  string // source text; empty for literals produced by simplification
	Loc   Span
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Value bool
	Loc   Span
}

// StringLiteral is a quoted string. Strings are lexed and parsed so that
// they can be reported precisely; they have no numeric meaning.
type StringLiteral struct {
	Value string
	Loc   Span
}

// Identifier references a symbol by name.
type Identifier struct {
	Name string
	Loc  Span
}

// UnaryOp applies -, + or ! to a single operand.
type UnaryOp struct {
	Op      Operator
	Operand Node
	Loc     Span
}

// BinaryOp applies an arithmetic, comparison or logical operator.
type BinaryOp struct {
	Op    Operator
	Left  Node
	Right Node
	Loc   Span
}

// FunctionCall applies a named function to ordered arguments.
type FunctionCall struct {
	Name    string
	NameLoc Span
	Args    []Node
	Loc     Span
}

// Conditional is "if Condition then Then else Else".
type Conditional struct {
	Condition Node
	Then      Node
	Else      Node
	Loc       Span
}

func (n *NumberLiteral) Span() Span  { return n.Loc }
func (n *BooleanLiteral) Span() Span { return n.Loc }
func (n *StringLiteral) Span() Span  { return n.Loc }
func (n *Identifier) Span() Span     { return n.Loc }
func (n *UnaryOp) Span() Span        { return n.Loc }
func (n *BinaryOp) Span() Span       { return n.Loc }
func (n *FunctionCall) Span() Span   { return n.Loc }
func (n *Conditional) Span() Span    { return n.Loc }

func (*NumberLiteral) node()  {}
func (*BooleanLiteral) node() {}
func (*StringLiteral) node()  {}
func (*Identifier) node()     {}
func (*UnaryOp) node()        {}
func (*BinaryOp) node()       {}
func (*FunctionCall) node()   {}
func (*Conditional) node()    {}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *UnaryOp:
		return []Node{n.Operand}
	case *BinaryOp:
		return []Node{n.Left, n.Right}
	case *FunctionCall:
		return n.Args
	case *Conditional:
		return []Node{n.Condition, n.Then, n.Else}
	}
	return nil
}
