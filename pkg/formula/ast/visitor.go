package ast

import "sort"

// Inspect traverses the tree rooted at n in depth-first pre-order. If fn
// returns false, the children of the current node are skipped.
// Nil nodes are ignored, so partial trees from failed parses can be walked.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Inspect(child, fn)
	}
}

// Identifiers returns the distinct identifier names referenced in the tree,
// sorted. Function names are not included.
func Identifiers(n Node) []string {
	seen := make(map[string]bool)
	Inspect(n, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			seen[id.Name] = true
		}
		return true
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of nodes in the tree.
func Count(n Node) int {
	count := 0
	Inspect(n, func(Node) bool {
		count++
		return true
	})
	return count
}

// Equal reports whether a and b are structurally identical. Spans and the
// source text of number literals are ignored.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch a := a.(type) {
	case *NumberLiteral:
		b, ok := b.(*NumberLiteral)
		if !ok {
			return false
		}
		// NaN literals compare equal to each other
		return a.Value == b.Value || (a.Value != a.Value && b.Value != b.Value)
	case *BooleanLiteral:
		b, ok := b.(*BooleanLiteral)
		return ok && a.Value == b.Value
	case *StringLiteral:
		b, ok := b.(*StringLiteral)
		return ok && a.Value == b.Value
	case *Identifier:
		b, ok := b.(*Identifier)
		return ok && a.Name == b.Name
	case *UnaryOp:
		b, ok := b.(*UnaryOp)
		return ok && a.Op == b.Op && Equal(a.Operand, b.Operand)
	case *BinaryOp:
		b, ok := b.(*BinaryOp)
		return ok && a.Op == b.Op && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case *FunctionCall:
		b, ok := b.(*FunctionCall)
		if !ok || a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *Conditional:
		b, ok := b.(*Conditional)
		return ok && Equal(a.Condition, b.Condition) && Equal(a.Then, b.Then) && Equal(a.Else, b.Else)
	}
	return false
}
