package eval

import (
	"petab-hq/petab/pkg/formula/ast"
	"petab-hq/petab/pkg/formula/builtin"
)

// FreeSymbols returns the sorted identifiers of n that are not predefined
// constants.
func FreeSymbols(n ast.Node) []string {
	var free []string
	for _, name := range ast.Identifiers(n) {
		if _, ok := builtin.Constant(name); !ok {
			free = append(free, name)
		}
	}
	return free
}

// IsConstant reports whether n references no free symbols.
func IsConstant(n ast.Node) bool {
	return n != nil && len(FreeSymbols(n)) == 0
}

// ConstantValue evaluates n if it is constant. ok is false for trees with
// free symbols and for constant trees that fail to evaluate.
func ConstantValue(n ast.Node) (v float64, ok bool) {
	if !IsConstant(n) {
		return 0, false
	}
	v, err := evaluate(n, nil)
	if err != nil {
		return 0, false
	}
	return v, true
}
