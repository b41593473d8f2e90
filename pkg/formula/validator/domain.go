package validator

import (
	"fmt"
	"math"

	"petab-hq/petab/pkg/formula/ast"
	formulaErrors "petab-hq/petab/pkg/formula/errors"
	"petab-hq/petab/pkg/formula/eval"
)

// DomainValidator warns about operations that are undefined for operands
// that fold to constants. Operands with free symbols are not checked; those
// failures surface as evaluation errors.
type DomainValidator struct{}

// NewDomainValidator creates a new domain validator.
func NewDomainValidator() *DomainValidator {
	return &DomainValidator{}
}

// Validate performs domain validation of root.
func (v *DomainValidator) Validate(root ast.Node) *formulaErrors.DiagnosticList {
	diags := formulaErrors.NewDiagnosticList()
	warn := func(n ast.Node, format string, args ...any) {
		diags.AddWarning(formulaErrors.ErrorTypeDomain, fmt.Sprintf(format, args...), n.Span())
	}

	ast.Inspect(root, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.BinaryOp:
			switch n.Op {
			case ast.OpDiv:
				if d, ok := eval.ConstantValue(n.Right); ok && d == 0 {
					warn(n, "division by zero")
				}
			case ast.OpPow:
				checkPower(n, n.Left, n.Right, warn)
			}

		case *ast.FunctionCall:
			switch n.Name {
			case "log", "ln", "log10", "log2":
				if len(n.Args) == 0 {
					break
				}
				if x, ok := eval.ConstantValue(n.Args[0]); ok && x <= 0 {
					warn(n, "%s of non-positive value %s", n.Name, ast.FormatNumber(x))
				}
				if n.Name == "log" && len(n.Args) == 2 {
					if b, ok := eval.ConstantValue(n.Args[1]); ok && (b <= 0 || b == 1) {
						warn(n, "log base %s must be positive and not 1", ast.FormatNumber(b))
					}
				}
			case "sqrt":
				if len(n.Args) == 1 {
					if x, ok := eval.ConstantValue(n.Args[0]); ok && x < 0 {
						warn(n, "sqrt of negative value %s", ast.FormatNumber(x))
					}
				}
			case "pow":
				if len(n.Args) == 2 {
					checkPower(n, n.Args[0], n.Args[1], warn)
				}
			}
		}
		return true
	})
	return diags
}

func checkPower(n, base, exp ast.Node, warn func(ast.Node, string, ...any)) {
	b, bok := eval.ConstantValue(base)
	e, eok := eval.ConstantValue(exp)
	if !bok || !eok {
		return
	}
	switch {
	case b == 0 && e < 0:
		warn(n, "zero raised to negative power %s", ast.FormatNumber(e))
	case b < 0 && !math.IsInf(e, 0) && e != math.Trunc(e):
		warn(n, "negative base %s raised to non-integer power %s", ast.FormatNumber(b), ast.FormatNumber(e))
	}
}
