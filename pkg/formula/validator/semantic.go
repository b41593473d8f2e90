package validator

import (
	"fmt"

	"petab-hq/petab/pkg/formula/ast"
	"petab-hq/petab/pkg/formula/builtin"
	formulaErrors "petab-hq/petab/pkg/formula/errors"
	"petab-hq/petab/pkg/formula/symbols"
)

// SemanticValidator checks symbol references and function signatures.
type SemanticValidator struct{}

// NewSemanticValidator creates a new semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{}
}

// Validate performs semantic validation of root against table.
func (v *SemanticValidator) Validate(root ast.Node, table *symbols.Table) *formulaErrors.DiagnosticList {
	p := &semanticPass{table: table, errors: formulaErrors.NewDiagnosticList()}
	ast.Inspect(root, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Identifier:
			p.validateIdentifier(n)
		case *ast.FunctionCall:
			p.validateCall(n)
		case *ast.StringLiteral:
			p.errors.AddError(formulaErrors.ErrorTypeSemantic,
				fmt.Sprintf("string %q is not allowed in a numeric expression", n.Value), n.Loc)
		}
		return true
	})
	return p.errors
}

// semanticPass is the per-call state of one semantic validation.
type semanticPass struct {
	table  *symbols.Table
	errors *formulaErrors.DiagnosticList
}

func (p *semanticPass) validateIdentifier(id *ast.Identifier) {
	if p.table.Has(id.Name) {
		return
	}
	if _, ok := builtin.Constant(id.Name); ok {
		return
	}
	if _, ok := builtin.Lookup(id.Name); ok {
		p.errors.AddErrorWithSuggestion(formulaErrors.ErrorTypeSemantic,
			fmt.Sprintf("reserved function name %q used as identifier", id.Name),
			id.Loc,
			fmt.Sprintf("call it as %s(...) or rename the symbol", id.Name))
		return
	}
	p.errors.AddErrorWithSuggestion(formulaErrors.ErrorTypeSemantic,
		fmt.Sprintf("undefined identifier %q", id.Name),
		id.Loc,
		formulaErrors.SuggestName(id.Name, p.table.Names()))
}

func (p *semanticPass) validateCall(call *ast.FunctionCall) {
	sig, ok := builtin.Lookup(call.Name)
	if !ok {
		if kind, declared := p.table.Lookup(call.Name); declared {
			p.errors.AddError(formulaErrors.ErrorTypeSemantic,
				fmt.Sprintf("%s %q is not a function", kind, call.Name), call.NameLoc)
			return
		}
		p.errors.AddErrorWithSuggestion(formulaErrors.ErrorTypeSemantic,
			fmt.Sprintf("unknown function %q", call.Name),
			call.NameLoc,
			formulaErrors.SuggestName(call.Name, builtin.Names()))
		return
	}

	if !sig.Accepts(len(call.Args)) {
		p.errors.AddError(formulaErrors.ErrorTypeSemantic,
			fmt.Sprintf("%s takes %s argument(s), got %d", call.Name, sig.Arity(), len(call.Args)),
			call.Loc)
	}
}
