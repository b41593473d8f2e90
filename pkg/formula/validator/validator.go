package validator

import (
	"petab-hq/petab/pkg/formula/ast"
	formulaErrors "petab-hq/petab/pkg/formula/errors"
	"petab-hq/petab/pkg/formula/symbols"
)

// Validator is the main validator that orchestrates all validation passes.
// It holds configuration only and is safe for concurrent use.
type Validator struct {
	semantic   *SemanticValidator
	domain     *DomainValidator
	strictMode bool // Warnings become errors
}

// NewValidator creates a new validator with all validation passes.
func NewValidator() *Validator {
	return &Validator{
		semantic: NewSemanticValidator(),
		domain:   NewDomainValidator(),
	}
}

// WithStrictMode enables strict validation (warnings become errors).
func (v *Validator) WithStrictMode(strict bool) *Validator {
	v.strictMode = strict
	return v
}

// Validate runs all passes on root. It never stops at the first problem.
// A nil root yields an empty list; the parser already reported why.
func (v *Validator) Validate(root ast.Node, table *symbols.Table) *formulaErrors.DiagnosticList {
	diags := formulaErrors.NewDiagnosticList()
	if root == nil {
		return diags
	}

	diags.Merge(v.semantic.Validate(root, table))
	diags.Merge(v.domain.Validate(root))

	if v.strictMode {
		diags.Promote()
	}
	return diags
}

var defaultValidator = NewValidator()

// Validate runs the default validator.
func Validate(root ast.Node, table *symbols.Table) *formulaErrors.DiagnosticList {
	return defaultValidator.Validate(root, table)
}
