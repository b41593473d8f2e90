package errors

import (
	"fmt"
	"strings"

	"petab-hq/petab/pkg/formula/ast"
)

// ErrorType categorizes the stage that produced a diagnostic.
type ErrorType string

const (
	ErrorTypeSyntax   ErrorType = "syntax"   // Lexer/parser error
	ErrorTypeSemantic ErrorType = "semantic" // Unknown symbol, arity, reserved name
	ErrorTypeDomain   ErrorType = "domain"   // Provably undefined constant operation
)

// Severity distinguishes hard errors from warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a single problem found in a formula.
type Diagnostic struct {
	Severity   Severity
	Type       ErrorType
	Message    string
	Span       ast.Span
	Suggestion string // Suggested fix (optional)
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s: %s", d.Type, d.Severity, d.Message)
	if d.Span.IsValid() && d.Span != (ast.Span{}) {
		fmt.Fprintf(&sb, " (%s)", d.Span)
	}
	if d.Suggestion != "" {
		fmt.Fprintf(&sb, "; %s", d.Suggestion)
	}
	return sb.String()
}

// IsError returns true if the diagnostic has error severity.
func (d *Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// DiagnosticList collects the diagnostics of one or more formulas.
type DiagnosticList struct {
	Diagnostics []*Diagnostic
}

// NewDiagnosticList creates a new empty list.
func NewDiagnosticList() *DiagnosticList {
	return &DiagnosticList{
		Diagnostics: make([]*Diagnostic, 0),
	}
}

// Add appends a diagnostic to the list.
func (dl *DiagnosticList) Add(d *Diagnostic) {
	dl.Diagnostics = append(dl.Diagnostics, d)
}

// AddError creates and adds an error diagnostic.
func (dl *DiagnosticList) AddError(errType ErrorType, message string, span ast.Span) {
	dl.Add(&Diagnostic{
		Severity: SeverityError,
		Type:     errType,
		Message:  message,
		Span:     span,
	})
}

// AddErrorWithSuggestion creates and adds an error diagnostic with a suggestion.
func (dl *DiagnosticList) AddErrorWithSuggestion(errType ErrorType, message string, span ast.Span, suggestion string) {
	dl.Add(&Diagnostic{
		Severity:   SeverityError,
		Type:       errType,
		Message:    message,
		Span:       span,
		Suggestion: suggestion,
	})
}

// AddWarning creates and adds a warning diagnostic.
func (dl *DiagnosticList) AddWarning(errType ErrorType, message string, span ast.Span) {
	dl.Add(&Diagnostic{
		Severity: SeverityWarning,
		Type:     errType,
		Message:  message,
		Span:     span,
	})
}

// Merge appends all diagnostics of other.
func (dl *DiagnosticList) Merge(other *DiagnosticList) {
	if other == nil {
		return
	}
	dl.Diagnostics = append(dl.Diagnostics, other.Diagnostics...)
}

// Clone returns a deep copy of the list. A nil list clones to nil.
func (dl *DiagnosticList) Clone() *DiagnosticList {
	if dl == nil {
		return nil
	}
	out := &DiagnosticList{Diagnostics: make([]*Diagnostic, len(dl.Diagnostics))}
	for i, d := range dl.Diagnostics {
		c := *d
		out.Diagnostics[i] = &c
	}
	return out
}

// Len returns the number of diagnostics of any severity.
func (dl *DiagnosticList) Len() int {
	if dl == nil {
		return 0
	}
	return len(dl.Diagnostics)
}

// HasErrors returns true if the list contains at least one error-severity diagnostic.
func (dl *DiagnosticList) HasErrors() bool {
	if dl == nil {
		return false
	}
	for _, d := range dl.Diagnostics {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the error-severity diagnostics.
func (dl *DiagnosticList) Errors() []*Diagnostic {
	return dl.bySeverity(SeverityError)
}

// Warnings returns the warning-severity diagnostics.
func (dl *DiagnosticList) Warnings() []*Diagnostic {
	return dl.bySeverity(SeverityWarning)
}

func (dl *DiagnosticList) bySeverity(sev Severity) []*Diagnostic {
	if dl == nil {
		return nil
	}
	var result []*Diagnostic
	for _, d := range dl.Diagnostics {
		if d.Severity == sev {
			result = append(result, d)
		}
	}
	return result
}

// ByType returns all diagnostics of the given type.
func (dl *DiagnosticList) ByType(errType ErrorType) []*Diagnostic {
	if dl == nil {
		return nil
	}
	var result []*Diagnostic
	for _, d := range dl.Diagnostics {
		if d.Type == errType {
			result = append(result, d)
		}
	}
	return result
}

// HasErrorType returns true if the list contains at least one diagnostic of the given type.
func (dl *DiagnosticList) HasErrorType(errType ErrorType) bool {
	return len(dl.ByType(errType)) > 0
}

// Promote turns every warning into an error. Used for strict linting.
func (dl *DiagnosticList) Promote() {
	for _, d := range dl.Diagnostics {
		d.Severity = SeverityError
	}
}

// Error implements the error interface.
func (dl *DiagnosticList) Error() string {
	if dl.Len() == 0 {
		return ""
	}
	if dl.Len() == 1 {
		return dl.Diagnostics[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "found %d problem(s):\n", dl.Len())
	for _, d := range dl.Diagnostics {
		sb.WriteString("  - ")
		sb.WriteString(d.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToError returns nil unless the list contains an error-severity diagnostic.
// Warnings alone do not make a formula invalid.
func (dl *DiagnosticList) ToError() error {
	if !dl.HasErrors() {
		return nil
	}
	return dl
}
