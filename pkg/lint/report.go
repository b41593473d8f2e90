package lint

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"petab-hq/petab/pkg/formula/ast"
	formulaErrors "petab-hq/petab/pkg/formula/errors"
)

// Severity of a finding.
type Severity = formulaErrors.Severity

const (
	SeverityError   = formulaErrors.SeverityError
	SeverityWarning = formulaErrors.SeverityWarning
)

// Finding is one problem in a table cell, row or table.
type Finding struct {
	Severity Severity `json:"severity"`
	Table    string   `json:"table"`
	Row      int      `json:"row,omitempty"` // 1-based data row, 0 for the table
	Column   string   `json:"column,omitempty"`
	Message  string   `json:"message"`

	// Formula findings carry the formula text and the offending span.
	Formula    string   `json:"formula,omitempty"`
	Span       ast.Span `json:"span,omitzero"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Location returns "table row N, column C" with empty parts left out.
func (f Finding) Location() string {
	var sb strings.Builder
	sb.WriteString(f.Table)
	if f.Row > 0 {
		fmt.Fprintf(&sb, " row %d", f.Row)
	}
	if f.Column != "" {
		if f.Row > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, " column %s", f.Column)
	}
	return sb.String()
}

// String implements fmt.Stringer.
func (f Finding) String() string {
	s := fmt.Sprintf("%s: %s: %s", f.Location(), f.Severity, f.Message)
	if f.Suggestion != "" {
		s += " (" + f.Suggestion + ")"
	}
	return s
}

// Context renders the formula with a caret under the span, or "" for
// findings without a formula.
func (f Finding) Context() string {
	if f.Formula == "" {
		return ""
	}
	return formulaErrors.ExtractContext(f.Formula, &formulaErrors.Diagnostic{Span: f.Span})
}

// Report is the result of one lint run.
type Report struct {
	RunID     string        `json:"run_id"`
	Problem   string        `json:"problem"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Findings  []Finding     `json:"findings"`
}

// Add appends findings.
func (r *Report) Add(f ...Finding) {
	r.Findings = append(r.Findings, f...)
}

// ErrorCount returns the number of error findings.
func (r *Report) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warning findings.
func (r *Report) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *Report) count(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any finding is an error.
func (r *Report) HasErrors() bool {
	return r.ErrorCount() > 0
}

// Sort orders findings by table, row and column. Findings for the same
// cell keep their order.
func (r *Report) Sort() {
	slices.SortStableFunc(r.Findings, func(a, b Finding) int {
		return cmp.Or(
			cmp.Compare(a.Table, b.Table),
			cmp.Compare(a.Row, b.Row),
			cmp.Compare(a.Column, b.Column),
		)
	})
}

// Summary returns a one-line count of errors and warnings.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d error(s), %d warning(s)", r.ErrorCount(), r.WarningCount())
}
