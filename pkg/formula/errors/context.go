package errors

import (
	"strings"
)

// ExtractContext renders the formula text with a caret line underneath the
// given span:
//
//	k1 * exp(-kk2 * time)
//	          ^^^
func ExtractContext(text string, d *Diagnostic) string {
	if text == "" || !d.Span.IsValid() || d.Span.Start > len(text) {
		return ""
	}

	// Formulas are single table cells; tabs and newlines would misalign the caret
	line := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(text)

	width := d.Span.End - d.Span.Start
	if width < 1 {
		width = 1
	}

	var sb strings.Builder
	sb.WriteString("  | ")
	sb.WriteString(line)
	sb.WriteString("\n  | ")
	sb.WriteString(strings.Repeat(" ", d.Span.Start))
	sb.WriteString(strings.Repeat("^", width))
	sb.WriteString("\n")
	return sb.String()
}

// WithSource formats all diagnostics of the list together with the formula
// they refer to.
func WithSource(dl *DiagnosticList, text string) string {
	var sb strings.Builder
	for _, d := range dl.Diagnostics {
		sb.WriteString(d.Error())
		sb.WriteString("\n")
		sb.WriteString(ExtractContext(text, d))
	}
	return sb.String()
}
