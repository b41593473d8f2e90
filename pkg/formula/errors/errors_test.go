package errors

import (
	"strings"
	"testing"

	"petab-hq/petab/pkg/formula/ast"
)

func TestDiagnosticList_Severity(t *testing.T) {
	dl := NewDiagnosticList()
	if dl.HasErrors() || dl.ToError() != nil {
		t.Fatal("empty list should not report errors")
	}

	dl.AddWarning(ErrorTypeDomain, "division by zero", ast.Span{Start: 2, End: 5})
	if dl.HasErrors() {
		t.Error("warnings alone should not count as errors")
	}
	if dl.ToError() != nil {
		t.Error("ToError() should be nil with warnings only")
	}

	dl.AddError(ErrorTypeSemantic, `undefined identifier "c"`, ast.Span{Start: 4, End: 5})
	if !dl.HasErrors() {
		t.Error("expected HasErrors() after AddError")
	}
	if got := len(dl.Errors()); got != 1 {
		t.Errorf("Errors() = %d, want 1", got)
	}
	if got := len(dl.Warnings()); got != 1 {
		t.Errorf("Warnings() = %d, want 1", got)
	}
	if !dl.HasErrorType(ErrorTypeDomain) || dl.HasErrorType(ErrorTypeSyntax) {
		t.Error("HasErrorType() mismatch")
	}
	if dl.ToError() == nil {
		t.Error("ToError() should be non-nil")
	}
}

func TestDiagnosticList_Promote(t *testing.T) {
	dl := NewDiagnosticList()
	dl.AddWarning(ErrorTypeDomain, "log of zero", ast.Span{Start: 0, End: 6})
	dl.Promote()
	if !dl.HasErrors() {
		t.Error("Promote() should turn warnings into errors")
	}
}

func TestDiagnosticList_Merge(t *testing.T) {
	a := NewDiagnosticList()
	a.AddError(ErrorTypeSyntax, "unexpected ')'", ast.Span{Start: 1, End: 2})
	b := NewDiagnosticList()
	b.AddError(ErrorTypeSemantic, "unknown function", ast.Span{Start: 0, End: 3})
	a.Merge(b)
	a.Merge(nil)
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
	if !strings.Contains(a.Error(), "found 2 problem(s)") {
		t.Errorf("Error() = %q", a.Error())
	}
}

func TestDiagnosticList_Clone(t *testing.T) {
	var nilList *DiagnosticList
	if nilList.Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}

	dl := NewDiagnosticList()
	dl.AddWarning(ErrorTypeDomain, "log of zero", ast.Span{Start: 0, End: 6})
	c := dl.Clone()
	c.Promote()
	c.AddError(ErrorTypeSyntax, "unexpected end", ast.Span{Start: 6, End: 6})
	if dl.HasErrors() || dl.Len() != 1 {
		t.Errorf("original changed through clone: %v", dl.Diagnostics)
	}
	if c.Len() != 2 || len(c.Errors()) != 2 {
		t.Errorf("clone = %v", c.Diagnostics)
	}
}

func TestExtractContext(t *testing.T) {
	d := &Diagnostic{
		Severity: SeverityError,
		Type:     ErrorTypeSemantic,
		Message:  `undefined identifier "kk2"`,
		Span:     ast.Span{Start: 10, End: 13},
	}
	got := ExtractContext("k1 * exp(-kk2 * t)", d)
	lines := strings.Split(got, "\n")
	if len(lines) < 2 {
		t.Fatalf("ExtractContext() = %q", got)
	}
	if lines[1] != "  | "+strings.Repeat(" ", 10)+"^^^" {
		t.Errorf("caret line = %q", lines[1])
	}

	if ExtractContext("", d) != "" {
		t.Error("empty text should give empty context")
	}
}

func TestSuggestName(t *testing.T) {
	tests := []struct {
		unknown    string
		candidates []string
		want       string
	}{
		{"kk2", []string{"k1", "k2", "observable_a"}, `did you mean "k2"?`},
		{"EXP", []string{"exp", "log"}, `did you mean "exp"?`},
		{"zzz", []string{"k1", "k2"}, ""},
		{"x", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.unknown, func(t *testing.T) {
			if got := SuggestName(tt.unknown, tt.candidates); got != tt.want {
				t.Errorf("SuggestName(%q) = %q, want %q", tt.unknown, got, tt.want)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
