package parser

import (
	"strings"
	"testing"

	"petab-hq/petab/pkg/formula/ast"
	formulaErrors "petab-hq/petab/pkg/formula/errors"
	"petab-hq/petab/pkg/formula/lexer"
)

func TestParseString_Structure(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // fully parenthesized rendering
	}{
		{"precedence", "a + b * 2", "(a + (b * 2))"},
		{"left assoc", "a - b - c", "((a - b) - c)"},
		{"power right assoc", "2^3^2", "(2 ^ (3 ^ 2))"},
		{"unary minus below power", "-2^2", "(-(2 ^ 2))"},
		{"signed exponent", "2^-1", "(2 ^ (-1))"},
		{"parentheses", "(a + b) * c", "((a + b) * c)"},
		{"comparison", "a < b == c >= d", "((a < b) == (c >= d))"},
		{"logical", "a || b && !c", "(a || (b && (!c)))"},
		{"tilde not", "~a", "(!a)"},
		{"unary plus", "+a", "(+a)"},
		{"call", "max(a, 2 * b, exp(c))", "max(a, (2 * b), exp(c))"},
		{"empty call", "f()", "f()"},
		{"conditional", "if a > 0 then a else -a", "if (a > 0) then a else (-a)"},
		{"conditional operand", "1 + (if c then 2 else 3)", "(1 + if c then 2 else 3)"},
		{"booleans", "true && false", "(true && false)"},
		{"string", `f("x")`, `f("x")`},
		{"unknown function is not a syntax error", "frobnicate(1)", "frobnicate(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseString(tt.input)
			if res.Diagnostics.HasErrors() {
				t.Fatalf("ParseString(%q) diagnostics: %v", tt.input, res.Diagnostics)
			}
			if got := explicit(res.Root); got != tt.want {
				t.Errorf("ParseString(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

// explicit renders a tree with every operator application parenthesized.
func explicit(n ast.Node) string {
	switch n := n.(type) {
	case *ast.UnaryOp:
		return "(" + string(n.Op) + explicit(n.Operand) + ")"
	case *ast.BinaryOp:
		return "(" + explicit(n.Left) + " " + string(n.Op) + " " + explicit(n.Right) + ")"
	case *ast.FunctionCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = explicit(a)
		}
		return n.Name + "(" + strings.Join(args, ", ") + ")"
	case *ast.Conditional:
		return "if " + explicit(n.Condition) + " then " + explicit(n.Then) + " else " + explicit(n.Else)
	}
	return ast.Format(n)
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		errors  int
		span    ast.Span // span of the first diagnostic
		message string
	}{
		{"empty", "", 1, ast.Span{Start: 0, End: 0}, "empty formula"},
		{"blank", "   ", 1, ast.Span{Start: 3, End: 3}, "empty formula"},
		{"dangling operator", "a +", 1, ast.Span{Start: 3, End: 3}, "expected an operand"},
		{"missing paren", "(a + b", 1, ast.Span{Start: 6, End: 6}, "expected ')'"},
		{"trailing token", "a b", 1, ast.Span{Start: 2, End: 3}, "after end of expression"},
		{"extra paren", "a)", 1, ast.Span{Start: 1, End: 2}, "after end of expression"},
		{"bad call", "max(a b)", 1, ast.Span{Start: 6, End: 7}, "in call to max"},
		{"missing then", "if a 1 else 2", 1, ast.Span{Start: 5, End: 6}, "expected 'then'"},
		{"missing else", "if a then 1", 1, ast.Span{Start: 11, End: 11}, "expected 'else'"},
		{"lexer error reported once", "a = b", 1, ast.Span{Start: 2, End: 3}, "'=='"},
		{"all lexer errors reported", "a $ b # c", 2, ast.Span{Start: 2, End: 3}, "unexpected character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseString(tt.input)
			errs := res.Diagnostics.Errors()
			if len(errs) != tt.errors {
				t.Fatalf("ParseString(%q) got %d errors, want %d: %v", tt.input, len(errs), tt.errors, res.Diagnostics)
			}
			if errs[0].Span != tt.span {
				t.Errorf("span = %+v, want %+v", errs[0].Span, tt.span)
			}
			if errs[0].Type != formulaErrors.ErrorTypeSyntax {
				t.Errorf("type = %s, want syntax", errs[0].Type)
			}
			if !strings.Contains(errs[0].Message, tt.message) {
				t.Errorf("message %q does not contain %q", errs[0].Message, tt.message)
			}
			if res.OK() {
				t.Error("OK() should be false")
			}
		})
	}
}

func TestParseString_PartialTree(t *testing.T) {
	res := ParseString("a * b +")
	if !res.Diagnostics.HasErrors() {
		t.Fatal("expected error")
	}
	if res.Root == nil {
		t.Fatal("expected a partial tree")
	}
	if got := ast.Format(res.Root); got != "a * b" {
		t.Errorf("partial tree = %q, want %q", got, "a * b")
	}
}

func TestParseString_Spans(t *testing.T) {
	res := ParseString("k1 * exp(-k2)")
	if !res.OK() {
		t.Fatal(res.Diagnostics)
	}
	mul := res.Root.(*ast.BinaryOp)
	if mul.Span() != (ast.Span{Start: 0, End: 13}) {
		t.Errorf("root span = %+v", mul.Span())
	}
	call := mul.Right.(*ast.FunctionCall)
	if call.NameLoc != (ast.Span{Start: 5, End: 8}) {
		t.Errorf("call name span = %+v", call.NameLoc)
	}
	neg := call.Args[0].(*ast.UnaryOp)
	if neg.Span() != (ast.Span{Start: 9, End: 12}) {
		t.Errorf("negation span = %+v", neg.Span())
	}
}

func TestParser_MaxDepth(t *testing.T) {
	p := NewParser().WithMaxDepth(5)
	if res := p.ParseString("((((a))))"); !res.OK() {
		t.Errorf("depth 4 should parse: %v", res.Diagnostics)
	}
	res := p.ParseString("((((((a))))))")
	if !res.Diagnostics.HasErrors() || !strings.Contains(res.Diagnostics.Errors()[0].Message, "nested deeper") {
		t.Errorf("expected depth error, got %v", res.Diagnostics)
	}
}

func TestParser_MaxLength(t *testing.T) {
	p := NewParser().WithMaxLength(8)
	if res := p.ParseString("a + b + c"); !res.Diagnostics.HasErrors() {
		t.Error("expected length error")
	}
}

func TestParse_Deterministic(t *testing.T) {
	inputs := []string{
		"observableParameter1_obs_a * exp(-k1 * time) + offset",
		"piecewise(1, time < 10, 2 * x, time < 20, 0)",
		"if a > b && !(c == 0) then log(a, 10) else -b^2",
	}
	for _, in := range inputs {
		first := Parse(lexer.Tokenize(in))
		for range 5 {
			again := Parse(lexer.Tokenize(in))
			if !ast.Equal(first.Root, again.Root) {
				t.Errorf("Parse(%q) not deterministic", in)
			}
		}
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	inputs := []string{
		"a + b * 2",
		"(a + b) * 2",
		"a - (b - c)",
		"a / (b * c)",
		"2^3^2",
		"(2^3)^2",
		"-2^2",
		"(-2)^2",
		"2^-x",
		"!(a && b) || c",
		"max(a, 1e-3, 2.5E+4)",
		"1 + (if a < b then a else b) * 2",
		"piecewise(x, t >= 1, -x)",
		`f("a\"b")`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			first := ParseString(in)
			if !first.OK() {
				t.Fatal(first.Diagnostics)
			}
			text := ast.Format(first.Root)
			second := ParseString(text)
			if !second.OK() {
				t.Fatalf("Format output %q does not parse: %v", text, second.Diagnostics)
			}
			if !ast.Equal(first.Root, second.Root) {
				t.Errorf("round trip changed tree: %q -> %q", in, text)
			}
		})
	}
}
