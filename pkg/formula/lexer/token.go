package lexer

import (
	"fmt"

	"petab-hq/petab/pkg/formula/ast"
)

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Error
	Number
	Identifier
	Keyword
	Boolean
	String
	Operator
	Punctuation
)

var kindNames = [...]string{
	EOF:         "end of input",
	Error:       "error",
	Number:      "number",
	Identifier:  "identifier",
	Keyword:     "keyword",
	Boolean:     "boolean",
	String:      "string",
	Operator:    "operator",
	Punctuation: "punctuation",
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a lexeme with its kind and byte range in the source text.
// For String tokens Lexeme holds the unescaped value.
type Token struct {
	Kind   Kind
	Lexeme string
	Offset int
	End    int

	// Err describes why an Error token was produced.
	Err string
}

// Span returns the source range of the token.
func (t Token) Span() ast.Span {
	return ast.Span{Start: t.Offset, End: t.End}
}

// Is reports whether the token has the given kind and lexeme.
func (t Token) Is(kind Kind, lexeme string) bool {
	return t.Kind == kind && t.Lexeme == lexeme
}

// String returns a description of the token suitable for diagnostics.
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case String:
		return fmt.Sprintf("string %q", t.Lexeme)
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Lexeme)
}
