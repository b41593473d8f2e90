// Package lexer splits PEtab formula text into tokens.
//
// Tokenize never fails. Characters that do not start a valid token produce
// an Error token so the parser can report them together with any other
// syntax problems instead of aborting on the first one.
package lexer

import (
	"fmt"
	"strings"

	plexer "github.com/alecthomas/participle/v2/lexer"
)

// definition tries its rules in order. The trailing Error rule matches any
// single character, so every input lexes.
var definition = plexer.MustSimple([]plexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\n\r]+`},
	{Name: "Number", Pattern: `(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`},
	{Name: "Identifier", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\[\s\S])*"|'(?:[^'\\]|\\[\s\S])*'`},
	{Name: "Unterminated", Pattern: `["'][\s\S]*`},
	{Name: "Operator", Pattern: `<=|>=|!=|==|&&|\|\||[-+*/^<>!~]`},
	{Name: "Punctuation", Pattern: `[(),]`},
	{Name: "Error", Pattern: `[\s\S]`},
})

// kindOf maps participle token types to token kinds.
var kindOf = func() map[plexer.TokenType]Kind {
	byName := map[string]Kind{
		"Number":       Number,
		"Identifier":   Identifier,
		"String":       String,
		"Unterminated": Error,
		"Operator":     Operator,
		"Punctuation":  Punctuation,
		"Error":        Error,
	}
	out := make(map[plexer.TokenType]Kind, len(byName))
	for name, tt := range definition.Symbols() {
		if kind, ok := byName[name]; ok {
			out[tt] = kind
		}
	}
	return out
}()

var whitespace = definition.Symbols()["Whitespace"]

// keywords maps reserved words to their token kind.
var keywords = map[string]Kind{
	"if":    Keyword,
	"then":  Keyword,
	"else":  Keyword,
	"true":  Boolean,
	"false": Boolean,
}

// Tokenize converts text into tokens. The result always ends with an EOF
// token.
func Tokenize(text string) []Token {
	var tokens []Token
	eof := Token{Kind: EOF, Offset: len(text), End: len(text)}

	lx, err := definition.LexString("", text)
	if err != nil {
		return append(tokens, failed(text, 0, err), eof)
	}
	for {
		t, err := lx.Next()
		if err != nil {
			// Unreachable with the catch-all rule; keep the stream well formed.
			offset := 0
			if n := len(tokens); n > 0 {
				offset = tokens[n-1].End
			}
			return append(tokens, failed(text, offset, err), eof)
		}
		if t.EOF() {
			return append(tokens, eof)
		}
		if t.Type == whitespace {
			continue
		}
		tokens = append(tokens, convert(t))
	}
}

func convert(t plexer.Token) Token {
	tok := Token{
		Kind:   kindOf[t.Type],
		Lexeme: t.Value,
		Offset: t.Pos.Offset,
		End:    t.Pos.Offset + len(t.Value),
	}
	switch tok.Kind {
	case Identifier:
		if kind, ok := keywords[tok.Lexeme]; ok {
			tok.Kind = kind
		}
	case String:
		tok.Lexeme = unquote(t.Value)
	case Error:
		tok.Err = describe(t.Value)
	}
	return tok
}

func failed(text string, offset int, err error) Token {
	return Token{Kind: Error, Lexeme: text[offset:], Offset: offset, End: len(text), Err: err.Error()}
}

// describe explains why lexeme did not form a token.
func describe(lexeme string) string {
	switch lexeme {
	case "=":
		return "unexpected '=', use '==' for comparison"
	case "&", "|":
		return fmt.Sprintf("unexpected '%s', use '%s%s'", lexeme, lexeme, lexeme)
	}
	if strings.HasPrefix(lexeme, `"`) || strings.HasPrefix(lexeme, "'") {
		return "unterminated string literal"
	}
	return fmt.Sprintf("unexpected character %q", lexeme)
}

// unquote strips the quotes from a string literal. Backslash escapes the
// next character.
func unquote(lit string) string {
	body := lit[1 : len(lit)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		sb.WriteByte(body[i])
	}
	return sb.String()
}
