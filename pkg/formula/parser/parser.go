package parser

import (
	"fmt"
	"strconv"

	"petab-hq/petab/pkg/formula/ast"
	formulaErrors "petab-hq/petab/pkg/formula/errors"
	"petab-hq/petab/pkg/formula/lexer"
)

// Result is the outcome of parsing one formula.
type Result struct {
	// Root is the parsed tree. It is nil for empty input and may be a
	// partial tree when Diagnostics contains errors.
	Root ast.Node

	Diagnostics *formulaErrors.DiagnosticList
}

// OK returns true if the formula parsed without errors.
func (r Result) OK() bool {
	return r.Root != nil && !r.Diagnostics.HasErrors()
}

// Parser parses formula token streams. A Parser holds configuration only;
// it is safe for concurrent use.
type Parser struct {
	maxDepth  int // Maximum nesting depth (default: 256)
	maxLength int // Maximum formula length in bytes (default: 64KiB)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxDepth:  256,
		maxLength: 64 * 1024,
	}
}

// WithMaxDepth sets the maximum expression nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// WithMaxLength sets the maximum formula length accepted by ParseString.
func (p *Parser) WithMaxLength(n int) *Parser {
	p.maxLength = n
	return p
}

var defaultParser = NewParser()

// Parse parses tokens with the default parser.
func Parse(tokens []lexer.Token) Result {
	return defaultParser.Parse(tokens)
}

// ParseString tokenizes and parses text with the default parser.
func ParseString(text string) Result {
	return defaultParser.ParseString(text)
}

// ParseString tokenizes and parses text.
func (p *Parser) ParseString(text string) Result {
	if p.maxLength > 0 && len(text) > p.maxLength {
		diags := formulaErrors.NewDiagnosticList()
		diags.AddError(formulaErrors.ErrorTypeSyntax,
			fmt.Sprintf("formula length %d exceeds maximum %d bytes", len(text), p.maxLength),
			ast.Span{Start: 0, End: len(text)})
		return Result{Diagnostics: diags}
	}
	return p.Parse(lexer.Tokenize(text))
}

// Parse builds an AST from tokens. Every lexer Error token is reported;
// parsing itself stops at the first syntax error.
func (p *Parser) Parse(tokens []lexer.Token) Result {
	s := &state{
		parser: p,
		tokens: tokens,
		diags:  formulaErrors.NewDiagnosticList(),
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != lexer.EOF {
		end := 0
		if len(tokens) > 0 {
			end = tokens[len(tokens)-1].End
		}
		s.tokens = append(tokens[:len(tokens):len(tokens)], lexer.Token{Kind: lexer.EOF, Offset: end, End: end})
	}

	for _, tok := range s.tokens {
		if tok.Kind == lexer.Error {
			s.diags.AddError(formulaErrors.ErrorTypeSyntax, tok.Err, tok.Span())
		}
	}

	if s.peek().Kind == lexer.EOF {
		s.diags.AddError(formulaErrors.ErrorTypeSyntax, "empty formula", s.peek().Span())
		return Result{Diagnostics: s.diags}
	}

	root := s.expression()
	if !s.failed {
		if tok := s.peek(); tok.Kind != lexer.EOF {
			s.fail(tok, "unexpected %s after end of expression", tok)
		}
	}
	return Result{Root: root, Diagnostics: s.diags}
}

// state is the per-call parse state.
type state struct {
	parser *Parser
	tokens []lexer.Token
	pos    int
	depth  int
	diags  *formulaErrors.DiagnosticList
	failed bool
}

func (s *state) peek() lexer.Token {
	return s.tokens[s.pos]
}

func (s *state) advance() lexer.Token {
	tok := s.tokens[s.pos]
	if tok.Kind != lexer.EOF {
		s.pos++
	}
	return tok
}

// match consumes the next token if it is an operator or punctuation with
// one of the given lexemes.
func (s *state) match(lexemes ...string) (lexer.Token, bool) {
	tok := s.peek()
	if tok.Kind != lexer.Operator && tok.Kind != lexer.Punctuation && tok.Kind != lexer.Keyword {
		return tok, false
	}
	for _, l := range lexemes {
		if tok.Lexeme == l {
			s.pos++
			return tok, true
		}
	}
	return tok, false
}

// fail records a syntax error at tok and stops parsing. Error tokens were
// already reported by Parse.
func (s *state) fail(tok lexer.Token, format string, args ...any) {
	if s.failed {
		return
	}
	s.failed = true
	if tok.Kind == lexer.Error {
		return
	}
	s.diags.AddError(formulaErrors.ErrorTypeSyntax, fmt.Sprintf(format, args...), tok.Span())
}

func (s *state) enter() bool {
	s.depth++
	if s.parser.maxDepth > 0 && s.depth > s.parser.maxDepth {
		s.fail(s.peek(), "formula nested deeper than %d levels", s.parser.maxDepth)
		return false
	}
	return true
}

func (s *state) leave() {
	s.depth--
}

func (s *state) expression() ast.Node {
	return s.binary(0)
}

// binaryLevels lists the left-associative binary operators, lowest
// precedence first.
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/"},
}

func (s *state) binary(level int) ast.Node {
	if level == len(binaryLevels) {
		return s.unary()
	}
	left := s.binary(level + 1)
	for !s.failed {
		tok, ok := s.match(binaryLevels[level]...)
		if !ok {
			break
		}
		right := s.binary(level + 1)
		if s.failed {
			break
		}
		left = &ast.BinaryOp{
			Op:    ast.Operator(tok.Lexeme),
			Left:  left,
			Right: right,
			Loc:   left.Span().Join(right.Span()),
		}
	}
	return left
}

func (s *state) unary() ast.Node {
	tok, ok := s.match("-", "+", "!", "~")
	if !ok {
		return s.power()
	}
	if !s.enter() {
		return nil
	}
	defer s.leave()

	operand := s.unary()
	if s.failed {
		return operand
	}
	op := ast.Operator(tok.Lexeme)
	if op == "~" {
		op = ast.OpNot
	}
	return &ast.UnaryOp{Op: op, Operand: operand, Loc: tok.Span().Join(operand.Span())}
}

func (s *state) power() ast.Node {
	base := s.primary()
	if s.failed {
		return base
	}
	if _, ok := s.match("^"); !ok {
		return base
	}
	if !s.enter() {
		return base
	}
	defer s.leave()
	// The exponent may carry its own sign; recursing through unary makes
	// ^ right associative.
	exp := s.unary()
	if s.failed {
		return base
	}
	return &ast.BinaryOp{Op: ast.OpPow, Left: base, Right: exp, Loc: base.Span().Join(exp.Span())}
}

func (s *state) primary() ast.Node {
	tok := s.peek()
	switch tok.Kind {
	case lexer.Number:
		s.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			// Only range errors are possible here; ParseFloat returns ±Inf.
			s.diags.AddWarning(formulaErrors.ErrorTypeDomain,
				fmt.Sprintf("number %s is out of range", tok.Lexeme), tok.Span())
		}
		return &ast.NumberLiteral{Value: v, Text: tok.Lexeme, Loc: tok.Span()}

	case lexer.Boolean:
		s.advance()
		return &ast.BooleanLiteral{Value: tok.Lexeme == "true", Loc: tok.Span()}

	case lexer.String:
		s.advance()
		return &ast.StringLiteral{Value: tok.Lexeme, Loc: tok.Span()}

	case lexer.Identifier:
		s.advance()
		if s.peek().Is(lexer.Punctuation, "(") {
			return s.call(tok)
		}
		return &ast.Identifier{Name: tok.Lexeme, Loc: tok.Span()}

	case lexer.Keyword:
		if tok.Lexeme == "if" {
			return s.conditional()
		}

	case lexer.Punctuation:
		if tok.Lexeme == "(" {
			s.advance()
			if !s.enter() {
				return nil
			}
			defer s.leave()
			inner := s.expression()
			if s.failed {
				return inner
			}
			if _, ok := s.match(")"); !ok {
				s.fail(s.peek(), "expected ')' to close '(' at %s, found %s", tok.Span(), s.peek())
			}
			return inner
		}
	}

	s.fail(tok, "unexpected %s, expected an operand", tok)
	return nil
}

func (s *state) call(name lexer.Token) ast.Node {
	s.advance() // (
	if !s.enter() {
		return nil
	}
	defer s.leave()

	fc := &ast.FunctionCall{Name: name.Lexeme, NameLoc: name.Span()}
	if closing, ok := s.match(")"); ok {
		fc.Loc = name.Span().Join(closing.Span())
		return fc
	}
	for {
		arg := s.expression()
		if s.failed {
			return nil
		}
		fc.Args = append(fc.Args, arg)
		if _, ok := s.match(","); ok {
			continue
		}
		closing, ok := s.match(")")
		if !ok {
			s.fail(s.peek(), "expected ',' or ')' in call to %s, found %s", name.Lexeme, s.peek())
			return nil
		}
		fc.Loc = name.Span().Join(closing.Span())
		return fc
	}
}

func (s *state) conditional() ast.Node {
	start := s.advance() // if
	if !s.enter() {
		return nil
	}
	defer s.leave()

	cond := s.expression()
	if s.failed {
		return nil
	}
	if _, ok := s.match("then"); !ok {
		s.fail(s.peek(), "expected 'then' after condition, found %s", s.peek())
		return nil
	}
	then := s.expression()
	if s.failed {
		return nil
	}
	if _, ok := s.match("else"); !ok {
		s.fail(s.peek(), "expected 'else' in conditional, found %s", s.peek())
		return nil
	}
	els := s.expression()
	if s.failed {
		return nil
	}
	return &ast.Conditional{
		Condition: cond,
		Then:      then,
		Else:      els,
		Loc:       start.Span().Join(els.Span()),
	}
}
