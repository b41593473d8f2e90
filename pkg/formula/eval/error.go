package eval

import (
	"fmt"

	"petab-hq/petab/pkg/formula/ast"
)

// ErrorKind categorizes evaluation failures.
type ErrorKind string

const (
	ErrorKindUnbound  ErrorKind = "unbound_identifier" // identifier without a binding
	ErrorKindDomain   ErrorKind = "domain_error"       // operand outside the function's domain
	ErrorKindOverflow ErrorKind = "overflow"           // finite operands produced Inf or NaN
	ErrorKindInvalid  ErrorKind = "invalid_expression" // tree that did not pass validation
)

// Error is an evaluation failure at a specific node.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    ast.Span
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Span, e.Message)
}

func newError(kind ErrorKind, n ast.Node, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: n.Span()}
}
