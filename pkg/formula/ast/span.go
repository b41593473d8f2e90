package ast

import "fmt"

// Span is a half-open byte range [Start, End) into the formula text a node
// or token was produced from.
type Span struct {
	Start int
	End   int
}

// String returns a human-readable representation of the span.
// Columns are reported 1-based.
func (s Span) String() string {
	if s.End-s.Start <= 1 {
		return fmt.Sprintf("col %d", s.Start+1)
	}
	return fmt.Sprintf("col %d-%d", s.Start+1, s.End)
}

// IsValid returns true if the span describes a non-negative range.
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Join returns the smallest span covering both s and o.
func (s Span) Join(o Span) Span {
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}
