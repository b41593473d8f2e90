// Package symbols holds the names a formula may reference in a given
// validation context.
//
// A Table is built by the caller (usually the linter, from the parameter,
// observable and condition tables) and then only read while formulas are
// validated, so one Table can be shared by concurrent validations.
package symbols

import (
	"fmt"
	"maps"
	"regexp"
	"slices"

	"petab-hq/petab/pkg/formula/builtin"
)

// Kind is the role of a symbol in the problem.
type Kind int

const (
	Parameter Kind = iota
	Species
	Observable
	Constant
	Placeholder
	Compartment
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Parameter:
		return "parameter"
	case Species:
		return "species"
	case Observable:
		return "observable"
	case Constant:
		return "constant"
	case Placeholder:
		return "placeholder"
	case Compartment:
		return "compartment"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidIdentifier reports whether s is a syntactically valid PEtab id.
func IsValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// Table maps identifier names to their kind.
type Table struct {
	symbols map[string]Kind
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{symbols: make(map[string]Kind)}
}

// FromMap creates a table from a name to kind map.
func FromMap(m map[string]Kind) (*Table, error) {
	t := NewTable()
	for _, name := range slices.Sorted(maps.Keys(m)) {
		if err := t.Add(name, m[name]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add declares a symbol. It fails on invalid or reserved names and on
// duplicates.
func (t *Table) Add(name string, kind Kind) error {
	if !IsValidIdentifier(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	if builtin.IsReserved(name) {
		return fmt.Errorf("%q is a reserved name", name)
	}
	if existing, ok := t.symbols[name]; ok {
		return fmt.Errorf("duplicate symbol %q (already declared as %s)", name, existing)
	}
	t.symbols[name] = kind
	return nil
}

// MustAdd is like Add but panics on error. Intended for tests and static tables.
func (t *Table) MustAdd(name string, kind Kind) *Table {
	if err := t.Add(name, kind); err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the kind of a declared symbol.
func (t *Table) Lookup(name string) (Kind, bool) {
	if t == nil {
		return 0, false
	}
	k, ok := t.symbols[name]
	return k, ok
}

// Has reports whether name is declared.
func (t *Table) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Names returns all declared names in sorted order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.symbols))
}

// Len returns the number of declared symbols.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.symbols)
}

// With returns a copy of the table extended with extra symbols. Symbols
// already present keep their kind.
func (t *Table) With(extra map[string]Kind) *Table {
	out := NewTable()
	if t != nil {
		maps.Copy(out.symbols, t.symbols)
	}
	for name, kind := range extra {
		if _, ok := out.symbols[name]; !ok {
			out.symbols[name] = kind
		}
	}
	return out
}
