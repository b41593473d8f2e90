package prior

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"petab-hq/petab/pkg/distributions"
	"petab-hq/petab/pkg/formula"
	"petab-hq/petab/pkg/formula/eval"
	"petab-hq/petab/pkg/formula/parser"
	"petab-hq/petab/pkg/scale"
)

// ParameterSeparator separates the fields of a *PriorParameters cell.
const ParameterSeparator = ";"

// Param is a prior parameter: a numeric literal or a formula.
type Param struct {
	Value float64
	Expr  string // formula text; empty for literals
}

// Literal returns a numeric parameter.
func Literal(v float64) Param {
	return Param{Value: v}
}

// IsLiteral reports whether the parameter is a plain number.
func (p Param) IsLiteral() bool {
	return p.Expr == ""
}

// String returns the parameter as written in a table.
func (p Param) String() string {
	if p.IsLiteral() {
		return strconv.FormatFloat(p.Value, 'g', -1, 64)
	}
	return p.Expr
}

// ParseParam reads one field of a *PriorParameters cell. Numbers are
// returned as literals; anything else must be a syntactically valid formula.
func ParseParam(text string) (Param, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Param{}, errors.New("empty prior parameter")
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return Literal(v), nil
	}
	if res := parser.ParseString(text); !res.OK() {
		return Param{}, fmt.Errorf("prior parameter %q: %w", text, res.Diagnostics.ToError())
	}
	return Param{Expr: text}, nil
}

// ParseParameters splits a *PriorParameters cell into its two fields.
func ParseParameters(cell string) ([2]Param, error) {
	var params [2]Param
	fields := strings.Split(cell, ParameterSeparator)
	if len(fields) != 2 {
		return params, fmt.Errorf("expected 2 %q-separated prior parameters, got %d in %q", ParameterSeparator, len(fields), cell)
	}
	for i, f := range fields {
		p, err := ParseParam(f)
		if err != nil {
			return params, err
		}
		params[i] = p
	}
	return params, nil
}

// Resolve evaluates the parameter against bindings.
func (p Param) Resolve(bindings eval.Bindings) (float64, error) {
	if p.IsLiteral() {
		return p.Value, nil
	}
	v, err := formula.Evaluate(p.Expr, bindings)
	if err != nil {
		return 0, fmt.Errorf("prior parameter %q: %w", p.Expr, err)
	}
	return v, nil
}

// Spec is a declarative prior specification.
type Spec struct {
	Family distributions.Family
	Params [2]Param
	Scale  scale.Kind
	Bounds *Bounds
}

// Symbols returns the sorted free symbols of all formula parameters.
func (s Spec) Symbols() []string {
	var names []string
	for _, p := range s.Params {
		if p.IsLiteral() {
			continue
		}
		f := formula.Compile(p.Expr, nil)
		for _, name := range f.Symbols() {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names
}

// FromSpec evaluates formula parameters against bindings and builds the
// prior.
func FromSpec(spec Spec, bindings eval.Bindings) (*Prior, error) {
	var values [2]float64
	for i, p := range spec.Params {
		v, err := p.Resolve(bindings)
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, configErrorf("prior parameter %s evaluates to %g", p, v)
		}
		values[i] = v
	}
	return New(spec.Family, values, spec.Scale, spec.Bounds)
}

// Deferred is a prior whose formula parameters reference symbols that are
// not known yet. Literal-only specifications are validated immediately.
type Deferred struct {
	spec    Spec
	symbols []string
}

// NewDeferred checks everything that does not depend on bindings.
func NewDeferred(spec Spec) (*Deferred, error) {
	d := &Deferred{spec: spec, symbols: spec.Symbols()}
	if len(d.symbols) == 0 {
		if _, err := FromSpec(spec, nil); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Symbols returns the names that must be bound.
func (d *Deferred) Symbols() []string {
	return slices.Clone(d.symbols)
}

// Spec returns the underlying specification.
func (d *Deferred) Spec() Spec {
	return d.spec
}

// Bind evaluates the parameters and builds the prior.
func (d *Deferred) Bind(bindings eval.Bindings) (*Prior, error) {
	var missing []string
	for _, name := range d.symbols {
		if _, ok := bindings[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, configErrorf("unbound symbols in prior parameters: %s", strings.Join(missing, ", "))
	}
	return FromSpec(d.spec, bindings)
}
