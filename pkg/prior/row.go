package prior

import (
	"fmt"
	"math"
	"strings"

	"petab-hq/petab/pkg/distributions"
	"petab-hq/petab/pkg/formula/eval"
	"petab-hq/petab/pkg/scale"
)

// Kind distinguishes the two priors a parameter can carry.
type Kind int

const (
	// Objective priors enter the objective function.
	Objective Kind = iota
	// Initialization priors only generate optimizer starting points.
	Initialization
)

// String returns the column prefix of the kind.
func (k Kind) String() string {
	if k == Initialization {
		return "initialization"
	}
	return "objective"
}

// TypeColumn returns the *PriorType column name.
func (k Kind) TypeColumn() string { return k.String() + "PriorType" }

// ParametersColumn returns the *PriorParameters column name.
func (k Kind) ParametersColumn() string { return k.String() + "PriorParameters" }

// Row is the prior-related content of one parameter table row. Missing
// bounds are NaN.
type Row struct {
	ParameterID     string
	Scale           scale.Kind
	LowerBound      float64
	UpperBound      float64
	PriorType       string
	PriorParameters string
}

// HasBounds reports whether both bounds are set.
func (r Row) HasBounds() bool {
	return !math.IsNaN(r.LowerBound) && !math.IsNaN(r.UpperBound)
}

// SpecFromRow converts a parameter table row into a prior specification.
// An empty prior type defaults to parameterScaleUniform, whose empty
// parameters default to the scaled bounds.
func SpecFromRow(row Row, kind Kind) (Spec, error) {
	wrap := func(field string, err error) error {
		return &ConfigError{ParameterID: row.ParameterID, Field: field, Err: err}
	}

	family := distributions.ParameterScaleUniform
	if t := strings.TrimSpace(row.PriorType); t != "" {
		f, err := distributions.ParseFamily(t)
		if err != nil {
			return Spec{}, wrap(kind.TypeColumn(), err)
		}
		family = f
	}

	spec := Spec{Family: family, Scale: row.Scale}
	if row.HasBounds() {
		spec.Bounds = &Bounds{Lower: row.LowerBound, Upper: row.UpperBound}
	}

	cell := strings.TrimSpace(row.PriorParameters)
	switch {
	case cell != "":
		params, err := ParseParameters(cell)
		if err != nil {
			return Spec{}, wrap(kind.ParametersColumn(), err)
		}
		spec.Params = params
	case family == distributions.ParameterScaleUniform && spec.Bounds != nil:
		spec.Params = [2]Param{
			Literal(row.Scale.Scale(row.LowerBound)),
			Literal(row.Scale.Scale(row.UpperBound)),
		}
	default:
		return Spec{}, wrap(kind.ParametersColumn(),
			fmt.Errorf("%s prior requires parameters", family))
	}
	return spec, nil
}

// FromRow builds the prior of a parameter table row, evaluating formula
// parameters against bindings.
func FromRow(row Row, kind Kind, bindings eval.Bindings) (*Prior, error) {
	spec, err := SpecFromRow(row, kind)
	if err != nil {
		return nil, err
	}
	p, err := FromSpec(spec, bindings)
	if err != nil {
		if cfgErr, ok := err.(*ConfigError); ok && cfgErr.ParameterID == "" {
			cfgErr.ParameterID = row.ParameterID
			if cfgErr.Field == "" {
				cfgErr.Field = kind.ParametersColumn()
			}
		}
		return nil, err
	}
	return p, nil
}
