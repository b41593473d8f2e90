package table

import (
	"errors"
	"fmt"
	"strings"

	"petab-hq/petab/pkg/distributions"
	"petab-hq/petab/pkg/prior"
	"petab-hq/petab/pkg/scale"
)

// PriorObservablePrefix starts the ID of an observable created from a
// prior. The rest of the ID is the parameter ID.
const PriorObservablePrefix = "prior_"

// PriorMeasurements holds the tables rewritten by PriorsToMeasurements.
type PriorMeasurements struct {
	Parameters   *Table
	Observables  *Table
	Measurements *Table
	// Converted lists the parameters whose prior was moved, in table order.
	Converted []string
}

// PriorsToMeasurements rewrites the objective priors of estimated
// parameters as data, for tools without prior support. Each prior becomes
// an observable prior_<id> of the parameter value and one measurement of
// the prior location with the prior scale as noise parameter. The prior
// columns of converted parameters are cleared.
//
// New observables are appended to a copy of observables[0]; IDs in every
// observable table are reserved. Measurements reuse the time and
// conditions of the first measurement row. Uniform priors have no
// likelihood counterpart and are rejected. The inputs are not modified.
func PriorsToMeasurements(parameters *Table, observables []*Table, measurements *Table) (*PriorMeasurements, error) {
	if len(observables) == 0 {
		return nil, errors.New("no observable table")
	}
	params, err := ParameterRows(parameters)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool)
	for _, t := range observables {
		rows, err := ObservableRows(t)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			taken[r.ID] = true
		}
	}

	out := &PriorMeasurements{
		Parameters:   parameters.Clone(),
		Observables:  observables[0].Clone(),
		Measurements: measurements.Clone(),
	}
	var errs []error
	for _, r := range params {
		if !r.Estimate || !r.HasPrior(prior.Objective) {
			continue
		}
		cellErr := func(col string, err error) {
			errs = append(errs, &CellError{Table: parameters.Name, Row: r.Row, Column: col, Err: err})
		}

		typ := strings.TrimSpace(r.ObjectivePriorType)
		if typ == "" {
			cellErr(prior.Objective.TypeColumn(), errors.New("prior parameters are set but the prior type is not"))
			continue
		}
		family, err := distributions.ParseFamily(typ)
		if err != nil {
			cellErr(prior.Objective.TypeColumn(), err)
			continue
		}
		if family.Base() == distributions.Uniform {
			cellErr(prior.Objective.TypeColumn(), fmt.Errorf("%s priors cannot be converted to measurements", family))
			continue
		}
		pp, err := prior.ParseParameters(r.ObjectivePriorParameters)
		if err != nil {
			cellErr(prior.Objective.ParametersColumn(), err)
			continue
		}
		if !pp[0].IsLiteral() || !pp[1].IsLiteral() {
			cellErr(prior.Objective.ParametersColumn(), fmt.Errorf("prior parameters must be numbers, got %q", r.ObjectivePriorParameters))
			continue
		}

		id := PriorObservablePrefix + r.ID
		if taken[id] {
			cellErr(ColParameterID, fmt.Errorf("observable %s already exists", id))
			continue
		}
		taken[id] = true
		if out.Measurements.Len() == 0 {
			return nil, &CellError{Table: measurements.Name, Err: errors.New("at least one measurement is needed to place prior measurements")}
		}

		obs := map[string]string{
			ColObservableID:      id,
			ColObservableFormula: priorFormula(r.ID, family, r.Scale),
			ColNoiseFormula:      "noiseParameter1_" + id,
			ColNoiseDistribution: family.Base().String(),
		}
		if family.IsLog() {
			obs[ColObservableTransf] = scale.Log.String()
		} else if out.Observables.Has(ColObservableTransf) {
			obs[ColObservableTransf] = scale.Lin.String()
		}
		out.Observables.Append(obs)

		meas := map[string]string{
			ColObservableID:     id,
			ColSimulationCondID: out.Measurements.Get(0, ColSimulationCondID),
			ColTime:             out.Measurements.Get(0, ColTime),
			ColMeasurement:      pp[0].String(),
			ColNoiseParams:      pp[1].String(),
		}
		if out.Measurements.Has(ColPreequilibrationID) {
			meas[ColPreequilibrationID] = out.Measurements.Get(0, ColPreequilibrationID)
		}
		out.Measurements.Append(meas)

		out.Parameters.Set(r.Row-1, prior.Objective.TypeColumn(), "")
		out.Parameters.Set(r.Row-1, prior.Objective.ParametersColumn(), "")
		out.Converted = append(out.Converted, r.ID)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// priorFormula returns the observable formula of a prior: the parameter on
// the axis the prior is defined on.
func priorFormula(id string, family distributions.Family, s scale.Kind) string {
	if !family.Scaled() {
		return id
	}
	switch s {
	case scale.Log:
		return "ln(" + id + ")"
	case scale.Log10:
		return "log10(" + id + ")"
	}
	return id
}
