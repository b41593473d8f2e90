package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"petab-hq/petab/pkg/formula/eval"
	"petab-hq/petab/pkg/formula/symbols"
	"petab-hq/petab/pkg/prior"
	"petab-hq/petab/pkg/scale"
)

// Column names.
const (
	ColParameterID        = "parameterId"
	ColParameterName      = "parameterName"
	ColParameterScale     = "parameterScale"
	ColLowerBound         = "lowerBound"
	ColUpperBound         = "upperBound"
	ColNominalValue       = "nominalValue"
	ColEstimate           = "estimate"
	ColObservableID       = "observableId"
	ColObservableName     = "observableName"
	ColObservableFormula  = "observableFormula"
	ColObservableTransf   = "observableTransformation"
	ColNoiseFormula       = "noiseFormula"
	ColNoiseDistribution  = "noiseDistribution"
	ColConditionID        = "conditionId"
	ColConditionName      = "conditionName"
	ColSimulationCondID   = "simulationConditionId"
	ColPreequilibrationID = "preequilibrationConditionId"
	ColMeasurement        = "measurement"
	ColTime               = "time"
	ColObservableParams   = "observableParameters"
	ColNoiseParams        = "noiseParameters"
)

// ParameterSeparator separates entries of replacement list cells.
const ParameterSeparator = ";"

// parseFloat reads an optional numeric cell; empty cells are NaN.
func parseFloat(cell string) (float64, error) {
	if cell == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN(), fmt.Errorf("%q is not a number", cell)
	}
	return v, nil
}

// parseEstimate accepts 0/1 and true/false. Empty cells mean estimated.
func parseEstimate(cell string) (bool, error) {
	switch strings.ToLower(cell) {
	case "", "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid estimate value %q, want true or false", cell)
}

// ParameterRow is one row of the parameter table.
type ParameterRow struct {
	Row        int
	ID         string
	Name       string
	Scale      scale.Kind
	LowerBound float64 // NaN if empty
	UpperBound float64 // NaN if empty
	Nominal    float64 // NaN if empty
	Estimate   bool

	ObjectivePriorType            string
	ObjectivePriorParameters      string
	InitializationPriorType       string
	InitializationPriorParameters string
}

// PriorRow returns the prior-related columns for kind.
func (p ParameterRow) PriorRow(kind prior.Kind) prior.Row {
	r := prior.Row{
		ParameterID: p.ID,
		Scale:       p.Scale,
		LowerBound:  p.LowerBound,
		UpperBound:  p.UpperBound,
	}
	if kind == prior.Initialization {
		r.PriorType = p.InitializationPriorType
		r.PriorParameters = p.InitializationPriorParameters
	} else {
		r.PriorType = p.ObjectivePriorType
		r.PriorParameters = p.ObjectivePriorParameters
	}
	return r
}

// HasPrior reports whether the row declares a prior of kind.
func (p ParameterRow) HasPrior(kind prior.Kind) bool {
	r := p.PriorRow(kind)
	return r.PriorType != "" || r.PriorParameters != ""
}

// NominalBindings maps each parameter with a nominal value to that value.
// Formula-valued prior parameters are evaluated against it.
func NominalBindings(rows []ParameterRow) eval.Bindings {
	b := make(eval.Bindings, len(rows))
	for _, r := range rows {
		if !math.IsNaN(r.Nominal) {
			b[r.ID] = r.Nominal
		}
	}
	return b
}

// ParameterRows converts the parameter table. Rows with conversion errors
// are skipped and their errors returned together.
func ParameterRows(t *Table) ([]ParameterRow, error) {
	if err := t.Require(ColParameterID); err != nil {
		return nil, err
	}
	var (
		rows []ParameterRow
		errs []error
	)
	for i := range t.Rows {
		cellErr := func(col string, err error) {
			errs = append(errs, &CellError{Table: t.Name, Row: i + 1, Column: col, Err: err})
		}
		r := ParameterRow{
			Row:                           i + 1,
			ID:                            t.Get(i, ColParameterID),
			Name:                          t.Get(i, ColParameterName),
			ObjectivePriorType:            t.Get(i, prior.Objective.TypeColumn()),
			ObjectivePriorParameters:      t.Get(i, prior.Objective.ParametersColumn()),
			InitializationPriorType:       t.Get(i, prior.Initialization.TypeColumn()),
			InitializationPriorParameters: t.Get(i, prior.Initialization.ParametersColumn()),
		}
		ok := true
		if !symbols.IsValidIdentifier(r.ID) {
			cellErr(ColParameterID, fmt.Errorf("invalid parameter ID %q", r.ID))
			ok = false
		}
		var err error
		if r.Scale, err = scale.Parse(t.Get(i, ColParameterScale)); err != nil {
			cellErr(ColParameterScale, err)
			ok = false
		}
		for _, f := range []struct {
			col string
			dst *float64
		}{
			{ColLowerBound, &r.LowerBound},
			{ColUpperBound, &r.UpperBound},
			{ColNominalValue, &r.Nominal},
		} {
			if *f.dst, err = parseFloat(t.Get(i, f.col)); err != nil {
				cellErr(f.col, err)
				ok = false
			}
		}
		if r.Estimate, err = parseEstimate(t.Get(i, ColEstimate)); err != nil {
			cellErr(ColEstimate, err)
			ok = false
		}
		if ok {
			rows = append(rows, r)
		}
	}
	return rows, errors.Join(errs...)
}

// ObservableRow is one row of the observable table.
type ObservableRow struct {
	Row               int
	ID                string
	Name              string
	Formula           string
	Transformation    string
	NoiseFormula      string
	NoiseDistribution string
}

// ObservableRows converts the observable table.
func ObservableRows(t *Table) ([]ObservableRow, error) {
	if err := t.Require(ColObservableID, ColObservableFormula, ColNoiseFormula); err != nil {
		return nil, err
	}
	var (
		rows []ObservableRow
		errs []error
	)
	for i := range t.Rows {
		r := ObservableRow{
			Row:               i + 1,
			ID:                t.Get(i, ColObservableID),
			Name:              t.Get(i, ColObservableName),
			Formula:           t.Get(i, ColObservableFormula),
			Transformation:    t.Get(i, ColObservableTransf),
			NoiseFormula:      t.Get(i, ColNoiseFormula),
			NoiseDistribution: t.Get(i, ColNoiseDistribution),
		}
		if !symbols.IsValidIdentifier(r.ID) {
			errs = append(errs, &CellError{Table: t.Name, Row: i + 1, Column: ColObservableID,
				Err: fmt.Errorf("invalid observable ID %q", r.ID)})
			continue
		}
		rows = append(rows, r)
	}
	return rows, errors.Join(errs...)
}

// ConditionRow is one row of the (wide) condition table. Values maps each
// target column to its cell text.
type ConditionRow struct {
	Row    int
	ID     string
	Name   string
	Values map[string]string
}

// ConditionRows converts the condition table.
func ConditionRows(t *Table) ([]ConditionRow, error) {
	if err := t.Require(ColConditionID); err != nil {
		return nil, err
	}
	var (
		rows []ConditionRow
		errs []error
	)
	for i := range t.Rows {
		r := ConditionRow{
			Row:    i + 1,
			ID:     t.Get(i, ColConditionID),
			Name:   t.Get(i, ColConditionName),
			Values: make(map[string]string),
		}
		if !symbols.IsValidIdentifier(r.ID) {
			errs = append(errs, &CellError{Table: t.Name, Row: i + 1, Column: ColConditionID,
				Err: fmt.Errorf("invalid condition ID %q", r.ID)})
			continue
		}
		for _, col := range t.Header {
			if col == ColConditionID || col == ColConditionName {
				continue
			}
			r.Values[col] = t.Get(i, col)
		}
		rows = append(rows, r)
	}
	return rows, errors.Join(errs...)
}

// Targets returns the condition table's target columns in header order.
func Targets(t *Table) []string {
	var out []string
	for _, col := range t.Header {
		if col != ColConditionID && col != ColConditionName {
			out = append(out, col)
		}
	}
	return out
}

// MeasurementRow is one row of the measurement table.
type MeasurementRow struct {
	Row                         int
	ObservableID                string
	SimulationConditionID       string
	PreequilibrationConditionID string
	Measurement                 float64
	Time                        float64
	ObservableParameters        []Replacement
	NoiseParameters             []Replacement
}

// MeasurementRows converts the measurement table.
func MeasurementRows(t *Table) ([]MeasurementRow, error) {
	if err := t.Require(ColObservableID, ColSimulationCondID, ColMeasurement, ColTime); err != nil {
		return nil, err
	}
	var (
		rows []MeasurementRow
		errs []error
	)
	for i := range t.Rows {
		cellErr := func(col string, err error) {
			errs = append(errs, &CellError{Table: t.Name, Row: i + 1, Column: col, Err: err})
		}
		r := MeasurementRow{
			Row:                         i + 1,
			ObservableID:                t.Get(i, ColObservableID),
			SimulationConditionID:       t.Get(i, ColSimulationCondID),
			PreequilibrationConditionID: t.Get(i, ColPreequilibrationID),
		}
		ok := true
		var err error
		if r.Measurement, err = parseFloat(t.Get(i, ColMeasurement)); err != nil || math.IsNaN(r.Measurement) {
			if err == nil {
				err = errors.New("missing measurement")
			}
			cellErr(ColMeasurement, err)
			ok = false
		}
		if r.Time, err = parseFloat(t.Get(i, ColTime)); err != nil || math.IsNaN(r.Time) {
			if err == nil {
				err = errors.New("missing time")
			}
			cellErr(ColTime, err)
			ok = false
		}
		if r.ObservableParameters, err = SplitParameterReplacementList(t.Get(i, ColObservableParams)); err != nil {
			cellErr(ColObservableParams, err)
			ok = false
		}
		if r.NoiseParameters, err = SplitParameterReplacementList(t.Get(i, ColNoiseParams)); err != nil {
			cellErr(ColNoiseParams, err)
			ok = false
		}
		if ok {
			rows = append(rows, r)
		}
	}
	return rows, errors.Join(errs...)
}

// Replacement is one entry of an observableParameters or noiseParameters
// cell: a number or a parameter ID.
type Replacement struct {
	Value float64
	ID    string
}

// IsNumber reports whether the replacement is numeric.
func (r Replacement) IsNumber() bool {
	return r.ID == ""
}

// String returns the replacement as written.
func (r Replacement) String() string {
	if r.IsNumber() {
		return strconv.FormatFloat(r.Value, 'g', -1, 64)
	}
	return r.ID
}

// SplitParameterReplacementList splits a ';'-separated replacement cell.
// Each entry must be a number or a valid identifier. An empty cell yields
// no entries.
func SplitParameterReplacementList(cell string) ([]Replacement, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	var out []Replacement
	for _, field := range strings.Split(cell, ParameterSeparator) {
		field = strings.TrimSpace(field)
		if v, err := strconv.ParseFloat(field, 64); err == nil {
			out = append(out, Replacement{Value: v})
			continue
		}
		if !symbols.IsValidIdentifier(field) {
			return nil, fmt.Errorf("the value %q in the parameter replacement list %q is neither a number, nor a valid parameter ID", field, cell)
		}
		out = append(out, Replacement{ID: field})
	}
	return out, nil
}
