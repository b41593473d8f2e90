package lint

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"petab-hq/petab/pkg/formula"
	"petab-hq/petab/pkg/formula/builtin"
	formulaErrors "petab-hq/petab/pkg/formula/errors"
	"petab-hq/petab/pkg/formula/eval"
	"petab-hq/petab/pkg/formula/symbols"
	"petab-hq/petab/pkg/noise"
	"petab-hq/petab/pkg/prior"
	"petab-hq/petab/pkg/scale"
	"petab-hq/petab/pkg/table"
)

type placeholderKind int

const (
	noPlaceholders placeholderKind = iota
	observablePlaceholders
	noisePlaceholders
)

var placeholderRe = regexp.MustCompile(`^(observable|noise)Parameter([1-9][0-9]*)_(\w+)$`)

// formulaJob is a formula cell waiting to be compiled.
type formulaJob struct {
	table  string
	row    int
	column string
	text   string

	observableID string
	placeholders placeholderKind
}

type parameterEntry struct {
	table string
	row   table.ParameterRow
}

type observableEntry struct {
	table string
	row   table.ObservableRow
	model noise.Model
	valid bool // model parsed

	// Highest placeholder index per kind, filled in by compile
	observableCount int
	noiseCount      int
}

type measurementEntry struct {
	table string
	row   table.MeasurementRow
}

// checker holds the state of one lint run.
type checker struct {
	l      *Linter
	report *Report

	parameters   map[string]parameterEntry
	paramOrder   []string
	conditionIDs map[string]bool
	targets      map[string]bool
	observables  map[string]*observableEntry
	measurements []measurementEntry
	jobs         []formulaJob
}

func newChecker(l *Linter, report *Report) *checker {
	return &checker{
		l:            l,
		report:       report,
		parameters:   make(map[string]parameterEntry),
		conditionIDs: make(map[string]bool),
		targets:      make(map[string]bool),
		observables:  make(map[string]*observableEntry),
	}
}

func (c *checker) errorf(tableName string, row int, column, format string, args ...any) {
	c.report.Add(Finding{
		Severity: SeverityError,
		Table:    tableName,
		Row:      row,
		Column:   column,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *checker) warnf(tableName string, row int, column, format string, args ...any) {
	c.report.Add(Finding{
		Severity: SeverityWarning,
		Table:    tableName,
		Row:      row,
		Column:   column,
		Message:  fmt.Sprintf(format, args...),
	})
}

// addError converts table conversion errors into findings.
func (c *checker) addError(tableName string, err error) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			c.addError(tableName, e)
		}
		return
	}
	var cellErr *table.CellError
	if errors.As(err, &cellErr) {
		c.errorf(cellErr.Table, cellErr.Row, cellErr.Column, "%v", cellErr.Err)
		return
	}
	c.errorf(tableName, 0, "", "%v", err)
}

func (c *checker) loadParameters(t *table.Table) {
	rows, err := table.ParameterRows(t)
	c.addError(t.Name, err)

	for _, r := range rows {
		if prev, dup := c.parameters[r.ID]; dup {
			c.errorf(t.Name, r.Row, table.ColParameterID, "duplicate parameter ID %q (first defined in row %d)", r.ID, prev.row.Row)
			continue
		}
		c.parameters[r.ID] = parameterEntry{table: t.Name, row: r}
		c.paramOrder = append(c.paramOrder, r.ID)

		hasLB, hasUB := !math.IsNaN(r.LowerBound), !math.IsNaN(r.UpperBound)
		switch {
		case r.Estimate && (!hasLB || !hasUB):
			c.errorf(t.Name, r.Row, boundColumn(hasLB), "estimated parameter must have lower and upper bounds set")
		case hasLB && hasUB && r.LowerBound >= r.UpperBound:
			c.errorf(t.Name, r.Row, table.ColLowerBound, "lower bound %g must be less than upper bound %g", r.LowerBound, r.UpperBound)
		case r.Scale.IsLog() && hasLB && r.LowerBound <= 0:
			c.errorf(t.Name, r.Row, table.ColLowerBound, "bounds of a %s-scaled parameter must be positive, got %g", r.Scale, r.LowerBound)
		}
		if !r.Estimate && math.IsNaN(r.Nominal) {
			c.errorf(t.Name, r.Row, table.ColNominalValue, "non-estimated parameter must have a nominal value")
		}
		if !math.IsNaN(r.Nominal) && hasLB && hasUB && (r.Nominal < r.LowerBound || r.Nominal > r.UpperBound) {
			c.warnf(t.Name, r.Row, table.ColNominalValue, "nominal value %g outside bounds [%g, %g]", r.Nominal, r.LowerBound, r.UpperBound)
		}
	}
}

func boundColumn(hasLower bool) string {
	if hasLower {
		return table.ColUpperBound
	}
	return table.ColLowerBound
}

// priorChecks validates declared priors. Formula parameters must reference
// parameters; they are evaluated with nominal values where available.
func (c *checker) priorChecks() {
	rows := make([]table.ParameterRow, 0, len(c.parameters))
	for _, p := range c.parameters {
		rows = append(rows, p.row)
	}
	nominal := table.NominalBindings(rows)

	for _, id := range c.paramOrder {
		entry := c.parameters[id]
		for _, kind := range []prior.Kind{prior.Objective, prior.Initialization} {
			if !entry.row.HasPrior(kind) {
				continue
			}
			if !entry.row.Estimate {
				c.warnf(entry.table, entry.row.Row, kind.TypeColumn(), "prior of non-estimated parameter %s is ignored", id)
				continue
			}
			c.checkPrior(entry, kind, nominal)
		}
	}
}

func (c *checker) checkPrior(entry parameterEntry, kind prior.Kind, nominal eval.Bindings) {
	spec, err := prior.SpecFromRow(entry.row.PriorRow(kind), kind)
	if err == nil {
		var d *prior.Deferred
		if d, err = prior.NewDeferred(spec); err == nil {
			var unknown []string
			for _, name := range d.Symbols() {
				if _, ok := c.parameters[name]; !ok {
					unknown = append(unknown, name)
				}
			}
			if len(unknown) > 0 {
				for _, name := range unknown {
					c.report.Add(Finding{
						Severity:   SeverityError,
						Table:      entry.table,
						Row:        entry.row.Row,
						Column:     kind.ParametersColumn(),
						Message:    fmt.Sprintf("prior parameter references undefined parameter %q", name),
						Suggestion: formulaErrors.SuggestName(name, c.paramOrder),
					})
				}
				return
			}
			if bound(d.Symbols(), nominal) {
				_, err = d.Bind(nominal)
			}
		}
	}
	if c.l.priors != nil {
		family := strings.TrimSpace(entry.row.PriorRow(kind).PriorType)
		if family == "" {
			family = "parameterScaleUniform"
		}
		c.l.priors.RecordPrior(family, err == nil)
	}
	if err == nil {
		return
	}

	column := kind.ParametersColumn()
	var cfgErr *prior.ConfigError
	if errors.As(err, &cfgErr) && cfgErr.Field != "" {
		column = cfgErr.Field
		cfgErr = &prior.ConfigError{Message: cfgErr.Message, Err: cfgErr.Err}
		err = cfgErr
	}
	c.errorf(entry.table, entry.row.Row, column, "%v", err)
}

func bound(names []string, b eval.Bindings) bool {
	for _, n := range names {
		if _, ok := b[n]; !ok {
			return false
		}
	}
	return true
}

func (c *checker) loadConditions(t *table.Table) {
	rows, err := table.ConditionRows(t)
	c.addError(t.Name, err)

	targets := table.Targets(t)
	for _, target := range targets {
		if !symbols.IsValidIdentifier(target) {
			c.errorf(t.Name, 0, target, "invalid condition table column %q", target)
			continue
		}
		c.targets[target] = true
	}

	for _, r := range rows {
		if c.conditionIDs[r.ID] {
			c.errorf(t.Name, r.Row, table.ColConditionID, "duplicate condition ID %q", r.ID)
			continue
		}
		c.conditionIDs[r.ID] = true
		for _, target := range targets {
			cell := r.Values[target]
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				continue
			}
			c.jobs = append(c.jobs, formulaJob{table: t.Name, row: r.Row, column: target, text: cell})
		}
	}
}

func (c *checker) loadObservables(t *table.Table) {
	rows, err := table.ObservableRows(t)
	c.addError(t.Name, err)

	for _, r := range rows {
		if _, dup := c.observables[r.ID]; dup {
			c.errorf(t.Name, r.Row, table.ColObservableID, "duplicate observable ID %q", r.ID)
			continue
		}
		entry := &observableEntry{table: t.Name, row: r}
		c.observables[r.ID] = entry

		if _, err := scale.Parse(r.Transformation); err != nil {
			c.errorf(t.Name, r.Row, table.ColObservableTransf, "%v", err)
		} else if m, err := noise.ParseModel(r.NoiseDistribution, r.Transformation); err != nil {
			c.errorf(t.Name, r.Row, table.ColNoiseDistribution, "%v", err)
		} else {
			entry.model, entry.valid = m, true
		}

		c.jobs = append(c.jobs,
			formulaJob{table: t.Name, row: r.Row, column: table.ColObservableFormula, text: r.Formula,
				observableID: r.ID, placeholders: observablePlaceholders},
			formulaJob{table: t.Name, row: r.Row, column: table.ColNoiseFormula, text: r.NoiseFormula,
				observableID: r.ID, placeholders: noisePlaceholders},
		)
	}
}

func (c *checker) loadMeasurements(t *table.Table) {
	rows, err := table.MeasurementRows(t)
	c.addError(t.Name, err)
	for _, r := range rows {
		c.measurements = append(c.measurements, measurementEntry{table: t.Name, row: r})
	}
}

// baseTable declares parameters, condition targets and model symbols.
func (c *checker) baseTable() *symbols.Table {
	kinds := make(map[string]symbols.Kind)
	for id := range c.parameters {
		kinds[id] = symbols.Parameter
	}
	for target := range c.targets {
		if _, ok := kinds[target]; !ok {
			kinds[target] = symbols.Species
		}
	}
	return symbols.NewTable().With(kinds).With(c.l.modelSymbols)
}

// compile validates all collected formulas concurrently.
func (c *checker) compile(ctx context.Context) error {
	base := c.baseTable()
	jobs := make([]formula.Job, len(c.jobs))
	for i, j := range c.jobs {
		jobs[i] = formula.Job{
			ID:    fmt.Sprintf("%s:%d:%s", j.table, j.row, j.column),
			Text:  j.text,
			Table: c.jobTable(base, j),
		}
	}

	results, err := c.l.pipeline.ValidateAll(ctx, jobs, base, c.l.workers)
	if err != nil {
		return err
	}
	for i, f := range results {
		j := c.jobs[i]
		for _, d := range f.Diagnostics.Diagnostics {
			c.report.Add(Finding{
				Severity:   d.Severity,
				Table:      j.table,
				Row:        j.row,
				Column:     j.column,
				Message:    d.Message,
				Formula:    j.text,
				Span:       d.Span,
				Suggestion: d.Suggestion,
			})
		}
	}
	return nil
}

// jobTable extends base with the placeholders of j and, when no model
// symbols are known, with the identifiers no table defines.
func (c *checker) jobTable(base *symbols.Table, j formulaJob) *symbols.Table {
	res := c.l.pipeline.Parse(j.text)
	if res.Root == nil {
		return base
	}
	extra := make(map[string]symbols.Kind)
	var indices []int
	for _, name := range eval.FreeSymbols(res.Root) {
		if base.Has(name) || builtin.IsReserved(name) {
			continue
		}
		if j.placeholders != noPlaceholders {
			if name == j.observableID && j.placeholders == noisePlaceholders {
				extra[name] = symbols.Observable
				continue
			}
			m := placeholderRe.FindStringSubmatch(name)
			if m != nil && m[3] == j.observableID && (m[1] == "observable") == (j.placeholders == observablePlaceholders) {
				n, _ := strconv.Atoi(m[2])
				indices = append(indices, n)
				extra[name] = symbols.Placeholder
				continue
			}
		}
		if c.l.modelSymbols == nil {
			extra[name] = symbols.Species
			c.warnf(j.table, j.row, j.column, "%q is not defined in the parameter or condition tables; assuming it is a model entity", name)
		}
	}

	if entry, ok := c.observables[j.observableID]; ok && len(indices) > 0 {
		count := c.checkPlaceholderNumbering(j, indices)
		if j.placeholders == observablePlaceholders {
			entry.observableCount = count
		} else {
			entry.noiseCount = count
		}
	}
	if len(extra) == 0 {
		return base
	}
	return base.With(extra)
}

// checkPlaceholderNumbering reports gaps in placeholder indices and returns
// the highest index.
func (c *checker) checkPlaceholderNumbering(j formulaJob, indices []int) int {
	prefix := "observable"
	if j.placeholders == noisePlaceholders {
		prefix = "noise"
	}
	slices.Sort(indices)
	for i, n := range indices {
		if n != i+1 {
			c.errorf(j.table, j.row, j.column, "%sParameter placeholders of %s must be numbered consecutively from 1, missing %sParameter%d_%s",
				prefix, j.observableID, prefix, i+1, j.observableID)
			break
		}
	}
	return indices[len(indices)-1]
}

// measurementChecks cross-references measurements. It runs after compile
// so that placeholder counts are known.
func (c *checker) measurementChecks() {
	observableIDs := slices.Sorted(maps.Keys(c.observables))
	conditionIDs := slices.Sorted(maps.Keys(c.conditionIDs))

	for _, m := range c.measurements {
		r := m.row
		obs, ok := c.observables[r.ObservableID]
		if !ok {
			c.report.Add(Finding{
				Severity:   SeverityError,
				Table:      m.table,
				Row:        r.Row,
				Column:     table.ColObservableID,
				Message:    fmt.Sprintf("undefined observable %q", r.ObservableID),
				Suggestion: formulaErrors.SuggestName(r.ObservableID, observableIDs),
			})
		}
		for _, ref := range []struct{ column, id string }{
			{table.ColSimulationCondID, r.SimulationConditionID},
			{table.ColPreequilibrationID, r.PreequilibrationConditionID},
		} {
			if ref.id == "" || c.conditionIDs[ref.id] || len(c.conditionIDs) == 0 {
				continue
			}
			c.report.Add(Finding{
				Severity:   SeverityError,
				Table:      m.table,
				Row:        r.Row,
				Column:     ref.column,
				Message:    fmt.Sprintf("undefined condition %q", ref.id),
				Suggestion: formulaErrors.SuggestName(ref.id, conditionIDs),
			})
		}
		c.checkReplacements(m, table.ColObservableParams, r.ObservableParameters)
		c.checkReplacements(m, table.ColNoiseParams, r.NoiseParameters)

		if !ok {
			continue
		}
		if n := len(r.ObservableParameters); n != obs.observableCount {
			c.errorf(m.table, r.Row, table.ColObservableParams,
				"observable %s has %d placeholder(s), got %d observableParameters", r.ObservableID, obs.observableCount, n)
		}
		if n := len(r.NoiseParameters); n != obs.noiseCount {
			c.errorf(m.table, r.Row, table.ColNoiseParams,
				"noise formula of %s has %d placeholder(s), got %d noiseParameters", r.ObservableID, obs.noiseCount, n)
		}
		if obs.valid && obs.model.Transformation.IsLog() && r.Measurement <= 0 {
			c.errorf(m.table, r.Row, table.ColMeasurement,
				"measurement %g of %s-transformed observable %s must be positive", r.Measurement, obs.model.Transformation, r.ObservableID)
		}
	}
}

func (c *checker) checkReplacements(m measurementEntry, column string, list []table.Replacement) {
	for _, rep := range list {
		if rep.IsNumber() {
			continue
		}
		if _, ok := c.parameters[rep.ID]; ok {
			continue
		}
		c.report.Add(Finding{
			Severity:   SeverityError,
			Table:      m.table,
			Row:        m.row.Row,
			Column:     column,
			Message:    fmt.Sprintf("undefined parameter %q", rep.ID),
			Suggestion: formulaErrors.SuggestName(rep.ID, c.paramOrder),
		})
	}
}
