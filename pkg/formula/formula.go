package formula

import (
	"errors"
	"time"

	"petab-hq/petab/pkg/formula/ast"
	formulaErrors "petab-hq/petab/pkg/formula/errors"
	"petab-hq/petab/pkg/formula/eval"
	"petab-hq/petab/pkg/formula/parser"
	"petab-hq/petab/pkg/formula/symbols"
	"petab-hq/petab/pkg/formula/validator"
)

// Formula is a parsed and validated formula.
type Formula struct {
	Text        string
	Root        ast.Node // nil or partial if parsing failed
	Diagnostics *formulaErrors.DiagnosticList
}

// OK returns true if the formula has a tree and no error diagnostics.
func (f *Formula) OK() bool {
	return f.Root != nil && !f.Diagnostics.HasErrors()
}

// Err returns the error diagnostics as an error, or nil.
func (f *Formula) Err() error {
	return f.Diagnostics.ToError()
}

// Evaluate evaluates the formula. It refuses formulas with errors.
func (f *Formula) Evaluate(bindings eval.Bindings) (float64, error) {
	if err := f.Err(); err != nil {
		return 0, err
	}
	return eval.Evaluate(f.Root, bindings)
}

// Symbols returns the free symbols the formula references.
func (f *Formula) Symbols() []string {
	return eval.FreeSymbols(f.Root)
}

// Recorder receives pipeline measurements. It is implemented by
// metrics.FormulaMetrics.
type Recorder interface {
	RecordFormula(duration time.Duration, diags *formulaErrors.DiagnosticList)
	RecordCacheLookup(hit bool)
	RecordEvalError(kind string)
}

// Pipeline compiles formula text. It is safe for concurrent use.
type Pipeline struct {
	parser    *parser.Parser
	validator *validator.Validator
	cache     *Cache
	recorder  Recorder
}

// NewPipeline creates a pipeline with the default parser and validator and
// no cache.
func NewPipeline() *Pipeline {
	return &Pipeline{
		parser:    parser.NewParser(),
		validator: validator.NewValidator(),
	}
}

// WithParser sets the parser.
func (p *Pipeline) WithParser(pp *parser.Parser) *Pipeline {
	p.parser = pp
	return p
}

// WithValidator sets the validator.
func (p *Pipeline) WithValidator(v *validator.Validator) *Pipeline {
	p.validator = v
	return p
}

// WithCache enables caching of parse results.
func (p *Pipeline) WithCache(c *Cache) *Pipeline {
	p.cache = c
	return p
}

// WithRecorder sets the metrics recorder.
func (p *Pipeline) WithRecorder(r Recorder) *Pipeline {
	p.recorder = r
	return p
}

// Parse tokenizes and parses text, consulting the cache if configured.
func (p *Pipeline) Parse(text string) parser.Result {
	if p.cache != nil {
		res, ok := p.cache.Get(text)
		if p.recorder != nil {
			p.recorder.RecordCacheLookup(ok)
		}
		if ok {
			return res
		}
	}
	res := p.parser.ParseString(text)
	if p.cache != nil {
		p.cache.Put(text, res)
	}
	return res
}

// Compile parses text and validates it against table. Semantic validation
// only runs on trees that parsed without errors.
func (p *Pipeline) Compile(text string, table *symbols.Table) *Formula {
	start := time.Now()

	res := p.Parse(text)
	diags := formulaErrors.NewDiagnosticList()
	diags.Merge(res.Diagnostics)
	if res.OK() {
		diags.Merge(p.validator.Validate(res.Root, table))
	}

	if p.recorder != nil {
		p.recorder.RecordFormula(time.Since(start), diags)
	}
	return &Formula{Text: text, Root: res.Root, Diagnostics: diags}
}

// Evaluate compiles text against a table holding the bound names and
// evaluates it.
func (p *Pipeline) Evaluate(text string, bindings eval.Bindings) (float64, error) {
	table := symbols.NewTable().With(kindsOf(bindings))
	v, err := p.Compile(text, table).Evaluate(bindings)
	var evalErr *eval.Error
	if errors.As(err, &evalErr) && p.recorder != nil {
		p.recorder.RecordEvalError(string(evalErr.Kind))
	}
	return v, err
}

func kindsOf(bindings eval.Bindings) map[string]symbols.Kind {
	kinds := make(map[string]symbols.Kind, len(bindings))
	for name := range bindings {
		kinds[name] = symbols.Parameter
	}
	return kinds
}

var defaultPipeline = NewPipeline()

// Compile compiles text with the default pipeline.
func Compile(text string, table *symbols.Table) *Formula {
	return defaultPipeline.Compile(text, table)
}

// Evaluate compiles and evaluates text with the default pipeline.
func Evaluate(text string, bindings eval.Bindings) (float64, error) {
	return defaultPipeline.Evaluate(text, bindings)
}
