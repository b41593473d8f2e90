package formula

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	formulaErrors "petab-hq/petab/pkg/formula/errors"
	"petab-hq/petab/pkg/formula/eval"
	"petab-hq/petab/pkg/formula/parser"
	"petab-hq/petab/pkg/formula/symbols"
)

func TestCompile(t *testing.T) {
	table := symbols.NewTable().MustAdd("a", symbols.Parameter).MustAdd("b", symbols.Parameter)

	f := Compile("a + b * 2", table)
	if !f.OK() || f.Err() != nil {
		t.Fatalf("Compile() diagnostics: %v", f.Diagnostics)
	}
	v, err := f.Evaluate(eval.Bindings{"a": 1, "b": 2})
	if err != nil || v != 5 {
		t.Errorf("Evaluate() = %v, %v; want 5", v, err)
	}
	if got := f.Symbols(); len(got) != 2 {
		t.Errorf("Symbols() = %v", got)
	}

	bad := Compile("a + c", table)
	if bad.OK() {
		t.Fatal("expected an error for undefined c")
	}
	if _, err := bad.Evaluate(eval.Bindings{"a": 1, "c": 2}); err == nil {
		t.Error("Evaluate() on an invalid formula should fail")
	}
}

func TestCompile_SyntaxErrorSkipsValidation(t *testing.T) {
	f := Compile("undefined_x +", symbols.NewTable())
	if f.Diagnostics.HasErrorType(formulaErrors.ErrorTypeSemantic) {
		t.Errorf("semantic validation ran on a broken tree: %v", f.Diagnostics)
	}
	if !f.Diagnostics.HasErrorType(formulaErrors.ErrorTypeSyntax) {
		t.Error("expected a syntax error")
	}
}

func TestEvaluate(t *testing.T) {
	v, err := Evaluate("k1 * exp(-k2 * time)", eval.Bindings{"k1": 2, "k2": 0, "time": 5})
	if err != nil || v != 2 {
		t.Errorf("Evaluate() = %v, %v; want 2", v, err)
	}
	if _, err := Evaluate("k1 / 0", eval.Bindings{"k1": 1}); err == nil {
		t.Error("expected a domain error")
	}
}

func TestValidateAll(t *testing.T) {
	table := symbols.NewTable().MustAdd("a", symbols.Parameter)
	jobs := []Job{
		{ID: "0", Text: "a + 1"},
		{ID: "1", Text: "a +"},
		{ID: "2", Text: "a + c"},
		{ID: "3", Text: "a * c", Table: symbols.NewTable().MustAdd("a", symbols.Parameter).MustAdd("c", symbols.Parameter)},
	}
	for i := range 100 {
		jobs = append(jobs, Job{ID: fmt.Sprint(i + 4), Text: fmt.Sprintf("a * %d", i)})
	}

	results, err := ValidateAll(context.Background(), jobs, table, 4)
	if err != nil {
		t.Fatalf("ValidateAll() error = %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}
	want := map[int]bool{0: true, 1: false, 2: false, 3: true}
	for i, ok := range want {
		if results[i].OK() != ok {
			t.Errorf("job %d OK() = %v, want %v: %v", i, results[i].OK(), ok, results[i].Diagnostics)
		}
	}
	for i := 4; i < len(jobs); i++ {
		if results[i].Text != jobs[i].Text {
			t.Fatalf("result %d out of order: %q", i, results[i].Text)
		}
	}
}

func TestValidateAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ValidateAll(ctx, []Job{{Text: "1"}}, nil, 1)
	if err == nil {
		t.Error("expected context error")
	}
}

func TestCache(t *testing.T) {
	c := NewCache(2)
	p := NewPipeline().WithCache(c)

	first := p.Parse("a + b")
	second := p.Parse("a + b")
	if first.Root != second.Root {
		t.Error("second parse should come from the cache")
	}

	p.Parse("c")
	p.Parse("d")
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("a + b"); ok {
		t.Error("oldest entry should have been evicted")
	}
}

func TestCache_DiagnosticsNotShared(t *testing.T) {
	p := NewPipeline().WithCache(NewCache(0))

	first := p.Parse("a + ")
	if first.Diagnostics.Len() == 0 {
		t.Fatal("expected a syntax error")
	}
	first.Diagnostics.Add(&formulaErrors.Diagnostic{Severity: formulaErrors.SeverityWarning, Message: "added by caller"})
	first.Diagnostics.Diagnostics[0].Message = "changed by caller"

	second := p.Parse("a + ")
	if second.Diagnostics.Len() != first.Diagnostics.Len()-1 {
		t.Errorf("cached result has %d diagnostics, want %d", second.Diagnostics.Len(), first.Diagnostics.Len()-1)
	}
	if msg := second.Diagnostics.Diagnostics[0].Message; msg == "changed by caller" {
		t.Error("cached diagnostic was modified through an earlier result")
	}

	second.Diagnostics.Promote()
	third := p.Parse("a + ")
	for _, d := range third.Diagnostics.Diagnostics {
		if second.Diagnostics.Diagnostics[0] == d {
			t.Error("cache hits share diagnostic values")
		}
	}
}

func TestCache_EvictionReleasesKeys(t *testing.T) {
	c := NewCache(3)
	for i := range 100 {
		c.Put(fmt.Sprintf("x%d", i), parser.Result{})
	}

	if c.Len() != 3 || len(c.order) != 3 {
		t.Fatalf("Len() = %d, order = %d, want 3", c.Len(), len(c.order))
	}
	for _, key := range c.order {
		if _, ok := c.entries[key]; !ok {
			t.Errorf("order holds evicted key %q", key)
		}
	}
	// The spare capacity of the backing array must not pin evicted keys.
	for _, key := range c.order[len(c.order):cap(c.order)] {
		if key != "" {
			t.Errorf("backing array retains evicted key %q", key)
		}
	}
	if cap(c.order) > 8 {
		t.Errorf("order capacity grew to %d", cap(c.order))
	}
}

func TestCache_Concurrent(t *testing.T) {
	p := NewPipeline().WithCache(NewCache(16))
	table := symbols.NewTable().MustAdd("x", symbols.Parameter)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f := p.Compile(fmt.Sprintf("x * %d", i%8), table)
			if !f.OK() {
				t.Errorf("Compile() diagnostics: %v", f.Diagnostics)
			}
		}()
	}
	wg.Wait()
}

type fakeRecorder struct {
	mu       sync.Mutex
	formulas int
	hits     int
	misses   int
	errors   []string
}

func (r *fakeRecorder) RecordFormula(time.Duration, *formulaErrors.DiagnosticList) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formulas++
}

func (r *fakeRecorder) RecordCacheLookup(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func (r *fakeRecorder) RecordEvalError(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, kind)
}

func TestPipeline_Recorder(t *testing.T) {
	rec := &fakeRecorder{}
	p := NewPipeline().WithCache(NewCache(0)).WithRecorder(rec)

	p.Compile("1 + 1", nil)
	p.Compile("1 + 1", nil)
	if _, err := p.Evaluate("log(x)", eval.Bindings{"x": -1}); err == nil {
		t.Fatal("expected domain error")
	}

	if rec.formulas != 3 || rec.hits != 1 || rec.misses != 2 {
		t.Errorf("recorder = %+v", rec)
	}
	if len(rec.errors) != 1 || rec.errors[0] != string(eval.ErrorKindDomain) {
		t.Errorf("eval errors = %v", rec.errors)
	}
}
