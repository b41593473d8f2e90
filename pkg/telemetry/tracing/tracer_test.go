package tracing

import (
	"context"
	"errors"
	"testing"

	"petab-hq/petab/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestTracer(t *testing.T, sampler string) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	cfg := &config.TracingConfig{Enabled: true, Sampler: sampler, SampleRatio: 1}
	tracer, err := NewWithExporter(cfg, "test", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	t.Cleanup(func() {
		_ = tracer.Shutdown(context.Background())
		otel.SetTracerProvider(noop.NewTracerProvider())
	})
	return tracer, exporter
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{}, "v0")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("expected disabled tracer")
	}

	ctx, span := tracer.Start(context.Background(), "noop")
	span.End()
	if TraceID(ctx) != "" {
		t.Error("noop spans must not carry a trace ID")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	if _, err := New(nil, "v0"); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestNew_Errors(t *testing.T) {
	cfg := &config.TracingConfig{Enabled: true, Exporter: "zipkin"}
	if _, err := New(cfg, "v0"); err == nil {
		t.Error("expected error for unsupported exporter")
	}

	_, err := NewWithExporter(&config.TracingConfig{Enabled: true, Sampler: "sometimes"}, "v0", tracetest.NewInMemoryExporter())
	if err == nil {
		t.Error("expected error for unknown sampler")
	}
}

func TestStart_UsesGlobalProvider(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerAlways)

	ctx, parent := Start(context.Background(), "lint.Lint", Problem("p.yaml"), RunID("r1"))
	if TraceID(ctx) == "" {
		t.Error("expected a trace ID inside a recorded span")
	}
	SetLintAttributes(parent, 2, 1)

	_, child := Start(ctx, "formula.ValidateAll")
	SetFormulaBatchAttributes(child, 10, 4)
	End(child, nil)
	End(parent, errors.New("2 errors"))

	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	var lintSpan, batchSpan tracetest.SpanStub
	for _, s := range spans {
		switch s.Name {
		case "lint.Lint":
			lintSpan = s
		case "formula.ValidateAll":
			batchSpan = s
		}
	}

	if batchSpan.Parent.SpanID() != lintSpan.SpanContext.SpanID() {
		t.Error("expected batch span to be a child of the lint span")
	}

	attrs := attrMap(lintSpan.Attributes)
	if attrs[AttrProblem].AsString() != "p.yaml" || attrs[AttrRunID].AsString() != "r1" {
		t.Errorf("unexpected lint attributes: %v", lintSpan.Attributes)
	}
	if attrs[AttrLintErrors].AsInt64() != 2 || attrs[AttrLintWarnings].AsInt64() != 1 {
		t.Errorf("unexpected counts: %v", lintSpan.Attributes)
	}
	if lintSpan.Status.Code != codes.Error || lintSpan.Status.Description != "2 errors" {
		t.Errorf("lint status = %+v", lintSpan.Status)
	}
	if len(lintSpan.Events) == 0 {
		t.Error("expected the error to be recorded as an event")
	}

	if batchSpan.Status.Code != codes.Ok {
		t.Errorf("batch status = %+v", batchSpan.Status)
	}
	if got := attrMap(batchSpan.Attributes)[AttrFormulaCount].AsInt64(); got != 10 {
		t.Errorf("formula count = %d", got)
	}
}

func TestSampler_Never(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerNever)

	_, span := tracer.Start(context.Background(), "dropped")
	span.End()
	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("expected no exported spans, got %d", n)
	}
}

func TestSetSampleAttributes(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerAlways)

	_, span := tracer.Start(context.Background(), "prior.Sample")
	SetSampleAttributes(span, "normal", "log10", 100, 1<<63)
	span.End()
	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatal(err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := attrMap(spans[0].Attributes)
	if attrs[AttrPriorFamily].AsString() != "normal" || attrs[AttrPriorScale].AsString() != "log10" {
		t.Errorf("unexpected attributes: %v", spans[0].Attributes)
	}
	if got := uint64(attrs[AttrSampleSeed].AsInt64()); got != 1<<63 {
		t.Errorf("seed = %d, want %d", got, uint64(1<<63))
	}
}

var _ sdktrace.SpanExporter = (*tracetest.InMemoryExporter)(nil)
