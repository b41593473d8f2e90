package table

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"petab-hq/petab/pkg/prior"
	"petab-hq/petab/pkg/scale"
)

func mustRead(t *testing.T, text string) *Table {
	t.Helper()
	tbl, err := Read(strings.NewReader(text), "test.tsv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return tbl
}

func TestRead(t *testing.T) {
	tbl := mustRead(t, "\ufeffa\tb\tc\n1\t\t3\n\n4\t5\n")
	if got := strings.Join(tbl.Header, ","); got != "a,b,c" {
		t.Errorf("Header = %s", got)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	if tbl.Get(0, "b") != "" || tbl.Get(0, "c") != "3" {
		t.Errorf("row 0 = %v", tbl.Rows[0])
	}
	if tbl.Get(1, "c") != "" {
		t.Errorf("short row should be padded, got %v", tbl.Rows[1])
	}
	if tbl.Get(0, "missing") != "" || tbl.Get(5, "a") != "" {
		t.Error("Get() outside the table should return empty")
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"too many cells", "a\tb\n1\t2\t3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.text), "bad.tsv")
			var cellErr *CellError
			if !errors.As(err, &cellErr) {
				t.Fatalf("Read() error = %v, want *CellError", err)
			}
			if cellErr.Table != "bad.tsv" {
				t.Errorf("Table = %q", cellErr.Table)
			}
		})
	}
}

func TestReadFileAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parameters.tsv")
	if err := os.WriteFile(path, []byte("parameterId\testimate\nk1\t1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if tbl.Name != "parameters.tsv" {
		t.Errorf("Name = %q", tbl.Name)
	}
	var buf bytes.Buffer
	if err := tbl.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "parameterId\testimate\nk1\t1\n" {
		t.Errorf("Write() = %q", buf.String())
	}
}

const parameterTSV = "parameterId\tparameterScale\tlowerBound\tupperBound\tnominalValue\testimate\tobjectivePriorType\tobjectivePriorParameters\n" +
	"k1\tlog10\t1e-3\t1e3\t1\t1\t\t\n" +
	"k2\tlin\t\t\t0.5\tfalse\tnormal\t0;1\n" +
	"k3\tsqrt\t0\t1\t\t1\t\t\n" +
	"3k\tlin\tx\t1\t\tmaybe\t\t\n"

func TestParameterRows(t *testing.T) {
	rows, err := ParameterRows(mustRead(t, parameterTSV))
	if len(rows) != 2 {
		t.Fatalf("got %d valid rows, want 2", len(rows))
	}

	k1 := rows[0]
	if k1.ID != "k1" || k1.Scale != scale.Log10 || k1.LowerBound != 1e-3 || !k1.Estimate {
		t.Errorf("k1 = %+v", k1)
	}
	if k1.HasPrior(prior.Objective) {
		t.Error("k1 declares no prior")
	}
	k2 := rows[1]
	if k2.Estimate || !math.IsNaN(k2.LowerBound) || k2.Nominal != 0.5 {
		t.Errorf("k2 = %+v", k2)
	}
	pr := k2.PriorRow(prior.Objective)
	if pr.PriorType != "normal" || pr.PriorParameters != "0;1" || pr.ParameterID != "k2" {
		t.Errorf("PriorRow() = %+v", pr)
	}

	if err == nil {
		t.Fatal("ParameterRows() should report bad rows")
	}
	var cellErr *CellError
	if !errors.As(err, &cellErr) || cellErr.Row != 3 || cellErr.Column != ColParameterScale {
		t.Errorf("first error = %v", cellErr)
	}
	for _, want := range []string{"row 4, column parameterId", "row 4, column lowerBound", "row 4, column estimate"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestNominalBindings(t *testing.T) {
	rows := []ParameterRow{
		{ID: "k1", Nominal: math.NaN()},
		{ID: "k2", Nominal: 0.5},
		{ID: "k3", Nominal: 0},
	}
	b := NominalBindings(rows)
	if len(b) != 2 {
		t.Errorf("got %d bindings, want 2: %v", len(b), b)
	}
	if _, ok := b["k1"]; ok {
		t.Error("parameter without nominal value should be unbound")
	}
	if b["k2"] != 0.5 || b["k3"] != 0 {
		t.Errorf("bindings = %v", b)
	}
}

func TestParameterRows_PriorFromRow(t *testing.T) {
	rows, _ := ParameterRows(mustRead(t, parameterTSV))
	p, err := prior.FromRow(rows[0].PriorRow(prior.Objective), prior.Objective, nil)
	if err != nil {
		t.Fatalf("FromRow() error = %v", err)
	}
	if got := p.Params(); math.Abs(got[0]+3) > 1e-12 || math.Abs(got[1]-3) > 1e-12 {
		t.Errorf("default prior parameters = %v, want scaled bounds [-3 3]", got)
	}
}

func TestObservableAndConditionRows(t *testing.T) {
	obs, err := ObservableRows(mustRead(t,
		"observableId\tobservableFormula\tnoiseFormula\tnoiseDistribution\n"+
			"obs_a\tscale * A\tnoiseParameter1_obs_a\tlaplace\n"+
			"bad id\tA\t1\t\n"))
	if err == nil || len(obs) != 1 {
		t.Fatalf("ObservableRows() = %v, %v", obs, err)
	}
	if obs[0].Formula != "scale * A" || obs[0].NoiseDistribution != "laplace" {
		t.Errorf("observable = %+v", obs[0])
	}

	ctbl := mustRead(t, "conditionId\tconditionName\tk1\tA\nc0\tcontrol\t1.5\tk2\n")
	conds, err := ConditionRows(ctbl)
	if err != nil {
		t.Fatalf("ConditionRows() error = %v", err)
	}
	if conds[0].Values["k1"] != "1.5" || conds[0].Values["A"] != "k2" || len(conds[0].Values) != 2 {
		t.Errorf("condition = %+v", conds[0])
	}
	if got := strings.Join(Targets(ctbl), ","); got != "k1,A" {
		t.Errorf("Targets() = %s", got)
	}

	if _, err := ObservableRows(mustRead(t, "observableId\n")); err == nil {
		t.Error("missing columns should fail")
	}
}

func TestMeasurementRows(t *testing.T) {
	rows, err := MeasurementRows(mustRead(t,
		"observableId\tsimulationConditionId\tmeasurement\ttime\tobservableParameters\tnoiseParameters\n"+
			"obs_a\tc0\t0.7\t10\tscale1;2\t0.1\n"+
			"obs_a\tc0\t1.1\tinf\t\t\n"+
			"obs_a\tc0\t\t1\t\t\n"+
			"obs_a\tc0\t1\t1\t1+x\t\n"))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ObservableParameters[0].ID != "scale1" || rows[0].ObservableParameters[1].Value != 2 {
		t.Errorf("ObservableParameters = %v", rows[0].ObservableParameters)
	}
	if !math.IsInf(rows[1].Time, 1) {
		t.Errorf("Time = %v, want +Inf", rows[1].Time)
	}
	if err == nil || !strings.Contains(err.Error(), "row 3, column measurement") ||
		!strings.Contains(err.Error(), "row 4, column observableParameters") {
		t.Errorf("MeasurementRows() error = %v", err)
	}
}

func TestSplitParameterReplacementList(t *testing.T) {
	tests := []struct {
		cell    string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"1", "1", false},
		{"p1; 2.5 ;p_2", "p1,2.5,p_2", false},
		{"1e-3;k", "0.001,k", false},
		{"1;;2", "", true},
		{"a-b", "", true},
	}
	for _, tt := range tests {
		got, err := SplitParameterReplacementList(tt.cell)
		if (err != nil) != tt.wantErr {
			t.Errorf("SplitParameterReplacementList(%q) error = %v, wantErr %v", tt.cell, err, tt.wantErr)
			continue
		}
		var parts []string
		for _, r := range got {
			parts = append(parts, r.String())
		}
		if s := strings.Join(parts, ","); !tt.wantErr && s != tt.want {
			t.Errorf("SplitParameterReplacementList(%q) = %s, want %s", tt.cell, s, tt.want)
		}
	}
}
