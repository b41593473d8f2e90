package table

import (
	"strings"
	"testing"

	"petab-hq/petab/pkg/prior"
)

const (
	priorParamsHeader = "parameterId\tparameterScale\tlowerBound\tupperBound\tnominalValue\testimate\tobjectivePriorType\tobjectivePriorParameters\n"
	priorObservables  = "observableId\tobservableFormula\tnoiseFormula\nobs_a\tA\t1\n"
	priorMeasurements = "observableId\tpreequilibrationConditionId\tsimulationConditionId\ttime\tmeasurement\nobs_a\tpre\tc0\t2.5\t1\nobs_a\tpre\tc1\t5\t2\n"
)

func TestPriorsToMeasurements(t *testing.T) {
	tests := []struct {
		name     string
		row      string
		wantObs  map[string]string
		wantMeas map[string]string
	}{
		{
			name: "normal on linear axis",
			row:  "k1\tlog10\t1e-3\t1e3\t1\t1\tnormal\t2;0.5\n",
			wantObs: map[string]string{
				ColObservableID: "prior_k1", ColObservableFormula: "k1",
				ColNoiseFormula: "noiseParameter1_prior_k1", ColNoiseDistribution: "normal",
				ColObservableTransf: "",
			},
			wantMeas: map[string]string{ColMeasurement: "2", ColNoiseParams: "0.5"},
		},
		{
			name: "parameter scale log10",
			row:  "k1\tlog10\t1e-3\t1e3\t1\t1\tparameterScaleNormal\t0;1\n",
			wantObs: map[string]string{
				ColObservableFormula: "log10(k1)", ColNoiseDistribution: "normal",
			},
			wantMeas: map[string]string{ColMeasurement: "0", ColNoiseParams: "1"},
		},
		{
			name: "parameter scale log",
			row:  "k1\tlog\t1e-3\t1e3\t1\t1\tparameterScaleLaplace\t-1;2\n",
			wantObs: map[string]string{
				ColObservableFormula: "ln(k1)", ColNoiseDistribution: "laplace",
			},
			wantMeas: map[string]string{ColMeasurement: "-1", ColNoiseParams: "2"},
		},
		{
			name: "log laplace is log transformed",
			row:  "k1\tlin\t0\t10\t1\t1\tlogLaplace\t0.3;0.1\n",
			wantObs: map[string]string{
				ColObservableFormula: "k1", ColObservableTransf: "log", ColNoiseDistribution: "laplace",
			},
			wantMeas: map[string]string{ColMeasurement: "0.3", ColNoiseParams: "0.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := mustRead(t, priorParamsHeader+tt.row)
			obs := mustRead(t, priorObservables)
			meas := mustRead(t, priorMeasurements)

			got, err := PriorsToMeasurements(params, []*Table{obs}, meas)
			if err != nil {
				t.Fatalf("PriorsToMeasurements() error = %v", err)
			}
			if len(got.Converted) != 1 || got.Converted[0] != "k1" {
				t.Fatalf("Converted = %v", got.Converted)
			}

			if got.Observables.Len() != 2 {
				t.Fatalf("observables = %v", got.Observables.Rows)
			}
			for col, want := range tt.wantObs {
				if v := got.Observables.Get(1, col); v != want {
					t.Errorf("observable %s = %q, want %q", col, v, want)
				}
			}

			if got.Measurements.Len() != 3 {
				t.Fatalf("measurements = %v", got.Measurements.Rows)
			}
			want := map[string]string{
				ColObservableID:       "prior_k1",
				ColSimulationCondID:   "c0",
				ColPreequilibrationID: "pre",
				ColTime:               "2.5",
			}
			for col, v := range tt.wantMeas {
				want[col] = v
			}
			for col, w := range want {
				if v := got.Measurements.Get(2, col); v != w {
					t.Errorf("measurement %s = %q, want %q", col, v, w)
				}
			}
			if v := got.Measurements.Get(0, ColNoiseParams); v != "" {
				t.Errorf("existing measurement gained noise parameters %q", v)
			}

			rows, err := ParameterRows(got.Parameters)
			if err != nil {
				t.Fatal(err)
			}
			if rows[0].HasPrior(prior.Objective) {
				t.Errorf("objective prior not cleared: %+v", rows[0])
			}

			if obs.Len() != 1 || meas.Len() != 2 || params.Get(0, prior.Objective.TypeColumn()) == "" {
				t.Error("input tables were modified")
			}
		})
	}
}

func TestPriorsToMeasurements_Skipped(t *testing.T) {
	params := mustRead(t, priorParamsHeader+
		"k1\tlin\t0\t10\t1\t0\tnormal\t1;1\n"+
		"k2\tlin\t0\t10\t1\t1\t\t\n")

	got, err := PriorsToMeasurements(params, []*Table{mustRead(t, priorObservables)}, mustRead(t, priorMeasurements))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Converted) != 0 || got.Observables.Len() != 1 || got.Measurements.Len() != 2 {
		t.Errorf("fixed parameters and parameters without priors must be left alone: %+v", got.Converted)
	}
	if got.Parameters.Get(0, prior.Objective.TypeColumn()) != "normal" {
		t.Error("prior of a fixed parameter was cleared")
	}
}

func TestPriorsToMeasurements_KeepsTransformationColumn(t *testing.T) {
	obs := mustRead(t, "observableId\tobservableFormula\tobservableTransformation\tnoiseFormula\nobs_a\tA\tlog\t1\n")
	params := mustRead(t, priorParamsHeader+"k1\tlin\t0\t10\t1\t1\tlaplace\t1;1\n")

	got, err := PriorsToMeasurements(params, []*Table{obs}, mustRead(t, priorMeasurements))
	if err != nil {
		t.Fatal(err)
	}
	if v := got.Observables.Get(1, ColObservableTransf); v != "lin" {
		t.Errorf("transformation = %q, want lin", v)
	}
	if v := got.Observables.Get(0, ColNoiseDistribution); v != "" {
		t.Errorf("existing observable gained noise distribution %q", v)
	}
}

func TestPriorsToMeasurements_Errors(t *testing.T) {
	tests := []struct {
		name         string
		rows         string
		observables  []string
		measurements string
		wantErr      string
	}{
		{
			name:    "uniform",
			rows:    "k1\tlin\t0\t10\t1\t1\tuniform\t0;10\n",
			wantErr: "uniform priors cannot be converted",
		},
		{
			name:    "parameter scale uniform",
			rows:    "k1\tlog10\t1\t10\t1\t1\tparameterScaleUniform\t0;1\n",
			wantErr: "parameterScaleUniform priors cannot be converted",
		},
		{
			name:    "parameters without type",
			rows:    "k1\tlin\t0\t10\t1\t1\t\t0;1\n",
			wantErr: "prior type is not",
		},
		{
			name:    "formula parameters",
			rows:    "k1\tlin\t0\t10\t1\t1\tnormal\tk2;1\n",
			wantErr: "must be numbers",
		},
		{
			name:        "observable exists",
			rows:        "k1\tlin\t0\t10\t1\t1\tnormal\t0;1\n",
			observables: []string{priorObservables, "observableId\tobservableFormula\tnoiseFormula\nprior_k1\tk1\t1\n"},
			wantErr:     "observable prior_k1 already exists",
		},
		{
			name:         "no measurements",
			rows:         "k1\tlin\t0\t10\t1\t1\tnormal\t0;1\n",
			measurements: "observableId\tsimulationConditionId\ttime\tmeasurement\n",
			wantErr:      "at least one measurement",
		},
		{
			name: "all errors reported",
			rows: "k1\tlin\t0\t10\t1\t1\tuniform\t0;1\n" +
				"k2\tlin\t0\t10\t1\t1\tlaplace\t0;x +\n",
			wantErr: "row 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.observables == nil {
				tt.observables = []string{priorObservables}
			}
			if tt.measurements == "" {
				tt.measurements = priorMeasurements
			}
			var obs []*Table
			for _, text := range tt.observables {
				obs = append(obs, mustRead(t, text))
			}

			_, err := PriorsToMeasurements(mustRead(t, priorParamsHeader+tt.rows), obs, mustRead(t, tt.measurements))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestTable_Edit(t *testing.T) {
	tbl := mustRead(t, "a\tb\n1\t2\n")
	c := tbl.Clone()
	c.Set(0, "a", "x")
	c.Set(0, "z", "new")
	c.Append(map[string]string{"b": "3", "y": "4"})

	if tbl.Get(0, "a") != "1" || tbl.Has("z") {
		t.Error("Clone shares state with the original")
	}
	if got := strings.Join(c.Header, ","); got != "a,b,z,y" {
		t.Errorf("Header = %s", got)
	}
	if c.Get(0, "a") != "x" || c.Get(0, "z") != "new" || c.Get(0, "y") != "" {
		t.Errorf("row 0 = %v", c.Rows[0])
	}
	if c.Get(1, "a") != "" || c.Get(1, "b") != "3" || c.Get(1, "y") != "4" {
		t.Errorf("row 1 = %v", c.Rows[1])
	}
}
