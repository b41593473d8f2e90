package problem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

const problemYAML = `format_version: 1
parameter_file: parameters.tsv
problems:
  - sbml_files: [model.xml]
    condition_files: [conditions.tsv]
    observable_files: [tables/observables.tsv]
    measurement_files: [measurements.tsv, more_measurements.tsv]
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"problem.yaml":           problemYAML,
		"parameters.tsv":         "parameterId\tlowerBound\tupperBound\nk1\t0\t1\n",
		"conditions.tsv":         "conditionId\tk2\nc0\t1\n",
		"tables/observables.tsv": "observableId\tobservableFormula\tnoiseFormula\nobs_a\tA\t1\n",
		"measurements.tsv":       "observableId\tsimulationConditionId\tmeasurement\ttime\nobs_a\tc0\t1\t0\n",
		"more_measurements.tsv":  "observableId\tsimulationConditionId\tmeasurement\ttime\nobs_a\tc0\t2\t1\n",
	})

	p, err := Load(context.Background(), filepath.Join(dir, "problem.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.File.FormatVersion != "1" {
		t.Errorf("FormatVersion = %q", p.File.FormatVersion)
	}
	if p.Parameters == nil || p.Parameters.Len() != 1 {
		t.Fatalf("Parameters = %+v", p.Parameters)
	}
	if len(p.Observables) != 1 || p.Observables[0].Name != "observables.tsv" {
		t.Errorf("Observables = %+v", p.Observables)
	}
	if len(p.Measurements) != 2 || p.Measurements[1].Get(0, "measurement") != "2" {
		t.Errorf("Measurements not loaded in order")
	}
	if len(p.ModelFiles) != 1 || p.ModelFiles[0] != filepath.Join(dir, "model.xml") {
		t.Errorf("ModelFiles = %v", p.ModelFiles)
	}
}

func TestLoad_MissingTable(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"problem.yaml":   problemYAML,
		"parameters.tsv": "parameterId\nk1\n",
	})
	_, err := Load(context.Background(), filepath.Join(dir, "problem.yaml"))
	if err == nil {
		t.Fatal("Load() should fail when a table is missing")
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr []string
	}{
		{
			name: "valid semver",
			yaml: "format_version: 1.0.0\nparameter_file: p.tsv\nproblems:\n  - condition_files: [c]\n    observable_files: [o]\n    measurement_files: [m]\n",
		},
		{
			name:    "everything missing",
			yaml:    "format_version: 2\n",
			wantErr: []string{"format_version", "parameter_file", "problems"},
		},
		{
			name:    "incomplete problem",
			yaml:    "format_version: 1\nparameter_file: p.tsv\nproblems:\n  - condition_files: [c]\n",
			wantErr: []string{"problems[0]: observable_files", "problems[0]: measurement_files"},
		},
		{
			name:    "not yaml",
			yaml:    "problems: [",
			wantErr: []string{"failed to parse"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("Parse() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestFiles(t *testing.T) {
	f, err := Parse([]byte(problemYAML))
	if err != nil {
		t.Fatal(err)
	}
	got := f.Files("/data")
	want := []string{
		"/data/parameters.tsv",
		"/data/conditions.tsv",
		"/data/tables/observables.tsv",
		"/data/measurements.tsv",
		"/data/more_measurements.tsv",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Files() = %v, want %v", got, want)
	}
}
