package main

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"petab-hq/petab/pkg/cli"
	"petab-hq/petab/pkg/config"
)

// testApp returns an app on default configuration with a SQLite sample
// store in a temporary directory.
func testApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Backend = "sqlite"
	cfg.Store.Path = filepath.Join(t.TempDir(), "samples.db")
	a, err := newApp(cfg, io.Discard)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(a.close)
	return a
}

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

const (
	problemYAML = `format_version: 1
parameter_file: parameters.tsv
problems:
  - condition_files: [conditions.tsv]
    observable_files: [observables.tsv]
    measurement_files: [measurements.tsv]
`
	parametersTSV = "parameterId\tparameterScale\tlowerBound\tupperBound\tnominalValue\testimate\tobjectivePriorType\tobjectivePriorParameters\n" +
		"k1\tlog10\t1e-3\t1e3\t1\t1\t\t\n" +
		"scale_a\tlin\t0\t10\t1\t1\tnormal\t5;1\n" +
		"sd_a\tlin\t0.01\t1\t0.1\t1\t\t\n" +
		"offset\tlin\t0\t1\t0.5\t0\t\t\n"
	conditionsTSV  = "conditionId\tk1\tB\nc0\t0.5\t\nc1\t2 * scale_a\t10\n"
	observablesTSV = "observableId\tobservableFormula\tobservableTransformation\tnoiseFormula\tnoiseDistribution\n" +
		"obs_a\tscale_a * A + observableParameter1_obs_a\tlin\tnoiseParameter1_obs_a * obs_a\tnormal\n" +
		"obs_b\tk1 * B\tlog\tsd_a\tlaplace\n"
	measurementsTSV = "observableId\tsimulationConditionId\tmeasurement\ttime\tobservableParameters\tnoiseParameters\n" +
		"obs_a\tc0\t1.2\t0\toffset\tsd_a\n" +
		"obs_b\tc1\t0.4\t10\t\t\n"
)

// writeProblem writes a small valid problem and returns the YAML path.
// overrides replace individual files.
func writeProblem(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"problem.yaml":     problemYAML,
		"parameters.tsv":   parametersTSV,
		"conditions.tsv":   conditionsTSV,
		"observables.tsv":  observablesTSV,
		"measurements.tsv": measurementsTSV,
	}
	for name, content := range overrides {
		files[name] = content
	}
	writeFiles(t, dir, files)
	return filepath.Join(dir, "problem.yaml")
}

func TestNewApp(t *testing.T) {
	a := testApp(t)
	if a.collector.Enabled() {
		t.Error("metrics should be disabled by default")
	}
	if a.tracer.Enabled() {
		t.Error("tracing should be disabled by default")
	}

	cfg := config.Default()
	cfg.Telemetry.Logging.Level = "loud"
	if _, err := newApp(cfg, io.Discard); cli.ExitCode(err) != cli.ExitUsage {
		t.Errorf("bad log level: ExitCode = %d, err = %v", cli.ExitCode(err), err)
	}
}

func TestApp_CloseWritesTextfile(t *testing.T) {
	cfg := config.Default()
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Metrics.Textfile = filepath.Join(t.TempDir(), "petab.prom")
	a, err := newApp(cfg, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	a.collector.RecordSamples("normal", 10)
	a.close()

	data, err := os.ReadFile(cfg.Telemetry.Metrics.Textfile)
	if err != nil {
		t.Fatalf("textfile not written: %v", err)
	}
	if !strings.Contains(string(data), `petab_prior_samples_total{family="normal"} 10`) {
		t.Errorf("textfile content:\n%s", data)
	}
}

func TestCommandTree(t *testing.T) {
	want := []string{"lint", "eval", "simplify", "sample", "prior", "noise", "version", "completion"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	for _, path := range [][]string{{"prior", "pdf"}, {"noise", "llh"}, {"noise", "sample"}, {"sample", "list"}, {"sample", "show"}} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd.Name() != path[1] {
			t.Errorf("command %v not registered", path)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	out := buf.String()
	for _, want := range []string{"petab " + Version, "Go Version:", "OS/Arch:"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			completionCmd.SetOut(&buf)
			defer completionCmd.SetOut(nil)
			if err := completionCmd.RunE(completionCmd, []string{shell}); err != nil {
				t.Fatalf("RunE() error = %v", err)
			}
			if buf.Len() == 0 {
				t.Error("empty completion script")
			}
		})
	}
	if err := completionCmd.Args(completionCmd, []string{"tcsh"}); cli.ExitCode(err) != cli.ExitUsage {
		t.Errorf("unsupported shell: err = %v", err)
	}
}

func TestParseBindings(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]float64
		wantErr bool
	}{
		{name: "empty", pairs: nil, want: map[string]float64{}},
		{name: "values", pairs: []string{"k1=2", " t = 0.5 "}, want: map[string]float64{"k1": 2, "t": 0.5}},
		{name: "later wins", pairs: []string{"a=1", "a=3"}, want: map[string]float64{"a": 3}},
		{name: "missing equals", pairs: []string{"k1"}, wantErr: true},
		{name: "empty name", pairs: []string{"=1"}, wantErr: true},
		{name: "bad value", pairs: []string{"k1=two"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBindings(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseBindings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if cli.ExitCode(err) != cli.ExitUsage {
					t.Errorf("ExitCode = %d, want usage", cli.ExitCode(err))
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestNumber_MarshalJSON(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.5, "1.5"},
		{0, "0"},
		{-2e-10, "-2e-10"},
	}
	for _, tt := range tests {
		got, err := number(tt.in).MarshalJSON()
		if err != nil || string(got) != tt.want {
			t.Errorf("MarshalJSON(%v) = %s, %v; want %s", tt.in, got, err, tt.want)
		}
	}
	for _, in := range []float64{math.Inf(-1), math.Inf(1), math.NaN()} {
		got, err := number(in).MarshalJSON()
		if err != nil || got[0] != '"' {
			t.Errorf("MarshalJSON(%v) = %s, %v; want a quoted string", in, got, err)
		}
	}
}
