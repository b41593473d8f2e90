package problem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"petab-hq/petab/pkg/table"
	"petab-hq/petab/pkg/telemetry/tracing"
)

// SupportedFormatVersions lists the format_version values Load accepts.
var SupportedFormatVersions = []string{"1", "1.0.0"}

// File is the problem YAML document.
type File struct {
	FormatVersion string       `yaml:"format_version"`
	ParameterFile string       `yaml:"parameter_file"`
	Problems      []Subproblem `yaml:"problems"`
}

// Subproblem lists the tables of one entry of the problems list.
type Subproblem struct {
	ModelFiles         []string `yaml:"sbml_files"`
	ConditionFiles     []string `yaml:"condition_files"`
	MeasurementFiles   []string `yaml:"measurement_files"`
	ObservableFiles    []string `yaml:"observable_files"`
	VisualizationFiles []string `yaml:"visualization_files,omitempty"`
}

// Problem is a loaded PEtab problem.
type Problem struct {
	// Path is the YAML file the problem was loaded from.
	Path string
	File File

	Parameters   *table.Table
	Conditions   []*table.Table
	Observables  []*table.Table
	Measurements []*table.Table
	ModelFiles   []string
}

// Parse decodes and checks a problem YAML document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse problem file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the document structure. All problems are reported.
func (f *File) Validate() error {
	var errs []error
	if !supported(f.FormatVersion) {
		errs = append(errs, fmt.Errorf("unsupported format_version %q (supported: %s)",
			f.FormatVersion, strings.Join(SupportedFormatVersions, ", ")))
	}
	if f.ParameterFile == "" {
		errs = append(errs, errors.New("parameter_file is required"))
	}
	if len(f.Problems) == 0 {
		errs = append(errs, errors.New("problems must list at least one entry"))
	}
	for i, p := range f.Problems {
		if len(p.ObservableFiles) == 0 {
			errs = append(errs, fmt.Errorf("problems[%d]: observable_files is required", i))
		}
		if len(p.MeasurementFiles) == 0 {
			errs = append(errs, fmt.Errorf("problems[%d]: measurement_files is required", i))
		}
		if len(p.ConditionFiles) == 0 {
			errs = append(errs, fmt.Errorf("problems[%d]: condition_files is required", i))
		}
	}
	return errors.Join(errs...)
}

func supported(version string) bool {
	for _, v := range SupportedFormatVersions {
		if v == version {
			return true
		}
	}
	return false
}

// Files returns every table path of the document, resolved against dir.
func (f *File) Files(dir string) []string {
	paths := []string{resolve(dir, f.ParameterFile)}
	for _, p := range f.Problems {
		for _, list := range [][]string{p.ConditionFiles, p.ObservableFiles, p.MeasurementFiles} {
			for _, name := range list {
				paths = append(paths, resolve(dir, name))
			}
		}
	}
	return paths
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// Load reads the problem YAML at path and all tables it names. Tables are
// read concurrently.
func Load(ctx context.Context, path string) (_ *Problem, err error) {
	ctx, span := tracing.Start(ctx, "problem.Load", tracing.Problem(path))
	defer func() { tracing.End(span, err) }()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file %q: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("problem file %q: %w", path, err)
	}

	dir := filepath.Dir(path)
	p := &Problem{Path: path, File: *f}
	for _, sub := range f.Problems {
		for _, m := range sub.ModelFiles {
			p.ModelFiles = append(p.ModelFiles, resolve(dir, m))
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	load := func(name string, dst **table.Table) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := table.ReadFile(resolve(dir, name))
			if err != nil {
				return err
			}
			*dst = t
			return nil
		})
	}
	loadAll := func(names []string, dst *[]*table.Table) {
		start := len(*dst)
		*dst = append(*dst, make([]*table.Table, len(names))...)
		for i, name := range names {
			load(name, &(*dst)[start+i])
		}
	}

	load(f.ParameterFile, &p.Parameters)
	var conds, obs, meas []string
	for _, sub := range f.Problems {
		conds = append(conds, sub.ConditionFiles...)
		obs = append(obs, sub.ObservableFiles...)
		meas = append(meas, sub.MeasurementFiles...)
	}
	loadAll(conds, &p.Conditions)
	loadAll(obs, &p.Observables)
	loadAll(meas, &p.Measurements)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}
