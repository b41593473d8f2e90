// Package problem loads PEtab problems.
//
// A problem is described by a YAML file naming the tables that make it up:
//
//	format_version: 1
//	parameter_file: parameters.tsv
//	problems:
//	  - sbml_files: [model.xml]
//	    condition_files: [conditions.tsv]
//	    measurement_files: [measurements.tsv]
//	    observable_files: [observables.tsv]
//
// Table paths are relative to the YAML file. Models are not loaded; their
// paths are kept for callers that import them.
package problem
