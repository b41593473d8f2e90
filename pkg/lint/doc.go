// Package lint checks a PEtab problem for errors across its tables.
//
// The linter validates every formula of the observable and condition
// tables against symbol tables built from the problem, checks parameter
// rows and their priors, and cross-references measurements with
// observables and conditions. All problems are collected into a Report;
// each Finding names the table, row and column it concerns.
//
// Observable formulas may reference model entities. Without model symbols
// (see Linter.WithModelSymbols), identifiers that no table defines are
// assumed to come from the model and reported as warnings.
package lint
