// Command petab checks PEtab parameter estimation problems and works with
// their formulas and priors.
//
// Usage:
//
//	# Lint a problem and its tables
//	petab lint problem.yaml
//
//	# Re-lint whenever a table changes, serving metrics and probes
//	petab lint problem.yaml --watch
//
//	# Evaluate and simplify formulas
//	petab eval "k1 * exp(-k2 * t)" --set k1=2 --set k2=0.5 --set t=1
//	petab simplify "a * 1 + 0 * b" --set b=3
//
//	# Draw prior samples and evaluate prior densities
//	petab sample --prior normal --params "0;1" --scale log10 --count 100
//	petab prior pdf 0.5 1 2 --prior logNormal --params "0;1"
//
//	# Noise model log-likelihood
//	petab noise llh --measurement 1.2 --simulation 1.0 --sigma 0.1
package main

import "os"

func main() {
	os.Exit(Execute())
}
