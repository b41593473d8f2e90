// Package noise implements the measurement noise models of PEtab
// observables: log-likelihoods, residuals and synthetic noisy data.
//
// A Model combines a noise Distribution (normal or Laplace) with the
// observable transformation on which the noise acts:
//
//	m, err := noise.ParseModel("laplace", "log10")
//	llh, err := m.LogLikelihood(measurement, simulation, sigma)
//
// The PEtab v2 distribution names "log-normal" and "log10-normal" are
// accepted as normal noise on the log and log10 axes.
package noise
