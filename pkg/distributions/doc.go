// Package distributions is the registry of prior distribution families.
//
// Family is the closed set of PEtab prior types. New resolves a family and
// a parameter scale to a concrete Distribution of the model-scale
// (unscaled) parameter value:
//
//	uniform, normal, laplace              any scale   Uniform/Normal/Laplace
//	logNormal, logLaplace                 any scale   exp(Y), Y Normal/Laplace
//	parameterScaleUniform/Normal/Laplace  lin         Uniform/Normal/Laplace
//	parameterScaleUniform/Normal/Laplace  log         exp(Y)
//	parameterScaleUniform/Normal/Laplace  log10       10^Y
//
// A log-transformed distribution describes exp(Y) (or 10^Y), which is not
// the same as the base density evaluated on a log axis: the densities
// differ by the Jacobian 1/(x ln b).
package distributions
