// Package prior builds PEtab parameter priors.
//
// A Prior combines a distribution family, two parameters, the parameter's
// scale (lin, log or log10) and optional bounds. The distribution always
// describes the unscaled parameter value; for parameterScale* families its
// parameters are interpreted on the parameter scale. Bounds are unscaled
// and truncate the distribution, which is renormalized over them.
//
// Densities can be requested on either axis:
//
//	p.PDF(x, false)  density of the unscaled value x
//	p.PDF(y, true)   density of the scaled value y, i.e.
//	                 PDF(Unscale(y), false) * |d Unscale / dy|
//
// Sampling draws scaled values by default, like an optimizer would use
// them, and is exactly truncated: every sample lies within the bounds.
//
// Prior parameters in a parameter table may be formulas. New evaluates
// them against bindings at construction time; Deferred keeps them
// unevaluated until Bind is called.
package prior
