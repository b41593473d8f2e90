package prior

import (
	"fmt"
	"math"
	"math/rand/v2"

	"petab-hq/petab/pkg/distributions"
	"petab-hq/petab/pkg/scale"
)

// supportTolerance is the relative slack allowed when checking bounds
// against a distribution's support. Bounds and support often come from
// the same numbers passed through scale and unscale.
const supportTolerance = 1e-9

// rejectionThreshold is the truncated probability mass below which
// inverse-CDF sampling loses too much precision and rejection sampling is
// used instead.
const rejectionThreshold = 1e-8

// Bounds is a closed interval on the unscaled axis.
type Bounds struct {
	Lower float64
	Upper float64
}

// Contains reports whether x lies in the interval.
func (b Bounds) Contains(x float64) bool {
	return x >= b.Lower && x <= b.Upper
}

// Sample is a drawn value tagged with the axis it lives on.
type Sample struct {
	Value  float64
	Scaled bool
}

// Values extracts the numeric values of samples.
func Values(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}

// Prior is an immutable parameter prior. It is safe for concurrent use
// provided each goroutine samples from its own generator.
type Prior struct {
	family distributions.Family
	params [2]float64
	scale  scale.Kind
	bounds *Bounds

	dist distributions.Distribution

	// Truncation; mass = 1 without bounds. When upper is set the bounds
	// lie above the median and edge is SF(upper bound), otherwise it is
	// CDF(lower bound). Working in the nearer tail keeps mass accurate.
	upper bool
	edge  float64
	mass  float64
}

// New creates a prior from numeric parameters. bounds may be nil.
func New(family distributions.Family, params [2]float64, sc scale.Kind, bounds *Bounds) (*Prior, error) {
	dist, err := distributions.New(family, params[0], params[1], sc)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	p := &Prior{family: family, params: params, scale: sc, dist: dist, mass: 1}
	if bounds == nil {
		return p, nil
	}

	b := *bounds
	switch {
	case math.IsNaN(b.Lower) || math.IsNaN(b.Upper):
		return nil, configErrorf("bounds must not be NaN")
	case b.Lower >= b.Upper:
		return nil, configErrorf("lower bound %g must be less than upper bound %g", b.Lower, b.Upper)
	case sc.IsLog() && b.Lower <= 0:
		return nil, configErrorf("bounds of a %s-scaled parameter must be positive, got lower bound %g", sc, b.Lower)
	}

	lo, hi := dist.Support()
	if b.Lower < lo-tolerance(lo) || b.Upper > hi+tolerance(hi) {
		return nil, configErrorf("bounds [%g, %g] outside the support [%g, %g] of %s", b.Lower, b.Upper, lo, hi, dist)
	}

	cdfLo := dist.CDF(b.Lower)
	if cdfLo > 0.5 {
		p.upper = true
		p.edge = dist.SF(b.Upper)
		p.mass = dist.SF(b.Lower) - p.edge
	} else {
		p.edge = cdfLo
		p.mass = dist.CDF(b.Upper) - cdfLo
	}
	if !(p.mass > 0) {
		return nil, configErrorf("bounds [%g, %g] contain no probability mass of %s", b.Lower, b.Upper, dist)
	}
	p.bounds = &b
	return p, nil
}

func tolerance(v float64) float64 {
	if math.IsInf(v, 0) {
		return 0
	}
	return supportTolerance * math.Max(1, math.Abs(v))
}

// Family returns the distribution family.
func (p *Prior) Family() distributions.Family { return p.family }

// Params returns the two distribution parameters.
func (p *Prior) Params() [2]float64 { return p.params }

// Scale returns the parameter scale.
func (p *Prior) Scale() scale.Kind { return p.scale }

// Bounds returns the truncation bounds, or nil.
func (p *Prior) Bounds() *Bounds {
	if p.bounds == nil {
		return nil
	}
	b := *p.bounds
	return &b
}

// Distribution returns the untruncated distribution of the unscaled value.
func (p *Prior) Distribution() distributions.Distribution { return p.dist }

// String returns a description of the prior.
func (p *Prior) String() string {
	s := fmt.Sprintf("Prior(%s, (%g, %g), scale=%s", p.family, p.params[0], p.params[1], p.scale)
	if p.bounds != nil {
		s += fmt.Sprintf(", bounds=[%g, %g]", p.bounds.Lower, p.bounds.Upper)
	}
	return s + ")"
}

// ToScaled maps an unscaled value to the parameter scale.
func (p *Prior) ToScaled(x float64) float64 { return p.scale.Scale(x) }

// ToUnscaled maps a parameter-scale value to the unscaled axis.
func (p *Prior) ToUnscaled(y float64) float64 { return p.scale.Unscale(y) }

// ScaledBounds returns the bounds on the parameter scale, or nil.
func (p *Prior) ScaledBounds() *Bounds {
	if p.bounds == nil {
		return nil
	}
	return &Bounds{Lower: p.scale.Scale(p.bounds.Lower), Upper: p.scale.Scale(p.bounds.Upper)}
}

// PDF returns the truncated density at x. With onScale, x is a
// parameter-scale value and the density is with respect to that axis.
func (p *Prior) PDF(x float64, onScale bool) float64 {
	lp := p.LogPDF(x, onScale)
	if math.IsNaN(lp) {
		return math.NaN()
	}
	return math.Exp(lp)
}

// LogPDF returns the log of PDF.
func (p *Prior) LogPDF(x float64, onScale bool) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	var jac float64
	if onScale {
		jac = p.scale.LogJacobian(x)
		x = p.scale.Unscale(x)
	}
	if p.bounds != nil && !p.bounds.Contains(x) {
		return math.Inf(-1)
	}
	return p.dist.LogPDF(x) - math.Log(p.mass) + jac
}

// NegLogPrior returns -log PDF(y) for a parameter-scale value y, the
// contribution of the prior to an objective function.
func (p *Prior) NegLogPrior(y float64) float64 {
	return -p.LogPDF(y, true)
}

// CDF returns the truncated cumulative distribution at the unscaled value x.
func (p *Prior) CDF(x float64) float64 {
	if p.bounds != nil {
		switch {
		case x <= p.bounds.Lower:
			return 0
		case x >= p.bounds.Upper:
			return 1
		}
	}
	if p.upper {
		return 1 - (p.dist.SF(x)-p.edge)/p.mass
	}
	return (p.dist.CDF(x) - p.edge) / p.mass
}

// Sample draws n values on the parameter scale.
func (p *Prior) Sample(rng *rand.Rand, n int) []Sample {
	out := make([]Sample, n)
	for i := range out {
		out[i] = Sample{Value: p.scale.Scale(p.draw(rng)), Scaled: true}
	}
	return out
}

// SampleUnscaled draws n unscaled values.
func (p *Prior) SampleUnscaled(rng *rand.Rand, n int) []Sample {
	out := make([]Sample, n)
	for i := range out {
		out[i] = Sample{Value: p.draw(rng)}
	}
	return out
}

// draw returns one unscaled value from the truncated distribution.
func (p *Prior) draw(rng *rand.Rand) float64 {
	if p.bounds == nil {
		return p.dist.Sample(rng)
	}
	if p.mass < rejectionThreshold {
		if x, ok := p.reject(rng); ok {
			return x
		}
	}
	q := p.edge + rng.Float64()*p.mass
	if p.upper {
		return p.clamp(p.dist.ISF(q))
	}
	return p.clamp(p.dist.PPF(q))
}

// maxRejections bounds the work of a single rejection draw.
const maxRejections = 100000

// reject draws by rejection from a uniform proposal on the bounds, using
// the largest density on a grid as envelope. It is used when the mass
// inside the bounds is too small for inverse-CDF sampling to resolve.
func (p *Prior) reject(rng *rand.Rand) (float64, bool) {
	lo, hi := p.bounds.Lower, p.bounds.Upper
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, false
	}
	const grid = 256
	maxLog := math.Inf(-1)
	for i := 0; i <= grid; i++ {
		maxLog = math.Max(maxLog, p.dist.LogPDF(lo+(hi-lo)*float64(i)/grid))
	}
	if math.IsInf(maxLog, -1) {
		return 0, false
	}
	// Head room for peaks between grid points
	maxLog += math.Log(1.5)

	for range maxRejections {
		x := lo + rng.Float64()*(hi-lo)
		if math.Log(rng.Float64()) < p.dist.LogPDF(x)-maxLog {
			return x, true
		}
	}
	return 0, false
}

func (p *Prior) clamp(x float64) float64 {
	return math.Min(math.Max(x, p.bounds.Lower), p.bounds.Upper)
}
