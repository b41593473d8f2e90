package distributions

import (
	"fmt"
	"math"
	"math/rand/v2"

	"petab-hq/petab/pkg/scale"
)

// Distribution is a continuous univariate distribution. Implementations are
// immutable and safe for concurrent use; randomness comes from the caller's
// generator.
type Distribution interface {
	PDF(x float64) float64
	LogPDF(x float64) float64
	CDF(x float64) float64

	// PPF is the inverse of CDF (percent point function).
	PPF(q float64) float64

	// SF is the survival function 1 - CDF, computed without cancellation
	// in the upper tail.
	SF(x float64) float64

	// ISF is the inverse of SF.
	ISF(q float64) float64

	Sample(rng *rand.Rand) float64

	// Support returns the closed hull of the set where the density is
	// positive.
	Support() (lo, hi float64)

	String() string
}

// ConfigError reports invalid distribution parameters.
type ConfigError struct {
	Family  Family
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s distribution: %s", e.Family, e.Message)
}

// New creates the distribution of the unscaled parameter value for a
// family, its two parameters and the parameter scale.
func New(family Family, p0, p1 float64, transformation scale.Kind) (Distribution, error) {
	if math.IsNaN(p0) || math.IsNaN(p1) || math.IsInf(p0, 0) || math.IsInf(p1, 0) {
		return nil, &ConfigError{Family: family, Message: fmt.Sprintf("parameters must be finite, got (%g, %g)", p0, p1)}
	}

	var log scale.Kind
	switch family {
	case Uniform, Normal, Laplace:
		log = scale.Lin
	case LogNormal, LogLaplace:
		log = scale.Log
	case ParameterScaleUniform, ParameterScaleNormal, ParameterScaleLaplace:
		log = transformation
	default:
		return nil, &ConfigError{Family: family, Message: "unsupported distribution type"}
	}

	switch family.Base() {
	case Uniform:
		if p0 >= p1 {
			return nil, &ConfigError{Family: family, Message: fmt.Sprintf("lower %g must be less than upper %g", p0, p1)}
		}
		return &UniformDist{Low: p0, High: p1, Log: log}, nil
	case Normal:
		if p1 <= 0 {
			return nil, &ConfigError{Family: family, Message: fmt.Sprintf("scale must be positive, got %g", p1)}
		}
		return &NormalDist{Loc: p0, Scale: p1, Log: log}, nil
	default:
		if p1 <= 0 {
			return nil, &ConfigError{Family: family, Message: fmt.Sprintf("scale must be positive, got %g", p1)}
		}
		return &LaplaceDist{Loc: p0, Scale: p1, Log: log}, nil
	}
}

// base is the untransformed density of Y, shared by the log variants.
type base interface {
	logPDF(y float64) float64
	cdf(y float64) float64
	sf(y float64) float64
	ppf(q float64) float64
	isf(q float64) float64
	support() (lo, hi float64)
}

// transformed implements Distribution for X = Y (lin) or X = b^Y.
type transformed struct {
	base base
	log  scale.Kind
}

func (t transformed) LogPDF(x float64) float64 {
	if !t.log.IsLog() {
		return t.base.logPDF(x)
	}
	if x <= 0 {
		return math.Inf(-1)
	}
	y := t.log.Scale(x)
	return t.base.logPDF(y) - t.log.LogJacobian(y)
}

func (t transformed) PDF(x float64) float64 {
	return math.Exp(t.LogPDF(x))
}

func (t transformed) CDF(x float64) float64 {
	if t.log.IsLog() {
		if x <= 0 {
			return 0
		}
		x = t.log.Scale(x)
	}
	return t.base.cdf(x)
}

func (t transformed) PPF(q float64) float64 {
	return t.log.Unscale(t.base.ppf(q))
}

func (t transformed) SF(x float64) float64 {
	if t.log.IsLog() {
		if x <= 0 {
			return 1
		}
		x = t.log.Scale(x)
	}
	return t.base.sf(x)
}

func (t transformed) ISF(q float64) float64 {
	return t.log.Unscale(t.base.isf(q))
}

func (t transformed) Sample(rng *rand.Rand) float64 {
	return t.PPF(openUnit(rng))
}

func (t transformed) Support() (float64, float64) {
	lo, hi := t.base.support()
	return t.log.Unscale(lo), t.log.Unscale(hi)
}

// openUnit draws from the open interval (0, 1).
func openUnit(rng *rand.Rand) float64 {
	for {
		if u := rng.Float64(); u > 0 {
			return u
		}
	}
}

func logSuffix(log scale.Kind) string {
	switch log {
	case scale.Log:
		return ", log=e"
	case scale.Log10:
		return ", log=10"
	}
	return ""
}
