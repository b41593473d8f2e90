package distributions

import (
	"fmt"
	"math"
	"math/rand/v2"

	"petab-hq/petab/pkg/scale"
)

// LaplaceDist is the Laplace distribution, or the distribution of b^Y for
// Laplace Y when Log is a log scale (log-Laplace).
type LaplaceDist struct {
	Loc   float64
	Scale float64
	Log   scale.Kind
}

func (d *LaplaceDist) t() transformed { return transformed{base: d, log: d.Log} }

func (d *LaplaceDist) PDF(x float64) float64         { return d.t().PDF(x) }
func (d *LaplaceDist) LogPDF(x float64) float64      { return d.t().LogPDF(x) }
func (d *LaplaceDist) CDF(x float64) float64         { return d.t().CDF(x) }
func (d *LaplaceDist) PPF(q float64) float64         { return d.t().PPF(q) }
func (d *LaplaceDist) SF(x float64) float64          { return d.t().SF(x) }
func (d *LaplaceDist) ISF(q float64) float64         { return d.t().ISF(q) }
func (d *LaplaceDist) Sample(rng *rand.Rand) float64 { return d.t().Sample(rng) }
func (d *LaplaceDist) Support() (float64, float64)   { return d.t().Support() }

func (d *LaplaceDist) String() string {
	return fmt.Sprintf("Laplace(loc=%g, scale=%g%s)", d.Loc, d.Scale, logSuffix(d.Log))
}

func (d *LaplaceDist) logPDF(y float64) float64 {
	return -math.Log(2*d.Scale) - math.Abs(y-d.Loc)/d.Scale
}

func (d *LaplaceDist) cdf(y float64) float64 {
	z := (y - d.Loc) / d.Scale
	if z < 0 {
		return 0.5 * math.Exp(z)
	}
	return 1 - 0.5*math.Exp(-z)
}

func (d *LaplaceDist) sf(y float64) float64 {
	z := (y - d.Loc) / d.Scale
	if z > 0 {
		return 0.5 * math.Exp(-z)
	}
	return 1 - 0.5*math.Exp(z)
}

func (d *LaplaceDist) isf(q float64) float64 {
	switch {
	case math.IsNaN(q) || q < 0 || q > 1:
		return math.NaN()
	case q < 0.5:
		return d.Loc - d.Scale*math.Log(2*q)
	}
	return d.Loc + d.Scale*math.Log(2-2*q)
}

func (d *LaplaceDist) ppf(q float64) float64 {
	switch {
	case math.IsNaN(q) || q < 0 || q > 1:
		return math.NaN()
	case q < 0.5:
		return d.Loc + d.Scale*math.Log(2*q)
	}
	return d.Loc - d.Scale*math.Log(2-2*q)
}

func (d *LaplaceDist) support() (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}
