package distributions

import (
	"fmt"
	"math"
	"math/rand/v2"

	"petab-hq/petab/pkg/scale"
)

// UniformDist is the uniform distribution on [Low, High], or of b^Y for Y
// uniform on [Low, High] when Log is a log scale.
type UniformDist struct {
	Low  float64
	High float64
	Log  scale.Kind
}

func (d *UniformDist) t() transformed { return transformed{base: d, log: d.Log} }

func (d *UniformDist) PDF(x float64) float64         { return d.t().PDF(x) }
func (d *UniformDist) LogPDF(x float64) float64      { return d.t().LogPDF(x) }
func (d *UniformDist) CDF(x float64) float64         { return d.t().CDF(x) }
func (d *UniformDist) PPF(q float64) float64         { return d.t().PPF(q) }
func (d *UniformDist) SF(x float64) float64          { return d.t().SF(x) }
func (d *UniformDist) ISF(q float64) float64         { return d.t().ISF(q) }
func (d *UniformDist) Sample(rng *rand.Rand) float64 { return d.t().Sample(rng) }
func (d *UniformDist) Support() (float64, float64)   { return d.t().Support() }

func (d *UniformDist) String() string {
	return fmt.Sprintf("Uniform(low=%g, high=%g%s)", d.Low, d.High, logSuffix(d.Log))
}

func (d *UniformDist) logPDF(y float64) float64 {
	if y < d.Low || y > d.High {
		return math.Inf(-1)
	}
	return -math.Log(d.High - d.Low)
}

func (d *UniformDist) cdf(y float64) float64 {
	switch {
	case y <= d.Low:
		return 0
	case y >= d.High:
		return 1
	}
	return (y - d.Low) / (d.High - d.Low)
}

func (d *UniformDist) sf(y float64) float64 {
	switch {
	case y <= d.Low:
		return 1
	case y >= d.High:
		return 0
	}
	return (d.High - y) / (d.High - d.Low)
}

func (d *UniformDist) isf(q float64) float64 {
	if q < 0 || q > 1 || math.IsNaN(q) {
		return math.NaN()
	}
	return d.High - q*(d.High-d.Low)
}

func (d *UniformDist) ppf(q float64) float64 {
	if q < 0 || q > 1 || math.IsNaN(q) {
		return math.NaN()
	}
	return d.Low + q*(d.High-d.Low)
}

func (d *UniformDist) support() (float64, float64) {
	return d.Low, d.High
}
