package distributions

import (
	"fmt"
	"math"
	"math/rand/v2"

	"petab-hq/petab/pkg/scale"
)

// NormalDist is the normal distribution, or the distribution of b^Y for
// normal Y when Log is a log scale (log-normal).
type NormalDist struct {
	Loc   float64
	Scale float64
	Log   scale.Kind
}

func (d *NormalDist) t() transformed { return transformed{base: d, log: d.Log} }

func (d *NormalDist) PDF(x float64) float64         { return d.t().PDF(x) }
func (d *NormalDist) LogPDF(x float64) float64      { return d.t().LogPDF(x) }
func (d *NormalDist) CDF(x float64) float64         { return d.t().CDF(x) }
func (d *NormalDist) PPF(q float64) float64         { return d.t().PPF(q) }
func (d *NormalDist) SF(x float64) float64          { return d.t().SF(x) }
func (d *NormalDist) ISF(q float64) float64         { return d.t().ISF(q) }
func (d *NormalDist) Sample(rng *rand.Rand) float64 { return d.t().Sample(rng) }
func (d *NormalDist) Support() (float64, float64)   { return d.t().Support() }

func (d *NormalDist) String() string {
	return fmt.Sprintf("Normal(loc=%g, scale=%g%s)", d.Loc, d.Scale, logSuffix(d.Log))
}

var logSqrt2Pi = 0.5 * math.Log(2*math.Pi)

func (d *NormalDist) logPDF(y float64) float64 {
	z := (y - d.Loc) / d.Scale
	return -0.5*z*z - math.Log(d.Scale) - logSqrt2Pi
}

func (d *NormalDist) cdf(y float64) float64 {
	return 0.5 * math.Erfc(-(y-d.Loc)/(d.Scale*math.Sqrt2))
}

func (d *NormalDist) sf(y float64) float64 {
	return 0.5 * math.Erfc((y-d.Loc)/(d.Scale*math.Sqrt2))
}

func (d *NormalDist) ppf(q float64) float64 {
	return d.Loc + d.Scale*StdNormalPPF(q)
}

// isf uses the symmetry of the normal distribution; StdNormalPPF is
// accurate for small q.
func (d *NormalDist) isf(q float64) float64 {
	return d.Loc - d.Scale*StdNormalPPF(q)
}

func (d *NormalDist) support() (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}

// Coefficients of Acklam's rational approximation of the standard normal
// quantile function.
var (
	acklamA = [6]float64{
		-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00,
	}
	acklamB = [5]float64{
		-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01,
	}
	acklamC = [6]float64{
		-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00,
	}
	acklamD = [4]float64{
		7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00,
	}
)

const acklamLow = 0.02425

// StdNormalPPF returns the q-quantile of the standard normal distribution.
// Acklam's approximation (relative error 1.15e-9) is refined by one Halley
// step, which brings it to full double precision.
func StdNormalPPF(q float64) float64 {
	switch {
	case math.IsNaN(q) || q < 0 || q > 1:
		return math.NaN()
	case q == 0:
		return math.Inf(-1)
	case q == 1:
		return math.Inf(1)
	}

	var x float64
	switch {
	case q < acklamLow:
		r := math.Sqrt(-2 * math.Log(q))
		x = (((((acklamC[0]*r+acklamC[1])*r+acklamC[2])*r+acklamC[3])*r+acklamC[4])*r + acklamC[5]) /
			((((acklamD[0]*r+acklamD[1])*r+acklamD[2])*r+acklamD[3])*r + 1)
	case q <= 1-acklamLow:
		r := q - 0.5
		s := r * r
		x = (((((acklamA[0]*s+acklamA[1])*s+acklamA[2])*s+acklamA[3])*s+acklamA[4])*s + acklamA[5]) * r /
			(((((acklamB[0]*s+acklamB[1])*s+acklamB[2])*s+acklamB[3])*s+acklamB[4])*s + 1)
	default:
		r := math.Sqrt(-2 * math.Log1p(-q))
		x = -(((((acklamC[0]*r+acklamC[1])*r+acklamC[2])*r+acklamC[3])*r+acklamC[4])*r + acklamC[5]) /
			((((acklamD[0]*r+acklamD[1])*r+acklamD[2])*r+acklamD[3])*r + 1)
	}

	// Halley refinement
	e := 0.5*math.Erfc(-x/math.Sqrt2) - q
	u := e * math.Sqrt(2*math.Pi) * math.Exp(x*x/2)
	return x - u/(1+x*u/2)
}
