package noise

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"petab-hq/petab/pkg/distributions"
	"petab-hq/petab/pkg/scale"
)

// Distribution is the family of the measurement noise.
type Distribution int

const (
	Normal Distribution = iota
	Laplace
)

// String returns the table name of the distribution.
func (d Distribution) String() string {
	if d == Laplace {
		return "laplace"
	}
	return "normal"
}

func (d Distribution) family() distributions.Family {
	if d == Laplace {
		return distributions.Laplace
	}
	return distributions.Normal
}

// ErrInvalidNoise is returned for arguments outside a noise model's domain.
var ErrInvalidNoise = errors.New("invalid noise model input")

// Model is a noise distribution applied on a transformed observable axis.
type Model struct {
	Distribution   Distribution
	Transformation scale.Kind
}

// ParseModel reads the noiseDistribution and observableTransformation
// cells of an observable. Empty cells default to normal and lin.
func ParseModel(distribution, transformation string) (Model, error) {
	t, err := scale.Parse(transformation)
	if err != nil {
		return Model{}, fmt.Errorf("observable transformation: %w", err)
	}
	m := Model{Transformation: t}

	switch d := strings.TrimSpace(distribution); d {
	case "", "normal":
		m.Distribution = Normal
	case "laplace":
		m.Distribution = Laplace
	case "log-normal", "log10-normal":
		if t != scale.Lin {
			return Model{}, fmt.Errorf("noise distribution %s cannot be combined with observable transformation %s", d, t)
		}
		m.Distribution = Normal
		m.Transformation = scale.Log
		if d == "log10-normal" {
			m.Transformation = scale.Log10
		}
	default:
		return Model{}, fmt.Errorf("unknown noise distribution %q", distribution)
	}
	return m, nil
}

// String returns "distribution/transformation".
func (m Model) String() string {
	return m.Distribution.String() + "/" + m.Transformation.String()
}

func (m Model) check(sigma float64, values ...float64) error {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return fmt.Errorf("%w: noise parameter must be positive and finite, got %g", ErrInvalidNoise, sigma)
	}
	for _, v := range values {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: NaN value", ErrInvalidNoise)
		}
		if m.Transformation.IsLog() && v <= 0 {
			return fmt.Errorf("%w: %s-transformed value must be positive, got %g", ErrInvalidNoise, m.Transformation, v)
		}
	}
	return nil
}

// LogLikelihood returns the log density of a measurement given the
// simulated value and the noise parameter sigma. The density is with
// respect to the untransformed measurement.
func (m Model) LogLikelihood(measurement, simulation, sigma float64) (float64, error) {
	if err := m.check(sigma, measurement, simulation); err != nil {
		return 0, err
	}
	dist, err := distributions.New(m.Distribution.family(), m.Transformation.Scale(simulation), sigma, scale.Lin)
	if err != nil {
		return 0, err
	}
	y := m.Transformation.Scale(measurement)
	return dist.LogPDF(y) - m.Transformation.LogJacobian(y), nil
}

// NegLogLikelihood returns -LogLikelihood.
func (m Model) NegLogLikelihood(measurement, simulation, sigma float64) (float64, error) {
	llh, err := m.LogLikelihood(measurement, simulation, sigma)
	return -llh, err
}

// Residual returns the difference of measurement and simulation on the
// transformed axis, divided by sigma when normalize is set.
func (m Model) Residual(measurement, simulation, sigma float64, normalize bool) (float64, error) {
	if !normalize {
		sigma = 1
	}
	if err := m.check(sigma, measurement, simulation); err != nil {
		return 0, err
	}
	r := m.Transformation.Scale(measurement) - m.Transformation.Scale(simulation)
	return r / sigma, nil
}

// Chi2 returns the sum of squared residuals.
func Chi2(residuals []float64) float64 {
	var sum float64
	for _, r := range residuals {
		sum += r * r
	}
	return sum
}

// Sample returns a noisy version of simulated. The noise scale is sigma
// multiplied by factor. With zeroBounded, a result whose sign differs from
// simulated is replaced by zero.
func (m Model) Sample(rng *rand.Rand, simulated, sigma, factor float64, zeroBounded bool) (float64, error) {
	if err := m.check(sigma*factor, simulated); err != nil {
		return 0, err
	}
	loc := m.Transformation.Scale(simulated)
	dist, err := distributions.New(m.Distribution.family(), loc, sigma*factor, scale.Lin)
	if err != nil {
		return 0, err
	}
	noisy := m.Transformation.Unscale(dist.Sample(rng))

	if zeroBounded && sign(simulated) != sign(noisy) {
		return 0, nil
	}
	return noisy, nil
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
