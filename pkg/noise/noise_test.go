package noise

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"petab-hq/petab/pkg/scale"
)

// Closed-form negative log-likelihoods for each model.
func expectedNLLH(d Distribution, t scale.Kind, m, s, sigma float64) float64 {
	switch {
	case d == Normal && t == scale.Lin:
		return 0.5*math.Log(2*math.Pi*sigma*sigma) + 0.5*math.Pow((s-m)/sigma, 2)
	case d == Normal && t == scale.Log:
		return 0.5*math.Log(2*math.Pi*sigma*sigma*m*m) + 0.5*math.Pow((math.Log(s)-math.Log(m))/sigma, 2)
	case d == Normal && t == scale.Log10:
		return 0.5*math.Log(2*math.Pi*sigma*sigma*m*m*math.Ln10*math.Ln10) +
			0.5*math.Pow((math.Log10(s)-math.Log10(m))/sigma, 2)
	case d == Laplace && t == scale.Lin:
		return math.Log(2*sigma) + math.Abs((s-m)/sigma)
	case d == Laplace && t == scale.Log:
		return math.Log(2*sigma*m) + math.Abs((math.Log(s)-math.Log(m))/sigma)
	default:
		return math.Log(2*sigma*m*math.Ln10) + math.Abs((math.Log10(s)-math.Log10(m))/sigma)
	}
}

func TestLogLikelihood(t *testing.T) {
	cases := []struct{ m, s, sigma float64 }{
		{1.0, 1.0, 1.0},
		{2.5, 1.7, 0.3},
		{0.01, 0.2, 2.0},
		{100, 40, 0.5},
	}
	for _, d := range []Distribution{Normal, Laplace} {
		for _, tr := range []scale.Kind{scale.Lin, scale.Log, scale.Log10} {
			model := Model{Distribution: d, Transformation: tr}
			t.Run(model.String(), func(t *testing.T) {
				for _, c := range cases {
					got, err := model.LogLikelihood(c.m, c.s, c.sigma)
					if err != nil {
						t.Fatalf("LogLikelihood(%v) error = %v", c, err)
					}
					want := -expectedNLLH(d, tr, c.m, c.s, c.sigma)
					if math.Abs(got-want) > 1e-10*math.Max(1, math.Abs(want)) {
						t.Errorf("LogLikelihood(%v) = %v, want %v", c, got, want)
					}
				}
			})
		}
	}
}

func TestLogLikelihood_Errors(t *testing.T) {
	tests := []struct {
		name        string
		model       Model
		m, s, sigma float64
	}{
		{"zero sigma", Model{Normal, scale.Lin}, 1, 1, 0},
		{"negative sigma", Model{Laplace, scale.Lin}, 1, 1, -1},
		{"nan measurement", Model{Normal, scale.Lin}, math.NaN(), 1, 1},
		{"log of negative measurement", Model{Normal, scale.Log}, -1, 1, 1},
		{"log10 of zero simulation", Model{Laplace, scale.Log10}, 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.model.LogLikelihood(tt.m, tt.s, tt.sigma)
			if !errors.Is(err, ErrInvalidNoise) {
				t.Errorf("LogLikelihood() error = %v, want ErrInvalidNoise", err)
			}
		})
	}
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		distribution, transformation string
		want                         Model
		wantErr                      bool
	}{
		{"", "", Model{Normal, scale.Lin}, false},
		{"laplace", "log", Model{Laplace, scale.Log}, false},
		{"normal", "log10", Model{Normal, scale.Log10}, false},
		{"log-normal", "", Model{Normal, scale.Log}, false},
		{"log10-normal", "lin", Model{Normal, scale.Log10}, false},
		{"log-normal", "log", Model{}, true},
		{"cauchy", "", Model{}, true},
		{"normal", "sqrt", Model{}, true},
	}
	for _, tt := range tests {
		got, err := ParseModel(tt.distribution, tt.transformation)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseModel(%q, %q) error = %v, wantErr %v", tt.distribution, tt.transformation, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseModel(%q, %q) = %v, want %v", tt.distribution, tt.transformation, got, tt.want)
		}
	}
}

func TestResidualAndChi2(t *testing.T) {
	m := Model{Normal, scale.Log10}
	r, err := m.Residual(100, 10, 0.5, true)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(r-2) > 1e-12 {
		t.Errorf("Residual() = %v, want 2", r)
	}
	r, err = m.Residual(100, 10, 0.5, false)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(r-1) > 1e-12 {
		t.Errorf("unnormalized Residual() = %v, want 1", r)
	}
	if got := Chi2([]float64{1, -2, 0.5}); got != 5.25 {
		t.Errorf("Chi2() = %v, want 5.25", got)
	}
}

func TestSample(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))

	t.Run("normal lin moments", func(t *testing.T) {
		m := Model{Normal, scale.Lin}
		const n = 20000
		var sum, sq float64
		for range n {
			v, err := m.Sample(rng, 5, 2, 0.5, false)
			if err != nil {
				t.Fatal(err)
			}
			sum += v
			sq += (v - 5) * (v - 5)
		}
		if mean := sum / n; math.Abs(mean-5) > 0.05 {
			t.Errorf("mean = %v, want ~5", mean)
		}
		if sd := math.Sqrt(sq / n); math.Abs(sd-1) > 0.05 {
			t.Errorf("sd = %v, want ~1", sd)
		}
	})

	t.Run("log transformation stays positive", func(t *testing.T) {
		m := Model{Laplace, scale.Log10}
		for range 1000 {
			v, err := m.Sample(rng, 0.5, 1, 1, false)
			if err != nil {
				t.Fatal(err)
			}
			if v <= 0 {
				t.Fatalf("sample %v not positive", v)
			}
		}
	})

	t.Run("zero bounded", func(t *testing.T) {
		m := Model{Normal, scale.Lin}
		zeros := 0
		for range 1000 {
			v, err := m.Sample(rng, 0.1, 1, 1, true)
			if err != nil {
				t.Fatal(err)
			}
			if v < 0 {
				t.Fatalf("zero-bounded sample %v is negative", v)
			}
			if v == 0 {
				zeros++
			}
		}
		if zeros == 0 {
			t.Error("expected some samples to be clipped to zero")
		}
	})

	t.Run("invalid sigma", func(t *testing.T) {
		if _, err := (Model{Normal, scale.Lin}).Sample(rng, 1, 0, 1, false); !errors.Is(err, ErrInvalidNoise) {
			t.Errorf("Sample() error = %v", err)
		}
	})
}
