// Package scale implements the parameter scales of PEtab: the bijective
// transforms between a parameter's model (unscaled) value and the value
// an optimizer works with.
package scale

import (
	"fmt"
	"math"
	"strings"
)

// Kind is a parameter scale.
type Kind int

const (
	Lin Kind = iota
	Log
	Log10
)

// String returns the PEtab name of the scale.
func (k Kind) String() string {
	switch k {
	case Lin:
		return "lin"
	case Log:
		return "log"
	case Log10:
		return "log10"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Parse reads a parameterScale column value. The empty string is lin.
func Parse(s string) (Kind, error) {
	switch strings.TrimSpace(s) {
	case "", "lin":
		return Lin, nil
	case "log":
		return Log, nil
	case "log10":
		return Log10, nil
	}
	return Lin, fmt.Errorf("unknown parameter scale %q (want lin, log or log10)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Base returns the logarithm base of the scale, or 0 for lin.
func (k Kind) Base() float64 {
	switch k {
	case Log:
		return math.E
	case Log10:
		return 10
	}
	return 0
}

// IsLog reports whether the scale is logarithmic.
func (k Kind) IsLog() bool {
	return k == Log || k == Log10
}

// Scale maps an unscaled value x to the scale. Log scales return NaN for
// negative x and -Inf for zero.
func (k Kind) Scale(x float64) float64 {
	switch k {
	case Log:
		return math.Log(x)
	case Log10:
		return math.Log10(x)
	}
	return x
}

// Unscale maps a scaled value y back to the model scale.
func (k Kind) Unscale(y float64) float64 {
	switch k {
	case Log:
		return math.Exp(y)
	case Log10:
		return math.Pow(10, y)
	}
	return y
}

// Jacobian returns |d Unscale(y) / dy|, the factor converting a density of
// the unscaled value into a density of the scaled value y.
func (k Kind) Jacobian(y float64) float64 {
	switch k {
	case Log:
		return math.Exp(y)
	case Log10:
		return math.Pow(10, y) * math.Ln10
	}
	return 1
}

// LogJacobian returns log(Jacobian(y)).
func (k Kind) LogJacobian(y float64) float64 {
	switch k {
	case Log:
		return y
	case Log10:
		return y*math.Ln10 + math.Log(math.Ln10)
	}
	return 0
}

// Scale is a convenience for k.Scale(x).
func Scale(x float64, k Kind) float64 { return k.Scale(x) }

// Unscale is a convenience for k.Unscale(y).
func Unscale(y float64, k Kind) float64 { return k.Unscale(y) }
