package distributions

import (
	"fmt"
)

// Family is a PEtab prior distribution type.
type Family int

const (
	Uniform Family = iota
	Normal
	Laplace
	LogNormal
	LogLaplace
	ParameterScaleUniform
	ParameterScaleNormal
	ParameterScaleLaplace
)

var familyNames = [...]string{
	Uniform:               "uniform",
	Normal:                "normal",
	Laplace:               "laplace",
	LogNormal:             "logNormal",
	LogLaplace:            "logLaplace",
	ParameterScaleUniform: "parameterScaleUniform",
	ParameterScaleNormal:  "parameterScaleNormal",
	ParameterScaleLaplace: "parameterScaleLaplace",
}

// Families returns all families in declaration order.
func Families() []Family {
	return []Family{
		Uniform, Normal, Laplace, LogNormal, LogLaplace,
		ParameterScaleUniform, ParameterScaleNormal, ParameterScaleLaplace,
	}
}

// String returns the PEtab name of the family.
func (f Family) String() string {
	if f >= 0 && int(f) < len(familyNames) {
		return familyNames[f]
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// ParseFamily reads a *PriorType column value.
func ParseFamily(s string) (Family, error) {
	for i, name := range familyNames {
		if s == name {
			return Family(i), nil
		}
	}
	return 0, fmt.Errorf("unknown prior type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParamCount returns the number of distribution parameters.
func (f Family) ParamCount() int {
	return 2
}

// Scaled reports whether the family's parameters live on the parameter
// scale.
func (f Family) Scaled() bool {
	switch f {
	case ParameterScaleUniform, ParameterScaleNormal, ParameterScaleLaplace:
		return true
	}
	return false
}

// IsLog reports whether the family is inherently log-transformed.
func (f Family) IsLog() bool {
	return f == LogNormal || f == LogLaplace
}

// Base returns the untransformed family: Uniform, Normal or Laplace.
func (f Family) Base() Family {
	switch f {
	case Normal, LogNormal, ParameterScaleNormal:
		return Normal
	case Laplace, LogLaplace, ParameterScaleLaplace:
		return Laplace
	}
	return Uniform
}

// ParamNames returns the names of the two parameters.
func (f Family) ParamNames() [2]string {
	if f.Base() == Uniform {
		return [2]string{"lower", "upper"}
	}
	return [2]string{"location", "scale"}
}
