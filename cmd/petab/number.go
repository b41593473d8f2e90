package main

import (
	"math"
	"strconv"
)

// number is a float64 whose JSON form can carry non-finite values, which
// densities and likelihoods produce outside their support. NaN and ±Inf
// are written as the strings "NaN", "+Inf" and "-Inf".
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte(strconv.Quote(strconv.FormatFloat(v, 'g', -1, 64))), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (n number) String() string {
	return strconv.FormatFloat(float64(n), 'g', 8, 64)
}
