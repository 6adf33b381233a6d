package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundTo rounds n half away from zero to the given number of decimals.
func RoundTo(n float64, decimals int32) float64 {
	v, _ := decimal.NewFromFloat(n).Round(decimals).Float64()
	return v
}

// RoundUp rounds n towards positive infinity at the given number of decimals.
func RoundUp(n float64, decimals int32) float64 {
	v, _ := decimal.NewFromFloat(n).RoundCeil(decimals).Float64()
	return v
}

// CountDecimals returns the number of significant decimal digits of x,
// e.g. 0.0025 -> 4 and 5 -> 0.
func CountDecimals(x float64) int32 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x == math.Trunc(x) {
		return 0
	}
	exp := decimal.NewFromFloat(x).Exponent()
	if exp >= 0 {
		return 0
	}
	return -exp
}

// Ratio returns part*100/whole, or 0 when whole is 0.
func Ratio(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part * 100 / whole
}

// PercentOfUp returns n*percent/100 rounded towards positive infinity. The
// product is taken in decimal so float noise never adds a unit.
func PercentOfUp(n, percent float64, decimals int32) float64 {
	v, _ := decimal.NewFromFloat(n).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		RoundCeil(decimals).
		Float64()
	return v
}
