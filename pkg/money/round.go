// Package money holds the cent-level rounding shared by every price calculation.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds x to two decimal places, half away from zero.
//
// The value goes through its shortest decimal representation first, so
// 8*1.1 (8.8000000000000007) and 1.005 round the way they read. NaN and
// infinities are returned unchanged.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Sum adds values and rounds the result to cents.
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return Round2(total)
}

// Format renders an amount as dollars with thousands separators, e.g. $1,234.56.
func Format(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "$" + formatNonFinite(x)
	}

	d := decimal.NewFromFloat(x).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

func formatNonFinite(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case x > 0:
		return "Inf"
	default:
		return "-Inf"
	}
}
