package valuation

import (
	"math"

	"github.com/shopspring/decimal"
)

var decHundred = decimal.NewFromInt(100)

// dec converts a price or percentage; NaN and Inf collapse to zero.
func dec(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// atLeast and atMost compare in decimal so float noise such as 2.9999999
// does not land on the wrong side of a threshold.
func atLeast(v, limit float64) bool { return dec(v).Cmp(dec(limit)) >= 0 }
func atMost(v, limit float64) bool  { return dec(v).Cmp(dec(limit)) <= 0 }

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	return toFloat(dec(v).Round(places))
}
