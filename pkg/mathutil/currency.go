// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/solardesk/profit-forecast/pkg/constants"
)

// Round rounds a value to the nearest whole currency unit.
func Round(val float64) float64 {
	return math.Round(val)
}

// RoundTo rounds a value to the given number of decimals.
func RoundTo(val float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(val*factor) / factor
}

// IsFinite reports whether a value is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsInf(val, 0) && !math.IsNaN(val)
}

// IsZero checks if a value is effectively zero (within one currency unit)
func IsZero(val float64) bool {
	return math.Abs(val) < constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// CalculatePercentage calculates what percentage value is of total.
// The second return value is false when total is zero.
func CalculatePercentage(value, total float64) (float64, bool) {
	if total == 0 {
		return 0, false
	}
	return (value / total) * constants.PercentageMultiplier, true
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}
