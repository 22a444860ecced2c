package analysis

import (
	"github.com/solardesk/profit-forecast/pkg/constants"
	"github.com/solardesk/profit-forecast/pkg/mathutil"
)

// Summarize derives payback, totals and ROI from a yearly projection whose
// cumulative column was seeded with -initialCost.
func Summarize(years []YearlyData, initialCost float64) Summary {
	var s Summary
	for _, y := range years {
		s.TotalProfit20y += y.NetProfit
		s.TotalRevenue20y += y.TotalRevenue
		s.TotalExpense20y += y.TotalExpense
	}

	s.PaybackPeriod = PaybackPeriod(years, initialCost)

	if roi, ok := mathutil.CalculatePercentage(s.TotalProfit20y, initialCost); ok {
		s.ROI = mathutil.RoundTo(roi, constants.ROIDecimals)
		s.ROIDefined = true
	}
	return s
}

// PaybackPeriod returns the fractional year in which the cumulative cash flow
// first crosses from negative to non-negative, interpolating linearly within
// that year. It returns 0 when no such crossing occurs.
func PaybackPeriod(years []YearlyData, initialCost float64) float64 {
	previous := -initialCost
	for i, y := range years {
		if y.Cumulative >= 0 && previous < 0 {
			// NetProfit is positive here since the balance rose across zero.
			return float64(i) + (-previous)/y.NetProfit
		}
		previous = y.Cumulative
	}
	return 0
}
