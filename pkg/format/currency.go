// Package format renders analysis figures for display. Rounding happens here
// only; the engine keeps full precision.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/solardesk/profit-forecast/pkg/constants"
)

// NotAvailable is displayed for metrics that are undefined, such as ROI
// without an initial cost or a payback beyond the horizon.
const NotAvailable = "N/A"

// Currency returns a won amount rounded half away from zero with a won sign
// and thousands separators (e.g., "-₩1,234,567").
func Currency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(0)
	if d.IsNegative() {
		return "-₩" + groupThousands(d.Abs().StringFixed(0))
	}
	return "₩" + groupThousands(d.StringFixed(0))
}

// NumericCurrency returns a rounded won amount without a currency symbol but with separators (e.g., "-1,234,567").
func NumericCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + groupThousands(d.Abs().StringFixed(0))
}

// TenThousandWon expresses an amount in units of 10,000 won with one decimal.
func TenThousandWon(amount float64) float64 {
	v, _ := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(constants.ChartBucket)).
		Round(1).
		Float64()
	return v
}

// Percent formats a percentage with one decimal (e.g., "12.3%").
func Percent(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(1) + "%"
}

// ROI formats a return on investment, or NotAvailable when it is undefined.
func ROI(value float64, defined bool) string {
	if !defined {
		return NotAvailable
	}
	return Percent(value)
}

// Payback formats a payback period in years with one decimal, or
// NotAvailable when the investment is not recovered.
func Payback(years float64) string {
	if years <= 0 {
		return NotAvailable
	}
	return decimal.NewFromFloat(years).StringFixed(1) + " years"
}

// Energy formats a kWh amount with separators.
func Energy(kwh float64) string {
	return NumericCurrency(kwh) + " kWh"
}

func groupThousands(intPart string) string {
	if len(intPart) <= 3 {
		return intPart
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
