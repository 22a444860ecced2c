package validation

import (
	"fmt"

	"github.com/solardesk/profit-forecast/pkg/constants"
	"github.com/solardesk/profit-forecast/pkg/mathutil"
)

// InputInfo carries the analysis figures checked for consistency. Values
// that are accepted by the engine but likely mistakes produce warnings.
type InputInfo struct {
	FinancingType   string
	HasLoanService  bool
	TotalInvestment float64
	SelfFundingRate float64
	LoanAmount      float64
	DegradationRate float64
	CapacityKW      float64
	PeakHours       float64
	LoanPeriod      int
	GracePeriod     int
}

// ValidateLoanAmount warns when a loan amount differs from the debt share of
// the investment.
func ValidateLoanAmount(info InputInfo) string {
	if !info.HasLoanService {
		return ""
	}
	expected := info.TotalInvestment * (1 - info.SelfFundingRate)
	if mathutil.WithinTolerance(info.LoanAmount, expected, constants.CurrencyTolerance) {
		return ""
	}
	return fmt.Sprintf("loan amount %.0f does not match investment share %.0f (investment %.0f, self-funding rate %.2f)",
		info.LoanAmount, expected, info.TotalInvestment, info.SelfFundingRate)
}

// ValidateInput returns warnings for an analysis input
func ValidateInput(info InputInfo) []string {
	var warnings []string

	if w := ValidateLoanAmount(info); w != "" {
		warnings = append(warnings, w)
	}

	if info.DegradationRate < 0 {
		warnings = append(warnings, fmt.Sprintf("negative degradation rate %.4f makes generation grow every year", info.DegradationRate))
	}

	if info.CapacityKW == 0 || info.PeakHours == 0 {
		warnings = append(warnings, "installation generates nothing; the investment cannot pay back")
	}

	if info.HasLoanService && info.LoanPeriod == 0 && !mathutil.IsZero(info.LoanAmount) {
		warnings = append(warnings, "loan period is zero; no principal will be repaid")
	}

	if info.HasLoanService && info.LoanPeriod+info.GracePeriod > constants.ProjectionYears {
		warnings = append(warnings, fmt.Sprintf("loan matures after year %d; the balance is not repaid within the projection",
			constants.ProjectionYears))
	}

	return warnings
}
