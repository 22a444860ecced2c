// Package loans provides yearly loan service calculations for project financing.
package loans

import (
	"math"

	"github.com/solardesk/profit-forecast/pkg/constants"
	"github.com/solardesk/profit-forecast/pkg/financing"
	"github.com/solardesk/profit-forecast/pkg/mathutil"
)

// Terms describes a loan repaid in yearly installments after an optional
// interest-only grace period.
type Terms struct {
	Principal         float64
	AnnualRatePercent float64
	PeriodYears       int // repayment years, excluding grace
	GraceYears        int
	Method            financing.RepaymentMethod
}

// Service holds the amounts due for one year of a loan.
type Service struct {
	Year               int     `json:"year"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// Total returns the full amount paid in the year.
func (s Service) Total() float64 {
	return s.Principal + s.Interest
}

// MaturityYear returns the last year in which anything is due.
func (t Terms) MaturityYear() int {
	return t.GraceYears + t.PeriodYears
}

func (t Terms) rate() float64 {
	return t.AnnualRatePercent / constants.PercentageMultiplier
}

// ServiceForYear returns the principal and interest due in the given 1-based
// year. Grace years pay interest on the full principal; the loan is retired
// after MaturityYear. Amounts are not rounded.
func ServiceForYear(year int, terms Terms) Service {
	s := Service{Year: year}
	if year < 1 || terms.Principal <= 0 {
		return s
	}

	rate := terms.rate()
	if year <= terms.GraceYears {
		s.Interest = mathutil.ApplyPercentage(terms.Principal, terms.AnnualRatePercent)
		s.RemainingPrincipal = terms.Principal
		return s
	}

	amortYear := year - terms.GraceYears
	if terms.PeriodYears <= 0 || amortYear > terms.PeriodYears {
		return s
	}

	if terms.Method == financing.EqualInstallment && rate != 0 {
		return installmentService(s, amortYear, terms, rate)
	}
	return equalPrincipalService(s, amortYear, terms)
}

func equalPrincipalService(s Service, amortYear int, terms Terms) Service {
	n := float64(terms.PeriodYears)
	s.Principal = terms.Principal / n
	outstanding := terms.Principal - s.Principal*float64(amortYear-1)
	s.Interest = mathutil.ApplyPercentage(outstanding, terms.AnnualRatePercent)
	if amortYear < terms.PeriodYears {
		s.RemainingPrincipal = outstanding - s.Principal
	}
	return s
}

func installmentService(s Service, amortYear int, terms Terms, rate float64) Service {
	installment := AnnualInstallment(terms.Principal, terms.AnnualRatePercent, terms.PeriodYears)
	outstanding := balanceAfter(terms.Principal, installment, rate, amortYear-1)

	s.Interest = outstanding * rate
	if amortYear == terms.PeriodYears {
		// the final installment clears whatever floating-point residue remains
		s.Principal = outstanding
		return s
	}
	s.Principal = installment - s.Interest
	s.RemainingPrincipal = outstanding - s.Principal
	return s
}

// AnnualInstallment returns the constant yearly payment that retires principal
// over periodYears at the given annual rate.
func AnnualInstallment(principal, annualRatePercent float64, periodYears int) float64 {
	if periodYears <= 0 || principal <= 0 {
		return 0
	}
	rate := annualRatePercent / constants.PercentageMultiplier
	if rate == 0 {
		return principal / float64(periodYears)
	}
	return principal * rate / (1 - math.Pow(1+rate, -float64(periodYears)))
}

func balanceAfter(principal, installment, rate float64, payments int) float64 {
	growth := math.Pow(1+rate, float64(payments))
	return principal*growth - installment*(growth-1)/rate
}

// Schedule returns the loan service for years 1..years.
func Schedule(terms Terms, years int) []Service {
	if years < 0 {
		years = 0
	}
	schedule := make([]Service, 0, years)
	for year := 1; year <= years; year++ {
		schedule = append(schedule, ServiceForYear(year, terms))
	}
	return schedule
}
