package analysis

import (
	"math"

	"github.com/solardesk/profit-forecast/pkg/constants"
	"github.com/solardesk/profit-forecast/pkg/loans"
)

// FirstYearGeneration returns the undegraded yearly output in kWh.
func FirstYearGeneration(p Project) float64 {
	return p.CapacityKW * p.PeakHours * constants.DaysPerYear
}

// LoanTerms returns the repayment terms implied by the input.
func LoanTerms(in Input) loans.Terms {
	return loans.Terms{
		Principal:         in.LoanAmount,
		AnnualRatePercent: in.InterestRate,
		PeriodYears:       in.LoanPeriod,
		GraceYears:        in.GracePeriod,
		Method:            in.RepaymentMethod,
	}
}

// ProjectYears computes the cash flow for every year of the horizon. The
// cumulative column starts from -initialCost, so the first year already
// reflects the up-front outlay. Nothing is rounded.
func ProjectYears(in Input, initialCost float64) []YearlyData {
	baseGeneration := FirstYearGeneration(in.Project)
	terms := LoanTerms(in)
	serviced := in.FinancingType.HasLoanService()

	years := make([]YearlyData, 0, constants.ProjectionYears)
	cumulative := -initialCost

	for year := 1; year <= constants.ProjectionYears; year++ {
		generation := baseGeneration * math.Pow(1-in.DegradationRate, float64(year-1))
		escalation := math.Pow(1+in.CostEscalationRate, float64(year-1))

		y := YearlyData{
			Year:            year,
			Generation:      generation,
			SMPRevenue:      generation * in.SMPPrice,
			RECRevenue:      (generation / constants.KWhPerMWh) * in.RECWeight * in.RECPrice,
			MaintenanceCost: in.MaintenanceCost * escalation,
			MonitoringCost:  in.MonitoringCost * escalation,
		}

		if serviced {
			service := loans.ServiceForYear(year, terms)
			y.LoanRepayment = service.Principal
			y.InterestPayment = service.Interest
		}

		y.TotalRevenue = y.SMPRevenue + y.RECRevenue
		y.TotalExpense = y.LoanRepayment + y.InterestPayment + y.MaintenanceCost + y.MonitoringCost
		y.NetProfit = y.TotalRevenue - y.TotalExpense

		cumulative += y.NetProfit
		y.Cumulative = cumulative

		years = append(years, y)
	}

	return years
}
