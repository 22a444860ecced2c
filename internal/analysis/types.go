// Package analysis projects the yearly cash flow of a solar installation over
// its operating horizon and summarizes payback, profit and return on
// investment for a given financing structure.
package analysis

import (
	"github.com/solardesk/profit-forecast/pkg/financing"
)

// Project holds the physical, market and operating figures of an installation
// that do not depend on how it is financed.
type Project struct {
	CapacityKW      float64 `json:"capacityKw"`
	TotalInvestment float64 `json:"totalInvestment"`
	PeakHours       float64 `json:"peakHours"`
	DegradationRate float64 `json:"degradationRate"`
	SMPPrice        float64 `json:"smpPrice"`
	RECPrice        float64 `json:"recPrice"`
	RECWeight       float64 `json:"recWeight"`
	MaintenanceCost float64 `json:"maintenanceCost"`
	MonitoringCost  float64 `json:"monitoringCost"`

	// CostEscalationRate compounds maintenance and monitoring costs from the
	// second year on. Zero keeps them flat.
	CostEscalationRate float64 `json:"costEscalationRate,omitempty"`
}

// Input is one complete set of figures for a calculation.
type Input struct {
	Project

	FinancingType    financing.Type            `json:"financingType"`
	SelfFundingRate  float64                   `json:"selfFundingRate"`
	LoanAmount       float64                   `json:"loanAmount"`
	InterestRate     float64                   `json:"interestRate"` // annual percent
	LoanPeriod       int                       `json:"loanPeriod"`   // years, excluding grace
	GracePeriod      int                       `json:"gracePeriod"`
	GuaranteeFeeRate float64                   `json:"guaranteeFeeRate,omitempty"`
	FactoringFeeRate float64                   `json:"factoringFeeRate,omitempty"`
	RepaymentMethod  financing.RepaymentMethod `json:"repaymentMethod,omitempty"`
}

// YearlyData is the cash flow of one operating year.
type YearlyData struct {
	Year            int     `json:"year"`
	Generation      float64 `json:"generation"` // kWh
	SMPRevenue      float64 `json:"smpRevenue"`
	RECRevenue      float64 `json:"recRevenue"`
	TotalRevenue    float64 `json:"totalRevenue"`
	LoanRepayment   float64 `json:"loanRepayment"`
	InterestPayment float64 `json:"interestPayment"`
	MaintenanceCost float64 `json:"maintenanceCost"`
	MonitoringCost  float64 `json:"monitoringCost"`
	TotalExpense    float64 `json:"totalExpense"`
	NetProfit       float64 `json:"netProfit"`
	Cumulative      float64 `json:"cumulative"`
}

// Summary holds the metrics derived from a yearly projection.
type Summary struct {
	// PaybackPeriod is the fractional number of years until cumulative cash
	// flow turns non-negative. Zero means the investment is not recovered
	// within the horizon.
	PaybackPeriod   float64 `json:"paybackPeriod"`
	TotalProfit20y  float64 `json:"totalProfit20y"`
	TotalRevenue20y float64 `json:"totalRevenue20y"`
	TotalExpense20y float64 `json:"totalExpense20y"`

	// ROI is a percentage rounded to one decimal. It is only meaningful when
	// ROIDefined is true; an initial cost of zero leaves it undefined.
	ROI        float64 `json:"roi"`
	ROIDefined bool    `json:"roiDefined"`
}

// Result is the complete output of a calculation.
type Result struct {
	Summary

	FinancingType financing.Type `json:"financingType"`
	InitialCost   float64        `json:"initialCost"`
	YearlyData    []YearlyData   `json:"yearlyData"`
}

// Recovered reports whether the investment pays back within the horizon.
func (s Summary) Recovered() bool {
	return s.PaybackPeriod > 0
}
