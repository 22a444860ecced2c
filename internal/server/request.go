package server

import (
	"fmt"
	"strings"

	"github.com/solardesk/profit-forecast/internal/analysis"
	"github.com/solardesk/profit-forecast/pkg/financing"
)

// projectRequest mirrors analysis.Project with pointers so that absent
// fields can be told apart from zeros.
type projectRequest struct {
	CapacityKW         *float64 `json:"capacityKw"`
	TotalInvestment    *float64 `json:"totalInvestment"`
	PeakHours          *float64 `json:"peakHours"`
	DegradationRate    *float64 `json:"degradationRate"`
	SMPPrice           *float64 `json:"smpPrice"`
	RECPrice           *float64 `json:"recPrice"`
	RECWeight          *float64 `json:"recWeight"`
	MaintenanceCost    *float64 `json:"maintenanceCost"`
	MonitoringCost     *float64 `json:"monitoringCost"`
	CostEscalationRate *float64 `json:"costEscalationRate"`
}

// analysisRequest is the body of a single analysis. Project figures and the
// financing type are required; financing parameters default to those of
// the type and the loan amount to the debt share of the investment.
type analysisRequest struct {
	projectRequest

	FinancingType    *string  `json:"financingType"`
	SelfFundingRate  *float64 `json:"selfFundingRate"`
	LoanAmount       *float64 `json:"loanAmount"`
	InterestRate     *float64 `json:"interestRate"`
	LoanPeriod       *int     `json:"loanPeriod"`
	GracePeriod      *int     `json:"gracePeriod"`
	GuaranteeFeeRate *float64 `json:"guaranteeFeeRate"`
	FactoringFeeRate *float64 `json:"factoringFeeRate"`
	RepaymentMethod  string   `json:"repaymentMethod"`
}

type compareRequest struct {
	projectRequest

	FactoringFeeRate *float64 `json:"factoringFeeRate"`
	BankInterestRate *float64 `json:"bankInterestRate"`
	RepaymentMethod  string   `json:"repaymentMethod"`
}

func (r projectRequest) project() (analysis.Project, error) {
	required := []struct {
		name  string
		value *float64
	}{
		{"capacityKw", r.CapacityKW},
		{"totalInvestment", r.TotalInvestment},
		{"peakHours", r.PeakHours},
		{"degradationRate", r.DegradationRate},
		{"smpPrice", r.SMPPrice},
		{"recPrice", r.RECPrice},
		{"recWeight", r.RECWeight},
		{"maintenanceCost", r.MaintenanceCost},
		{"monitoringCost", r.MonitoringCost},
	}
	var missing []string
	for _, f := range required {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return analysis.Project{}, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	p := analysis.Project{
		CapacityKW:      *r.CapacityKW,
		TotalInvestment: *r.TotalInvestment,
		PeakHours:       *r.PeakHours,
		DegradationRate: *r.DegradationRate,
		SMPPrice:        *r.SMPPrice,
		RECPrice:        *r.RECPrice,
		RECWeight:       *r.RECWeight,
		MaintenanceCost: *r.MaintenanceCost,
		MonitoringCost:  *r.MonitoringCost,
	}
	if r.CostEscalationRate != nil {
		p.CostEscalationRate = *r.CostEscalationRate
	}
	return p, nil
}

func (r analysisRequest) input() (analysis.Input, error) {
	p, err := r.project()
	if err != nil {
		return analysis.Input{}, err
	}
	if r.FinancingType == nil {
		return analysis.Input{}, fmt.Errorf("missing required fields: financingType")
	}

	ft, err := financing.ParseType(*r.FinancingType)
	if err != nil {
		return analysis.Input{}, err
	}
	method, err := financing.ParseRepaymentMethod(r.RepaymentMethod)
	if err != nil {
		return analysis.Input{}, err
	}
	d, err := financing.DefaultsFor(ft, p.TotalInvestment)
	if err != nil {
		return analysis.Input{}, err
	}

	setFloat(&d.SelfFundingRate, r.SelfFundingRate)
	setFloat(&d.InterestRate, r.InterestRate)
	setFloat(&d.GuaranteeFeeRate, r.GuaranteeFeeRate)
	setFloat(&d.FactoringFeeRate, r.FactoringFeeRate)
	setInt(&d.LoanPeriod, r.LoanPeriod)
	setInt(&d.GracePeriod, r.GracePeriod)

	in := analysis.BuildInput(p, d, method)
	setFloat(&in.LoanAmount, r.LoanAmount)
	return in, nil
}

func (r compareRequest) options() (analysis.CompareOptions, error) {
	method, err := financing.ParseRepaymentMethod(r.RepaymentMethod)
	if err != nil {
		return analysis.CompareOptions{}, err
	}
	return analysis.CompareOptions{
		FactoringFeeRate: r.FactoringFeeRate,
		BankInterestRate: r.BankInterestRate,
		RepaymentMethod:  method,
	}, nil
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
