package analysis

import (
	"fmt"

	"github.com/solardesk/profit-forecast/pkg/financing"
	"github.com/solardesk/profit-forecast/pkg/mathutil"
)

// InitialCost returns the out-of-pocket amount at time zero: the full
// investment when self-funded, the equity share for loans, and the one-time
// guarantee and factoring fees for factoring.
func InitialCost(in Input) (float64, error) {
	switch in.FinancingType {
	case financing.SelfFunding:
		return in.TotalInvestment, nil
	case financing.BankLoan, financing.GovernmentLoan:
		return in.TotalInvestment * in.SelfFundingRate, nil
	case financing.Factoring:
		return in.TotalInvestment * (in.GuaranteeFeeRate + in.FactoringFeeRate), nil
	}
	return 0, fmt.Errorf("%w: %q", financing.ErrUnknownType, string(in.FinancingType))
}

// Calculate validates the input and returns the full projection and summary.
// It is a pure function: identical input always yields identical output.
func Calculate(in Input) (Result, error) {
	err := Validate(in)
	if err != nil {
		return Result{}, err
	}

	// Validate accepts any case; the projection compares canonical tags.
	in.RepaymentMethod, err = financing.ParseRepaymentMethod(string(in.RepaymentMethod))
	if err != nil {
		return Result{}, err
	}

	initialCost, err := InitialCost(in)
	if err != nil {
		return Result{}, err
	}

	years := ProjectYears(in, initialCost)
	summary := Summarize(years, initialCost)
	if err := checkFinite(initialCost, summary); err != nil {
		return Result{}, err
	}

	return Result{
		Summary:       summary,
		FinancingType: in.FinancingType,
		InitialCost:   initialCost,
		YearlyData:    years,
	}, nil
}

// checkFinite rejects finite inputs whose projection overflows.
func checkFinite(initialCost float64, s Summary) error {
	totals := []struct {
		name  string
		value float64
	}{
		{"initialCost", initialCost},
		{"totalRevenue20y", s.TotalRevenue20y},
		{"totalExpense20y", s.TotalExpense20y},
		{"totalProfit20y", s.TotalProfit20y},
		{"paybackPeriod", s.PaybackPeriod},
		{"roi", s.ROI},
	}
	for _, t := range totals {
		if !mathutil.IsFinite(t.value) {
			return &ValidationError{Field: t.name, Reason: "inputs are too large; the projection overflows"}
		}
	}
	return nil
}

// BuildInput combines project figures with a set of financing parameters,
// deriving the loan amount from the self-funding rate.
func BuildInput(p Project, d financing.Defaults, method financing.RepaymentMethod) Input {
	return Input{
		Project:          p,
		FinancingType:    d.Type,
		SelfFundingRate:  d.SelfFundingRate,
		LoanAmount:       financing.LoanAmount(p.TotalInvestment, d.SelfFundingRate),
		InterestRate:     d.InterestRate,
		LoanPeriod:       d.LoanPeriod,
		GracePeriod:      d.GracePeriod,
		GuaranteeFeeRate: d.GuaranteeFeeRate,
		FactoringFeeRate: d.FactoringFeeRate,
		RepaymentMethod:  method,
	}
}
