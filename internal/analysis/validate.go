package analysis

import (
	"errors"
	"fmt"

	"github.com/solardesk/profit-forecast/pkg/financing"
	"github.com/solardesk/profit-forecast/pkg/mathutil"
)

// ValidationError reports a structurally invalid input field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type numericField struct {
	name        string
	value       float64
	nonNegative bool
}

// Validate rejects input that cannot describe an installation: non-finite
// numbers, negative amounts or periods, a self-funding rate outside [0, 1]
// and unknown financing or repayment tags. Degenerate but well-formed figures
// such as zero capacity or a negative degradation rate are accepted.
func Validate(in Input) error {
	if !in.FinancingType.Valid() {
		return &ValidationError{
			Field:  "financingType",
			Reason: fmt.Sprintf("%q is not a supported financing type", string(in.FinancingType)),
			Err:    financing.ErrUnknownType,
		}
	}

	if in.SelfFundingRate > 1 {
		return &ValidationError{Field: "selfFundingRate", Reason: fmt.Sprintf("value must be <= 1, got %v", in.SelfFundingRate)}
	}

	fields := []numericField{
		{"capacityKw", in.CapacityKW, true},
		{"totalInvestment", in.TotalInvestment, true},
		{"peakHours", in.PeakHours, true},
		{"degradationRate", in.DegradationRate, false},
		{"smpPrice", in.SMPPrice, false},
		{"recPrice", in.RECPrice, false},
		{"recWeight", in.RECWeight, false},
		{"maintenanceCost", in.MaintenanceCost, false},
		{"monitoringCost", in.MonitoringCost, false},
		{"costEscalationRate", in.CostEscalationRate, false},
		{"selfFundingRate", in.SelfFundingRate, true},
		{"loanAmount", in.LoanAmount, true},
		{"interestRate", in.InterestRate, true},
		{"guaranteeFeeRate", in.GuaranteeFeeRate, true},
		{"factoringFeeRate", in.FactoringFeeRate, true},
	}
	for _, f := range fields {
		if !mathutil.IsFinite(f.value) {
			return &ValidationError{Field: f.name, Reason: "value is not a finite number"}
		}
		if f.nonNegative && f.value < 0 {
			return &ValidationError{Field: f.name, Reason: fmt.Sprintf("value must be >= 0, got %v", f.value)}
		}
	}

	if in.LoanPeriod < 0 {
		return &ValidationError{Field: "loanPeriod", Reason: fmt.Sprintf("value must be >= 0, got %d", in.LoanPeriod)}
	}
	if in.GracePeriod < 0 {
		return &ValidationError{Field: "gracePeriod", Reason: fmt.Sprintf("value must be >= 0, got %d", in.GracePeriod)}
	}

	if _, err := financing.ParseRepaymentMethod(string(in.RepaymentMethod)); err != nil {
		return &ValidationError{Field: "repaymentMethod", Reason: err.Error(), Err: err}
	}
	return nil
}
