// Package financing defines the supported financing structures for a solar
// installation and the starting parameters for each of them.
package financing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/solardesk/profit-forecast/pkg/constants"
)

// Type identifies a financing structure.
type Type string

// The closed set of financing structures.
const (
	SelfFunding    Type = "SELF_FUNDING"
	BankLoan       Type = "BANK_LOAN"
	GovernmentLoan Type = "GOVERNMENT_LOAN"
	Factoring      Type = "FACTORING"
)

// ErrUnknownType is returned for a financing tag outside the supported set.
var ErrUnknownType = errors.New("unknown financing type")

// Types returns every supported financing type in presentation order.
func Types() []Type {
	return []Type{SelfFunding, BankLoan, GovernmentLoan, Factoring}
}

// ParseType converts a tag such as "bank_loan" or "BANK_LOAN" into a Type.
func ParseType(value string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(value)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, value)
	}
	return t, nil
}

// Valid reports whether t is one of the supported financing types.
func (t Type) Valid() bool {
	switch t {
	case SelfFunding, BankLoan, GovernmentLoan, Factoring:
		return true
	}
	return false
}

// HasLoanService reports whether the structure carries a loan that is repaid
// out of yearly cash flow.
func (t Type) HasLoanService() bool {
	return t == BankLoan || t == GovernmentLoan
}

// Label returns a short human-readable name.
func (t Type) Label() string {
	switch t {
	case SelfFunding:
		return "Self funding"
	case BankLoan:
		return "Bank loan"
	case GovernmentLoan:
		return "Government loan"
	case Factoring:
		return "Factoring"
	}
	return string(t)
}

// RepaymentMethod selects how loan principal is amortized.
type RepaymentMethod string

const (
	// EqualPrincipal repays the same principal every year; interest declines linearly.
	EqualPrincipal RepaymentMethod = "EQUAL_PRINCIPAL"

	// EqualInstallment repays a constant annual installment (annuity).
	EqualInstallment RepaymentMethod = "EQUAL_INSTALLMENT"
)

// ParseRepaymentMethod converts a tag into a RepaymentMethod. An empty value
// selects EqualPrincipal.
func ParseRepaymentMethod(value string) (RepaymentMethod, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	switch RepaymentMethod(trimmed) {
	case "", EqualPrincipal:
		return EqualPrincipal, nil
	case EqualInstallment:
		return EqualInstallment, nil
	}
	return "", fmt.Errorf("unknown repayment method: %q", value)
}

// Defaults holds the starting parameters for a financing structure.
type Defaults struct {
	Type             Type    `json:"financingType"`
	SelfFundingRate  float64 `json:"selfFundingRate"`
	LoanAmount       float64 `json:"loanAmount"`
	InterestRate     float64 `json:"interestRate"`
	LoanPeriod       int     `json:"loanPeriod"`
	GracePeriod      int     `json:"gracePeriod"`
	GuaranteeFeeRate float64 `json:"guaranteeFeeRate"`
	FactoringFeeRate float64 `json:"factoringFeeRate"`
}

// DefaultsFor returns the starting parameters of the given financing type for
// a project costing totalInvestment.
func DefaultsFor(t Type, totalInvestment float64) (Defaults, error) {
	d := Defaults{Type: t}

	switch t {
	case SelfFunding:
		d.SelfFundingRate = 1.0
	case BankLoan:
		d.SelfFundingRate = constants.LoanSelfFundingRate
		d.InterestRate = constants.BankInterestRate
		d.LoanPeriod = constants.LoanPeriodYears
	case GovernmentLoan:
		d.SelfFundingRate = constants.LoanSelfFundingRate
		d.InterestRate = constants.GovernmentInterestRate
		d.LoanPeriod = constants.LoanPeriodYears
		d.GracePeriod = constants.GovernmentGraceYears
	case Factoring:
		d.LoanPeriod = constants.FactoringPeriodYears
		d.GuaranteeFeeRate = constants.GuaranteeFeeRate
		d.FactoringFeeRate = constants.FactoringFeeRate
	default:
		return Defaults{}, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}

	d.LoanAmount = LoanAmount(totalInvestment, d.SelfFundingRate)
	return d, nil
}

// LoanAmount returns the borrowed share of totalInvestment.
func LoanAmount(totalInvestment, selfFundingRate float64) float64 {
	return totalInvestment * (1 - selfFundingRate)
}
