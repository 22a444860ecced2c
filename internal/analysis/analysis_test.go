package analysis

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/solardesk/profit-forecast/pkg/constants"
	"github.com/solardesk/profit-forecast/pkg/financing"
)

func baselineProject() Project {
	return Project{
		CapacityKW:      100,
		TotalInvestment: 120_000_000,
		PeakHours:       3.7,
		DegradationRate: 0.008,
		SMPPrice:        120,
		RECPrice:        40000,
		RECWeight:       1.0,
		MaintenanceCost: 500000,
		MonitoringCost:  300000,
	}
}

func bankLoanInput() Input {
	return Input{
		Project:         baselineProject(),
		FinancingType:   financing.BankLoan,
		SelfFundingRate: 0.2,
		LoanAmount:      96_000_000,
		InterestRate:    5.5,
		LoanPeriod:      10,
		GracePeriod:     0,
	}
}

func inputFor(t *testing.T, ft financing.Type) Input {
	t.Helper()
	d, err := financing.DefaultsFor(ft, baselineProject().TotalInvestment)
	if err != nil {
		t.Fatalf("DefaultsFor(%s) error = %v", ft, err)
	}
	return BuildInput(baselineProject(), d, financing.EqualPrincipal)
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Abs(b))
}

func TestCalculateBankLoanBaseline(t *testing.T) {
	result, err := Calculate(bankLoanInput())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	if len(result.YearlyData) != constants.ProjectionYears {
		t.Fatalf("expected %d years, got %d", constants.ProjectionYears, len(result.YearlyData))
	}

	first := result.YearlyData[0]
	checks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"generation", first.Generation, 135_050},
		{"smp revenue", first.SMPRevenue, 16_206_000},
		{"rec revenue", first.RECRevenue, 5_402_000},
		{"loan repayment", first.LoanRepayment, 9_600_000},
		{"interest payment", first.InterestPayment, 5_280_000},
		{"initial cost", result.InitialCost, 24_000_000},
	}
	for _, c := range checks {
		if !approxEqual(c.got, c.expected) {
			t.Errorf("%s = %.4f, expected %.4f", c.name, c.got, c.expected)
		}
	}

	if result.FinancingType != financing.BankLoan {
		t.Errorf("FinancingType = %s, expected %s", result.FinancingType, financing.BankLoan)
	}
	if !result.Recovered() {
		t.Fatalf("expected the baseline to pay back, got payback %v", result.PaybackPeriod)
	}
	if result.PaybackPeriod < 1 || result.PaybackPeriod > constants.ProjectionYears {
		t.Errorf("payback period %v outside the horizon", result.PaybackPeriod)
	}
	if !result.ROIDefined {
		t.Fatal("expected ROI to be defined")
	}
	expectedROI := math.Round((result.TotalProfit20y/result.InitialCost)*100*10) / 10
	if result.ROI != expectedROI {
		t.Errorf("ROI = %v, expected %v", result.ROI, expectedROI)
	}

	// loan retired after year 10
	for _, y := range result.YearlyData[10:] {
		if y.LoanRepayment != 0 || y.InterestPayment != 0 {
			t.Fatalf("year %d: expected retired loan, got repayment %v interest %v", y.Year, y.LoanRepayment, y.InterestPayment)
		}
	}
}

func TestCalculateInvariants(t *testing.T) {
	for _, ft := range financing.Types() {
		t.Run(string(ft), func(t *testing.T) {
			result, err := Calculate(inputFor(t, ft))
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}

			var totalProfit, totalRevenue, totalExpense float64
			for i, y := range result.YearlyData {
				if y.Year != i+1 {
					t.Fatalf("entry %d has year %d", i, y.Year)
				}
				if i > 0 && y.Generation >= result.YearlyData[i-1].Generation {
					t.Errorf("year %d: generation %v did not degrade from %v", y.Year, y.Generation, result.YearlyData[i-1].Generation)
				}
				if y.TotalRevenue != y.SMPRevenue+y.RECRevenue {
					t.Errorf("year %d: revenue decomposition broken", y.Year)
				}
				if y.TotalExpense != y.LoanRepayment+y.InterestPayment+y.MaintenanceCost+y.MonitoringCost {
					t.Errorf("year %d: expense decomposition broken", y.Year)
				}
				if y.NetProfit != y.TotalRevenue-y.TotalExpense {
					t.Errorf("year %d: net profit broken", y.Year)
				}
				if i == 0 {
					if y.Cumulative != y.NetProfit-result.InitialCost {
						t.Errorf("year 1: cumulative %v, expected %v", y.Cumulative, y.NetProfit-result.InitialCost)
					}
				} else if y.Cumulative != result.YearlyData[i-1].Cumulative+y.NetProfit {
					t.Errorf("year %d: cumulative consistency broken", y.Year)
				}
				totalProfit += y.NetProfit
				totalRevenue += y.TotalRevenue
				totalExpense += y.TotalExpense
			}

			if result.TotalProfit20y != totalProfit {
				t.Errorf("TotalProfit20y = %v, expected %v", result.TotalProfit20y, totalProfit)
			}
			if result.TotalRevenue20y != totalRevenue {
				t.Errorf("TotalRevenue20y = %v, expected %v", result.TotalRevenue20y, totalRevenue)
			}
			if result.TotalExpense20y != totalExpense {
				t.Errorf("TotalExpense20y = %v, expected %v", result.TotalExpense20y, totalExpense)
			}
		})
	}
}

func TestCalculateWithoutLoanService(t *testing.T) {
	for _, ft := range []financing.Type{financing.SelfFunding, financing.Factoring} {
		t.Run(string(ft), func(t *testing.T) {
			in := inputFor(t, ft)
			// a stray loan amount must not produce loan service
			in.LoanAmount = 50_000_000
			in.InterestRate = 5

			result, err := Calculate(in)
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}
			for _, y := range result.YearlyData {
				if y.LoanRepayment != 0 || y.InterestPayment != 0 {
					t.Fatalf("year %d: expected no loan service, got %v/%v", y.Year, y.LoanRepayment, y.InterestPayment)
				}
			}
		})
	}
}

func TestCalculateSelfFundingInitialCost(t *testing.T) {
	result, err := Calculate(inputFor(t, financing.SelfFunding))
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if result.InitialCost != 120_000_000 {
		t.Errorf("InitialCost = %v, expected 120000000", result.InitialCost)
	}
}

func TestCalculateFactoringInitialCost(t *testing.T) {
	in := Input{
		Project:          baselineProject(),
		FinancingType:    financing.Factoring,
		LoanPeriod:       5,
		GuaranteeFeeRate: 0.05,
		FactoringFeeRate: 0.08,
	}
	in.TotalInvestment = 100_000_000
	in.LoanAmount = in.TotalInvestment

	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if !approxEqual(result.InitialCost, 13_000_000) {
		t.Errorf("InitialCost = %v, expected 13000000", result.InitialCost)
	}
	for _, y := range result.YearlyData {
		if y.LoanRepayment != 0 || y.InterestPayment != 0 {
			t.Fatalf("year %d: expected no loan service", y.Year)
		}
	}
}

func TestCalculateGovernmentLoanGrace(t *testing.T) {
	result, err := Calculate(inputFor(t, financing.GovernmentLoan))
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	first := result.YearlyData[0]
	if first.LoanRepayment != 0 {
		t.Errorf("grace year repayment = %v, expected 0", first.LoanRepayment)
	}
	if !approxEqual(first.InterestPayment, 96_000_000*1.75/100) {
		t.Errorf("grace year interest = %v, expected %v", first.InterestPayment, 96_000_000*1.75/100)
	}
	if !approxEqual(result.YearlyData[1].LoanRepayment, 9_600_000) {
		t.Errorf("year 2 repayment = %v, expected 9600000", result.YearlyData[1].LoanRepayment)
	}
	if !approxEqual(result.YearlyData[10].LoanRepayment, 9_600_000) {
		t.Errorf("year 11 repayment = %v, expected 9600000", result.YearlyData[10].LoanRepayment)
	}
	if y := result.YearlyData[11]; y.LoanRepayment != 0 || y.InterestPayment != 0 {
		t.Errorf("year 12: expected retired loan, got %v/%v", y.LoanRepayment, y.InterestPayment)
	}
}

func TestCalculateZeroGenerationNeverPaysBack(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Input)
	}{
		{"zero capacity", func(in *Input) { in.CapacityKW = 0 }},
		{"zero peak hours", func(in *Input) { in.PeakHours = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := bankLoanInput()
			tt.modify(&in)

			result, err := Calculate(in)
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}

			previous := -result.InitialCost
			for _, y := range result.YearlyData {
				if y.Generation != 0 || y.TotalRevenue != 0 {
					t.Fatalf("year %d: expected no revenue, got %v", y.Year, y.TotalRevenue)
				}
				if y.NetProfit >= 0 {
					t.Fatalf("year %d: expected a loss, got %v", y.Year, y.NetProfit)
				}
				if y.Cumulative >= previous {
					t.Fatalf("year %d: cumulative %v did not decrease from %v", y.Year, y.Cumulative, previous)
				}
				previous = y.Cumulative
			}
			if result.PaybackPeriod != 0 {
				t.Errorf("PaybackPeriod = %v, expected 0", result.PaybackPeriod)
			}
			if result.TotalProfit20y >= 0 {
				t.Errorf("TotalProfit20y = %v, expected negative", result.TotalProfit20y)
			}
		})
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	in := inputFor(t, financing.GovernmentLoan)
	first, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	second, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical results for identical input")
	}
}

func TestCalculateCostEscalation(t *testing.T) {
	in := bankLoanInput()
	flat, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	for _, y := range flat.YearlyData {
		if y.MaintenanceCost != 500000 || y.MonitoringCost != 300000 {
			t.Fatalf("year %d: expected flat costs, got %v/%v", y.Year, y.MaintenanceCost, y.MonitoringCost)
		}
	}

	in.CostEscalationRate = 0.02
	escalated, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if escalated.YearlyData[0].MaintenanceCost != 500000 {
		t.Errorf("year 1 maintenance = %v, expected 500000", escalated.YearlyData[0].MaintenanceCost)
	}
	if !approxEqual(escalated.YearlyData[1].MaintenanceCost, 510000) {
		t.Errorf("year 2 maintenance = %v, expected 510000", escalated.YearlyData[1].MaintenanceCost)
	}
	if escalated.TotalProfit20y >= flat.TotalProfit20y {
		t.Error("expected escalating costs to reduce total profit")
	}
}

func TestCalculateEqualInstallment(t *testing.T) {
	in := bankLoanInput()
	in.RepaymentMethod = financing.EqualInstallment

	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	first := result.YearlyData[0].LoanRepayment + result.YearlyData[0].InterestPayment
	for _, y := range result.YearlyData[1:10] {
		if !approxEqual(y.LoanRepayment+y.InterestPayment, first) {
			t.Fatalf("year %d: installment %v, expected %v", y.Year, y.LoanRepayment+y.InterestPayment, first)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Input)
		field   string
		wantErr bool
	}{
		{"valid", func(in *Input) {}, "", false},
		{"zero capacity accepted", func(in *Input) { in.CapacityKW = 0 }, "", false},
		{"negative degradation accepted", func(in *Input) { in.DegradationRate = -0.01 }, "", false},
		{"zero prices accepted", func(in *Input) { in.SMPPrice = 0; in.RECPrice = 0 }, "", false},
		{"negative investment", func(in *Input) { in.TotalInvestment = -1 }, "totalInvestment", true},
		{"NaN capacity", func(in *Input) { in.CapacityKW = math.NaN() }, "capacityKw", true},
		{"infinite price", func(in *Input) { in.SMPPrice = math.Inf(1) }, "smpPrice", true},
		{"self funding above one", func(in *Input) { in.SelfFundingRate = 1.2 }, "selfFundingRate", true},
		{"negative loan period", func(in *Input) { in.LoanPeriod = -1 }, "loanPeriod", true},
		{"negative grace period", func(in *Input) { in.GracePeriod = -1 }, "gracePeriod", true},
		{"unknown financing", func(in *Input) { in.FinancingType = "LEASE" }, "financingType", true},
		{"empty financing", func(in *Input) { in.FinancingType = "" }, "financingType", true},
		{"unknown repayment", func(in *Input) { in.RepaymentMethod = "BULLET" }, "repaymentMethod", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := bankLoanInput()
			tt.modify(&in)

			err := Validate(in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %s, expected %s", ve.Field, tt.field)
			}
			if _, calcErr := Calculate(in); calcErr == nil {
				t.Error("expected Calculate to reject the input")
			}
		})
	}
}

func TestValidateUnknownFinancingWrapsSentinel(t *testing.T) {
	in := bankLoanInput()
	in.FinancingType = "LEASE"
	if err := Validate(in); !errors.Is(err, financing.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestCalculateRepaymentMethodCaseInsensitive(t *testing.T) {
	canonical := bankLoanInput()
	canonical.RepaymentMethod = financing.EqualInstallment
	want, err := Calculate(canonical)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	for _, tag := range []string{"equal_installment", "Equal_Installment", " EQUAL_INSTALLMENT "} {
		t.Run(tag, func(t *testing.T) {
			in := bankLoanInput()
			in.RepaymentMethod = financing.RepaymentMethod(tag)
			got, err := Calculate(in)
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("year 1 repayment = %.2f, expected the equal-installment %.2f",
					got.YearlyData[0].LoanRepayment, want.YearlyData[0].LoanRepayment)
			}
			if approxEqual(got.YearlyData[0].LoanRepayment, 9_600_000) {
				t.Error("mixed-case tag fell back to equal principal")
			}
		})
	}
}

func TestCalculateRejectsOverflow(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Input)
	}{
		{"huge capacity", func(in *Input) { in.CapacityKW = 1e306 }},
		{"huge smp price", func(in *Input) { in.SMPPrice = math.MaxFloat64 }},
		{"huge maintenance cost", func(in *Input) { in.MaintenanceCost = math.MaxFloat64 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := bankLoanInput()
			tt.modify(&in)

			if err := Validate(in); err != nil {
				t.Fatalf("Validate() error = %v, expected finite input to pass", err)
			}
			_, err := Calculate(in)
			if !IsValidationError(err) {
				t.Fatalf("Calculate() error = %v, expected a validation error", err)
			}
		})
	}
}
