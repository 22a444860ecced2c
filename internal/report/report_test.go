package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/solardesk/profit-forecast/internal/analysis"
	"github.com/solardesk/profit-forecast/pkg/financing"
)

func bankAnalysis(t *testing.T) (analysis.Input, analysis.Result) {
	t.Helper()
	p := analysis.Project{
		CapacityKW:      100,
		TotalInvestment: 120000000,
		PeakHours:       3.7,
		DegradationRate: 0.008,
		SMPPrice:        120,
		RECPrice:        40000,
		RECWeight:       1.0,
		MaintenanceCost: 500000,
		MonitoringCost:  300000,
	}
	d, err := financing.DefaultsFor(financing.BankLoan, p.TotalInvestment)
	if err != nil {
		t.Fatalf("DefaultsFor() error = %v", err)
	}
	in := analysis.BuildInput(p, d, financing.EqualPrincipal)
	result, err := analysis.Calculate(in)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	return in, result
}

func TestRender(t *testing.T) {
	in, result := bankAnalysis(t)

	var buf bytes.Buffer
	if err := Render(&buf, "Warehouse roof", in, result); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
	}
	if !bytes.Contains(out, []byte("%%EOF")) {
		t.Error("PDF trailer missing")
	}
}

func TestRenderUndefinedMetrics(t *testing.T) {
	in, result := bankAnalysis(t)
	result.ROIDefined = false
	result.PaybackPeriod = 0

	var buf bytes.Buffer
	if err := Render(&buf, "No recovery", in, result); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty output")
	}
}

func TestRenderWithoutYearlyData(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "Empty", analysis.Input{}, analysis.Result{})
	if !errors.Is(err, ErrNoYearlyData) {
		t.Fatalf("expected ErrNoYearlyData, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("expected nothing written")
	}
}
