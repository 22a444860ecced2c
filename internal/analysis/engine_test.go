package analysis

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/solardesk/profit-forecast/internal/metrics"
	"go.uber.org/zap"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func calculationLabelValues() map[string]bool {
	ch := make(chan prometheus.Metric, 64)
	go func() {
		metrics.Calculations.Collect(ch)
		close(ch)
	}()

	values := make(map[string]bool)
	for metric := range ch {
		var m dto.Metric
		if err := metric.Write(&m); err != nil {
			continue
		}
		for _, label := range m.GetLabel() {
			values[label.GetValue()] = true
		}
	}
	return values
}

func TestEngineCalculateUnknownTypeMetricLabel(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)
	unknown := metrics.Calculations.WithLabelValues(unknownFinancingLabel, "validation_error")
	before := counterValue(t, unknown)

	in := bankLoanInput()
	in.FinancingType = "LEASE-7f3a"
	if _, err := engine.Calculate(context.Background(), in); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if got := counterValue(t, unknown); got != before+1 {
		t.Errorf("unknown financing counter = %v, expected %v", got, before+1)
	}
	if calculationLabelValues()["LEASE-7f3a"] {
		t.Error("caller-supplied financing type leaked into metric labels")
	}
}

func TestEngineCalculateKnownTypeMetricLabel(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)
	success := metrics.Calculations.WithLabelValues("BANK_LOAN", "success")
	before := counterValue(t, success)

	if _, err := engine.Calculate(context.Background(), bankLoanInput()); err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if got := counterValue(t, success); got != before+1 {
		t.Errorf("bank loan success counter = %v, expected %v", got, before+1)
	}
}
