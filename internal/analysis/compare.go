package analysis

import (
	"context"
	"fmt"

	"github.com/solardesk/profit-forecast/internal/metrics"
	"github.com/solardesk/profit-forecast/pkg/financing"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CompareOptions adjusts the default financing parameters used in a comparison.
type CompareOptions struct {
	// FactoringFeeRate overrides the default factoring fee when set.
	FactoringFeeRate *float64                  `json:"factoringFeeRate,omitempty"`
	BankInterestRate *float64                  `json:"bankInterestRate,omitempty"`
	RepaymentMethod  financing.RepaymentMethod `json:"repaymentMethod,omitempty"`
}

// Scenario is the analysis of one financing structure within a comparison.
type Scenario struct {
	Input  Input  `json:"input"`
	Result Result `json:"result"`
}

// Comparison holds one scenario per financing type in financing.Types order.
type Comparison struct {
	Scenarios []Scenario `json:"scenarios"`

	// Best* name the winning financing type, or are empty when no scenario
	// qualifies (e.g. no scenario pays back within the horizon).
	BestByProfit   financing.Type `json:"bestByProfit"`
	BestByROI      financing.Type `json:"bestByRoi,omitempty"`
	FastestPayback financing.Type `json:"fastestPayback,omitempty"`
}

// ScenarioInputs builds one input per financing type from shared project
// figures, starting from each type's defaults.
func ScenarioInputs(p Project, opts CompareOptions) ([]Input, error) {
	types := financing.Types()
	inputs := make([]Input, 0, len(types))
	for _, t := range types {
		d, err := financing.DefaultsFor(t, p.TotalInvestment)
		if err != nil {
			return nil, err
		}
		if t == financing.Factoring && opts.FactoringFeeRate != nil {
			d.FactoringFeeRate = *opts.FactoringFeeRate
		}
		if t == financing.BankLoan && opts.BankInterestRate != nil {
			d.InterestRate = *opts.BankInterestRate
		}
		inputs = append(inputs, BuildInput(p, d, opts.RepaymentMethod))
	}
	return inputs, nil
}

// Compare analyses the project under every financing type. The calculations
// are independent and run concurrently.
func (e *Engine) Compare(ctx context.Context, p Project, opts CompareOptions) (Comparison, error) {
	ctx, span := e.tracer.Start(ctx, "analysis.Compare")
	defer span.End()

	inputs, err := ScenarioInputs(p, opts)
	if err != nil {
		metrics.Comparisons.WithLabelValues("error").Inc()
		return Comparison{}, err
	}

	scenarios := make([]Scenario, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			result, err := e.Calculate(gctx, in)
			if err != nil {
				return fmt.Errorf("%s: %w", in.FinancingType, err)
			}
			scenarios[i] = Scenario{Input: in, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.Comparisons.WithLabelValues("error").Inc()
		e.logger.Debug("comparison failed",
			zap.String("op", "analysis.Compare"),
			zap.Error(err),
		)
		return Comparison{}, err
	}

	metrics.Comparisons.WithLabelValues("success").Inc()
	return Rank(scenarios), nil
}

// Rank picks the best scenarios by total profit, ROI and payback. Ties keep
// the earlier scenario.
func Rank(scenarios []Scenario) Comparison {
	c := Comparison{Scenarios: scenarios}

	var bestProfit, bestROI, fastest *Scenario
	for i := range scenarios {
		s := &scenarios[i]
		if bestProfit == nil || s.Result.TotalProfit20y > bestProfit.Result.TotalProfit20y {
			bestProfit = s
		}
		if s.Result.ROIDefined && (bestROI == nil || s.Result.ROI > bestROI.Result.ROI) {
			bestROI = s
		}
		if s.Result.Recovered() && (fastest == nil || s.Result.PaybackPeriod < fastest.Result.PaybackPeriod) {
			fastest = s
		}
	}

	if bestProfit != nil {
		c.BestByProfit = bestProfit.Input.FinancingType
	}
	if bestROI != nil {
		c.BestByROI = bestROI.Input.FinancingType
	}
	if fastest != nil {
		c.FastestPayback = fastest.Input.FinancingType
	}
	return c
}
