package analysis

import (
	"context"
	"time"

	"github.com/solardesk/profit-forecast/internal/metrics"
	"github.com/solardesk/profit-forecast/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const unknownFinancingLabel = "unknown"

// Engine runs calculations with logging, tracing and metrics around the pure
// Calculate function. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
	tracer trace.Tracer
}

// NewEngine creates an engine. A nil logger or tracer is replaced by a no-op.
func NewEngine(logger *zap.Logger, tracer trace.Tracer) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracer == nil {
		tracer = tracing.Tracer()
	}
	return &Engine{logger: logger, tracer: tracer}
}

// Calculate runs a single analysis.
func (e *Engine) Calculate(ctx context.Context, in Input) (Result, error) {
	_, span := e.tracer.Start(ctx, "analysis.Calculate")
	defer span.End()

	financingLabel := string(in.FinancingType)
	if !in.FinancingType.Valid() {
		// keeps caller-supplied tags out of metric label values
		financingLabel = unknownFinancingLabel
	}
	span.SetAttributes(
		attribute.String("financing_type", financingLabel),
		attribute.Float64("capacity_kw", in.CapacityKW),
		attribute.Float64("total_investment", in.TotalInvestment),
	)

	start := time.Now()
	result, err := Calculate(in)
	elapsed := time.Since(start)

	if err != nil {
		status := "error"
		if IsValidationError(err) {
			status = "validation_error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		metrics.Calculations.WithLabelValues(financingLabel, status).Inc()
		e.logger.Debug("analysis rejected",
			zap.String("op", "analysis.Calculate"),
			zap.String("financingType", string(in.FinancingType)),
			zap.Error(err),
		)
		return Result{}, err
	}

	span.SetAttributes(
		attribute.Float64("initial_cost", result.InitialCost),
		attribute.Float64("payback_period", result.PaybackPeriod),
		attribute.Float64("total_profit_20y", result.TotalProfit20y),
	)
	metrics.Calculations.WithLabelValues(financingLabel, "success").Inc()
	metrics.CalculationDuration.WithLabelValues(financingLabel).Observe(elapsed.Seconds())

	e.logger.Debug("analysis computed",
		zap.String("op", "analysis.Calculate"),
		zap.String("financingType", financingLabel),
		zap.Float64("initialCost", result.InitialCost),
		zap.Float64("paybackPeriod", result.PaybackPeriod),
		zap.Float64("totalProfit20y", result.TotalProfit20y),
		zap.Duration("duration", elapsed),
	)
	return result, nil
}
