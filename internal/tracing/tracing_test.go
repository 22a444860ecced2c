package tracing

import (
	"context"
	"testing"
)

func TestInitWithoutEndpoint(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Init(ctx, nil, "profit-forecast-test", "test", "")
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, span := Tracer().Start(ctx, "test-span")
	if !span.SpanContext().IsValid() {
		t.Error("expected a recording span after Init")
	}
	span.End()

	if err := shutdown(ctx); err != nil {
		t.Errorf("shutdown error = %v", err)
	}
}
