package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// BusinessMetrics records counts and latencies of auth operations
type BusinessMetrics interface {
	Record(ctx context.Context, operation, outcome string, duration time.Duration)
}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
}

// NewBusinessMetrics creates the instruments under namespace, e.g. sentinel_operations_total
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operations, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of auth operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durations, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of auth operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &businessMetrics{operations: operations, durations: durations}, nil
}

func (b *businessMetrics) Record(ctx context.Context, operation, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)

	b.operations.Add(ctx, 1, attrs)
	b.durations.Record(ctx, duration.Seconds(), attrs)
}

// NoOpBusinessMetrics discards everything; used when metrics are disabled
type NoOpBusinessMetrics struct{}

func (NoOpBusinessMetrics) Record(ctx context.Context, operation, outcome string, duration time.Duration) {}
