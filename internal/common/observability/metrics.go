package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"creator-score/internal/common/logger"
)

// Metrics exposes OpenTelemetry instruments for the scoring pipeline, exported
// through the shared Prometheus registry.
type Metrics struct {
	provider *sdkmetric.MeterProvider
	logger   logger.Logger

	tasksProcessed metric.Int64Counter
	taskDuration   metric.Float64Histogram
	stageDuration  metric.Float64Histogram
}

// NewMetrics wires an otel meter provider backed by the default Prometheus
// registerer, so /metrics serves both instrument families.
func NewMetrics(log logger.Logger) (*Metrics, error) {
	exporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", "creator-score"))
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter("creator-score")

	tasksProcessed, err := meter.Int64Counter(
		"scoring_tasks_processed",
		metric.WithDescription("Number of scoring tasks processed by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks counter: %w", err)
	}

	taskDuration, err := meter.Float64Histogram(
		"scoring_task_duration_seconds",
		metric.WithDescription("End-to-end scoring task duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	stageDuration, err := meter.Float64Histogram(
		"scoring_stage_duration_seconds",
		metric.WithDescription("Per-stage scoring pipeline duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage histogram: %w", err)
	}

	return &Metrics{
		provider:       provider,
		logger:         log,
		tasksProcessed: tasksProcessed,
		taskDuration:   taskDuration,
		stageDuration:  stageDuration,
	}, nil
}

// RecordTaskProcessed records a finished task with its outcome label.
func (m *Metrics) RecordTaskProcessed(ctx context.Context, outcome string) {
	m.tasksProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// RecordTaskDuration records the full task runtime.
func (m *Metrics) RecordTaskDuration(ctx context.Context, d time.Duration, outcome string) {
	m.taskDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// RecordStageDuration records one pipeline stage runtime.
func (m *Metrics) RecordStageDuration(ctx context.Context, stage string, d time.Duration) {
	m.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
	))
}

// Shutdown flushes the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
