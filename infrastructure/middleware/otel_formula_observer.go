package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

var _ FormulaObserver = (*OTelFormulaObserver)(nil)

// OTelFormulaObserver implements FormulaObserver using OpenTelemetry
// tracing. It opens one span per evaluation and forwards outcome, latency
// and value to an optional MetricsCollector.
type OTelFormulaObserver struct {
	tracer  trace.Tracer
	metrics ports.MetricsCollector
}

// OTelOption configures an OTelFormulaObserver.
type OTelOption func(*OTelFormulaObserver)

// WithTracer replaces the tracer obtained from the global provider.
func WithTracer(tracer trace.Tracer) OTelOption {
	return func(o *OTelFormulaObserver) { o.tracer = tracer }
}

// NewOTelFormulaObserver creates a new OpenTelemetry formula observer.
func NewOTelFormulaObserver(metrics ports.MetricsCollector, opts ...OTelOption) *OTelFormulaObserver {
	o := &OTelFormulaObserver{
		tracer:  otel.Tracer("scout-formula"),
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// BeforeEvaluate implements the FormulaObserver interface by starting a
// span for the evaluation.
func (o *OTelFormulaObserver) BeforeEvaluate(ctx context.Context, formula string, entity domain.EntityID) context.Context {
	ctx, _ = o.tracer.Start(ctx, "Formula.Evaluate", trace.WithAttributes(
		attribute.String("formula.name", formula),
		attribute.String("formula.entity", string(entity)),
	))
	return ctx
}

// AfterEvaluate implements the FormulaObserver interface. It finalizes the
// span and records metrics. A missing-data outcome is an expected result
// and does not mark the span as failed.
func (o *OTelFormulaObserver) AfterEvaluate(
	ctx context.Context,
	formula string,
	entity domain.EntityID,
	value float64,
	elapsed time.Duration,
	err error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	labels := map[string]string{"formula": formula}
	if o.metrics != nil {
		o.metrics.RecordLatency(MetricFormulaLatency, elapsed, labels)
	}

	status := evaluationStatus(err)
	labels["status"] = status
	if o.metrics != nil {
		o.metrics.RecordCounter(MetricFormulaEvaluations, 1, labels)
	}

	switch status {
	case "no_data":
		span.AddEvent("formula.no_data", trace.WithAttributes(
			attribute.String("formula.entity", string(entity)),
		))
		span.SetStatus(codes.Unset, "")
	case "error":
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	default:
		span.SetAttributes(attribute.Float64("formula.value", value))
		span.SetStatus(codes.Ok, "")
		if o.metrics != nil {
			o.metrics.RecordHistogram(MetricFormulaValue, value, map[string]string{"formula": formula})
		}
	}
}

func evaluationStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNoData), errors.Is(err, domain.ErrInsufficientData):
		return "no_data"
	default:
		return "error"
	}
}
