package insight

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type insightMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var insightMetricsInit = false
var metrics insightMetrics

func ensureInsightMetrics() {
	if insightMetricsInit {
		return
	}
	meter := otel.Meter("github.com/medreportai/companion/insight")

	requestCount, err := meter.Int64Counter(
		"ai.insight.request.count",
		metric.WithDescription("Number of insight backend requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.insight.request.duration",
		metric.WithDescription("Insight backend request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.insight.request.errors",
		metric.WithDescription("Number of insight backend request errors"),
	)
	if err != nil {
		return
	}

	metrics = insightMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
	insightMetricsInit = true
}

func recordInsightMetric(ctx context.Context, operation string, statusCode int, duration time.Duration, err error) {
	ensureInsightMetrics()
	if !insightMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "insight"),
		attribute.String("ai.operation", operation),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	metrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		metrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
