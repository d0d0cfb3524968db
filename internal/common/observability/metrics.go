package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability exposes OpenTelemetry instruments for ranking operations
// through the default Prometheus registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	rankCounter   otelmetric.Int64Counter
	rankDuration  otelmetric.Float64Histogram
	resultCount   otelmetric.Int64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(provider, serviceName)
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	rankCounter, _ := meter.Int64Counter(
		"ranking.requests",
		otelmetric.WithDescription("Number of ranking operations"),
	)

	rankDuration, _ := meter.Float64Histogram(
		"ranking.duration",
		otelmetric.WithDescription("Ranking operation duration"),
		otelmetric.WithUnit("ms"),
	)

	resultCount, _ := meter.Int64Histogram(
		"ranking.results",
		otelmetric.WithDescription("Universities returned per ranking operation"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		rankCounter:   rankCounter,
		rankDuration:  rankDuration,
		resultCount:   resultCount,
	}
}

// RecordRanking records one finished ranking operation.
func (o *Observability) RecordRanking(ctx context.Context, operation, status string, duration time.Duration, results int) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	if o.rankCounter != nil {
		o.rankCounter.Add(ctx, 1, attrs)
	}
	if o.rankDuration != nil {
		o.rankDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
	if o.resultCount != nil && status == "success" {
		o.resultCount.Record(ctx, int64(results), otelmetric.WithAttributes(
			attribute.String("operation", operation),
		))
	}
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
