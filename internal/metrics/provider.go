// Package metrics exposes parceltrack instrumentation through OpenTelemetry with a
// Prometheus exporter: use case operations, HTTP traffic, carrier requests and
// reconciliation passes.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Provider owns the meter provider and the private Prometheus registry it exports to.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *prometheus.Registry
}

// NewProvider creates a Provider. namespace prefixes every instrument name and is
// reported as service.name.
func NewProvider(namespace string) (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(resource.NewSchemaless(
			attribute.String("service.name", namespace),
		)),
	)

	return &Provider{meterProvider: meterProvider, registry: registry}, nil
}

// Handler serves the registry in Prometheus text or OpenMetrics format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// MeterProvider returns the provider used to build instruments.
func (p *Provider) MeterProvider() *sdkmetric.MeterProvider {
	return p.meterProvider
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}

// instrumentPair is a counter and a seconds histogram describing the same event.
type instrumentPair struct {
	counter metric.Int64Counter
	seconds metric.Float64Histogram
}

// newInstrumentPair creates "<namespace>_<name>_total" and
// "<namespace>_<name>_duration_seconds".
func newInstrumentPair(meter metric.Meter, namespace, name, subject, unit string) (instrumentPair, error) {
	counter, err := meter.Int64Counter(
		fmt.Sprintf("%s_%s_total", namespace, name),
		metric.WithDescription("Total number of "+subject),
		metric.WithUnit(unit),
	)
	if err != nil {
		return instrumentPair{}, fmt.Errorf("failed to create %s counter: %w", name, err)
	}

	seconds, err := meter.Float64Histogram(
		fmt.Sprintf("%s_%s_duration_seconds", namespace, name),
		metric.WithDescription("Duration of "+subject+" in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return instrumentPair{}, fmt.Errorf("failed to create %s duration histogram: %w", name, err)
	}

	return instrumentPair{counter: counter, seconds: seconds}, nil
}
