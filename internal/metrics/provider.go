// Package metrics records business metrics with OpenTelemetry and exposes them in Prometheus format.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider owns the meter provider and the registry the exporter writes to
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *prometheus.Registry
}

// NewProvider creates a meter provider backed by a private Prometheus registry
func NewProvider() (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	return &Provider{
		meterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
		registry:      registry,
	}, nil
}

// Handler serves the registry for scraping
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// MeterProvider returns the OpenTelemetry meter provider
func (p *Provider) MeterProvider() *sdkmetric.MeterProvider {
	return p.meterProvider
}

// Shutdown flushes and stops the meter provider
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.meterProvider.Shutdown(ctx)
}
