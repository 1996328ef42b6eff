// Package telemetry records fetch lifecycle metrics with OpenTelemetry and
// exposes them for Prometheus scraping.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
)

// DefaultMeterName names the meter when none is given.
const DefaultMeterName = "fetchstore"

// Metrics implements fetch.Observer. Each instance owns its Prometheus
// registry, so several clients in one process do not collide.
type Metrics struct {
	registry *prom.Registry
	provider *sdkmetric.MeterProvider
	meter    metric.Meter

	started  metric.Int64Counter
	finished metric.Int64Counter
	aborted  metric.Int64Counter
	inFlight metric.Int64UpDownCounter
	duration metric.Float64Histogram
}

var _ fetch.Observer = (*Metrics)(nil)

// New creates the meter provider, the Prometheus exporter and all instruments.
func New(meterName string) (*Metrics, error) {
	if meterName == "" {
		meterName = DefaultMeterName
	}
	registry := prom.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	m := &Metrics{
		registry: registry,
		provider: provider,
		meter:    provider.Meter(meterName),
	}
	if err := m.instruments(); err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *Metrics) instruments() error {
	var err error
	m.started, err = m.meter.Int64Counter(
		"fetch.started",
		metric.WithDescription("Fetches handed to the transport"),
	)
	if err != nil {
		return fmt.Errorf("telemetry: fetch.started counter: %w", err)
	}

	m.finished, err = m.meter.Int64Counter(
		"fetch.requests",
		metric.WithDescription("Completed fetches by method and status"),
	)
	if err != nil {
		return fmt.Errorf("telemetry: fetch.requests counter: %w", err)
	}

	m.aborted, err = m.meter.Int64Counter(
		"fetch.aborted",
		metric.WithDescription("Fetches aborted by timeout or caller"),
	)
	if err != nil {
		return fmt.Errorf("telemetry: fetch.aborted counter: %w", err)
	}

	m.inFlight, err = m.meter.Int64UpDownCounter(
		"fetch.in_flight",
		metric.WithDescription("Fetches started but not yet finished"),
	)
	if err != nil {
		return fmt.Errorf("telemetry: fetch.in_flight gauge: %w", err)
	}

	m.duration, err = m.meter.Float64Histogram(
		"fetch.duration",
		metric.WithDescription("Fetch duration until status is known"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return fmt.Errorf("telemetry: fetch.duration histogram: %w", err)
	}
	return nil
}

func (m *Metrics) FetchStarted(method fetch.Method) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("method", string(method)))
	m.started.Add(ctx, 1, attrs)
	m.inFlight.Add(ctx, 1, attrs)
}

func (m *Metrics) FetchFinished(method fetch.Method, code status.Code, elapsed time.Duration) {
	ctx := context.Background()
	m.inFlight.Add(ctx, -1, metric.WithAttributes(attribute.String("method", string(method))))
	attrs := metric.WithAttributes(
		attribute.String("method", string(method)),
		attribute.String("status", code.String()),
		attribute.String("outcome", outcome(code)),
	)
	m.finished.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) FetchAborted(method fetch.Method) {
	m.aborted.Add(context.Background(), 1, metric.WithAttributes(attribute.String("method", string(method))))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

func outcome(code status.Code) string {
	switch {
	case code.IsSuccess():
		return "success"
	case code.IsLocal():
		return "local"
	default:
		return "remote"
	}
}
