package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Metrics holds all cache engine metrics.
//
// All Record helpers are safe on a nil receiver and on a disabled
// (zero-value) Metrics, so callers never need to guard metric calls.
type Metrics struct {
	meter metric.Meter

	// Read path metrics
	Hits        metric.Int64Counter
	Misses      metric.Int64Counter
	StaleServes metric.Int64Counter

	// Lifecycle metrics
	Evictions   metric.Int64Counter
	Expirations metric.Int64Counter

	// Loader (single-flight) metrics
	LoaderCalls  metric.Int64Counter
	LoaderDedups metric.Int64Counter
	LoaderErrors metric.Int64Counter

	// Current resident entry count
	Entries metric.Int64Gauge

	// Prometheus exporter for HTTP handler
	exporter *prometheus.Exporter
}

// NewMetrics creates a new Metrics instance
func NewMetrics(serviceName string, enabled bool) (*Metrics, error) {
	if !enabled {
		return &Metrics{}, nil
	}

	// Create resource
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create Prometheus exporter
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	// Create meter provider
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	meter := provider.Meter(serviceName)

	m := &Metrics{
		meter:    meter,
		exporter: exporter,
	}

	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return m, nil
}

// initMetrics creates all metric instruments
func (m *Metrics) initMetrics() error {
	var err error

	if m.Hits, err = m.meter.Int64Counter(
		"cache_hits_total",
		metric.WithDescription("Number of reads served from the cache"),
	); err != nil {
		return err
	}

	if m.Misses, err = m.meter.Int64Counter(
		"cache_misses_total",
		metric.WithDescription("Number of reads that found no servable entry"),
	); err != nil {
		return err
	}

	if m.StaleServes, err = m.meter.Int64Counter(
		"cache_stale_serves_total",
		metric.WithDescription("Number of reads served past expiry via stale policies"),
	); err != nil {
		return err
	}

	if m.Evictions, err = m.meter.Int64Counter(
		"cache_evictions_total",
		metric.WithDescription("Number of entries removed by LRU eviction"),
	); err != nil {
		return err
	}

	if m.Expirations, err = m.meter.Int64Counter(
		"cache_expirations_total",
		metric.WithDescription("Number of entries removed by the reaper"),
	); err != nil {
		return err
	}

	if m.LoaderCalls, err = m.meter.Int64Counter(
		"cache_loader_calls_total",
		metric.WithDescription("Number of loader invocations started"),
	); err != nil {
		return err
	}

	if m.LoaderDedups, err = m.meter.Int64Counter(
		"cache_loader_dedups_total",
		metric.WithDescription("Number of loader results shared between coalesced callers"),
	); err != nil {
		return err
	}

	if m.LoaderErrors, err = m.meter.Int64Counter(
		"cache_loader_errors_total",
		metric.WithDescription("Number of loader invocations that failed"),
	); err != nil {
		return err
	}

	if m.Entries, err = m.meter.Int64Gauge(
		"cache_entries",
		metric.WithDescription("Current number of resident entries"),
	); err != nil {
		return err
	}

	return nil
}

// Handler returns the Prometheus HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// Enabled reports whether instruments were created
func (m *Metrics) Enabled() bool {
	return m != nil && m.exporter != nil
}

// Recording helpers

func (m *Metrics) RecordHit(ctx context.Context) {
	if m == nil || m.Hits == nil {
		return
	}
	m.Hits.Add(ctx, 1)
}

func (m *Metrics) RecordMiss(ctx context.Context) {
	if m == nil || m.Misses == nil {
		return
	}
	m.Misses.Add(ctx, 1)
}

func (m *Metrics) RecordStaleServe(ctx context.Context) {
	if m == nil || m.StaleServes == nil {
		return
	}
	m.StaleServes.Add(ctx, 1)
}

func (m *Metrics) RecordEviction(ctx context.Context) {
	if m == nil || m.Evictions == nil {
		return
	}
	m.Evictions.Add(ctx, 1)
}

func (m *Metrics) RecordExpirations(ctx context.Context, n int64) {
	if m == nil || m.Expirations == nil || n <= 0 {
		return
	}
	m.Expirations.Add(ctx, n)
}

func (m *Metrics) RecordLoaderCall(ctx context.Context) {
	if m == nil || m.LoaderCalls == nil {
		return
	}
	m.LoaderCalls.Add(ctx, 1)
}

func (m *Metrics) RecordLoaderDedup(ctx context.Context) {
	if m == nil || m.LoaderDedups == nil {
		return
	}
	m.LoaderDedups.Add(ctx, 1)
}

func (m *Metrics) RecordLoaderError(ctx context.Context) {
	if m == nil || m.LoaderErrors == nil {
		return
	}
	m.LoaderErrors.Add(ctx, 1)
}

func (m *Metrics) RecordEntries(ctx context.Context, n int64) {
	if m == nil || m.Entries == nil {
		return
	}
	m.Entries.Record(ctx, n)
}
