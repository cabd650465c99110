package oteladapters

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
)

// MetricsCollector implements eventstore.ContextualMetricsCollector on the OpenTelemetry metrics API.
// Instruments are created on first use and cached by name:
//   - RecordDuration -> Float64Histogram in seconds
//   - IncrementCounter -> Int64Counter
//   - RecordValue -> Float64Counter for names ending in "_total", Float64Gauge otherwise
type MetricsCollector struct {
	meter metric.Meter

	mu            sync.Mutex
	histograms    map[string]metric.Float64Histogram
	counters      map[string]metric.Int64Counter
	valueCounters map[string]metric.Float64Counter
	gauges        map[string]metric.Float64Gauge
}

// NewMetricsCollector creates a collector on meter, usually from the global MeterProvider.
func NewMetricsCollector(meter metric.Meter) *MetricsCollector {
	return &MetricsCollector{
		meter:         meter,
		histograms:    make(map[string]metric.Float64Histogram),
		counters:      make(map[string]metric.Int64Counter),
		valueCounters: make(map[string]metric.Float64Counter),
		gauges:        make(map[string]metric.Float64Gauge),
	}
}

func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), metricName, duration, labels)
}

func (m *MetricsCollector) RecordDurationContext(ctx context.Context, metricName string, duration time.Duration, labels map[string]string) {
	histogram := m.histogram(metricName)
	if histogram == nil {
		return
	}

	histogram.Record(ctx, duration.Seconds(), metric.WithAttributes(attributes(labels)...))
}

func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), metricName, labels)
}

func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	counter := m.counter(metricName)
	if counter == nil {
		return
	}

	counter.Add(ctx, 1, metric.WithAttributes(attributes(labels)...))
}

func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), metricName, value, labels)
}

func (m *MetricsCollector) RecordValueContext(ctx context.Context, metricName string, value float64, labels map[string]string) {
	if strings.HasSuffix(metricName, "_total") {
		if counter := m.valueCounter(metricName); counter != nil && value >= 0 {
			counter.Add(ctx, value, metric.WithAttributes(attributes(labels)...))
		}

		return
	}

	if gauge := m.gauge(metricName); gauge != nil {
		gauge.Record(ctx, value, metric.WithAttributes(attributes(labels)...))
	}
}

func (m *MetricsCollector) histogram(name string) metric.Float64Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	if histogram, exists := m.histograms[name]; exists {
		return histogram
	}

	histogram, err := m.meter.Float64Histogram(name, metric.WithDescription(describe(name, "duration")), metric.WithUnit("s"))
	if err != nil {
		return nil
	}

	m.histograms[name] = histogram

	return histogram
}

func (m *MetricsCollector) counter(name string) metric.Int64Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if counter, exists := m.counters[name]; exists {
		return counter
	}

	counter, err := m.meter.Int64Counter(name, metric.WithDescription(describe(name, "counter")))
	if err != nil {
		return nil
	}

	m.counters[name] = counter

	return counter
}

func (m *MetricsCollector) valueCounter(name string) metric.Float64Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if counter, exists := m.valueCounters[name]; exists {
		return counter
	}

	counter, err := m.meter.Float64Counter(name, metric.WithDescription(describe(name, "total")))
	if err != nil {
		return nil
	}

	m.valueCounters[name] = counter

	return counter
}

func (m *MetricsCollector) gauge(name string) metric.Float64Gauge {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gauge, exists := m.gauges[name]; exists {
		return gauge
	}

	gauge, err := m.meter.Float64Gauge(name, metric.WithDescription(describe(name, "current value")))
	if err != nil {
		return nil
	}

	m.gauges[name] = gauge

	return gauge
}

// describe names the component from the metric prefix, e.g. "library operation duration".
func describe(name, kind string) string {
	component, _, found := strings.Cut(name, "_")
	if !found {
		return kind
	}

	switch component {
	case "eventstore":
		return "journal operation " + kind
	case "library":
		return "library operation " + kind
	default:
		return component + " " + kind
	}
}

func attributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}

var _ eventstore.ContextualMetricsCollector = (*MetricsCollector)(nil)
