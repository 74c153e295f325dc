package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OtelProvider bridges Provider onto an OpenTelemetry metric.Meter, so a
// rill pipeline can be wired into an existing OTel SDK pipeline instead
// of (or alongside) BasicProvider. Instruments are created once per name
// and cached, matching BasicProvider's once-per-name semantics.
type OtelProvider struct {
	meter      metric.Meter
	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	updowns    map[string]metric.Int64UpDownCounter
	histograms map[string]metric.Float64Histogram
}

// NewOtelProvider constructs a Provider backed by meter. meter is typically
// obtained from an otel/sdk/metric MeterProvider.
func NewOtelProvider(meter metric.Meter) *OtelProvider {
	return &OtelProvider{
		meter:      meter,
		counters:   make(map[string]metric.Int64Counter),
		updowns:    make(map[string]metric.Int64UpDownCounter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

func otelOptions(cfg InstrumentConfig) []metric.InstrumentOption {
	var opts []metric.InstrumentOption
	if cfg.Description != "" {
		opts = append(opts, metric.WithDescription(cfg.Description))
	}
	if cfg.Unit != "" {
		opts = append(opts, metric.WithUnit(cfg.Unit))
	}
	return opts
}

func int64CounterOptions(cfg InstrumentConfig) []metric.Int64CounterOption {
	opts := otelOptions(cfg)
	out := make([]metric.Int64CounterOption, len(opts))
	for i, o := range opts {
		out[i] = o
	}
	return out
}

func int64UpDownCounterOptions(cfg InstrumentConfig) []metric.Int64UpDownCounterOption {
	opts := otelOptions(cfg)
	out := make([]metric.Int64UpDownCounterOption, len(opts))
	for i, o := range opts {
		out[i] = o
	}
	return out
}

func float64HistogramOptions(cfg InstrumentConfig) []metric.Float64HistogramOption {
	opts := otelOptions(cfg)
	out := make([]metric.Float64HistogramOption, len(opts))
	for i, o := range opts {
		out[i] = o
	}
	return out
}

func attributesOf(cfg InstrumentConfig) metric.MeasurementOption {
	if len(cfg.Attributes) == 0 {
		return metric.WithAttributes()
	}
	kvs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
	for k, v := range cfg.Attributes {
		kvs = append(kvs, attribute.String(k, v))
	}
	return metric.WithAttributes(kvs...)
}

// Counter returns (creating once) an OTel-backed monotonic counter.
func (p *OtelProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.counters[name]; ok {
		return otelCounter{instrument: c}
	}
	cfg := applyOptions(opts)
	c, err := p.meter.Int64Counter(name, int64CounterOptions(cfg)...)
	if err != nil {
		return noopCounter{}
	}
	p.counters[name] = c
	return otelCounter{instrument: c, attrs: attributesOf(cfg)}
}

// UpDownCounter returns (creating once) an OTel-backed up/down counter.
func (p *OtelProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u, ok := p.updowns[name]; ok {
		return otelUpDownCounter{instrument: u}
	}
	cfg := applyOptions(opts)
	u, err := p.meter.Int64UpDownCounter(name, int64UpDownCounterOptions(cfg)...)
	if err != nil {
		return noopUpDownCounter{}
	}
	p.updowns[name] = u
	return otelUpDownCounter{instrument: u, attrs: attributesOf(cfg)}
}

// Histogram returns (creating once) an OTel-backed histogram.
func (p *OtelProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.histograms[name]; ok {
		return otelHistogram{instrument: h}
	}
	cfg := applyOptions(opts)
	h, err := p.meter.Float64Histogram(name, float64HistogramOptions(cfg)...)
	if err != nil {
		return noopHistogram{}
	}
	p.histograms[name] = h
	return otelHistogram{instrument: h, attrs: attributesOf(cfg)}
}

type otelCounter struct {
	instrument metric.Int64Counter
	attrs      metric.MeasurementOption
}

func (c otelCounter) Add(n int64) { c.instrument.Add(context.Background(), n, c.attrs) }

type otelUpDownCounter struct {
	instrument metric.Int64UpDownCounter
	attrs      metric.MeasurementOption
}

func (u otelUpDownCounter) Add(n int64) { u.instrument.Add(context.Background(), n, u.attrs) }

type otelHistogram struct {
	instrument metric.Float64Histogram
	attrs      metric.MeasurementOption
}

func (h otelHistogram) Record(v float64) { h.instrument.Record(context.Background(), v, h.attrs) }
