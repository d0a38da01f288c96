package telemetry

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/mnemo-ai/engine/telemetry"

// Observer holds the configured telemetry providers and the metric
// instruments derived from them. A zero Observer is valid and records
// nothing.
type Observer struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics *instruments
}

// Option configures an Observer.
type Option func(*observerConfig)

type observerConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	logger         *slog.Logger
}

// WithTracerProvider enables span creation around relevance queries.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *observerConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider enables the store metric instruments.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *observerConfig) {
		c.meterProvider = mp
	}
}

// WithLogger sets the logger used for instrument creation failures.
// Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *observerConfig) {
		c.logger = logger
	}
}

// instruments holds the metric instruments for an observed store. Created
// once during NewObserver and reused for every operation.
type instruments struct {
	// interactions increments for each recorded interaction
	interactions metric.Int64Counter

	// evictions increments when recording displaces the oldest interaction
	evictions metric.Int64Counter

	// reinforcements increments for each knowledge graph reinforcement
	reinforcements metric.Int64Counter

	// compressedDropped counts interactions dropped by compression
	compressedDropped metric.Int64Counter

	// queryDuration records relevance query latency in milliseconds
	queryDuration metric.Float64Histogram

	// queryResults records the number of results per relevance query
	queryResults metric.Int64Histogram
}

// NewObserver builds an Observer from the given providers. With no options
// the observer is a no-op.
func NewObserver(opts ...Option) (*Observer, error) {
	var cfg observerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	obs := &Observer{logger: cfg.logger}
	if obs.logger == nil {
		obs.logger = slog.Default()
	}

	if cfg.tracerProvider != nil {
		obs.tracer = cfg.tracerProvider.Tracer(instrumentationName)
	}
	if cfg.meterProvider != nil {
		meter := cfg.meterProvider.Meter(instrumentationName)
		metrics, err := newInstruments(meter)
		if err != nil {
			return nil, err
		}
		obs.metrics = metrics
	}
	return obs, nil
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	m := &instruments{}
	var err error

	m.interactions, err = meter.Int64Counter(
		"memory.interactions",
		metric.WithDescription("Number of interactions recorded"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create interactions counter: %w", err)
	}

	m.evictions, err = meter.Int64Counter(
		"memory.evictions",
		metric.WithDescription("Number of interactions evicted at capacity"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create evictions counter: %w", err)
	}

	m.reinforcements, err = meter.Int64Counter(
		"memory.reinforcements",
		metric.WithDescription("Number of knowledge graph reinforcements"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create reinforcements counter: %w", err)
	}

	m.compressedDropped, err = meter.Int64Counter(
		"memory.compression.dropped",
		metric.WithDescription("Number of interactions dropped by compression"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create compression counter: %w", err)
	}

	m.queryDuration, err = meter.Float64Histogram(
		"memory.query.duration",
		metric.WithDescription("Relevance query duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create query duration histogram: %w", err)
	}

	m.queryResults, err = meter.Int64Histogram(
		"memory.query.results",
		metric.WithDescription("Results returned per relevance query"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create query results histogram: %w", err)
	}

	return m, nil
}

func (o *Observer) enabled() bool {
	return o != nil && (o.tracer != nil || o.metrics != nil)
}
