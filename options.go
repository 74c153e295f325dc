package rill

import "github.com/ygrebnov/rill/metrics"

// Config carries the ambient collaborators a pipeline construction
// point (OrderedMergeAll, Share, Scan, Subscribe, SubscribeLatest) may
// be wired with:
// a Logger for non-fatal internal warnings, a metrics.Provider for
// instrumentation, and tuning knobs specific to that constructor.
// Follows the familiar Config/Option pairing: one struct of plain
// fields plus a functional-options builder over it, rather than two
// competing constructors — rill has no Config-based constructor to
// deprecate, so only the Option form survives here.
type Config struct {
	// Logger receives warnings for recovered internal conditions (a
	// panicking accumulator callback in Scan, see WithLogger). Nil is
	// a valid, silent default (see noopLogger).
	Logger Logger

	// Metrics receives instrument registrations for merge queue depth,
	// Share subscriber counts, and onNext callback latency. Nil defaults
	// to metrics.NoopProvider.
	Metrics metrics.Provider

	// ErrorTagging, when true, wraps every error observed on a merge
	// leg with source-index and correlation-ID metadata (see
	// error_tagging.go) before it reaches the merged output.
	ErrorTagging bool

	// MergeBufferSize sets the total capacity of OrderedMerge's internal
	// arrivals channel, shared by all sources. Zero means the merge picks
	// its own default (one slot per source, enough to never block a
	// source's single outstanding pull).
	MergeBufferSize int

	// FanoutLimit bounds how many subscriber sends Share's broadcast
	// runs concurrently per item; zero means unbounded.
	FanoutLimit int
}

// Option mutates a Config under construction. Used by OrderedMergeAll,
// Share, Scan, Subscribe, and SubscribeLatest.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Logger:  noopLogger{},
		Metrics: metrics.NewNoopProvider(),
	}
}

func buildConfig(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoopProvider()
	}
	return cfg
}

// WithLogger wires a Logger for internal warnings (e.g. a recovered
// panic in Scan's accumulator callback).
func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMetricsProvider wires a metrics.Provider for instrumentation.
func WithMetricsProvider(p metrics.Provider) Option {
	return func(c *Config) { c.Metrics = p }
}

// WithErrorTagging enables source-index/correlation-ID error tagging
// on a multi-input operator built from OrderedMerge.
func WithErrorTagging() Option {
	return func(c *Config) { c.ErrorTagging = true }
}

// WithMergeBufferSize sets the capacity of OrderedMerge's shared
// arrivals buffer.
func WithMergeBufferSize(n int) Option {
	return func(c *Config) { c.MergeBufferSize = n }
}

// WithFanoutLimit bounds Share's concurrent per-item broadcast fan-out.
func WithFanoutLimit(n int) Option {
	return func(c *Config) { c.FanoutLimit = n }
}
