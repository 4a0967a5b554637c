package lshdedup

import (
	"math"

	"github.com/hupe1980/lshdedup/dedup"
	"github.com/hupe1980/lshdedup/lsh"
	"github.com/hupe1980/lshdedup/shingle"
)

// DefaultThreshold is the similarity threshold of the batch tool.
const DefaultThreshold = 0.4

type options struct {
	config           lsh.Config
	threshold        *float64
	strategy         dedup.Strategy
	shingler         shingle.Shingler
	workers          int
	memoryLimit      int64
	logger           *Logger
	metricsCollector MetricsCollector
}

func defaultOptions() options {
	t := DefaultThreshold
	return options{
		config:           lsh.DefaultConfig(),
		threshold:        &t,
		strategy:         dedup.StrategyMerge,
		shingler:         shingle.Words(),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

func (o options) validate() error {
	if err := o.config.Validate(); err != nil {
		return translateError(err)
	}
	if o.threshold != nil && (math.IsNaN(*o.threshold) || *o.threshold < 0 || *o.threshold > 1) {
		return &ConfigError{Field: "threshold", Reason: "must be in [0, 1]"}
	}
	return nil
}

// Option configures Deduplicate and NewDeduplicator.
type Option func(*options)

// WithConfig sets the complete banding configuration.
func WithConfig(cfg lsh.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithNumPerm sets the signature length. Default: 128.
func WithNumPerm(n int) Option {
	return func(o *options) {
		o.config.NumPerm = n
	}
}

// WithNumBands sets the number of bands. It must divide the signature length.
// Default: 16.
func WithNumBands(n int) Option {
	return func(o *options) {
		o.config.NumBands = n
	}
}

// WithSeed sets the seed of the MinHash permutations. Default: 0.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.config.Seed = seed
	}
}

// WithThreshold keeps only candidates whose estimated similarity is >= t.
// Default: DefaultThreshold.
func WithThreshold(t float64) Option {
	return func(o *options) {
		o.threshold = &t
	}
}

// WithoutThreshold clusters every band collision.
func WithoutThreshold() Option {
	return func(o *options) {
		o.threshold = nil
	}
}

// WithStrategy selects the clustering algorithm.
func WithStrategy(s dedup.Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithShingler sets how records are split into shingles.
//
// If nil is passed, shingle.Words is used.
func WithShingler(s shingle.Shingler) Option {
	return func(o *options) {
		if s == nil {
			s = shingle.Words()
		}
		o.shingler = s
	}
}

// WithWorkers sets the worker pool size of the parallel stages.
// Values <= 0 use runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMemoryLimit bounds the memory reserved for signatures. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithLogger sets the structured logger.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
//
// If nil is passed, metrics are discarded.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}
