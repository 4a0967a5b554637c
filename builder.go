package lshdedup

import (
	"slices"

	"github.com/hupe1980/lshdedup/dedup"
	"github.com/hupe1980/lshdedup/shingle"
)

// Builder is an immutable fluent builder for a Deduplicator.
// Each method returns a new builder with the updated configuration.
//
// Example:
//
//	d, err := lshdedup.New().
//	    NumPerm(256).
//	    NumBands(32).
//	    Threshold(0.5).
//	    Strategy(dedup.StrategyUnionFind).
//	    Build()
type Builder struct {
	opts []Option
}

// New returns a builder with the default configuration:
// 128 permutations, 16 bands and threshold 0.4.
func New() Builder {
	return Builder{}
}

func (b Builder) with(o Option) Builder {
	b.opts = append(slices.Clip(b.opts), o)
	return b
}

// NumPerm sets the signature length.
func (b Builder) NumPerm(n int) Builder { return b.with(WithNumPerm(n)) }

// NumBands sets the number of bands. It must divide the signature length.
func (b Builder) NumBands(n int) Builder { return b.with(WithNumBands(n)) }

// Seed sets the seed of the MinHash permutations.
func (b Builder) Seed(seed uint64) Builder { return b.with(WithSeed(seed)) }

// Threshold sets the similarity threshold.
func (b Builder) Threshold(t float64) Builder { return b.with(WithThreshold(t)) }

// NoThreshold clusters every band collision.
func (b Builder) NoThreshold() Builder { return b.with(WithoutThreshold()) }

// Strategy selects the clustering algorithm.
func (b Builder) Strategy(s dedup.Strategy) Builder { return b.with(WithStrategy(s)) }

// Shingler sets how records are split into shingles.
func (b Builder) Shingler(s shingle.Shingler) Builder { return b.with(WithShingler(s)) }

// Workers sets the worker pool size.
func (b Builder) Workers(n int) Builder { return b.with(WithWorkers(n)) }

// MemoryLimit bounds the memory reserved for signatures.
func (b Builder) MemoryLimit(bytes int64) Builder { return b.with(WithMemoryLimit(bytes)) }

// Logger sets the structured logger.
func (b Builder) Logger(l *Logger) Builder { return b.with(WithLogger(l)) }

// Metrics sets the metrics collector.
func (b Builder) Metrics(mc MetricsCollector) Builder { return b.with(WithMetricsCollector(mc)) }

// Build validates the configuration and creates the Deduplicator.
func (b Builder) Build() (*Deduplicator, error) {
	return NewDeduplicator(b.opts...)
}

// MustBuild creates the Deduplicator, panicking on error.
// Use this only in tests or when the configuration is known to be valid.
func (b Builder) MustBuild() *Deduplicator {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
