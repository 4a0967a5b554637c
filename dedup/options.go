package dedup

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// Strategy selects the clustering algorithm.
type Strategy int

const (
	// StrategyMerge removes a bridged cluster and reinserts its members into
	// the current one.
	StrategyMerge Strategy = iota
	// StrategyUnionFind uses a disjoint-set forest with union by size.
	StrategyUnionFind
)

func (s Strategy) String() string {
	switch s {
	case StrategyMerge:
		return "merge"
	case StrategyUnionFind:
		return "union-find"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy resolves "merge" or "union-find".
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "merge":
		return StrategyMerge, nil
	case "union-find", "unionfind", "uf":
		return StrategyUnionFind, nil
	default:
		return StrategyMerge, fmt.Errorf("dedup: unknown strategy %q", name)
	}
}

type options struct {
	threshold *float64
	strategy  Strategy
	workers   int
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{
		strategy: StrategyMerge,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// Option configures New and FromQueryResults.
type Option func(*options)

// WithThreshold keeps only candidates whose estimated similarity is >= t.
// NaN means no threshold.
func WithThreshold(t float64) Option {
	return func(o *options) {
		if math.IsNaN(t) {
			o.threshold = nil
			return
		}
		o.threshold = &t
	}
}

// WithStrategy selects the clustering algorithm. Defaults to StrategyMerge.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithWorkers sets the number of parallel candidate queries.
// Values <= 0 use runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger. Nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}
