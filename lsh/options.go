package lsh

import (
	"log/slog"
	"math"
	"runtime"

	"github.com/hupe1980/lshdedup/internal/resource"
	"github.com/hupe1980/lshdedup/shingle"
)

type buildOptions struct {
	logger      *slog.Logger
	shingler    shingle.Shingler
	workers     int
	memoryLimit int64
	controller  *resource.Controller
}

func defaultBuildOptions() buildOptions {
	return buildOptions{
		logger:   slog.New(slog.DiscardHandler),
		shingler: shingle.Words(),
		workers:  runtime.GOMAXPROCS(0),
	}
}

// Option configures Build and ReadIndex.
type Option func(*buildOptions)

// WithLogger sets the logger for build progress. Nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *buildOptions) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}

// WithShingler sets how record text is turned into shingles.
// Defaults to shingle.Words.
func WithShingler(s shingle.Shingler) Option {
	return func(o *buildOptions) {
		if s != nil {
			o.shingler = s
		}
	}
}

// WithWorkers sets the worker pool size for signature and bucket computation.
// Values <= 0 use runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *buildOptions) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithMemoryLimit bounds the signature matrix (records × NumPerm × 8 bytes).
// Build fails with resource.ErrMemoryLimitExceeded before computing any
// signature if the corpus does not fit. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *buildOptions) {
		o.memoryLimit = bytes
	}
}

// WithController reserves the signature matrix from a shared controller, so
// concurrent builds draw on one memory budget. It overrides WithWorkers and
// WithMemoryLimit. The reservation is released when the build returns.
func WithController(rc *resource.Controller) Option {
	return func(o *buildOptions) {
		o.controller = rc
	}
}

type queryOptions struct {
	threshold    float64
	hasThreshold bool
}

// QueryOption configures Query and QueryRecord.
type QueryOption func(*queryOptions)

// WithThreshold keeps only candidates whose estimated similarity with the
// query is >= t. t is clamped to [0, 1]; NaN disables filtering.
func WithThreshold(t float64) QueryOption {
	return func(o *queryOptions) {
		if math.IsNaN(t) {
			o.hasThreshold = false
			return
		}
		o.threshold = min(max(t, 0), 1)
		o.hasThreshold = true
	}
}

// WithOptionalThreshold applies WithThreshold when t is non-nil.
func WithOptionalThreshold(t *float64) QueryOption {
	return func(o *queryOptions) {
		if t != nil {
			WithThreshold(*t)(o)
		}
	}
}
