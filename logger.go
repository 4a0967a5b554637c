package lshdedup

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/lshdedup/dedup"
	"github.com/hupe1980/lshdedup/lsh"
)

// Logger wraps slog.Logger with lshdedup-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithRun tags every record with a run name, e.g. the input file.
func (l *Logger) WithRun(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run", name),
	}
}

// WithConfig adds the banding parameters to the logger.
func (l *Logger) WithConfig(cfg lsh.Config) *Logger {
	return &Logger{
		Logger: l.Logger.With(
			"num_perm", cfg.NumPerm,
			"num_bands", cfg.NumBands,
			"seed", cfg.Seed,
		),
	}
}

// LogBuild logs the signature and bucket stage.
func (l *Logger) LogBuild(ctx context.Context, records int, elapsed time.Duration, idx *lsh.Index, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"records", records,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "index built",
		"records", records,
		"elapsed", elapsed,
		"stats", idx.Stats(),
	)
}

// LogQueries logs the candidate query stage.
func (l *Logger) LogQueries(ctx context.Context, records int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "candidate queries failed",
			"records", records,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "candidate queries completed",
		"records", records,
		"elapsed", elapsed,
	)
}

// LogCluster logs the clustering pass.
func (l *Logger) LogCluster(ctx context.Context, elapsed time.Duration, d *dedup.Index, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clustering failed",
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "clustering completed",
		"elapsed", elapsed,
		"strategy", d.Strategy().String(),
		"stats", d.Stats(),
	)
}
