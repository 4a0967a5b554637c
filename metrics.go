package lshdedup

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prom package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordBuild is called after the signature and bucket stage.
	RecordBuild(records int, duration time.Duration, err error)

	// RecordQueries is called after all candidate queries finished.
	// candidates is the summed size of all candidate sets.
	RecordQueries(records, candidates int, duration time.Duration, err error)

	// RecordCluster is called after the clustering pass.
	RecordCluster(groups, duplicates int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordQueries(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCluster(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	Runs            atomic.Int64
	Errors          atomic.Int64
	Records         atomic.Int64
	Candidates      atomic.Int64
	Groups          atomic.Int64
	Duplicates      atomic.Int64
	BuildTotalNanos atomic.Int64
	QueryTotalNanos atomic.Int64
	ClusterNanos    atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(records int, duration time.Duration, err error) {
	b.Runs.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.Errors.Add(1)
		return
	}
	b.Records.Add(int64(records))
}

// RecordQueries implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQueries(_, candidates int, duration time.Duration, err error) {
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.Errors.Add(1)
		return
	}
	b.Candidates.Add(int64(candidates))
}

// RecordCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCluster(groups, duplicates int, duration time.Duration, err error) {
	b.ClusterNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.Errors.Add(1)
		return
	}
	b.Groups.Add(int64(groups))
	b.Duplicates.Add(int64(duplicates))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		Runs:         b.Runs.Load(),
		Errors:       b.Errors.Load(),
		Records:      b.Records.Load(),
		Candidates:   b.Candidates.Load(),
		Groups:       b.Groups.Load(),
		Duplicates:   b.Duplicates.Load(),
		BuildNanos:   b.BuildTotalNanos.Load(),
		QueryNanos:   b.QueryTotalNanos.Load(),
		ClusterNanos: b.ClusterNanos.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Runs         int64
	Errors       int64
	Records      int64
	Candidates   int64
	Groups       int64
	Duplicates   int64
	BuildNanos   int64
	QueryNanos   int64
	ClusterNanos int64
}
