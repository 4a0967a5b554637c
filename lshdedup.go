package lshdedup

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/lshdedup/dedup"
	"github.com/hupe1980/lshdedup/internal/resource"
	"github.com/hupe1980/lshdedup/lsh"
)

// Deduplicator runs the full pipeline with a fixed configuration.
// It is safe for concurrent use. Concurrent runs share one memory limit.
type Deduplicator struct {
	opts options
	rc   *resource.Controller
}

// NewDeduplicator validates the configuration and returns a Deduplicator.
func NewDeduplicator(optFns ...Option) (*Deduplicator, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return &Deduplicator{
		opts: o,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes: o.memoryLimit,
			Workers:          o.workers,
		}),
	}, nil
}

// Deduplicate groups near-duplicate records. Record ids are positions in records.
func Deduplicate(ctx context.Context, records []string, optFns ...Option) (*Result, error) {
	d, err := NewDeduplicator(optFns...)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, records)
}

// Config returns the banding configuration.
func (d *Deduplicator) Config() lsh.Config { return d.opts.config }

// Threshold returns the similarity threshold and whether one is set.
func (d *Deduplicator) Threshold() (float64, bool) {
	if d.opts.threshold == nil {
		return 0, false
	}
	return *d.opts.threshold, true
}

// Run builds the index, queries every record and clusters the candidates.
// Any failure aborts the run; no partial result is returned.
func (d *Deduplicator) Run(ctx context.Context, records []string) (*Result, error) {
	o := d.opts
	logger := o.logger.WithConfig(o.config)

	start := time.Now()
	idx, err := lsh.Build(ctx, records, o.config,
		lsh.WithLogger(logger.Logger),
		lsh.WithShingler(o.shingler),
		lsh.WithController(d.rc),
	)
	buildElapsed := time.Since(start)
	o.metricsCollector.RecordBuild(len(records), buildElapsed, err)
	logger.LogBuild(ctx, len(records), buildElapsed, idx, err)
	if err != nil {
		return nil, translateError(err)
	}

	dopts := []dedup.Option{
		dedup.WithStrategy(o.strategy),
		dedup.WithWorkers(o.workers),
		dedup.WithLogger(logger.Logger),
	}
	if o.threshold != nil {
		dopts = append(dopts, dedup.WithThreshold(*o.threshold))
	}

	start = time.Now()
	results, err := dedup.Query(ctx, idx, dopts...)
	queryElapsed := time.Since(start)
	var candidates int
	for _, r := range results {
		candidates += int(r.Candidates.GetCardinality())
	}
	o.metricsCollector.RecordQueries(len(records), candidates, queryElapsed, err)
	logger.LogQueries(ctx, len(records), queryElapsed, err)
	if err != nil {
		return nil, translateError(err)
	}

	start = time.Now()
	clusters, err := dedup.FromQueryResults(results, dopts...)
	if err == nil {
		err = clusters.Validate(len(records))
	}
	clusterElapsed := time.Since(start)
	if err != nil {
		o.metricsCollector.RecordCluster(0, 0, clusterElapsed, err)
		logger.LogCluster(ctx, clusterElapsed, nil, err)
		return nil, translateError(err)
	}
	s := clusters.Stats()
	o.metricsCollector.RecordCluster(s.Groups, s.Duplicates, clusterElapsed, nil)
	logger.LogCluster(ctx, clusterElapsed, clusters, nil)

	return &Result{
		index:    idx,
		clusters: clusters,
		timings: Timings{
			Build:   buildElapsed,
			Query:   queryElapsed,
			Cluster: clusterElapsed,
		},
	}, nil
}

// Timings holds the wall time of each stage of a run.
type Timings struct {
	Build   time.Duration
	Query   time.Duration
	Cluster time.Duration
}

// Total returns the summed wall time.
func (t Timings) Total() time.Duration { return t.Build + t.Query + t.Cluster }

// Summary counts records before and after deduplication.
type Summary struct {
	Total  int // records
	Unique int // groups
	Diff   int // records removed by keeping one per group
}

func (s Summary) String() string {
	return fmt.Sprintf("Total: %d, Unique: %d, Diff: %d", s.Total, s.Unique, s.Diff)
}

// Result is a completed deduplication run.
type Result struct {
	index    *lsh.Index
	clusters *dedup.Index
	timings  Timings
}

// Groups returns the duplicate groups. Members are ascending and groups are
// ordered by their smallest member.
func (r *Result) Groups() [][]uint32 { return r.clusters.GroupedIndices() }

// GroupOf returns the position in Groups of the group holding record id.
func (r *Result) GroupOf(id uint32) (int, bool) { return r.clusters.GroupOf(id) }

// Index returns the banding index the run was computed from.
func (r *Result) Index() *lsh.Index { return r.index }

// Clusters returns the clustering result.
func (r *Result) Clusters() *dedup.Index { return r.clusters }

// Timings returns the stage timings.
func (r *Result) Timings() Timings { return r.timings }

// Summary returns the record counts of the run.
func (r *Result) Summary() Summary {
	total := r.index.Len()
	unique := r.clusters.NumGroups()
	return Summary{Total: total, Unique: unique, Diff: total - unique}
}
