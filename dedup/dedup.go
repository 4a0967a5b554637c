package dedup

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/lshdedup/internal/resource"
	"github.com/hupe1980/lshdedup/lsh"
	"golang.org/x/time/rate"
)

// QueryResult is the candidate list of one record.
type QueryResult struct {
	ID         uint32
	Candidates *roaring.Bitmap
}

// Index is the frozen result of a clustering pass.
type Index struct {
	groups   [][]uint32
	groupOf  map[uint32]int
	strategy Strategy
	merges   int
}

// New queries every record of idx in parallel and clusters the results.
// A failed query or a cancelled context aborts the whole run.
func New(ctx context.Context, idx *lsh.Index, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	results, err := query(ctx, idx, o)
	if err != nil {
		return nil, err
	}
	return cluster(results, o)
}

// Query returns the candidates of every record of idx, ordered by id.
// Queries run in parallel; WithThreshold, WithWorkers and WithLogger apply.
func Query(ctx context.Context, idx *lsh.Index, opts ...Option) ([]QueryResult, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return query(ctx, idx, o)
}

func query(ctx context.Context, idx *lsh.Index, o options) ([]QueryResult, error) {
	start := time.Now()
	n := idx.Len()
	results := make([]QueryResult, n)
	rc := resource.NewController(resource.Config{Workers: o.workers})

	var (
		done     atomic.Int64
		progress = rate.Sometimes{Interval: 2 * time.Second}
	)
	err := rc.ForEachChunk(ctx, n, func(_ context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			id := uint32(i)
			cands, err := idx.QueryRecord(id, lsh.WithOptionalThreshold(o.threshold))
			if err != nil {
				return err
			}
			results[i] = QueryResult{ID: id, Candidates: cands}
		}
		c := done.Add(int64(hi - lo))
		progress.Do(func() {
			o.logger.Debug("querying candidates", "done", c, "total", n)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Debug("candidates queried", "records", n, "workers", rc.Workers(), "elapsed", time.Since(start))
	return results, nil
}

// FromQueryResults clusters precomputed candidate lists. The order of results
// does not affect the partition.
func FromQueryResults(results []QueryResult, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return cluster(results, o)
}

func cluster(results []QueryResult, o options) (*Index, error) {
	start := time.Now()

	c := newClusterer(o.strategy)
	for _, r := range results {
		if err := c.add(r.ID, r.Candidates); err != nil {
			return nil, err
		}
	}

	d := freeze(c.groups())
	d.strategy = o.strategy
	d.merges = c.merges()

	o.logger.Debug("clustering finished",
		"strategy", o.strategy.String(),
		"records", d.Len(),
		"groups", d.NumGroups(),
		"merges", d.merges,
		"elapsed", time.Since(start),
	)
	return d, nil
}

// freeze sorts members ascending and groups by their smallest member.
func freeze(live []*roaring.Bitmap) *Index {
	groups := make([][]uint32, 0, len(live))
	for _, bm := range live {
		if !bm.IsEmpty() {
			groups = append(groups, bm.ToArray())
		}
	}
	slices.SortFunc(groups, func(a, b []uint32) int {
		return cmp.Compare(a[0], b[0])
	})

	groupOf := make(map[uint32]int)
	for gi, g := range groups {
		for _, id := range g {
			groupOf[id] = gi
		}
	}
	return &Index{groups: groups, groupOf: groupOf}
}

// GroupedIndices returns one group per cluster. Members are ascending and
// groups are ordered by their smallest member. The returned slices must not
// be modified.
func (d *Index) GroupedIndices() [][]uint32 { return d.groups }

// GroupOf returns the position in GroupedIndices of the group holding id.
func (d *Index) GroupOf(id uint32) (int, bool) {
	g, ok := d.groupOf[id]
	return g, ok
}

// Len returns the number of clustered records.
func (d *Index) Len() int { return len(d.groupOf) }

// NumGroups returns the number of groups.
func (d *Index) NumGroups() int { return len(d.groups) }

// Strategy returns the algorithm that produced the partition.
func (d *Index) Strategy() Strategy { return d.strategy }

// Validate checks that the groups cover {0, ..., n-1} with every id exactly once.
func (d *Index) Validate(n int) error {
	seen := bitset.New(uint(n))
	for gi, g := range d.groups {
		for _, id := range g {
			if int64(id) >= int64(n) {
				return fmt.Errorf("%w: group %d holds record %d outside [0, %d)", ErrInvariantViolation, gi, id, n)
			}
			if seen.Test(uint(id)) {
				return fmt.Errorf("%w: record %d appears in more than one group", ErrInvariantViolation, id)
			}
			seen.Set(uint(id))
		}
	}
	if c := seen.Count(); c != uint(n) {
		missing, _ := seen.Complement().NextSet(0)
		return fmt.Errorf("%w: %d of %d records grouped, first missing %d", ErrInvariantViolation, c, n, missing)
	}
	return nil
}

// Stats summarizes a partition.
type Stats struct {
	Records      int
	Groups       int
	Duplicates   int // records that are not the first of their group
	LargestGroup int
	Singletons   int
	// Merges counts absorbed clusters for StrategyMerge and joined sets for
	// StrategyUnionFind.
	Merges int
}

// Stats computes partition statistics.
func (d *Index) Stats() Stats {
	s := Stats{
		Records: d.Len(),
		Groups:  d.NumGroups(),
		Merges:  d.merges,
	}
	s.Duplicates = s.Records - s.Groups
	for _, g := range d.groups {
		s.LargestGroup = max(s.LargestGroup, len(g))
		if len(g) == 1 {
			s.Singletons++
		}
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("records", s.Records),
		slog.Int("groups", s.Groups),
		slog.Int("duplicates", s.Duplicates),
		slog.Int("largest_group", s.LargestGroup),
		slog.Int("singletons", s.Singletons),
		slog.Int("merges", s.Merges),
	)
}
