// Package dedup folds per-record candidate lists into duplicate groups.
//
// The input is one QueryResult per record: the record id and the ids the
// banding index returned for it. The clustering pass treats "b is a candidate
// of a" as an edge and produces the connected components of that relation,
// independent of the order in which results are consumed.
//
// Two strategies are available. StrategyMerge keeps a live cluster per id and
// absorbs whole clusters into the current one when a candidate bridges them.
// StrategyUnionFind uses a disjoint-set forest with union by size. Both yield
// the same partition.
//
// The pass is sequential and owns its state exclusively. Queries against the
// index run in parallel before it starts:
//
//	idx, err := lsh.Build(ctx, records, lsh.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	d, err := dedup.New(ctx, idx, dedup.WithThreshold(0.4))
//	if err != nil {
//		return err
//	}
//	for _, group := range d.GroupedIndices() {
//		fmt.Println(group)
//	}
package dedup
