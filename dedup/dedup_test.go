package dedup

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/lshdedup/lsh"
	"github.com/hupe1980/lshdedup/minhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strategies = []Strategy{StrategyMerge, StrategyUnionFind}

func result(id uint32, cands ...uint32) QueryResult {
	return QueryResult{ID: id, Candidates: roaring.BitmapOf(cands...)}
}

// randomResults returns self-inclusive candidate lists over n records with
// a few random edges each.
func randomResults(r *rand.Rand, n, edges int) []QueryResult {
	out := make([]QueryResult, n)
	for i := range out {
		bm := roaring.BitmapOf(uint32(i))
		for range r.IntN(edges + 1) {
			bm.Add(uint32(r.IntN(n)))
		}
		out[i] = QueryResult{ID: uint32(i), Candidates: bm}
	}
	return out
}

// components computes the connected components of the undirected candidate
// graph with a plain BFS, in the same canonical order as GroupedIndices.
func components(results []QueryResult) [][]uint32 {
	adj := make(map[uint32][]uint32)
	for _, r := range results {
		adj[r.ID] = append(adj[r.ID], r.ID)
		for _, c := range r.Candidates.ToArray() {
			adj[r.ID] = append(adj[r.ID], c)
			adj[c] = append(adj[c], r.ID)
		}
	}

	ids := make([]uint32, 0, len(adj))
	for id := range adj {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	visited := make(map[uint32]bool)
	var out [][]uint32
	for _, start := range ids {
		if visited[start] {
			continue
		}
		var group []uint32
		queue := []uint32{start}
		visited[start] = true
		for len(queue) > 0 {
			x := queue[0]
			queue = queue[1:]
			group = append(group, x)
			for _, y := range adj[x] {
				if !visited[y] {
					visited[y] = true
					queue = append(queue, y)
				}
			}
		}
		slices.Sort(group)
		out = append(out, group)
	}
	return out
}

func TestFromQueryResults_Partition(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	results := randomResults(r, 200, 2)
	want := components(results)

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			d, err := FromQueryResults(results, WithStrategy(s))
			require.NoError(t, err)

			assert.Equal(t, want, d.GroupedIndices())
			require.NoError(t, d.Validate(200))
			assert.Equal(t, 200, d.Len())
			assert.Equal(t, s, d.Strategy())

			for id := uint32(0); id < 200; id++ {
				g, ok := d.GroupOf(id)
				require.True(t, ok)
				assert.Contains(t, d.GroupedIndices()[g], id)
			}
		})
	}
}

func TestFromQueryResults_OrderIndependent(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	results := randomResults(r, 120, 3)

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			base, err := FromQueryResults(results, WithStrategy(s))
			require.NoError(t, err)

			for range 20 {
				shuffled := slices.Clone(results)
				r.Shuffle(len(shuffled), func(i, j int) {
					shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
				})
				d, err := FromQueryResults(shuffled, WithStrategy(s))
				require.NoError(t, err)
				assert.Equal(t, base.GroupedIndices(), d.GroupedIndices())
			}
		})
	}
}

func TestFromQueryResults_StrategiesAgree(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for range 10 {
		results := randomResults(r, 80, 2)

		m, err := FromQueryResults(results, WithStrategy(StrategyMerge))
		require.NoError(t, err)
		u, err := FromQueryResults(results, WithStrategy(StrategyUnionFind))
		require.NoError(t, err)

		assert.Equal(t, m.GroupedIndices(), u.GroupedIndices())
	}
}

func TestFromQueryResults_TransitiveMerge(t *testing.T) {
	// A-B share band 0, B-C share band 1, A and C never meet directly.
	results := []QueryResult{
		result(0, 0, 1),
		result(2, 1, 2),
		result(1, 0, 1, 2),
	}
	for _, s := range strategies {
		d, err := FromQueryResults(results, WithStrategy(s))
		require.NoError(t, err)
		assert.Equal(t, [][]uint32{{0, 1, 2}}, d.GroupedIndices(), s.String())
	}
}

func TestFromQueryResults_MissingSelfAndNilCandidates(t *testing.T) {
	results := []QueryResult{
		{ID: 3, Candidates: roaring.BitmapOf(4)},
		{ID: 5},
		{ID: 4, Candidates: roaring.New()},
	}
	for _, s := range strategies {
		d, err := FromQueryResults(results, WithStrategy(s))
		require.NoError(t, err)
		assert.Equal(t, [][]uint32{{3, 4}, {5}}, d.GroupedIndices(), s.String())
	}
}

func TestFromQueryResults_Empty(t *testing.T) {
	d, err := FromQueryResults(nil)
	require.NoError(t, err)
	assert.Empty(t, d.GroupedIndices())
	assert.NoError(t, d.Validate(0))
	assert.Equal(t, Stats{}, d.Stats())
}

func TestMergeClusterer_Conservation(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 12))
	results := randomResults(r, 150, 3)

	c := newMergeClusterer()
	seen := roaring.New()
	for _, res := range results {
		before := c.members()
		seen.Add(res.ID)
		seen.Or(res.Candidates)
		added := seen.GetCardinality() - before

		require.NoError(t, c.add(res.ID, res.Candidates))

		// merges move members between clusters; only new ids change the total
		assert.Equal(t, before+added, c.members())
		assert.Equal(t, seen.GetCardinality(), uint64(len(c.lookup)))
		for id, cid := range c.lookup {
			require.True(t, c.clusters[cid].Contains(id))
		}
	}
}

func TestMergeClusterer_BridgeAbsorbsCluster(t *testing.T) {
	c := newMergeClusterer()
	require.NoError(t, c.add(0, roaring.BitmapOf(0, 1)))
	require.NoError(t, c.add(2, roaring.BitmapOf(2, 3)))
	require.Len(t, c.clusters, 2)
	assert.Equal(t, uint64(4), c.members())

	require.NoError(t, c.add(1, roaring.BitmapOf(1, 2)))
	require.Len(t, c.clusters, 1)
	assert.Equal(t, uint64(4), c.members())
	assert.Equal(t, 1, c.merges())

	// the record's existing cluster survives; the other one is absorbed
	assert.Equal(t, []uint32{0, 1, 2, 3}, c.clusters[0].ToArray())

	// ids are never reused after a removal
	require.NoError(t, c.add(9, nil))
	assert.Equal(t, uint64(2), c.lookup[9])
}

func TestMergeClusterer_InvariantViolation(t *testing.T) {
	c := newMergeClusterer()
	c.lookup[5] = 99

	err := c.add(0, roaring.BitmapOf(0, 5))
	require.ErrorIs(t, err, ErrInvariantViolation)

	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, uint64(99), ie.Cluster)
	assert.Equal(t, uint32(5), ie.Record)
}

func TestNew_Example(t *testing.T) {
	records := []string{
		"the cat sat",
		"the cat sat on the mat",
		"completely different text",
	}
	idx, err := lsh.Build(context.Background(), records, lsh.Config{NumPerm: 4, NumBands: 2})
	require.NoError(t, err)

	for _, s := range strategies {
		d, err := New(context.Background(), idx, WithThreshold(0.4), WithStrategy(s), WithWorkers(2))
		require.NoError(t, err)

		assert.Equal(t, [][]uint32{{0, 1}, {2}}, d.GroupedIndices())
		assert.Equal(t, 2, d.NumGroups())
		assert.Equal(t, 3, d.Len())
		require.NoError(t, d.Validate(len(records)))
	}
}

func TestNew_TransitiveThroughBands(t *testing.T) {
	sigs := []minhash.Signature{
		{1, 1, 2, 2},
		{1, 1, 3, 3},
		{4, 4, 3, 3},
		{5, 5, 6, 6},
	}
	idx, err := lsh.FromSignatures(context.Background(), sigs, lsh.Config{NumPerm: 4, NumBands: 2})
	require.NoError(t, err)

	d, err := New(context.Background(), idx)
	require.NoError(t, err)
	assert.Equal(t, [][]uint32{{0, 1, 2}, {3}}, d.GroupedIndices())

	// both links have similarity 0.5, so a higher threshold breaks the chain
	d, err = New(context.Background(), idx, WithThreshold(0.6))
	require.NoError(t, err)
	assert.Equal(t, [][]uint32{{0}, {1}, {2}, {3}}, d.GroupedIndices())
}

func TestNew_Cancelled(t *testing.T) {
	idx, err := lsh.Build(context.Background(), []string{"a b", "c d"}, lsh.Config{NumPerm: 8, NumBands: 4})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(ctx, idx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		groups [][]uint32
		n      int
		ok     bool
	}{
		{"exact", [][]uint32{{0, 2}, {1}}, 3, true},
		{"duplicate", [][]uint32{{0, 1}, {1, 2}}, 3, false},
		{"missing", [][]uint32{{0}, {2}}, 3, false},
		{"out of range", [][]uint32{{0, 1, 2, 5}}, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := freezeGroups(tt.groups).Validate(tt.n)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvariantViolation)
			}
		})
	}
}

func freezeGroups(groups [][]uint32) *Index {
	live := make([]*roaring.Bitmap, len(groups))
	for i, g := range groups {
		live[i] = roaring.BitmapOf(g...)
	}
	return freeze(live)
}

func TestStats(t *testing.T) {
	d, err := FromQueryResults([]QueryResult{
		result(0, 0, 1, 2),
		result(3, 3),
		result(4, 4, 5),
	})
	require.NoError(t, err)

	s := d.Stats()
	assert.Equal(t, 6, s.Records)
	assert.Equal(t, 3, s.Groups)
	assert.Equal(t, 3, s.Duplicates)
	assert.Equal(t, 3, s.LargestGroup)
	assert.Equal(t, 1, s.Singletons)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("union-find")
	require.NoError(t, err)
	assert.Equal(t, StrategyUnionFind, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyMerge, s)

	_, err = ParseStrategy("louvain")
	assert.Error(t, err)
}

func BenchmarkFromQueryResults(b *testing.B) {
	r := rand.New(rand.NewPCG(5, 6))
	results := randomResults(r, 20000, 2)

	for _, s := range strategies {
		b.Run(s.String(), func(b *testing.B) {
			for b.Loop() {
				if _, err := FromQueryResults(results, WithStrategy(s)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func TestQuery_OrderedByID(t *testing.T) {
	idx, err := lsh.Build(context.Background(), []string{"a b c", "a b c", "x y z"}, lsh.Config{NumPerm: 16, NumBands: 4})
	require.NoError(t, err)

	results, err := Query(context.Background(), idx, WithWorkers(3))
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, uint32(i), r.ID)
		assert.True(t, r.Candidates.Contains(r.ID))
	}
	assert.Equal(t, []uint32{0, 1}, results[0].Candidates.ToArray())
}
