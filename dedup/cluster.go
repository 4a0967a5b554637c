package dedup

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// clusterer is one sequential clustering pass.
type clusterer interface {
	add(id uint32, candidates *roaring.Bitmap) error
	// groups returns the live clusters in no particular order.
	groups() []*roaring.Bitmap
	merges() int
}

func newClusterer(s Strategy) clusterer {
	if s == StrategyUnionFind {
		return newUnionFind()
	}
	return newMergeClusterer()
}

// mergeClusterer keeps every record in exactly one live cluster. When a
// candidate belongs to another live cluster, that cluster is removed and its
// members are moved into the cluster of the record being added.
type mergeClusterer struct {
	clusters map[uint64]*roaring.Bitmap
	lookup   map[uint32]uint64

	// next is the next cluster id. Ids are never reused.
	next     uint64
	absorbed int
}

func newMergeClusterer() *mergeClusterer {
	return &mergeClusterer{
		clusters: make(map[uint64]*roaring.Bitmap),
		lookup:   make(map[uint32]uint64),
	}
}

func (c *mergeClusterer) add(id uint32, candidates *roaring.Bitmap) error {
	pending := roaring.New()

	cid, ok := c.lookup[id]
	if !ok {
		cid = c.next
		c.next++
		pending.Add(id)
	}

	if candidates != nil {
		it := candidates.Iterator()
		for it.HasNext() {
			cand := it.Next()
			prev, ok := c.lookup[cand]
			switch {
			case !ok:
				pending.Add(cand)
			case prev != cid:
				members, err := c.remove(prev, cand)
				if err != nil {
					return err
				}
				pending.Or(members)
			}
		}
	}

	if pending.IsEmpty() {
		return nil
	}

	bm, ok := c.clusters[cid]
	if !ok {
		bm = roaring.New()
		c.clusters[cid] = bm
	}
	bm.Or(pending)

	it := pending.Iterator()
	for it.HasNext() {
		c.lookup[it.Next()] = cid
	}
	return nil
}

// remove takes cluster cid out of both maps and returns its members.
func (c *mergeClusterer) remove(cid uint64, via uint32) (*roaring.Bitmap, error) {
	members, ok := c.clusters[cid]
	if !ok {
		return nil, &InvariantError{Cluster: cid, Record: via}
	}
	delete(c.clusters, cid)

	it := members.Iterator()
	for it.HasNext() {
		delete(c.lookup, it.Next())
	}
	c.absorbed++
	return members, nil
}

func (c *mergeClusterer) groups() []*roaring.Bitmap {
	out := make([]*roaring.Bitmap, 0, len(c.clusters))
	for _, bm := range c.clusters {
		out = append(out, bm)
	}
	return out
}

func (c *mergeClusterer) merges() int { return c.absorbed }

// members returns the summed size of all live clusters.
func (c *mergeClusterer) members() uint64 {
	var n uint64
	for _, bm := range c.clusters {
		n += bm.GetCardinality()
	}
	return n
}

// unionFind is a disjoint-set forest with union by size and path halving.
type unionFind struct {
	parent map[uint32]uint32
	size   map[uint32]int
	unions int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[uint32]uint32),
		size:   make(map[uint32]int),
	}
}

func (u *unionFind) makeSet(x uint32) {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		u.size[x] = 1
	}
}

func (u *unionFind) find(x uint32) uint32 {
	for {
		p := u.parent[x]
		if p == x {
			return x
		}
		gp := u.parent[p]
		u.parent[x] = gp
		x = gp
	}
}

func (u *unionFind) union(a, b uint32) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
	delete(u.size, rb)
	u.unions++
}

func (u *unionFind) add(id uint32, candidates *roaring.Bitmap) error {
	u.makeSet(id)
	if candidates == nil {
		return nil
	}
	it := candidates.Iterator()
	for it.HasNext() {
		cand := it.Next()
		u.makeSet(cand)
		u.union(id, cand)
	}
	return nil
}

func (u *unionFind) groups() []*roaring.Bitmap {
	byRoot := make(map[uint32]*roaring.Bitmap, len(u.size))
	for x := range u.parent {
		r := u.find(x)
		bm, ok := byRoot[r]
		if !ok {
			bm = roaring.New()
			byRoot[r] = bm
		}
		bm.Add(x)
	}

	out := make([]*roaring.Bitmap, 0, len(byRoot))
	for _, bm := range byRoot {
		out = append(out, bm)
	}
	return out
}

func (u *unionFind) merges() int { return u.unions }
