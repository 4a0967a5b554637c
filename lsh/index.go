package lsh

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/lshdedup/internal/conv"
	"github.com/hupe1980/lshdedup/internal/hash"
	"github.com/hupe1980/lshdedup/internal/resource"
	"github.com/hupe1980/lshdedup/minhash"
	"github.com/hupe1980/lshdedup/shingle"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Index is an immutable banded bucket index over MinHash signatures.
// All methods are safe for concurrent use.
type Index struct {
	cfg      Config
	rows     int
	hasher   *minhash.Hasher
	shingler shingle.Shingler

	sigs []minhash.Signature

	// buckets[b] maps the hash of band b to the ids sharing it.
	buckets []map[uint64]*roaring.Bitmap
}

// Build computes the signature of every record and buckets them by band.
// Record ids are positions in records.
//
// The configuration is validated before any signature work. A failure in any
// parallel unit aborts the build; no partial index is returned.
func Build(ctx context.Context, records []string, cfg Config, opts ...Option) (*Index, error) {
	o, hasher, rc, err := prepare(cfg, len(records), opts)
	if err != nil {
		return nil, err
	}
	defer rc.ReleaseMemory(signatureBytes(len(records), cfg.NumPerm))

	start := time.Now()
	sigs := make([]minhash.Signature, len(records))

	var (
		done     atomic.Int64
		progress = rate.Sometimes{Interval: 2 * time.Second}
	)
	err = rc.ForEachChunk(ctx, len(records), func(_ context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			sigs[i] = hasher.Signature(records[i], o.shingler)
		}
		n := done.Add(int64(hi - lo))
		progress.Do(func() {
			o.logger.Debug("computing signatures", "done", n, "total", len(records))
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Debug("signatures computed", "records", len(records), "elapsed", time.Since(start))

	return newIndex(ctx, cfg, hasher, sigs, o, rc.Workers())
}

// FromSignatures builds an index over precomputed signatures. Every signature
// must have cfg.NumPerm values.
func FromSignatures(ctx context.Context, sigs []minhash.Signature, cfg Config, opts ...Option) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for i, sig := range sigs {
		if len(sig) != cfg.NumPerm {
			return nil, fmt.Errorf("%w: record %d has %d values, want %d", ErrSignatureLength, i, len(sig), cfg.NumPerm)
		}
	}

	o, hasher, rc, err := prepare(cfg, len(sigs), opts)
	if err != nil {
		return nil, err
	}
	defer rc.ReleaseMemory(signatureBytes(len(sigs), cfg.NumPerm))

	return newIndex(ctx, cfg, hasher, sigs, o, rc.Workers())
}

// prepare validates cfg, applies options and reserves the signature matrix.
// The caller releases the reservation.
func prepare(cfg Config, records int, opts []Option) (buildOptions, *minhash.Hasher, *resource.Controller, error) {
	o := defaultBuildOptions()
	if err := cfg.Validate(); err != nil {
		return o, nil, nil, err
	}
	if _, err := conv.IntToUint32(records); err != nil {
		return o, nil, nil, fmt.Errorf("%w: %w", ErrTooManyRecords, err)
	}

	for _, fn := range opts {
		fn(&o)
	}

	hasher, err := minhash.New(cfg.NumPerm, cfg.Seed)
	if err != nil {
		return o, nil, nil, err
	}

	rc := o.controller
	if rc == nil {
		rc = resource.NewController(resource.Config{
			MemoryLimitBytes: o.memoryLimit,
			Workers:          o.workers,
		})
	}
	if err := rc.AcquireMemory(signatureBytes(records, cfg.NumPerm)); err != nil {
		return o, nil, nil, fmt.Errorf("lsh: reserving signatures for %d records (%d of %d bytes in use): %w",
			records, rc.MemoryUsage(), rc.MemoryLimit(), err)
	}
	return o, hasher, rc, nil
}

// newIndex fills the buckets. It runs only after every signature is known.
// Bands are independent, so each band's map is built by its own worker.
func newIndex(ctx context.Context, cfg Config, hasher *minhash.Hasher, sigs []minhash.Signature, o buildOptions, workers int) (*Index, error) {
	start := time.Now()

	idx := &Index{
		cfg:      cfg,
		rows:     cfg.Rows(),
		hasher:   hasher,
		shingler: o.shingler,
		sigs:     sigs,
		buckets:  make([]map[uint64]*roaring.Bitmap, cfg.NumBands),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for b := 0; b < cfg.NumBands; b++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m := make(map[uint64]*roaring.Bitmap)
			for id, sig := range sigs {
				key := hash.Band(idx.band(sig, b))
				bm, ok := m[key]
				if !ok {
					bm = roaring.New()
					m[key] = bm
				}
				bm.Add(uint32(id))
			}
			for _, bm := range m {
				bm.RunOptimize()
			}
			idx.buckets[b] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.logger.Debug("buckets built",
		"records", len(sigs),
		"bands", cfg.NumBands,
		"rows", idx.rows,
		"elapsed", time.Since(start),
	)
	return idx, nil
}

func (idx *Index) band(sig minhash.Signature, b int) []uint64 {
	return sig[b*idx.rows : (b+1)*idx.rows]
}

// Config returns the banding configuration.
func (idx *Index) Config() Config { return idx.cfg }

// Len returns the number of indexed records.
func (idx *Index) Len() int { return len(idx.sigs) }

// Hasher returns the MinHash hasher used for the indexed signatures.
func (idx *Index) Hasher() *minhash.Hasher { return idx.hasher }

// Signature returns the signature of record id. The returned slice must not be modified.
func (idx *Index) Signature(id uint32) (minhash.Signature, error) {
	if int64(id) >= int64(len(idx.sigs)) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRecord, id)
	}
	return idx.sigs[id], nil
}

// Signatures returns all signatures ordered by record id. The returned slice
// must not be modified.
func (idx *Index) Signatures() []minhash.Signature { return idx.sigs }

// Similarity returns the estimated Jaccard similarity of two indexed records.
func (idx *Index) Similarity(a, b uint32) (float64, error) {
	sa, err := idx.Signature(a)
	if err != nil {
		return 0, err
	}
	sb, err := idx.Signature(b)
	if err != nil {
		return 0, err
	}
	return minhash.Similarity(sa, sb), nil
}

// Query returns the ids sharing at least one band bucket with sig, filtered
// by WithThreshold when given. A signature equal to an indexed one always
// finds that record: it hashes into the record's bucket in every band and its
// similarity is 1.
func (idx *Index) Query(sig minhash.Signature, opts ...QueryOption) (*roaring.Bitmap, error) {
	if len(sig) != idx.cfg.NumPerm {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrSignatureLength, len(sig), idx.cfg.NumPerm)
	}

	var q queryOptions
	for _, fn := range opts {
		fn(&q)
	}

	result := roaring.New()
	for b, m := range idx.buckets {
		if bm, ok := m[hash.Band(idx.band(sig, b))]; ok {
			result.Or(bm)
		}
	}

	if !q.hasThreshold {
		return result, nil
	}

	filtered := roaring.New()
	it := result.Iterator()
	for it.HasNext() {
		id := it.Next()
		if minhash.Similarity(sig, idx.sigs[id]) >= q.threshold {
			filtered.Add(id)
		}
	}
	return filtered, nil
}

// QueryRecord returns the candidates of an indexed record. The record itself
// is always part of the result, independent of buckets and threshold.
func (idx *Index) QueryRecord(id uint32, opts ...QueryOption) (*roaring.Bitmap, error) {
	sig, err := idx.Signature(id)
	if err != nil {
		return nil, err
	}
	result, err := idx.Query(sig, opts...)
	if err != nil {
		return nil, err
	}
	result.Add(id)
	return result, nil
}

// Sign computes the signature of text with the index hasher and shingler.
func (idx *Index) Sign(text string) minhash.Signature {
	return idx.hasher.Signature(text, idx.shingler)
}

// QueryText signs text and queries it.
func (idx *Index) QueryText(text string, opts ...QueryOption) (*roaring.Bitmap, error) {
	return idx.Query(idx.Sign(text), opts...)
}

// Stats summarizes the bucket distribution of an index.
type Stats struct {
	Records          int
	NumPerm          int
	NumBands         int
	Rows             int
	Buckets          int // total over all bands
	LargestBucket    int
	SingletonBuckets int
}

// Stats computes bucket statistics.
func (idx *Index) Stats() Stats {
	s := Stats{
		Records:  len(idx.sigs),
		NumPerm:  idx.cfg.NumPerm,
		NumBands: idx.cfg.NumBands,
		Rows:     idx.rows,
	}
	for _, m := range idx.buckets {
		s.Buckets += len(m)
		for _, bm := range m {
			n := int(bm.GetCardinality())
			if n > s.LargestBucket {
				s.LargestBucket = n
			}
			if n == 1 {
				s.SingletonBuckets++
			}
		}
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("records", s.Records),
		slog.Int("num_perm", s.NumPerm),
		slog.Int("num_bands", s.NumBands),
		slog.Int("buckets", s.Buckets),
		slog.Int("largest_bucket", s.LargestBucket),
		slog.Int("singleton_buckets", s.SingletonBuckets),
	)
}

func signatureBytes(records, numPerm int) int64 {
	return int64(records) * int64(numPerm) * 8
}
