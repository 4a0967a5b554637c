// Package lsh implements a banded locality-sensitive hashing index over MinHash
// signatures.
//
// Each signature of NumPerm values is split into NumBands bands of
// r = NumPerm/NumBands values. A record is inserted into one bucket per band,
// keyed by the hash of that band's values. Records that agree exactly on at
// least one band become candidates of each other, so similar records are found
// without comparing all pairs.
//
// # Build and Query
//
//	idx, err := lsh.Build(ctx, records, lsh.Config{NumPerm: 128, NumBands: 16})
//	if err != nil {
//	    return err
//	}
//
//	// Candidates of record 7 with estimated similarity >= 0.5.
//	ids, err := idx.QueryRecord(7, lsh.WithThreshold(0.5))
//
// Build computes signatures on a bounded worker pool, waits for all of them,
// then fills the buckets. The returned Index is immutable and safe for
// concurrent queries without further synchronization.
//
// # Recall
//
// Banding may miss near-duplicates whose signatures disagree in every band.
// More bands with fewer rows raise recall at the cost of more candidates; the
// optional threshold then filters candidates on the full signature.
//
// # Snapshots
//
// WriteSnapshot persists the configuration and signatures; ReadIndex restores
// an equivalent index. Buckets are not stored since they are a pure function
// of the signatures.
package lsh
