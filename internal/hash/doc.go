// Package hash provides the hashing primitives used by signatures, bands and snapshots.
//
// # Content hashing (xxhash64)
//
// Shingles and signature bands are hashed with xxhash64. The function is fast,
// well distributed and, unlike hash/maphash, stable across processes, which is
// required for snapshots and for reproducible signatures:
//
//	base := hash.String("quick brown fox")
//	key := hash.Band(sig[0:8])
//
// # Permutation parameters
//
// MinHash permutations are parameterised by (a, b) pairs derived from a seed
// and the permutation index with Seeded. The same seed always yields the same
// parameters, so signatures are comparable across runs.
//
// # CRC32-Castagnoli (CRC32C)
//
// Snapshots carry a CRC32C trailer over their uncompressed body:
//
//	checksum := hash.CRC32C(body)
package hash
