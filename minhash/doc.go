// Package minhash computes MinHash signatures of shingle sets.
//
// A signature is a fixed-length sketch of per-permutation minimum hash values.
// The fraction of positions at which two signatures agree estimates the
// Jaccard similarity of the underlying shingle sets.
//
//	h, _ := minhash.New(128, 0)
//	a := h.Signature("the cat sat", shingle.Words())
//	b := h.Signature("the cat sat on the mat", shingle.Words())
//	minhash.Similarity(a, b) // ≈ 0.6
//
// Permutations are universal hash functions h_i(x) = (a_i·x + b_i) mod (2^61−1)
// over the xxhash64 of each shingle. The (a_i, b_i) parameters are derived from
// the seed, so a Hasher is fully determined by (numPerm, seed).
//
// Empty shingle sets yield a signature where every entry equals Sentinel.
// Such signatures are valid input everywhere and agree with each other.
package minhash
