// Package lshdedup finds near-duplicate text records and groups them without
// comparing all pairs.
//
// Every record is turned into a set of shingles and sketched into a MinHash
// signature. Signatures are split into bands and bucketed by band content,
// so records that agree on a whole band become candidates of each other.
// A sequential clustering pass then folds the candidate lists into the
// connected components of the candidate relation.
//
// # Quick Start
//
//	res, err := lshdedup.Deduplicate(ctx, records,
//	    lshdedup.WithNumPerm(128),
//	    lshdedup.WithNumBands(16),
//	    lshdedup.WithThreshold(0.4),
//	)
//	if err != nil {
//	    return err
//	}
//	for _, group := range res.Groups() {
//	    fmt.Println(group)
//	}
//	fmt.Println(res.Summary()) // Total: 3, Unique: 2, Diff: 1
//
// The same configuration is available through an immutable builder:
//
//	d := lshdedup.New().NumPerm(256).NumBands(32).MustBuild()
//	res, err := d.Run(ctx, records)
//
// # Choosing bands
//
// With b bands of r rows, two records of Jaccard similarity s become
// candidates with probability 1-(1-s^r)^b. More bands raise recall, more rows
// raise precision. The threshold is applied to the full signature afterwards.
//
// # Packages
//
//   - shingle: tokenizers (words, word n-grams, character n-grams)
//   - minhash: signatures and similarity estimates
//   - lsh: the banding index, its queries and snapshots
//   - dedup: the clustering pass
//   - source, report, blobstore: reading corpora and writing groups
package lshdedup
