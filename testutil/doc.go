// Package testutil provides deterministic test corpora.
//
// This package is intended for use in tests and benchmarks only.
//
//	rng := testutil.NewRNG(4711)
//	c := rng.Corpus(testutil.DefaultCorpusConfig())
//	// c.Texts are the records; c.Families the planted duplicate groups
//
// Families are built from a shared base text with a few word edits per
// member, so members are highly similar while distinct families share
// almost no words.
package testutil
