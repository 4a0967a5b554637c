// Package shingle turns record text into sets of tokens ("shingles").
//
// Shingle sets are the unit of set-similarity comparison: two records are
// near-duplicates when their shingle sets have a high Jaccard similarity.
//
// # Built-in Shinglers
//
//	shingle.Words()         // lowercase whitespace tokens (default)
//	shingle.WordNGrams(3)   // contiguous 3-word windows
//	shingle.CharNGrams(5)   // rune 5-grams
//
// Any shingler can be wrapped with Normalize to fold case, strip diacritics and
// apply compatibility decomposition before tokenization:
//
//	s := shingle.Normalize(shingle.Words())
//	s.Shingles("Café  CAFE") // ["cafe"]
//
// Shinglers are stateless and safe for concurrent use.
package shingle
