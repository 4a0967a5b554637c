// Package source reads record texts for deduplication.
//
// A source yields one string per record; the position of a text in the
// returned slice is its record id. Supported formats:
//
//   - CSV: one column selected by header name or zero-based index
//   - Lines: one record per line
//   - JSONL: one JSON object per line, one string field selected by name
//   - SQLite: the first column of a query, in result order
//
// Open picks the format from the blob name and decompresses ".zst" and ".lz4"
// inputs on the fly:
//
//	texts, err := source.Open(ctx, store, "news.csv.zst", source.WithColumn("body"))
package source
