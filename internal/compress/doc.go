// Package compress wraps the LZ4 and zstd codecs used by snapshots and inputs.
//
// Two shapes are offered:
//
//   - Block: Compress/Decompress a whole buffer with a small header
//     ([UncompressedSize uint32][CompressedSize uint32][Data...]). Blocks that
//     do not shrink by at least 10% are stored raw (CompressedSize == 0).
//   - Stream: NewReader/NewWriter wrap io.Reader/io.Writer for compressed files
//     (.zst, .lz4) read by the source package.
package compress
