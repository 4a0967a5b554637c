// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("dedup/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	src, err := store.Open(ctx, "corpus.csv.zst")
//
// # Features
//
//   - Streaming reads of whole objects
//   - Streaming multipart uploads for large reports and snapshots
//   - CRC32C checksums on uploads
//   - Configurable endpoint for S3-compatible services
package s3
