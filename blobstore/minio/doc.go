// Package minio provides a BlobStore backed by MinIO or any S3-compatible
// object store (Ceph, Garage, SeaweedFS).
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "corpora", "dedup/")
//	rc, err := store.Open(ctx, "news.csv")
//
// The CLI uses Dial, which reads credentials from MINIO_ACCESS_KEY and
// MINIO_SECRET_KEY (falling back to the AWS variables).
package minio
