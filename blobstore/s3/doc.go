// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("snapshots/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	err = vs.Save(ctx, "articles") // writes articles.index and articles.meta
//
// Small blobs are written with a single PutObject carrying a CRC32C
// checksum. Blobs larger than the configured part size go through the
// multipart uploader. S3 object writes are atomic, which is what
// blobstore.BlobStore.Put requires.
package s3
