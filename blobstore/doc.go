// Package blobstore abstracts where snapshot artifacts live.
//
// A BlobStore holds named, immutable blobs. Put replaces a blob atomically:
// readers observe either the previous contents or the new contents, never a
// partial write. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system, mmap reads, temp file + rename writes
//   - MemoryStore: in-process map, used by tests
//   - s3.Store: Amazon S3 (and S3 Express) via aws-sdk-go-v2
//   - minio.Store: MinIO and other S3-compatible services
package blobstore
