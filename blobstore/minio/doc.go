// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible services such as Ceph,
// SeaweedFS and Garage, without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.New("localhost:9000", "snapshots", minioblob.Config{
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Prefix:    "articles/",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vs, err := vecstore.New(384, distance.MetricIP, vecstore.WithBlobStore(store))
package minio
