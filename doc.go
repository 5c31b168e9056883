// Package vecstore provides an embedded, exact-search vector store for Go.
//
// A Store holds fixed-dimension float32 embeddings keyed by string
// identifiers, each with an optional metadata document. Queries scan every
// vector (no approximation) under squared Euclidean distance or inner
// product. State can be saved to and restored from a blob store: local
// disk, memory, S3 or MinIO.
//
// # Quick Start
//
//	ctx := context.Background()
//	st, _ := vecstore.New(3, vecstore.MetricL2)
//
//	_ = st.Add(ctx,
//	    [][]float32{{1, 0, 0}, {0, 1, 0}},
//	    []string{"a", "b"},
//	    []metadata.Document{{"title": "first"}, {"title": "second"}},
//	)
//
//	results, _ := st.Search(ctx, []float32{1, 0, 0}, vecstore.DefaultK)
//	for _, r := range results {
//	    fmt.Println(r.ID, r.Distance, r.Metadata)
//	}
//
// # Ordering
//
// MetricL2 ranks ascending (0 is an exact match); MetricIP ranks descending.
// Equal scores are ordered by insertion, oldest first.
//
// # Persistence
//
// Save writes two artifacts next to each other:
//
//	<path>.index  binary header plus the vectors, CRC32 checked, optionally LZ4/ZSTD compressed
//	<path>.meta   identifiers, metadata, dimension, metric and model info
//
// Both carry a generation stamp; Load refuses a pair from different saves and
// leaves the store untouched on any error.
//
//	_ = st.Save(ctx, "data/articles")
//	st2, _ := vecstore.Open(ctx, "data/articles")
//
// Use WithBlobStore to persist elsewhere:
//
//	bucket, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("vectors/"))
//	st, _ := vecstore.New(384, vecstore.MetricIP, vecstore.WithBlobStore(bucket))
//
// # Embeddings Archives
//
// FromEmbeddingsArchive imports an .npz archive holding one array per
// identifier and a "__model_info__" record, as written by numpy.savez or by
// the embedding package's Pipeline.
//
//	st, _ := vecstore.FromEmbeddingsArchive(ctx, "article_embeddings.npz", vecstore.MetricL2)
//
// # Concurrency
//
// A Store is safe for concurrent use. Searches run in parallel with each
// other; Add, Delete, Clear and Load are exclusive.
package vecstore
