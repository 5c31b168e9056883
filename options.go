package vecstore

import (
	"log/slog"

	"github.com/hupe1980/vecstore/blobstore"
	"github.com/hupe1980/vecstore/codec"
	"github.com/hupe1980/vecstore/model"
	"github.com/hupe1980/vecstore/persistence"
)

type options struct {
	codec             codec.Codec
	compression       persistence.CompressionType
	blobStore         blobstore.BlobStore
	metricsCollector  MetricsCollector
	logger            *Logger
	memoryLimit       int64
	ioLimit           int64
	searchParallelism int
	modelInfo         *model.Info
}

// Option configures store construction and load behavior.
type Option func(*options)

// WithCodec configures the codec used to encode the .meta artifact.
// Loading always uses the codec recorded in the artifact.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures block compression of the .index payload.
func WithCompression(c persistence.CompressionType) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlobStore configures where Save, Load and FromEmbeddingsArchive read
// and write. Paths are names within the store.
//
// The default is a local store rooted at the working directory, so paths
// behave like ordinary file paths.
func WithBlobStore(bs blobstore.BlobStore) Option {
	return func(o *options) {
		o.blobStore = bs
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vecstore.BasicMetricsCollector{}
//	st, _ := vecstore.New(384, distance.MetricL2, vecstore.WithMetricsCollector(metrics))
//	// ... use st ...
//	stats := metrics.Snapshot()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vecstore.NewJSONLogger(slog.LevelInfo)
//	st, _ := vecstore.New(384, distance.MetricL2, vecstore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMemoryLimit caps the bytes of vector payload the store may hold.
// Add fails with ErrMemoryLimitExceeded beyond it. Zero means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit throttles Save and Load to bytes per second. Zero means
// unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithSearchParallelism bounds the goroutines used by BatchSearch.
func WithSearchParallelism(n int) Option {
	return func(o *options) {
		o.searchParallelism = n
	}
}

// WithModelInfo records the embedding model that produces the vectors.
// New rejects a model whose dimension differs from the store's.
func WithModelInfo(info model.Info) Option {
	return func(o *options) {
		o.modelInfo = &info
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		compression:      persistence.CompressionNone,
		blobStore:        blobstore.NewLocalStore(""),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
