// Package flat provides an exact brute-force metric index.
//
// Vectors live in one contiguous []float32 (row-major, offset*dimension), so a
// search is a linear scan with good cache locality. Batched searches fan out
// over an errgroup bounded by Options.Parallelism; each row is computed by the
// same sequential scan, so batched and single results are identical.
package flat

import (
	"context"
	"runtime"
	"sync"

	"github.com/hupe1980/vecstore/distance"
	"github.com/hupe1980/vecstore/index"
	"github.com/hupe1980/vecstore/internal/queue"
	"golang.org/x/sync/errgroup"
)

// Compile-time check to ensure Flat satisfies the index capability.
var _ index.Index = (*Flat)(nil)

// Options contains configuration options for the flat index.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	// It must be > 0 and is enforced for all adds and searches.
	Dimension int

	// Metric selects squared Euclidean (ascending-best) or inner product
	// (descending-best).
	Metric distance.Metric

	// Parallelism bounds the goroutines used by SearchBatch.
	// Zero means GOMAXPROCS.
	Parallelism int
}

// DefaultOptions contains the default configuration options for the flat index.
var DefaultOptions = Options{
	Dimension: 0,
	Metric:    distance.MetricL2,
}

// Flat is a flat index. Reads run concurrently; writes are exclusive.
type Flat struct {
	mu    sync.RWMutex
	opts  Options
	dist  distance.Func
	data  []float32
	count int
}

// New creates a new instance of the flat index.
// Dimension and Metric are required and must be set at creation time.
func New(optFns ...func(o *Options)) (*Flat, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := index.ValidateOptions(opts.Dimension, opts.Metric); err != nil {
		return nil, err
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}

	dist, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, err
	}

	return &Flat{opts: opts, dist: dist}, nil
}

// Dimension returns the vector width.
func (f *Flat) Dimension() int { return f.opts.Dimension }

// Metric returns the metric family.
func (f *Flat) Metric() distance.Metric { return f.opts.Metric }

// Count returns the number of stored vectors.
func (f *Flat) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}

// Bytes returns the size of the float payload.
func (f *Flat) Bytes() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return int64(len(f.data)) * 4
}

// Add appends vectors at offsets Count(), Count()+1, ... Nothing is stored if
// any vector has the wrong width.
func (f *Flat) Add(vectors [][]float32) error {
	if err := index.CheckDimension(f.opts.Dimension, vectors...); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.data = growFloats(f.data, len(vectors)*f.opts.Dimension)
	for _, v := range vectors {
		f.data = append(f.data, v...)
	}
	f.count += len(vectors)
	return nil
}

func growFloats(s []float32, n int) []float32 {
	if cap(s)-len(s) >= n {
		return s
	}
	out := make([]float32, len(s), len(s)+max(n, len(s)/4))
	copy(out, s)
	return out
}

// Vector returns a copy of the vector stored at offset.
func (f *Flat) Vector(offset uint32) ([]float32, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if int(offset) >= f.count {
		return nil, false
	}
	dim := f.opts.Dimension
	start := int(offset) * dim
	out := make([]float32, dim)
	copy(out, f.data[start:start+dim])
	return out, true
}

// Reset drops all vectors and releases the backing array.
func (f *Flat) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data = nil
	f.count = 0
}

// Search returns the min(k, Count()) best offsets for query. Equal scores are
// ordered by ascending offset.
func (f *Flat) Search(query []float32, k int) ([]index.SearchResult, error) {
	if k < 1 {
		return nil, index.ErrInvalidK
	}
	if err := index.CheckDimension(f.opts.Dimension, query); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.scan(query, k), nil
}

// SearchBatch searches every query with the same k.
func (f *Flat) SearchBatch(ctx context.Context, queries [][]float32, k int) ([][]index.SearchResult, error) {
	if k < 1 {
		return nil, index.ErrInvalidK
	}
	if err := index.CheckDimension(f.opts.Dimension, queries...); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	results := make([][]index.SearchResult, len(queries))
	if len(queries) == 0 {
		return results, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Parallelism)

	for i := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = f.scan(queries[i], k)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// scan must be called with f.mu held.
func (f *Flat) scan(query []float32, k int) []index.SearchResult {
	if f.count == 0 {
		return []index.SearchResult{}
	}

	top := queue.NewTopK(min(k, f.count), f.opts.Metric.HigherIsBetter())

	dim := f.opts.Dimension
	for off := 0; off < f.count; off++ {
		row := f.data[off*dim : (off+1)*dim]
		top.Push(queue.Item{Offset: uint32(off), Distance: f.dist(query, row)})
	}

	items := top.Drain()
	results := make([]index.SearchResult, len(items))
	for i, it := range items {
		results[i] = index.SearchResult{Offset: it.Offset, Distance: it.Distance}
	}
	return results
}
