package vecstore

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vecstore/distance"
	"github.com/hupe1980/vecstore/index"
	"github.com/hupe1980/vecstore/index/flat"
	"github.com/hupe1980/vecstore/internal/registry"
	"github.com/hupe1980/vecstore/internal/resource"
	"github.com/hupe1980/vecstore/internal/validate"
	"github.com/hupe1980/vecstore/metadata"
	"github.com/hupe1980/vecstore/model"
	"github.com/hupe1980/vecstore/persistence"
)

// Supported metrics.
const (
	// MetricL2 is squared Euclidean distance; lower is closer.
	MetricL2 = distance.MetricL2
	// MetricIP is the inner product; higher is closer.
	MetricIP = distance.MetricIP
)

// DefaultK is the conventional result count for Search.
const DefaultK = 5

// SearchResult is one match, best first within a result list.
type SearchResult struct {
	ID       string
	Distance float32
	Metadata metadata.Document
}

// Stats describes the store contents.
type Stats struct {
	Count     int
	Dimension int
	Metric    distance.Metric
	// ApproximateMemoryBytes covers the float payload only: Count*Dimension*4.
	ApproximateMemoryBytes int64
	ModelInfo              *model.Info
}

// state is everything Load replaces in one step.
type state struct {
	idx       *flat.Flat
	table     *registry.Table
	modelInfo *model.Info
}

// Store is an exact-search vector store keyed by string identifiers.
//
// Mutations (Add, Delete, Clear, Load) take the write lock; Search,
// BatchSearch, Get and Stats share the read lock.
type Store struct {
	mu   sync.RWMutex
	st   state
	opts options
	res  *resource.Controller
}

// New creates an empty store for vectors of the given dimension.
func New(dimension int, metric distance.Metric, optFns ...Option) (*Store, error) {
	opts := applyOptions(optFns)

	if err := index.ValidateOptions(dimension, metric); err != nil {
		return nil, translateError(err)
	}

	if opts.modelInfo != nil {
		if err := opts.modelInfo.CompatibleWith(dimension); err != nil {
			return nil, invalidConfig(err, "%v", err)
		}
	}

	idx, err := newIndex(dimension, metric, opts)
	if err != nil {
		return nil, translateError(err)
	}

	return &Store{
		st:   state{idx: idx, table: registry.New(), modelInfo: opts.modelInfo},
		opts: opts,
		res:  newController(opts),
	}, nil
}

// Open creates a store from artifacts written by Save. The persisted
// dimension, metric and model info are used; WithModelInfo only applies when
// the artifacts carry none.
func Open(ctx context.Context, path string, optFns ...Option) (*Store, error) {
	opts := applyOptions(optFns)

	s := &Store{opts: opts, res: newController(opts)}
	if err := s.Load(ctx, path); err != nil {
		return nil, err
	}

	return s, nil
}

func newController(opts options) *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   opts.memoryLimit,
		IOLimitBytesPerSec: opts.ioLimit,
	})
}

func newIndex(dimension int, metric distance.Metric, opts options) (*flat.Flat, error) {
	return flat.New(func(o *flat.Options) {
		o.Dimension = dimension
		o.Metric = metric
		o.Parallelism = opts.searchParallelism
	})
}

func payloadBytes(count, dimension int) int64 {
	return int64(count) * int64(dimension) * 4
}

// Dimension returns the vector width.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.st.idx.Dimension()
}

// Metric returns the metric family.
func (s *Store) Metric() distance.Metric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.st.idx.Metric()
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.st.table.Len()
}

// ModelInfo returns the embedding model recorded for the store, if any.
func (s *Store) ModelInfo() (model.Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.st.modelInfo == nil {
		return model.Info{}, false
	}

	return *s.st.modelInfo, true
}

// Stats returns the live count, dimension, metric and payload size.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := s.st.table.Len()
	dim := s.st.idx.Dimension()

	stats := Stats{
		Count:                  count,
		Dimension:              dim,
		Metric:                 s.st.idx.Metric(),
		ApproximateMemoryBytes: payloadBytes(count, dim),
	}
	if s.st.modelInfo != nil {
		info := *s.st.modelInfo
		stats.ModelInfo = &info
	}

	return stats
}

// Add inserts vectors under ids with optional per-entry metadata (docs may be
// nil). The batch is validated as a whole; on error nothing is stored.
func (s *Store) Add(ctx context.Context, vectors [][]float32, ids []string, docs []metadata.Document) error {
	start := time.Now()

	err := s.add(vectors, ids, docs)

	s.opts.metricsCollector.RecordAdd(len(vectors), time.Since(start), err)
	s.opts.logger.LogAdd(ctx, len(vectors), err)

	return err
}

func (s *Store) add(vectors [][]float32, ids []string, docs []metadata.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.st.idx.Dimension()

	if err := validate.Batch(dim, vectors, ids, docs); err != nil {
		return translateError(err)
	}

	if err := s.st.table.CheckNew(ids); err != nil {
		return translateError(err)
	}

	if len(vectors) == 0 {
		return nil
	}

	size := payloadBytes(len(vectors), dim)
	if err := s.res.AcquireMemory(size); err != nil {
		return err
	}

	rows := make([]registry.Row, len(vectors))
	for i, v := range vectors {
		rows[i] = registry.Row{ID: ids[i], Vector: slices.Clone(v)}
		if docs != nil {
			rows[i].Metadata = docs[i].Clone()
		}
	}

	base := uint32(s.st.table.Len())

	if err := s.st.table.Append(rows); err != nil {
		s.res.ReleaseMemory(size)
		return translateError(err)
	}

	if err := s.st.idx.Add(vectors); err != nil {
		added := roaring.New()
		added.AddRange(uint64(base), uint64(base)+uint64(len(rows)))
		s.st.table.RemoveOffsets(added)
		s.res.ReleaseMemory(size)

		return translateError(err)
	}

	return nil
}

// Search returns up to k entries closest to query, best first. An empty
// store yields an empty result.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	start := time.Now()

	results, err := s.search(query, k)

	s.opts.metricsCollector.RecordSearch(k, time.Since(start), err)
	s.opts.logger.LogSearch(ctx, 1, k, len(results), err)

	return results, err
}

func (s *Store) search(query []float32, k int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := validate.K(k); err != nil {
		return nil, translateError(err)
	}

	if err := validate.Query(s.st.idx.Dimension(), query); err != nil {
		return nil, translateError(err)
	}

	hits, err := s.st.idx.Search(query, k)
	if err != nil {
		return nil, translateError(err)
	}

	return s.resolve(hits), nil
}

// BatchSearch runs Search for every query row. Result i belongs to
// queries[i] and equals Search(queries[i], k).
func (s *Store) BatchSearch(ctx context.Context, queries [][]float32, k int) ([][]SearchResult, error) {
	start := time.Now()

	results, err := s.batchSearch(ctx, queries, k)

	found := 0
	for _, r := range results {
		found += len(r)
	}

	s.opts.metricsCollector.RecordBatchSearch(len(queries), k, time.Since(start), err)
	s.opts.logger.LogSearch(ctx, len(queries), k, found, err)

	return results, err
}

func (s *Store) batchSearch(ctx context.Context, queries [][]float32, k int) ([][]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := validate.K(k); err != nil {
		return nil, translateError(err)
	}

	if err := validate.Vectors(s.st.idx.Dimension(), queries); err != nil {
		return nil, translateError(err)
	}

	hits, err := s.st.idx.SearchBatch(ctx, queries, k)
	if err != nil {
		return nil, translateError(err)
	}

	out := make([][]SearchResult, len(hits))
	for i, h := range hits {
		out[i] = s.resolve(h)
	}

	return out, nil
}

// resolve maps offsets to entries. Offsets without a row are skipped.
func (s *Store) resolve(hits []index.SearchResult) []SearchResult {
	out := make([]SearchResult, 0, len(hits))

	for _, h := range hits {
		row, ok := s.st.table.Row(h.Offset)
		if !ok {
			continue
		}

		out = append(out, SearchResult{
			ID:       row.ID,
			Distance: h.Distance,
			Metadata: row.Metadata.Clone(),
		})
	}

	return out
}

// Get returns a copy of the vector and metadata stored under id. ok is false
// when id is not live.
func (s *Store) Get(id string) (vector []float32, doc metadata.Document, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.st.table.Lookup(id)
	if !ok {
		return nil, nil, false
	}

	return slices.Clone(row.Vector), row.Metadata.Clone(), true
}

// Delete removes the live ids among ids and returns how many were removed.
// Unknown ids are ignored. The index is rebuilt from the surviving rows.
func (s *Store) Delete(ctx context.Context, ids []string) (int, error) {
	start := time.Now()

	removed, err := s.delete(ids)

	s.opts.metricsCollector.RecordDelete(len(ids), removed, time.Since(start), err)
	s.opts.logger.LogDelete(ctx, len(ids), removed, err)

	return removed, err
}

func (s *Store) delete(ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := s.st.table.Offsets(ids)

	removed := int(doomed.GetCardinality())
	switch {
	case removed == 0:
		return 0, nil
	case removed == s.st.table.Len():
		s.clearLocked()
		return removed, nil
	}

	vecs := s.st.table.Vectors()
	keep := make([][]float32, 0, len(vecs)-removed)

	for off, v := range vecs {
		if !doomed.Contains(uint32(off)) {
			keep = append(keep, v)
		}
	}

	idx, err := newIndex(s.st.idx.Dimension(), s.st.idx.Metric(), s.opts)
	if err != nil {
		return 0, translateError(err)
	}

	if err := idx.Add(keep); err != nil {
		return 0, translateError(err)
	}

	s.st.table.RemoveOffsets(doomed)
	s.st.idx = idx
	s.res.ReleaseMemory(payloadBytes(removed, idx.Dimension()))

	return removed, nil
}

// Clear removes every entry. Dimension, metric and model info are kept.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	n := s.st.table.Len()
	s.clearLocked()
	s.mu.Unlock()

	s.opts.logger.LogClear(ctx, n)
}

func (s *Store) clearLocked() {
	n := s.st.table.Len()

	s.st.idx.Reset()
	s.st.table.Clear()
	s.res.ReleaseMemory(payloadBytes(n, s.st.idx.Dimension()))
}

// Save writes path.index and path.meta to the configured blob store. Each
// artifact is replaced atomically and both carry the same generation, so an
// interrupted save never yields a pair Load accepts.
func (s *Store) Save(ctx context.Context, path string) error {
	start := time.Now()

	data, rec, err := s.snapshot()
	if err == nil {
		err = persistence.Save(ctx, s.opts.blobStore, path, data, rec, persistence.SaveOptions{
			Codec:   s.opts.codec,
			Limiter: s.res,
		})
	}

	if err != nil {
		err = &ErrSerialization{Path: path, cause: err}
	}

	count := 0
	if rec != nil {
		count = len(rec.IDs)
	}

	s.opts.metricsCollector.RecordSave(int64(len(data)), time.Since(start), err)
	s.opts.logger.LogSave(ctx, path, count, err)

	return err
}

// snapshot serializes the index and copies the registry under the read lock.
func (s *Store) snapshot() ([]byte, *persistence.MetaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gen := persistence.NewGeneration()

	var buf bytes.Buffer
	if _, err := s.st.idx.WriteToWithOptions(&buf, flat.WriteOptions{
		Compression: s.opts.compression,
		Generation:  [16]byte(gen),
	}); err != nil {
		return nil, nil, err
	}

	rec := &persistence.MetaRecord{
		Generation: gen.String(),
		Dimension:  s.st.idx.Dimension(),
		Metric:     s.st.idx.Metric().String(),
		IDs:        s.st.table.IDs(),
		Metadata:   s.st.table.Metadata(),
	}
	if s.st.modelInfo != nil {
		info := *s.st.modelInfo
		rec.ModelInfo = &info
	}

	return buf.Bytes(), rec, nil
}

// Load replaces the store contents with the artifacts at path, adopting
// their dimension and metric. The new state is built aside and swapped in
// only on success; on error the store is unchanged.
func (s *Store) Load(ctx context.Context, path string) error {
	start := time.Now()

	st, err := s.readState(ctx, path)
	if err == nil {
		err = s.swap(st)
	}

	count := 0
	if err == nil {
		count = st.table.Len()
	}

	s.opts.metricsCollector.RecordLoad(count, time.Since(start), err)
	s.opts.logger.LogLoad(ctx, path, count, err)

	return err
}

func (s *Store) readState(ctx context.Context, path string) (state, error) {
	fail := func(err error) (state, error) {
		return state{}, &ErrDeserialization{Path: path, cause: err}
	}

	snap, err := persistence.Load(ctx, s.opts.blobStore, path, persistence.SaveOptions{Limiter: s.res})
	if err != nil {
		return fail(err)
	}

	idx, _, err := flat.Load(bytes.NewReader(snap.Index), func(o *flat.Options) {
		o.Parallelism = s.opts.searchParallelism
	})
	if err != nil {
		return fail(err)
	}

	rows := make([]registry.Row, len(snap.Meta.IDs))
	for i, id := range snap.Meta.IDs {
		vec, _ := idx.Vector(uint32(i))
		rows[i] = registry.Row{ID: id, Vector: vec, Metadata: snap.Meta.Metadata[i]}
	}

	table, err := registry.FromRows(rows)
	if err != nil {
		return fail(err)
	}

	info := snap.Meta.ModelInfo
	if info == nil {
		info = s.opts.modelInfo
	}

	if info != nil {
		if err := info.CompatibleWith(idx.Dimension()); err != nil {
			return fail(fmt.Errorf("%w: %w", persistence.ErrInconsistent, err))
		}
	}

	return state{idx: idx, table: table, modelInfo: info}, nil
}

func (s *Store) swap(st state) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var old int64
	if s.st.idx != nil {
		old = payloadBytes(s.st.table.Len(), s.st.idx.Dimension())
	}

	s.res.ReleaseMemory(old)

	if err := s.res.AcquireMemory(payloadBytes(st.table.Len(), st.idx.Dimension())); err != nil {
		_ = s.res.AcquireMemory(old)
		return err
	}

	s.st = st

	return nil
}
