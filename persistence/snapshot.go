package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hupe1980/vecstore/blobstore"
	"github.com/hupe1980/vecstore/codec"
	"github.com/hupe1980/vecstore/distance"
)

const (
	// IndexSuffix names the metric index artifact.
	IndexSuffix = ".index"
	// MetaSuffix names the meta record artifact.
	MetaSuffix = ".meta"
)

// IndexName returns the index artifact name for base.
func IndexName(base string) string { return base + IndexSuffix }

// MetaName returns the meta artifact name for base.
func MetaName(base string) string { return base + MetaSuffix }

// NewGeneration returns a fresh generation stamp.
func NewGeneration() uuid.UUID { return uuid.New() }

// IOLimiter throttles artifact reads and writes.
type IOLimiter interface {
	AcquireIO(ctx context.Context, bytes int) error
}

// Snapshot is a saved store: the encoded index artifact plus its meta record.
type Snapshot struct {
	Index  []byte
	Header *FileHeader
	Meta   *MetaRecord
}

// Generation returns the generation stamped into the index header.
func (s *Snapshot) Generation() uuid.UUID {
	return uuid.UUID(s.Header.Generation)
}

// SaveOptions configures Save and Load.
type SaveOptions struct {
	Codec   codec.Codec
	Limiter IOLimiter
}

func (o SaveOptions) acquire(ctx context.Context, n int) error {
	if o.Limiter == nil {
		return nil
	}
	return o.Limiter.AcquireIO(ctx, n)
}

// Save writes base.index then base.meta. Each Put is atomic; a failure between
// the two leaves a pair whose generations differ, which Load rejects.
func Save(ctx context.Context, bs blobstore.BlobStore, base string, index []byte, rec *MetaRecord, opts SaveOptions) error {
	header, err := PeekHeader(index)
	if err != nil {
		return err
	}
	if gen := uuid.UUID(header.Generation).String(); gen != rec.Generation {
		return fmt.Errorf("%w: index %s, meta %s", ErrGenerationMismatch, gen, rec.Generation)
	}

	meta, err := EncodeMeta(rec, opts.Codec)
	if err != nil {
		return err
	}

	if err := opts.acquire(ctx, len(index)); err != nil {
		return err
	}
	if err := bs.Put(ctx, IndexName(base), index); err != nil {
		return fmt.Errorf("write %s: %w", IndexName(base), err)
	}

	if err := opts.acquire(ctx, len(meta)); err != nil {
		return err
	}
	if err := bs.Put(ctx, MetaName(base), meta); err != nil {
		return fmt.Errorf("write %s: %w", MetaName(base), err)
	}
	return nil
}

// Load reads and cross-checks both artifacts. The index payload is not decoded
// here; the metric index owns its body format.
func Load(ctx context.Context, bs blobstore.BlobStore, base string, opts SaveOptions) (*Snapshot, error) {
	index, err := blobstore.ReadAll(ctx, bs, IndexName(base))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", IndexName(base), err)
	}
	if err := opts.acquire(ctx, len(index)); err != nil {
		return nil, err
	}

	rawMeta, err := blobstore.ReadAll(ctx, bs, MetaName(base))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", MetaName(base), err)
	}
	if err := opts.acquire(ctx, len(rawMeta)); err != nil {
		return nil, err
	}

	header, err := PeekHeader(index)
	if err != nil {
		return nil, err
	}
	rec, err := DecodeMeta(rawMeta)
	if err != nil {
		return nil, err
	}

	if gen := uuid.UUID(header.Generation).String(); gen != rec.Generation {
		return nil, fmt.Errorf("%w: index %s, meta %s", ErrGenerationMismatch, gen, rec.Generation)
	}
	switch {
	case int(header.Dimension) != rec.Dimension:
		return nil, fmt.Errorf("%w: dimension %d vs %d", ErrInconsistent, header.Dimension, rec.Dimension)
	case distance.Metric(header.Metric).String() != rec.Metric:
		return nil, fmt.Errorf("%w: metric %s vs %s", ErrInconsistent, distance.Metric(header.Metric), rec.Metric)
	case header.VectorCount != uint64(len(rec.IDs)):
		return nil, fmt.Errorf("%w: %d vectors vs %d ids", ErrInconsistent, header.VectorCount, len(rec.IDs))
	}

	return &Snapshot{Index: index, Header: header, Meta: rec}, nil
}

// ParseGeneration parses a generation stamp as stored in a meta record.
func ParseGeneration(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
