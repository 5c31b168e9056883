package embedding

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/vecstore/archive"
	"github.com/hupe1980/vecstore/metadata"
	"github.com/hupe1980/vecstore/model"
)

// Document is one text to embed.
type Document struct {
	ID       string            `json:"id"`
	Text     string            `json:"processed_article"`
	Metadata metadata.Document `json:"metadata,omitempty"`
}

// LoadDocuments decodes a JSON array of documents. The text field is named
// processed_article, matching the output of the preprocessing step.
func LoadDocuments(r io.Reader) ([]Document, error) {
	var docs []Document
	if err := gojson.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("embedding: decode documents: %w", err)
	}

	return docs, nil
}

// Sink receives embedded batches.
type Sink interface {
	WriteBatch(ctx context.Context, ids []string, vectors [][]float32, docs []metadata.Document, info model.Info) error
}

// Adder is the part of a store a StoreSink writes to.
type Adder interface {
	Add(ctx context.Context, vectors [][]float32, ids []string, docs []metadata.Document) error
}

// StoreSink adds every batch to a store.
type StoreSink struct {
	Store Adder
}

// WriteBatch implements Sink.
func (s StoreSink) WriteBatch(ctx context.Context, ids []string, vectors [][]float32, docs []metadata.Document, _ model.Info) error {
	return s.Store.Add(ctx, vectors, ids, docs)
}

// ArchiveSink writes every vector to an archive.Writer and records the model
// info. The caller closes the writer.
type ArchiveSink struct {
	Writer *archive.Writer
}

// WriteBatch implements Sink. Metadata is not part of the archive format and
// is dropped.
func (s ArchiveSink) WriteBatch(_ context.Context, ids []string, vectors [][]float32, _ []metadata.Document, info model.Info) error {
	for i, id := range ids {
		if err := s.Writer.Add(id, vectors[i]); err != nil {
			return err
		}
	}

	return s.Writer.SetModelInfo(info)
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	BatchSize int
	Logger    *slog.Logger
}

// Pipeline embeds documents batch by batch.
type Pipeline struct {
	embedder  Embedder
	batchSize int
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline around e.
func NewPipeline(e Embedder, optFns ...func(o *PipelineOptions)) *Pipeline {
	opts := PipelineOptions{BatchSize: DefaultBatchSize}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Pipeline{
		embedder:  e,
		batchSize: opts.BatchSize,
		logger:    opts.Logger,
	}
}

// Run embeds docs and writes each batch to sink. It returns the model info
// of the first batch; later batches must agree on the dimension.
func (p *Pipeline) Run(ctx context.Context, docs []Document, sink Sink) (model.Info, error) {
	if len(docs) == 0 {
		return model.Info{}, ErrEmptyInput
	}

	var info model.Info

	for start := 0; start < len(docs); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			return info, err
		}

		end := min(start+p.batchSize, len(docs))
		batch := docs[start:end]

		ids := make([]string, len(batch))
		texts := make([]string, len(batch))
		metas := make([]metadata.Document, len(batch))

		for i, d := range batch {
			ids[i] = d.ID
			texts[i] = d.Text
			metas[i] = d.Metadata
		}

		vecs, batchInfo, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return info, fmt.Errorf("embedding: batch [%d:%d]: %w", start, end, err)
		}

		if start == 0 {
			info = batchInfo
		} else if batchInfo.Dimension != info.Dimension {
			return info, fmt.Errorf("%w: batch [%d:%d] has dimension %d, expected %d", ErrBackendResponse, start, end, batchInfo.Dimension, info.Dimension)
		}

		if err := sink.WriteBatch(ctx, ids, vecs, metas, info); err != nil {
			return info, fmt.Errorf("embedding: write batch [%d:%d]: %w", start, end, err)
		}

		p.logger.Debug("embedded batch",
			slog.Int("start", start),
			slog.Int("size", len(batch)),
			slog.String("model", info.Name),
		)
	}

	p.logger.Info("embedding complete",
		slog.Int("documents", len(docs)),
		slog.String("model", info.String()),
	)

	return info, nil
}

// WriteArchive embeds docs into an archive written to w.
func (p *Pipeline) WriteArchive(ctx context.Context, docs []Document, w io.Writer, optFns ...func(o *archive.WriterOptions)) (model.Info, error) {
	aw := archive.NewWriter(w, optFns...)

	info, err := p.Run(ctx, docs, ArchiveSink{Writer: aw})
	if err != nil {
		return info, err
	}

	return info, aw.Close()
}

// IngestInto embeds docs and adds them to store.
func (p *Pipeline) IngestInto(ctx context.Context, docs []Document, store Adder) (model.Info, error) {
	return p.Run(ctx, docs, StoreSink{Store: store})
}
