package vecstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/vecstore/archive"
	"github.com/hupe1980/vecstore/distance"
	"github.com/hupe1980/vecstore/metadata"
	"github.com/hupe1980/vecstore/model"
)

// Metadata keys attached to entries imported from an embeddings archive.
const (
	MetaKeyModelInfo     = "model_info"
	MetaKeyOriginalIndex = "original_index"
)

// FromEmbeddingsArchive builds a store from an embeddings archive read
// through the configured blob store. Every entry is added in archive order
// with metadata {"model_info": ..., "original_index": i}.
//
// The archive's model info fixes the dimension. An archive without one is
// accepted and sized from its vectors.
func FromEmbeddingsArchive(ctx context.Context, path string, metric distance.Metric, optFns ...Option) (*Store, error) {
	opts := applyOptions(optFns)

	s, info, err := fromEmbeddingsArchive(ctx, path, metric, opts, optFns)

	count := 0
	if s != nil {
		count = s.Len()
	}

	opts.logger.LogArchiveImport(ctx, path, info.Name, count, err)

	return s, err
}

func fromEmbeddingsArchive(ctx context.Context, path string, metric distance.Metric, opts options, optFns []Option) (*Store, model.Info, error) {
	a, err := archive.Load(ctx, opts.blobStore, path)
	if err != nil {
		return nil, model.Info{}, &ErrDeserialization{Path: path, cause: err}
	}

	info := a.ModelInfo
	if info == nil {
		opts.logger.WarnContext(ctx, "archive carries no model info",
			"path", path,
			"dimension", a.Dimension(),
		)
		info = opts.modelInfo
	} else if opts.modelInfo != nil && opts.modelInfo.Dimension != info.Dimension {
		return nil, *info, invalidConfig(nil, "archive model %s does not match configured model %s", info, opts.modelInfo)
	}

	storeOpts := optFns
	if info != nil {
		storeOpts = append(slices.Clone(optFns), WithModelInfo(*info))
	}

	s, err := New(a.Dimension(), metric, storeOpts...)
	if err != nil {
		return nil, model.Info{}, err
	}

	docs := make([]metadata.Document, len(a.Entries))
	for i := range a.Entries {
		doc := metadata.Document{MetaKeyOriginalIndex: i}
		if info != nil {
			doc[MetaKeyModelInfo] = info.AsMap()
		}
		docs[i] = doc
	}

	if err := s.Add(ctx, a.Vectors(), a.IDs(), docs); err != nil {
		return nil, model.Info{}, fmt.Errorf("import %s: %w", path, err)
	}

	var out model.Info
	if info != nil {
		out = *info
	}

	return s, out, nil
}
