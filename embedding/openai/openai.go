// Package openai implements embedding.Embedder on the OpenAI embeddings API,
// including Azure OpenAI deployments.
package openai

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/vecstore/embedding"
	"github.com/hupe1980/vecstore/model"
)

// maxBatch is the API's per-request input limit.
const maxBatch = 2048

// Embedder calls the embeddings endpoint.
type Embedder struct {
	client    openaisdk.Client
	model     string
	modelType string
	dims      int
}

var _ embedding.Embedder = (*Embedder)(nil)

// New creates an Embedder from cfg. Extra request options are appended after
// the ones derived from cfg.
func New(cfg embedding.Config, extra ...option.RequestOption) (*Embedder, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []option.RequestOption

	switch cfg.Backend {
	case embedding.BackendAzure:
		opts = append(opts,
			azure.WithEndpoint(cfg.AzureEndpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	default:
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
	}

	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	opts = append(opts, extra...)

	return &Embedder{
		client:    openaisdk.NewClient(opts...),
		model:     cfg.Model,
		modelType: cfg.Backend,
		dims:      cfg.Dimensions,
	}, nil
}

// NewFromConfig builds the configured backend, wrapped in a rate limiter when
// cfg.RequestsPerSecond is set.
func NewFromConfig(cfg embedding.Config, extra ...option.RequestOption) (embedding.Embedder, error) {
	e, err := New(cfg, extra...)
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerSecond > 0 {
		return embedding.NewRateLimited(e, cfg.RequestsPerSecond, 1), nil
	}

	return e, nil
}

// Model returns the model (or Azure deployment) name.
func (e *Embedder) Model() string { return e.model }

// Embed returns the embedding for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, model.Info, error) {
	if text == "" {
		return nil, model.Info{}, embedding.ErrEmptyInput
	}

	vecs, info, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, info, err
	}

	return vecs[0], info, nil
}

// EmbedBatch returns embeddings for texts. Inputs beyond the per-request
// limit are split into several calls.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, model.Info, error) {
	if len(texts) == 0 {
		return nil, model.Info{}, embedding.ErrEmptyInput
	}

	out := make([][]float32, len(texts))

	for i := 0; i < len(texts); i += maxBatch {
		end := min(i+maxBatch, len(texts))

		vecs, err := e.call(ctx, texts[i:end])
		if err != nil {
			return nil, model.Info{}, fmt.Errorf("openai: embed [%d:%d]: %w", i, end, err)
		}

		copy(out[i:], vecs)
	}

	info, err := embedding.CheckBatch(out, len(texts), model.Info{Name: e.model, Type: e.modelType})
	if err != nil {
		return nil, info, err
	}

	return out, info, nil
}

func (e *Embedder) call(ctx context.Context, texts []string) ([][]float32, error) {
	params := openaisdk.EmbeddingNewParams{
		Model:          e.model,
		Input:          openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		EncodingFormat: openaisdk.EmbeddingNewParamsEncodingFormatFloat,
	}
	if e.dims > 0 {
		params.Dimensions = openaisdk.Int(int64(e.dims))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}

	vecs := make([][]float32, len(texts))

	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= int64(len(texts)) {
			return nil, fmt.Errorf("%w: index %d for %d inputs", embedding.ErrBackendResponse, item.Index, len(texts))
		}

		v := make([]float32, len(item.Embedding))
		for j, f := range item.Embedding {
			v[j] = float32(f)
		}
		vecs[item.Index] = v
	}

	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("%w: missing embedding %d", embedding.ErrBackendResponse, i)
		}
	}

	return vecs, nil
}
