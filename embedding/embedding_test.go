package embedding

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecstore/archive"
	"github.com/hupe1980/vecstore/metadata"
	"github.com/hupe1980/vecstore/model"
)

// fakeEmbedder maps a text to [len(text), 1, 0, ...].
type fakeEmbedder struct {
	dim     int
	batches []int
	err     error
}

func (f *fakeEmbedder) vector(text string) []float32 {
	v := make([]float32, f.dim)
	v[0] = float32(len(text))
	if f.dim > 1 {
		v[1] = 1
	}

	return v
}

func (f *fakeEmbedder) info() model.Info {
	return model.Info{Name: "fake", Type: "test", Dimension: f.dim}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, model.Info, error) {
	if f.err != nil {
		return nil, model.Info{}, f.err
	}

	return f.vector(text), f.info(), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, model.Info, error) {
	if f.err != nil {
		return nil, model.Info{}, f.err
	}

	f.batches = append(f.batches, len(texts))

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t)
	}

	return out, f.info(), nil
}

type recordingAdder struct {
	ids  []string
	vecs [][]float32
	docs []metadata.Document
}

func (r *recordingAdder) Add(_ context.Context, vectors [][]float32, ids []string, docs []metadata.Document) error {
	r.vecs = append(r.vecs, vectors...)
	r.ids = append(r.ids, ids...)
	r.docs = append(r.docs, docs...)

	return nil
}

func makeDocs(n int) []Document {
	docs := make([]Document, n)
	for i := range docs {
		docs[i] = Document{
			ID:       "doc-" + strings.Repeat("x", i%5) + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Text:     strings.Repeat("w", i+1),
			Metadata: metadata.Document{"n": i},
		}
	}

	return docs
}

func TestPipeline(t *testing.T) {
	ctx := context.Background()

	t.Run("batches of 32", func(t *testing.T) {
		e := &fakeEmbedder{dim: 3}
		adder := &recordingAdder{}

		info, err := NewPipeline(e).IngestInto(ctx, makeDocs(70), adder)
		require.NoError(t, err)

		assert.Equal(t, []int{32, 32, 6}, e.batches)
		assert.Equal(t, "fake", info.Name)
		assert.Equal(t, 3, info.Dimension)
		require.Len(t, adder.ids, 70)
		assert.Equal(t, []float32{70, 1, 0}, adder.vecs[69])
		assert.Equal(t, 5, adder.docs[5]["n"])
	})

	t.Run("custom batch size", func(t *testing.T) {
		e := &fakeEmbedder{dim: 2}

		_, err := NewPipeline(e, func(o *PipelineOptions) { o.BatchSize = 4 }).IngestInto(ctx, makeDocs(10), &recordingAdder{})
		require.NoError(t, err)
		assert.Equal(t, []int{4, 4, 2}, e.batches)
	})

	t.Run("archive", func(t *testing.T) {
		var buf bytes.Buffer

		docs := makeDocs(5)

		info, err := NewPipeline(&fakeEmbedder{dim: 2}).WriteArchive(ctx, docs, &buf)
		require.NoError(t, err)

		a, err := archive.Parse(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, info, *a.ModelInfo)
		require.Len(t, a.Entries, 5)
		assert.Equal(t, docs[2].ID, a.Entries[2].ID)
		assert.Equal(t, []float32{3, 1}, a.Entries[2].Vector)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewPipeline(&fakeEmbedder{dim: 2}).IngestInto(ctx, nil, &recordingAdder{})
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("backend error", func(t *testing.T) {
		boom := errors.New("boom")

		_, err := NewPipeline(&fakeEmbedder{dim: 2, err: boom}).IngestInto(ctx, makeDocs(3), &recordingAdder{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewPipeline(&fakeEmbedder{dim: 2}).IngestInto(cctx, makeDocs(3), &recordingAdder{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCheckBatch(t *testing.T) {
	info, err := CheckBatch([][]float32{{1, 2}, {3, 4}}, 2, model.Info{Name: "m"})
	require.NoError(t, err)
	assert.Equal(t, 2, info.Dimension)

	_, err = CheckBatch([][]float32{{1, 2}}, 2, model.Info{})
	assert.ErrorIs(t, err, ErrBackendResponse)

	_, err = CheckBatch([][]float32{{1, 2}, {3}}, 2, model.Info{})
	assert.ErrorIs(t, err, ErrBackendResponse)

	_, err = CheckBatch([][]float32{{}}, 1, model.Info{})
	assert.ErrorIs(t, err, ErrBackendResponse)
}

func TestRateLimited(t *testing.T) {
	e := NewRateLimited(&fakeEmbedder{dim: 2}, 0.001, 1)

	_, _, err := e.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err = e.EmbedBatch(ctx, []string{"second"})
	assert.Error(t, err)

	unlimited := NewRateLimited(&fakeEmbedder{dim: 2}, 0, 0)
	for range 10 {
		_, _, err := unlimited.Embed(context.Background(), "x")
		require.NoError(t, err)
	}
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := Config{}.WithDefaults()
		assert.Equal(t, BackendOpenAI, c.Backend)
		assert.Equal(t, DefaultModel, c.Model)
		assert.Equal(t, DefaultBatchSize, c.BatchSize)

		az := Config{Backend: BackendAzure}.WithDefaults()
		assert.Equal(t, DefaultAPIVersion, az.APIVersion)
	})

	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"openai", Config{Backend: BackendOpenAI, APIKey: "k"}, true},
		{"azure", Config{Backend: BackendAzure, APIKey: "k", AzureEndpoint: "https://x.openai.azure.com"}, true},
		{"azure without endpoint", Config{Backend: BackendAzure, APIKey: "k"}, false},
		{"missing key", Config{Backend: BackendOpenAI}, false},
		{"unknown backend", Config{Backend: "cohere", APIKey: "k"}, false},
		{"negative dimensions", Config{Backend: BackendOpenAI, APIKey: "k", Dimensions: -1}, false},
		{"negative rate", Config{Backend: BackendOpenAI, APIKey: "k", RequestsPerSecond: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestLoadDocuments(t *testing.T) {
	docs, err := LoadDocuments(strings.NewReader(`[{"id":"a1","processed_article":"hello world"},{"id":"a2","processed_article":"bye"}]`))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, Document{ID: "a1", Text: "hello world"}, docs[0])

	_, err = LoadDocuments(strings.NewReader(`{`))
	assert.Error(t, err)
}
