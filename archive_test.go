package vecstore_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecstore"
	"github.com/hupe1980/vecstore/archive"
	"github.com/hupe1980/vecstore/blobstore"
	"github.com/hupe1980/vecstore/embedding"
	"github.com/hupe1980/vecstore/model"
)

var adaInfo = model.Info{Name: "text-embedding-ada-002", Type: "azure_openai", Dimension: 3}

func archiveEntries() []archive.Entry {
	return []archive.Entry{
		{ID: "101", Vector: []float32{1, 0, 0}},
		{ID: "7", Vector: []float32{0, 1, 0}},
		{ID: "55", Vector: []float32{0, 0, 1}},
	}
}

func TestFromEmbeddingsArchive(t *testing.T) {
	ctx := context.Background()

	t.Run("with model info", func(t *testing.T) {
		bs := blobstore.NewMemoryStore()
		info := adaInfo
		require.NoError(t, archive.Store(ctx, bs, "news.npz", archiveEntries(), &info))

		st, err := vecstore.FromEmbeddingsArchive(ctx, "news.npz", vecstore.MetricL2, vecstore.WithBlobStore(bs))
		require.NoError(t, err)

		assert.Equal(t, 3, st.Len())
		assert.Equal(t, 3, st.Dimension())

		got, ok := st.ModelInfo()
		require.True(t, ok)
		assert.Equal(t, adaInfo, got)

		for i, e := range archiveEntries() {
			vec, doc, ok := st.Get(e.ID)
			require.True(t, ok, e.ID)
			assert.Equal(t, e.Vector, vec)
			assert.Equal(t, i, doc[vecstore.MetaKeyOriginalIndex])
			assert.Equal(t, adaInfo.AsMap(), doc[vecstore.MetaKeyModelInfo])
		}

		results, err := st.Search(ctx, []float32{0, 0.9, 0.1}, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"7"}, ids(results))
	})

	t.Run("local file", func(t *testing.T) {
		dir := t.TempDir()
		bs := blobstore.NewLocalStore(dir)
		info := adaInfo
		require.NoError(t, archive.Store(ctx, bs, "embeddings.npz", archiveEntries(), &info, func(o *archive.WriterOptions) {
			o.Compress = true
		}))

		st, err := vecstore.FromEmbeddingsArchive(ctx, dir+"/embeddings.npz", vecstore.MetricIP)
		require.NoError(t, err)
		assert.Equal(t, 3, st.Len())
		assert.Equal(t, vecstore.MetricIP, st.Metric())
	})

	t.Run("without model info", func(t *testing.T) {
		bs := blobstore.NewMemoryStore()
		require.NoError(t, archive.Store(ctx, bs, "bare.npz", archiveEntries(), nil))

		var logs bytes.Buffer
		logger := vecstore.NewLogger(slog.NewJSONHandler(&logs, nil))

		st, err := vecstore.FromEmbeddingsArchive(ctx, "bare.npz", vecstore.MetricL2,
			vecstore.WithBlobStore(bs), vecstore.WithLogger(logger))
		require.NoError(t, err)

		_, ok := st.ModelInfo()
		assert.False(t, ok)

		_, doc, ok := st.Get("55")
		require.True(t, ok)
		assert.Equal(t, 2, doc[vecstore.MetaKeyOriginalIndex])
		assert.NotContains(t, doc, vecstore.MetaKeyModelInfo)

		assert.Contains(t, logs.String(), "archive carries no model info")
	})

	t.Run("configured model fills in", func(t *testing.T) {
		bs := blobstore.NewMemoryStore()
		require.NoError(t, archive.Store(ctx, bs, "bare.npz", archiveEntries(), nil))

		st, err := vecstore.FromEmbeddingsArchive(ctx, "bare.npz", vecstore.MetricL2,
			vecstore.WithBlobStore(bs), vecstore.WithModelInfo(adaInfo))
		require.NoError(t, err)

		got, ok := st.ModelInfo()
		require.True(t, ok)
		assert.Equal(t, adaInfo, got)
	})

	t.Run("conflicting model", func(t *testing.T) {
		bs := blobstore.NewMemoryStore()
		info := adaInfo
		require.NoError(t, archive.Store(ctx, bs, "news.npz", archiveEntries(), &info))

		_, err := vecstore.FromEmbeddingsArchive(ctx, "news.npz", vecstore.MetricL2,
			vecstore.WithBlobStore(bs), vecstore.WithModelInfo(model.Info{Name: "big", Dimension: 1536}))

		var ic *vecstore.ErrInvalidConfiguration
		assert.ErrorAs(t, err, &ic)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := vecstore.FromEmbeddingsArchive(ctx, "nope.npz", vecstore.MetricL2,
			vecstore.WithBlobStore(blobstore.NewMemoryStore()))

		var de *vecstore.ErrDeserialization
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "nope.npz", de.Path)
	})

	t.Run("not an archive", func(t *testing.T) {
		bs := blobstore.NewMemoryStore()
		require.NoError(t, bs.Put(ctx, "junk.npz", []byte("definitely not a zip")))

		_, err := vecstore.FromEmbeddingsArchive(ctx, "junk.npz", vecstore.MetricL2, vecstore.WithBlobStore(bs))

		var de *vecstore.ErrDeserialization
		assert.ErrorAs(t, err, &de)
	})
}

// wordEmbedder counts vowels and consonants; deterministic and offline.
type wordEmbedder struct{}

func (wordEmbedder) vector(text string) []float32 {
	var v [3]float32
	for _, r := range strings.ToLower(text) {
		switch {
		case strings.ContainsRune("aeiou", r):
			v[0]++
		case r >= 'a' && r <= 'z':
			v[1]++
		default:
			v[2]++
		}
	}
	return v[:]
}

func (w wordEmbedder) Embed(ctx context.Context, text string) ([]float32, model.Info, error) {
	vecs, info, err := w.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, info, err
	}
	return vecs[0], info, nil
}

func (w wordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, model.Info, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = w.vector(t)
	}
	return out, model.Info{Name: "letters", Type: "test", Dimension: 3}, nil
}

func TestEmbeddingRoundTrip(t *testing.T) {
	ctx := context.Background()

	docs := []embedding.Document{
		{ID: "1", Text: "aaaa"},
		{ID: "2", Text: "bcdfg"},
		{ID: "3", Text: "    "},
		{ID: "4", Text: "abab"},
	}

	pipeline := embedding.NewPipeline(wordEmbedder{}, func(o *embedding.PipelineOptions) {
		o.BatchSize = 3
	})

	var buf bytes.Buffer
	info, err := pipeline.WriteArchive(ctx, docs, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Dimension)

	bs := blobstore.NewMemoryStore()
	require.NoError(t, bs.Put(ctx, "letters.npz", buf.Bytes()))

	fromArchive, err := vecstore.FromEmbeddingsArchive(ctx, "letters.npz", vecstore.MetricL2, vecstore.WithBlobStore(bs))
	require.NoError(t, err)

	direct := newStore(t, 3, vecstore.MetricL2)
	_, err = pipeline.IngestInto(ctx, docs, direct)
	require.NoError(t, err)

	assert.Equal(t, direct.Len(), fromArchive.Len())

	query, _, err := wordEmbedder{}.Embed(ctx, "eeee")
	require.NoError(t, err)

	a, err := fromArchive.Search(ctx, query, 4)
	require.NoError(t, err)
	b, err := direct.Search(ctx, query, 4)
	require.NoError(t, err)

	assert.Equal(t, ids(b), ids(a))
	assert.Equal(t, "1", a[0].ID)
}
