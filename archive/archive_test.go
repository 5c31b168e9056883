package archive

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecstore/blobstore"
	"github.com/hupe1980/vecstore/model"
)

var testInfo = model.Info{Name: "all-MiniLM-L6-v2", Type: "huggingface", Dimension: 3}

func testEntries() []Entry {
	return []Entry{
		{ID: "article-9", Vector: []float32{1, 0, 0}},
		{ID: "article-1", Vector: []float32{0, 1, 0}},
		{ID: "article-5", Vector: []float32{0, 0, 1}},
	}
}

// rawZip builds an archive entry by entry, the way an external writer would.
func rawZip(t *testing.T, files map[string][]byte, order []string) []byte {
	t.Helper()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(files[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(map[bool]string{false: "stored", true: "deflated"}[compress], func(t *testing.T) {
			data, err := Encode(testEntries(), &testInfo, func(o *WriterOptions) { o.Compress = compress })
			require.NoError(t, err)

			a, err := Parse(data)
			require.NoError(t, err)

			assert.Equal(t, testEntries(), a.Entries)
			require.NotNil(t, a.ModelInfo)
			assert.Equal(t, testInfo, *a.ModelInfo)
			assert.Equal(t, 3, a.Dimension())
			assert.Equal(t, []string{"article-9", "article-1", "article-5"}, a.IDs())
			assert.Len(t, a.Vectors(), 3)
		})
	}
}

func TestReadNumpyLayout(t *testing.T) {
	// Model info first, float64 rows, and the spacing Python's json.dumps uses.
	info := EncodeText(`{"model_name": "text-embedding-ada-002", "model_type": "azure", "embedding_dim": 2}`)
	files := map[string][]byte{
		"__model_info__.npy": info,
		"b.npy":              float64Array("(1, 2)", 1, 2),
		"a.npy":              float64Array("(2,)", 3, 4),
	}

	a, err := Parse(rawZip(t, files, []string{"__model_info__.npy", "b.npy", "a.npy"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, a.IDs())
	assert.Equal(t, []float32{3, 4}, a.Entries[1].Vector)
	assert.Equal(t, "azure", a.ModelInfo.Type)
}

func TestReadErrors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		_, err := Parse([]byte("nope"))
		assert.Error(t, err)
	})

	t.Run("dimension disagrees with model info", func(t *testing.T) {
		files := map[string][]byte{
			"a.npy":              EncodeVector([]float32{1, 2}),
			"__model_info__.npy": EncodeText(`{"model_name":"m","model_type":"t","embedding_dim":3}`),
		}

		_, err := Parse(rawZip(t, files, []string{"a.npy", "__model_info__.npy"}))
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("ragged vectors", func(t *testing.T) {
		files := map[string][]byte{
			"a.npy": EncodeVector([]float32{1, 2}),
			"b.npy": EncodeVector([]float32{1, 2, 3}),
		}

		_, err := Parse(rawZip(t, files, []string{"a.npy", "b.npy"}))
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("bad model info", func(t *testing.T) {
		files := map[string][]byte{"__model_info__.npy": EncodeText("{not json")}

		_, err := Parse(rawZip(t, files, []string{"__model_info__.npy"}))
		assert.ErrorIs(t, err, ErrInvalidModelInfo)
	})

	t.Run("empty archive", func(t *testing.T) {
		_, err := Parse(rawZip(t, nil, nil))
		assert.ErrorIs(t, err, ErrNoDimension)
	})

	t.Run("duplicate entry", func(t *testing.T) {
		files := map[string][]byte{
			"a.npy": EncodeVector([]float32{1}),
			"a":     EncodeVector([]float32{2}),
		}

		_, err := Parse(rawZip(t, files, []string{"a.npy", "a"}))
		assert.ErrorIs(t, err, ErrDuplicateEntry)
	})
}

func TestWriterErrors(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})

	require.NoError(t, w.Add("a", []float32{1, 2}))
	assert.ErrorIs(t, w.Add("a", []float32{1, 2}), ErrDuplicateEntry)
	assert.ErrorIs(t, w.Add("b", []float32{1}), ErrDimensionMismatch)
	assert.ErrorIs(t, w.Add(ModelInfoKey, []float32{1, 2}), ErrReservedID)
	assert.ErrorIs(t, w.Add("", []float32{1, 2}), ErrReservedID)
	assert.ErrorIs(t, w.SetModelInfo(model.Info{Name: "m"}), ErrInvalidModelInfo)

	require.NoError(t, w.SetModelInfo(model.Info{Name: "m", Dimension: 3}))
	assert.ErrorIs(t, w.Close(), ErrDimensionMismatch)
	assert.ErrorIs(t, w.Add("c", []float32{1, 2}), ErrWriterClosed)
}

func TestFileAndBlobStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	bs := blobstore.NewLocalStore(dir)
	require.NoError(t, Store(ctx, bs, "embeddings.npz", testEntries(), &testInfo))

	a, err := Load(ctx, bs, "embeddings.npz")
	require.NoError(t, err)
	assert.Equal(t, testEntries(), a.Entries)

	a, err = ReadFile(filepath.Join(dir, "embeddings.npz"))
	require.NoError(t, err)
	assert.Equal(t, testInfo, *a.ModelInfo)

	_, err = ReadFile(filepath.Join(dir, "missing.npz"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
