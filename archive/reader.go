package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/zip"

	"github.com/hupe1980/vecstore/blobstore"
	"github.com/hupe1980/vecstore/model"
)

// ModelInfoKey is the reserved entry holding the JSON model-info record.
const ModelInfoKey = "__model_info__"

const npySuffix = ".npy"

var (
	ErrDimensionMismatch = errors.New("archive: vectors disagree on dimension")
	ErrDuplicateEntry    = errors.New("archive: duplicate entry")
	ErrNoDimension       = errors.New("archive: no vectors and no model info")
	ErrInvalidModelInfo  = errors.New("archive: invalid model info")
)

// Entry is one identifier and its vector.
type Entry struct {
	ID     string
	Vector []float32
}

// Archive is a fully decoded embeddings archive.
type Archive struct {
	// Entries in archive order, excluding the model-info entry.
	Entries []Entry
	// ModelInfo is nil when the archive carries no model-info entry.
	ModelInfo *model.Info
}

// Dimension returns the vector width, from the model info if present and
// otherwise from the first entry.
func (a *Archive) Dimension() int {
	if a.ModelInfo != nil {
		return a.ModelInfo.Dimension
	}

	if len(a.Entries) > 0 {
		return len(a.Entries[0].Vector)
	}

	return 0
}

// IDs returns the identifiers in archive order.
func (a *Archive) IDs() []string {
	ids := make([]string, len(a.Entries))
	for i, e := range a.Entries {
		ids[i] = e.ID
	}

	return ids
}

// Vectors returns the vectors in archive order. The slices are shared.
func (a *Archive) Vectors() [][]float32 {
	vecs := make([][]float32, len(a.Entries))
	for i, e := range a.Entries {
		vecs[i] = e.Vector
	}

	return vecs
}

// ReadFile decodes the archive at path.
func ReadFile(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return Read(f, st.Size())
}

// Load reads the named archive from a blob store.
func Load(ctx context.Context, bs blobstore.BlobStore, name string) (*Archive, error) {
	data, err := blobstore.ReadAll(ctx, bs, name)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes an archive held in memory.
func Parse(data []byte) (*Archive, error) {
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read decodes an archive from r.
func Read(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}

	a := &Archive{}
	seen := make(map[string]struct{}, len(zr.File))

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		id := strings.TrimSuffix(f.Name, npySuffix)
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEntry, id)
		}
		seen[id] = struct{}{}

		raw, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("archive: entry %q: %w", f.Name, err)
		}

		arr, err := ParseArray(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", f.Name, err)
		}

		if id == ModelInfoKey {
			info, err := decodeModelInfo(arr)
			if err != nil {
				return nil, err
			}
			a.ModelInfo = info

			continue
		}

		vec, err := arr.Vector()
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", f.Name, err)
		}

		a.Entries = append(a.Entries, Entry{ID: id, Vector: vec})
	}

	if err := a.validate(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Archive) validate() error {
	dim := a.Dimension()
	if dim <= 0 {
		return ErrNoDimension
	}

	for _, e := range a.Entries {
		if len(e.Vector) != dim {
			return fmt.Errorf("%w: %q has %d components, expected %d", ErrDimensionMismatch, e.ID, len(e.Vector), dim)
		}
	}

	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf := bytes.NewBuffer(make([]byte, 0, f.UncompressedSize64))
	if _, err := io.Copy(buf, rc); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeModelInfo(arr *Array) (*model.Info, error) {
	text, err := arr.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModelInfo, err)
	}

	var info model.Info
	if err := gojson.Unmarshal([]byte(text), &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModelInfo, err)
	}

	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModelInfo, err)
	}

	return &info, nil
}
