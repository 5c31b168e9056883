package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/zip"

	"github.com/hupe1980/vecstore/blobstore"
	"github.com/hupe1980/vecstore/model"
)

var (
	ErrWriterClosed = errors.New("archive: writer closed")
	ErrReservedID   = errors.New("archive: reserved or empty identifier")
)

// WriterOptions configures a Writer.
type WriterOptions struct {
	// Compress deflates entries, like numpy.savez_compressed. The default
	// stores them, like numpy.savez.
	Compress bool
}

// Writer streams an archive. The model-info entry is written last, on Close.
type Writer struct {
	zw     *zip.Writer
	method uint16
	seen   map[string]struct{}
	dim    int
	info   *model.Info
	closed bool
}

// NewWriter returns a Writer producing an archive on w.
func NewWriter(w io.Writer, optFns ...func(o *WriterOptions)) *Writer {
	opts := WriterOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	method := zip.Store
	if opts.Compress {
		method = zip.Deflate
	}

	return &Writer{
		zw:     zip.NewWriter(w),
		method: method,
		seen:   make(map[string]struct{}),
	}
}

// Add writes one vector under id.
func (w *Writer) Add(id string, vec []float32) error {
	if w.closed {
		return ErrWriterClosed
	}

	if id == "" || id == ModelInfoKey {
		return fmt.Errorf("%w: %q", ErrReservedID, id)
	}

	if _, dup := w.seen[id]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateEntry, id)
	}

	if w.dim == 0 {
		w.dim = len(vec)
	}

	if len(vec) == 0 || len(vec) != w.dim {
		return fmt.Errorf("%w: %q has %d components, expected %d", ErrDimensionMismatch, id, len(vec), w.dim)
	}

	if err := w.writeEntry(id, EncodeVector(vec)); err != nil {
		return err
	}

	w.seen[id] = struct{}{}

	return nil
}

// SetModelInfo records the model info written on Close.
func (w *Writer) SetModelInfo(info model.Info) error {
	if err := info.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModelInfo, err)
	}

	w.info = &info

	return nil
}

// Close writes the model-info entry and finishes the archive. It does not
// close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.info != nil {
		if w.dim != 0 && w.info.Dimension != w.dim {
			return fmt.Errorf("%w: model info says %d, vectors have %d", ErrDimensionMismatch, w.info.Dimension, w.dim)
		}

		raw, err := gojson.Marshal(w.info)
		if err != nil {
			return err
		}

		if err := w.writeEntry(ModelInfoKey, EncodeText(string(raw))); err != nil {
			return err
		}
	}

	return w.zw.Close()
}

func (w *Writer) writeEntry(name string, data []byte) error {
	fw, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   name + npySuffix,
		Method: w.method,
	})
	if err != nil {
		return err
	}

	_, err = fw.Write(data)

	return err
}

// Encode builds a complete archive in memory.
func Encode(entries []Entry, info *model.Info, optFns ...func(o *WriterOptions)) ([]byte, error) {
	var buf bytes.Buffer

	w := NewWriter(&buf, optFns...)

	for _, e := range entries {
		if err := w.Add(e.ID, e.Vector); err != nil {
			return nil, err
		}
	}

	if info != nil {
		if err := w.SetModelInfo(*info); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Store writes an archive to a blob store under name.
func Store(ctx context.Context, bs blobstore.BlobStore, name string, entries []Entry, info *model.Info, optFns ...func(o *WriterOptions)) error {
	data, err := Encode(entries, info, optFns...)
	if err != nil {
		return err
	}

	return bs.Put(ctx, name, data)
}
