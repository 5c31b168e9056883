package flat

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/vecstore/distance"
	"github.com/hupe1980/vecstore/persistence"
)

// ErrCorrupt is returned when an index artifact decodes to an impossible shape.
var ErrCorrupt = errors.New("flat: corrupt index artifact")

// WriteOptions controls the binary encoding.
type WriteOptions struct {
	// Compression applied to the float payload.
	Compression persistence.CompressionType
	// BlockSize is the uncompressed block size. Zero means persistence.DefaultBlockSize.
	BlockSize int
	// Generation is stamped into the header and pairs the artifact with its meta record.
	Generation [16]byte
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo writes the Flat index to a writer in binary format.
//
// It matches the io.WriterTo interface for toolchain friendliness.
func (f *Flat) WriteTo(w io.Writer) (int64, error) {
	return f.WriteToWithOptions(w, WriteOptions{})
}

// WriteToWithOptions writes the header followed by the (optionally
// compressed) row-major float32 payload.
func (f *Flat) WriteToWithOptions(w io.Writer, opts WriteOptions) (int64, error) {
	f.mu.RLock()
	raw := persistence.EncodeFloat32s(make([]byte, 0, len(f.data)*4), f.data)
	count := f.count
	f.mu.RUnlock()

	payload := raw
	if opts.Compression != persistence.CompressionNone {
		var buf bytes.Buffer
		cw := persistence.NewCompressedBlockWriter(&buf, opts.Compression, opts.BlockSize)
		if _, err := cw.Write(raw); err != nil {
			return 0, err
		}
		if err := cw.Flush(); err != nil {
			return 0, err
		}
		payload = buf.Bytes()
	}

	header := persistence.FileHeader{
		IndexType:   persistence.IndexTypeFlat,
		Metric:      uint8(f.opts.Metric),
		Compression: uint8(opts.Compression),
		Dimension:   uint32(f.opts.Dimension),
		VectorCount: uint64(count),
		PayloadSize: uint64(len(payload)),
		Checksum:    persistence.CalculateChecksum(payload),
		Generation:  opts.Generation,
	}

	cw := &countingWriter{w: w}
	writer := persistence.NewBinaryIndexWriter(cw)
	if err := writer.WriteHeader(&header); err != nil {
		return cw.n, err
	}
	if err := writer.WritePayload(payload); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Load decodes an index written by WriteTo. Dimension and metric come from the
// artifact; optFns may only tune runtime settings such as Parallelism.
func Load(r io.Reader, optFns ...func(o *Options)) (*Flat, *persistence.FileHeader, error) {
	reader := persistence.NewBinaryIndexReader(r)

	header, err := reader.ReadHeader()
	if err != nil {
		return nil, nil, err
	}
	if header.IndexType != persistence.IndexTypeFlat {
		return nil, nil, fmt.Errorf("%w: type %d", persistence.ErrInvalidIndex, header.IndexType)
	}

	payload, err := reader.ReadPayload(header)
	if err != nil {
		return nil, nil, err
	}

	compression := persistence.CompressionType(header.Compression)
	if compression != persistence.CompressionNone {
		payload, err = persistence.DecompressAll(payload, compression)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
	}

	dim := int(header.Dimension)
	count := header.VectorCount
	if dim <= 0 || count > uint64(len(payload))/4/uint64(dim) || uint64(len(payload)) != count*uint64(dim)*4 {
		return nil, nil, fmt.Errorf("%w: %d vectors of dimension %d in %d bytes", ErrCorrupt, count, dim, len(payload))
	}

	f, err := New(append(optFns, func(o *Options) {
		o.Dimension = dim
		o.Metric = distance.Metric(header.Metric)
	})...)
	if err != nil {
		return nil, nil, err
	}

	f.data = make([]float32, int(count)*dim)
	if err := persistence.DecodeFloat32s(f.data, payload); err != nil {
		return nil, nil, err
	}
	f.count = int(count)
	return f, header, nil
}
