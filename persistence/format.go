package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MagicNumber identifies index artifacts (ASCII: "VST1").
	MagicNumber = 0x56535431
	// Version is the current index format version.
	Version = 1

	// IndexTypeFlat marks a flat (brute-force) index payload.
	IndexTypeFlat = 1

	// HeaderSize is the encoded size of FileHeader in bytes.
	HeaderSize = 64
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported version")
	ErrInvalidIndex       = errors.New("invalid index type")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrTruncated          = errors.New("truncated payload")
	ErrGenerationMismatch = errors.New("index and meta generations differ")
)

// FileHeader is the 64-byte header at the start of every index artifact.
type FileHeader struct {
	Magic       uint32   // 0x56535431 ("VST1")
	Version     uint32   // File format version
	IndexType   uint8    // 1=Flat
	Metric      uint8    // distance.Metric
	Compression uint8    // CompressionType of the payload
	Padding1    uint8    //
	Dimension   uint32   // Vector dimensionality
	VectorCount uint64   // Number of stored vectors
	PayloadSize uint64   // Stored payload bytes following the header
	Checksum    uint32   // CRC32 of the stored payload
	Padding2    [4]byte  //
	Generation  [16]byte // Pairs the index with its meta record
	Reserved    [8]byte  // Future use
}

// BinaryIndexWriter writes index artifacts in little-endian binary format.
type BinaryIndexWriter struct {
	w         io.Writer
	byteOrder binary.ByteOrder
}

// NewBinaryIndexWriter creates a new binary writer.
func NewBinaryIndexWriter(w io.Writer) *BinaryIndexWriter {
	return &BinaryIndexWriter{
		w:         w,
		byteOrder: binary.LittleEndian,
	}
}

// WriteHeader stamps magic and version and writes the header.
func (bw *BinaryIndexWriter) WriteHeader(header *FileHeader) error {
	header.Magic = MagicNumber
	header.Version = Version
	return binary.Write(bw.w, bw.byteOrder, header)
}

// WritePayload writes the stored payload bytes.
func (bw *BinaryIndexWriter) WritePayload(p []byte) error {
	_, err := bw.w.Write(p)
	return err
}

// BinaryIndexReader reads index artifacts.
type BinaryIndexReader struct {
	r         io.Reader
	byteOrder binary.ByteOrder
}

// NewBinaryIndexReader creates a new binary reader.
func NewBinaryIndexReader(r io.Reader) *BinaryIndexReader {
	return &BinaryIndexReader{
		r:         r,
		byteOrder: binary.LittleEndian,
	}
}

// ReadHeader reads and validates the file header.
func (br *BinaryIndexReader) ReadHeader() (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(br.r, br.byteOrder, &header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: header", ErrTruncated)
		}
		return nil, err
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, header.Version)
	}
	return &header, nil
}

// ReadPayload reads the payload described by header and verifies its checksum.
func (br *BinaryIndexReader) ReadPayload(header *FileHeader) ([]byte, error) {
	if header.PayloadSize > 1<<40 {
		return nil, fmt.Errorf("%w: payload size %d", ErrTruncated, header.PayloadSize)
	}
	payload := make([]byte, header.PayloadSize)
	if _, err := io.ReadFull(br.r, payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	if sum := CalculateChecksum(payload); sum != header.Checksum {
		return nil, fmt.Errorf("%w: expected 0x%08x, got 0x%08x", ErrChecksumMismatch, header.Checksum, sum)
	}
	return payload, nil
}

// PeekHeader decodes the header at the start of an index artifact.
func PeekHeader(data []byte) (*FileHeader, error) {
	return NewBinaryIndexReader(bytes.NewReader(data)).ReadHeader()
}

// EncodeFloat32s appends the little-endian encoding of src to dst.
func EncodeFloat32s(dst []byte, src []float32) []byte {
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint32(dst, math32bits(v))
	}
	return dst
}

// DecodeFloat32s decodes len(dst) little-endian float32 values from src.
func DecodeFloat32s(dst []float32, src []byte) error {
	if len(src) < len(dst)*4 {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, len(dst)*4, len(src))
	}
	for i := range dst {
		dst[i] = math32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return nil
}
