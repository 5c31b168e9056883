package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm applied to the index payload.
type CompressionType uint8

const (
	// CompressionNone stores the payload as raw little-endian floats.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression resolves a compression name ("", "none", "lz4", "zstd").
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unsupported compression: %q", name)
	}
}

// DefaultBlockSize is the uncompressed size of a payload block.
const DefaultBlockSize = 256 * 1024

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 means the block is stored uncompressed.
const blockHeaderSize = 8

func compressBlock(data []byte, compressionType CompressionType) ([]byte, error) {
	var compressed []byte
	var err error

	switch compressionType {
	case CompressionLZ4:
		compressed, err = compressBlockLZ4(data)
	case CompressionZSTD:
		compressed = compressBlockZSTD(data)
	default:
		return nil, fmt.Errorf("unsupported compression: %v", compressionType)
	}
	if err != nil {
		return nil, err
	}

	// Incompressible (ratio > 0.9): store raw.
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

func compressBlockLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}

func compressBlockZSTD(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil)
}

// CompressedBlockWriter writes compressed blocks to an underlying writer.
type CompressedBlockWriter struct {
	w               io.Writer
	compressionType CompressionType
	blockSize       int
	buffer          *bytes.Buffer
	written         int64
}

// NewCompressedBlockWriter creates a new compressed block writer.
func NewCompressedBlockWriter(w io.Writer, compressionType CompressionType, blockSize int) *CompressedBlockWriter {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CompressedBlockWriter{
		w:               w,
		compressionType: compressionType,
		blockSize:       blockSize,
		buffer:          bytes.NewBuffer(make([]byte, 0, blockSize)),
	}
}

// Write buffers p, flushing full blocks as needed.
func (c *CompressedBlockWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		space := c.blockSize - c.buffer.Len()
		if space <= 0 {
			if err := c.FlushBlock(); err != nil {
				return total, err
			}
			space = c.blockSize
		}

		toWrite := min(len(p), space)
		n, err := c.buffer.Write(p[:toWrite])
		if err != nil {
			return total, err
		}
		total += n
		p = p[n:]
	}
	return total, nil
}

// FlushBlock compresses and writes the current block.
func (c *CompressedBlockWriter) FlushBlock() error {
	if c.buffer.Len() == 0 {
		return nil
	}

	compressed, err := compressBlock(c.buffer.Bytes(), c.compressionType)
	if err != nil {
		return err
	}

	n, err := c.w.Write(compressed)
	if err != nil {
		return err
	}
	c.written += int64(n)
	c.buffer.Reset()
	return nil
}

// Flush writes any remaining buffered data.
func (c *CompressedBlockWriter) Flush() error {
	return c.FlushBlock()
}

// BytesWritten returns the total compressed bytes written.
func (c *CompressedBlockWriter) BytesWritten() int64 {
	return c.written
}

// DecompressAll decodes every block in data and returns the concatenated payload.
func DecompressAll(data []byte, compressionType CompressionType) ([]byte, error) {
	var result []byte
	off := 0
	for off < len(data) {
		if off+blockHeaderSize > len(data) {
			return nil, errors.New("block too small for header")
		}
		uncompressedSize := int(binary.LittleEndian.Uint32(data[off:]))
		compressedSize := int(binary.LittleEndian.Uint32(data[off+4:]))
		off += blockHeaderSize

		if compressedSize == 0 {
			if off+uncompressedSize > len(data) {
				return nil, errors.New("block extends beyond data")
			}
			result = append(result, data[off:off+uncompressedSize]...)
			off += uncompressedSize
			continue
		}

		if off+compressedSize > len(data) {
			return nil, errors.New("compressed block extends beyond data")
		}
		block, err := decompressBlock(data[off:off+compressedSize], uncompressedSize, compressionType)
		if err != nil {
			return nil, err
		}
		result = append(result, block...)
		off += compressedSize
	}
	return result, nil
}

func decompressBlock(compressed []byte, uncompressedSize int, compressionType CompressionType) ([]byte, error) {
	result := make([]byte, uncompressedSize)

	switch compressionType {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressed, result)
		if err != nil {
			return nil, err
		}
		if n != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(compressed, result[:0])
		if err != nil {
			return nil, err
		}
		if len(decoded) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("unsupported compression: %v", compressionType)
	}
}
