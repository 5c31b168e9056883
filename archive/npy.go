package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var npyMagic = []byte("\x93NUMPY")

var (
	ErrInvalidArray     = errors.New("archive: invalid npy array")
	ErrUnsupportedDType = errors.New("archive: unsupported dtype")
)

var (
	descrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	fortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// Array is a decoded .npy array. Data holds the raw element bytes.
type Array struct {
	Descr        string
	FortranOrder bool
	Shape        []int
	Data         []byte
}

// Len returns the number of elements implied by Shape.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// ParseArray decodes one .npy file.
func ParseArray(b []byte) (*Array, error) {
	if len(b) < 10 || !bytes.HasPrefix(b, npyMagic) {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidArray)
	}

	major := b[6]

	var (
		headerLen int
		off       int
	)

	switch major {
	case 1:
		headerLen = int(binary.LittleEndian.Uint16(b[8:10]))
		off = 10
	case 2, 3:
		if len(b) < 12 {
			return nil, fmt.Errorf("%w: truncated header", ErrInvalidArray)
		}
		headerLen = int(binary.LittleEndian.Uint32(b[8:12]))
		off = 12
	default:
		return nil, fmt.Errorf("%w: format version %d", ErrInvalidArray, major)
	}

	if off+headerLen > len(b) {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidArray)
	}

	header := string(b[off : off+headerLen])

	a := &Array{Data: b[off+headerLen:]}

	m := descrRe.FindStringSubmatch(header)
	if m == nil {
		return nil, fmt.Errorf("%w: missing descr", ErrInvalidArray)
	}
	a.Descr = m[1]

	if m := fortranRe.FindStringSubmatch(header); m != nil {
		a.FortranOrder = m[1] == "True"
	}

	m = shapeRe.FindStringSubmatch(header)
	if m == nil {
		return nil, fmt.Errorf("%w: missing shape", ErrInvalidArray)
	}

	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		// Python 2 era writers emit "384L".
		d, err := strconv.Atoi(strings.TrimSuffix(part, "L"))
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: bad shape %q", ErrInvalidArray, m[1])
		}
		a.Shape = append(a.Shape, d)
	}

	return a, nil
}

// Vector returns the array as a float32 vector. Accepted shapes are (d,) and
// (1, d); accepted dtypes are float32 and float64 in either byte order.
func (a *Array) Vector() ([]float32, error) {
	switch {
	case len(a.Shape) == 1:
	case len(a.Shape) == 2 && a.Shape[0] == 1:
	default:
		return nil, fmt.Errorf("%w: shape %v is not a vector", ErrInvalidArray, a.Shape)
	}

	order, kind, size, err := splitDescr(a.Descr)
	if err != nil {
		return nil, err
	}

	if kind != 'f' || (size != 4 && size != 8) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDType, a.Descr)
	}

	n := a.Len()
	if len(a.Data) != n*size {
		return nil, fmt.Errorf("%w: %d data bytes for %d elements of %s", ErrInvalidArray, len(a.Data), n, a.Descr)
	}

	out := make([]float32, n)

	for i := range out {
		chunk := a.Data[i*size : (i+1)*size]
		if size == 4 {
			out[i] = math.Float32frombits(order.Uint32(chunk))
		} else {
			out[i] = float32(math.Float64frombits(order.Uint64(chunk)))
		}
	}

	return out, nil
}

// Text returns the array's content as a string. Unicode (U), byte string (S)
// and uint8 arrays are accepted; trailing NULs are dropped.
func (a *Array) Text() (string, error) {
	order, kind, size, err := splitDescr(a.Descr)
	if err != nil {
		return "", err
	}

	switch {
	case kind == 'U':
		if len(a.Data)%4 != 0 {
			return "", fmt.Errorf("%w: unicode data not a multiple of 4 bytes", ErrInvalidArray)
		}

		var sb strings.Builder
		for i := 0; i < len(a.Data); i += 4 {
			r := rune(order.Uint32(a.Data[i : i+4]))
			if r == 0 {
				continue
			}
			if !utf8.ValidRune(r) {
				return "", fmt.Errorf("%w: invalid code point %#x", ErrInvalidArray, r)
			}
			sb.WriteRune(r)
		}

		return sb.String(), nil
	case kind == 'S', kind == 'u' && size == 1:
		return string(bytes.TrimRight(a.Data, "\x00")), nil
	default:
		return "", fmt.Errorf("%w: %s is not text", ErrUnsupportedDType, a.Descr)
	}
}

// splitDescr parses a simple dtype string such as "<f4" or "|S12".
func splitDescr(descr string) (binary.ByteOrder, byte, int, error) {
	if len(descr) < 2 {
		return nil, 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, descr)
	}

	var order binary.ByteOrder = binary.LittleEndian

	switch descr[0] {
	case '<', '|', '=':
		descr = descr[1:]
	case '>':
		order = binary.BigEndian
		descr = descr[1:]
	}

	kind := descr[0]

	size := 1
	if len(descr) > 1 {
		n, err := strconv.Atoi(descr[1:])
		if err != nil || n <= 0 {
			return nil, 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, descr)
		}
		size = n
	}

	return order, kind, size, nil
}

// EncodeVector encodes v as a little-endian float32 array of shape (len(v),).
func EncodeVector(v []float32) []byte {
	data := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
	}

	return encodeArray("<f4", fmt.Sprintf("(%d,)", len(v)), data)
}

// EncodeText encodes s as a 0-d numpy unicode array, the way numpy stores a
// plain Python string.
func EncodeText(s string) []byte {
	runes := []rune(s)

	width := max(len(runes), 1)
	data := make([]byte, 4*width)

	for i, r := range runes {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(r))
	}

	return encodeArray(fmt.Sprintf("<U%d", width), "()", data)
}

func encodeArray(descr, shape string, data []byte) []byte {
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, shape)

	// magic(6) + version(2) + length(2) + header + '\n', padded to 64 bytes.
	total := 10 + len(header) + 1
	if rem := total % 64; rem != 0 {
		header += strings.Repeat(" ", 64-rem)
	}
	header += "\n"

	buf := make([]byte, 0, 10+len(header)+len(data))
	buf = append(buf, npyMagic...)
	buf = append(buf, 1, 0)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(header)))
	buf = append(buf, header...)
	buf = append(buf, data...)

	return buf
}
