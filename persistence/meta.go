package persistence

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecstore/codec"
	"github.com/hupe1980/vecstore/metadata"
	"github.com/hupe1980/vecstore/model"
)

const (
	metaMagic = "VSTM"

	// MetaFormatVersion is the current meta record version.
	MetaFormatVersion = 1
)

var (
	ErrInvalidMeta   = errors.New("invalid meta record")
	ErrUnknownCodec  = errors.New("unknown codec")
	ErrInconsistent  = errors.New("index and meta disagree")
	errCodecNameSize = errors.New("codec name too long")
)

// MetaRecord is the structured half of a saved store. IDs and Metadata are in
// index offset order.
type MetaRecord struct {
	FormatVersion int                 `json:"format_version"`
	Generation    string              `json:"generation"`
	Dimension     int                 `json:"dimension"`
	Metric        string              `json:"metric"`
	IDs           []string            `json:"ids"`
	Metadata      []metadata.Document `json:"metadata"`
	ModelInfo     *model.Info         `json:"model_info,omitempty"`
}

// EncodeMeta encodes rec as: magic | codec name length (1 byte) | codec name | encoded record.
func EncodeMeta(rec *MetaRecord, c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	name := c.Name()
	if len(name) > 255 {
		return nil, errCodecNameSize
	}

	rec.FormatVersion = MetaFormatVersion
	body, err := c.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode meta with %s: %w", name, err)
	}

	out := make([]byte, 0, len(metaMagic)+1+len(name)+len(body))
	out = append(out, metaMagic...)
	out = append(out, byte(len(name)))
	out = append(out, name...)
	return append(out, body...), nil
}

// DecodeMeta decodes a record written by EncodeMeta with whichever codec wrote it.
func DecodeMeta(data []byte) (*MetaRecord, error) {
	if len(data) < len(metaMagic)+1 || string(data[:len(metaMagic)]) != metaMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidMeta)
	}
	data = data[len(metaMagic):]

	n := int(data[0])
	data = data[1:]
	if len(data) < n {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMeta, ErrTruncated)
	}

	name := string(data[:n])
	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	var rec MetaRecord
	if err := c.Unmarshal(data[n:], &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMeta, err)
	}
	if rec.FormatVersion != MetaFormatVersion {
		return nil, fmt.Errorf("%w: meta format %d", ErrInvalidVersion, rec.FormatVersion)
	}
	if rec.Metadata == nil && len(rec.IDs) > 0 {
		rec.Metadata = metadata.CloneAll(nil, len(rec.IDs))
	}
	if len(rec.Metadata) != len(rec.IDs) {
		return nil, fmt.Errorf("%w: %d ids, %d metadata records", ErrInvalidMeta, len(rec.IDs), len(rec.Metadata))
	}
	for i, doc := range rec.Metadata {
		if doc == nil {
			rec.Metadata[i] = metadata.New()
		}
	}
	return &rec, nil
}
