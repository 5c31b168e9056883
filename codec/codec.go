// Package codec centralizes encoding of the persisted meta record.
//
// The meta artifact stores the codec name ahead of the encoded bytes, so a
// store can be reopened with whichever codec wrote it.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustByName is ByName for static configuration; it panics on unknown names.
func MustByName(name string) Codec {
	c, ok := ByName(name)
	if !ok {
		panic(fmt.Errorf("codec: unknown codec %q", name))
	}
	return c
}
