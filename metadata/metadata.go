package metadata

import "maps"

// Document is the metadata record attached to one vector.
type Document map[string]any

// New returns an empty, non-nil Document.
func New() Document {
	return Document{}
}

// Clone returns a deep copy of d. A nil Document clones to an empty one.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// With returns a copy of d with key set to value.
func (d Document) With(key string, value any) Document {
	out := d.Clone()
	out[key] = value
	return out
}

// Get returns the value stored under key.
func (d Document) Get(key string) (any, bool) {
	v, ok := d[key]
	return v, ok
}

// Merge returns a deep copy of d overlaid with other. Keys in other win.
func (d Document) Merge(other Document) Document {
	out := d.Clone()
	maps.Copy(out, other.Clone())
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case map[string]any:
		return map[string]any(Document(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []float64:
		return append([]float64(nil), t...)
	case []float32:
		return append([]float32(nil), t...)
	case []int:
		return append([]int(nil), t...)
	default:
		return v
	}
}

// CloneAll deep-copies a batch of records, replacing nil entries with empty
// Documents. A nil batch yields n empty Documents.
func CloneAll(docs []Document, n int) []Document {
	out := make([]Document, n)
	for i := range out {
		if i < len(docs) && docs[i] != nil {
			out[i] = docs[i].Clone()
		} else {
			out[i] = New()
		}
	}
	return out
}
