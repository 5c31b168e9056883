package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	IDs      []string         `json:"ids"`
	Metadata []map[string]any `json:"metadata"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
	assert.Panics(t, func() { MustByName("msgpack") })
}

func TestCodecsInteroperate(t *testing.T) {
	in := record{
		IDs:      []string{"a", "b"},
		Metadata: []map[string]any{{"title": "x", "score": 1.5}, {}},
	}

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				data, err := enc.Marshal(in)
				require.NoError(t, err)

				var out record
				require.NoError(t, dec.Unmarshal(data, &out))
				assert.Equal(t, in, out)
			})
		}
	}
}
