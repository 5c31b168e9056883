package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoJSON(t *testing.T) {
	var info Info
	require.NoError(t, json.Unmarshal([]byte(`{"model_name":"all-MiniLM-L6-v2","model_type":"huggingface","embedding_dim":384}`), &info))

	assert.Equal(t, Info{Name: "all-MiniLM-L6-v2", Type: "huggingface", Dimension: 384}, info)
	assert.Equal(t, "huggingface/all-MiniLM-L6-v2(384)", info.String())
}

func TestInfoValidate(t *testing.T) {
	assert.NoError(t, Info{Name: "m", Dimension: 3}.Validate())
	assert.Error(t, Info{Name: "m"}.Validate())

	assert.NoError(t, Info{Dimension: 3}.CompatibleWith(3))
	assert.Error(t, Info{Dimension: 3}.CompatibleWith(4))
}

func TestInfoAsMap(t *testing.T) {
	m := Info{Name: "ada", Type: "azure", Dimension: 1536}.AsMap()
	assert.Equal(t, "ada", m["model_name"])
	assert.Equal(t, "azure", m["model_type"])
	assert.Equal(t, 1536, m["embedding_dim"])
}
