package validate

import (
	"errors"
	"testing"

	"github.com/hupe1980/vecstore/index"
	"github.com/hupe1980/vecstore/metadata"
	"github.com/stretchr/testify/assert"
)

func TestBatch(t *testing.T) {
	vecs := [][]float32{{1, 2}, {3, 4}}

	tests := []struct {
		name      string
		vectors   [][]float32
		ids       []string
		docs      []metadata.Document
		wantField string
		wantDim   bool
	}{
		{name: "Valid", vectors: vecs, ids: []string{"a", "b"}},
		{name: "ValidWithMetadata", vectors: vecs, ids: []string{"a", "b"}, docs: []metadata.Document{{}, nil}},
		{name: "Empty", vectors: nil, ids: nil},
		{name: "TooFewIDs", vectors: vecs, ids: []string{"a"}, wantField: "ids"},
		{name: "TooManyMetadata", vectors: vecs, ids: []string{"a", "b"}, docs: make([]metadata.Document, 3), wantField: "metadata"},
		{name: "EmptyMetadataSlice", vectors: vecs, ids: []string{"a", "b"}, docs: []metadata.Document{}, wantField: "metadata"},
		{name: "BadDimension", vectors: [][]float32{{1, 2}, {3}}, ids: []string{"a", "b"}, wantDim: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Batch(2, tt.vectors, tt.ids, tt.docs)
			switch {
			case tt.wantField != "":
				var cm *ErrCountMismatch
				assert.True(t, errors.As(err, &cm))
				assert.Equal(t, tt.wantField, cm.Field)
			case tt.wantDim:
				var dm *index.ErrDimensionMismatch
				assert.True(t, errors.As(err, &dm))
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestCountMismatchMessage(t *testing.T) {
	err := &ErrCountMismatch{Field: "ids", Expected: 3, Actual: 2}
	assert.Equal(t, "count mismatch: 3 vectors but 2 ids", err.Error())
}

func TestQueryAndK(t *testing.T) {
	assert.NoError(t, Query(3, []float32{1, 2, 3}))
	assert.IsType(t, &index.ErrDimensionMismatch{}, Query(3, []float32{1}))

	assert.NoError(t, K(1))
	assert.ErrorIs(t, K(0), index.ErrInvalidK)
	assert.ErrorIs(t, K(-3), index.ErrInvalidK)
}
