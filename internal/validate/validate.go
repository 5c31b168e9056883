// Package validate holds the pure checks run before any store mutation.
package validate

import (
	"fmt"

	"github.com/hupe1980/vecstore/index"
	"github.com/hupe1980/vecstore/metadata"
)

// ErrCountMismatch reports parallel batch inputs of different lengths.
type ErrCountMismatch struct {
	Field    string
	Expected int
	Actual   int
}

func (e *ErrCountMismatch) Error() string {
	return fmt.Sprintf("count mismatch: %d vectors but %d %s", e.Expected, e.Actual, e.Field)
}

// Vectors checks that every vector is dimension wide.
func Vectors(dimension int, vectors [][]float32) error {
	return index.CheckDimension(dimension, vectors...)
}

// Query checks a single query vector.
func Query(dimension int, query []float32) error {
	return index.CheckDimension(dimension, query)
}

// K checks a result bound.
func K(k int) error {
	if k < 1 {
		return fmt.Errorf("%w: got %d", index.ErrInvalidK, k)
	}
	return nil
}

// Batch checks an add batch: counts first, then dimensions.
// A nil docs slice means "no metadata" and is always accepted.
func Batch(dimension int, vectors [][]float32, ids []string, docs []metadata.Document) error {
	if len(ids) != len(vectors) {
		return &ErrCountMismatch{Field: "ids", Expected: len(vectors), Actual: len(ids)}
	}
	if docs != nil && len(docs) != len(vectors) {
		return &ErrCountMismatch{Field: "metadata", Expected: len(vectors), Actual: len(docs)}
	}
	return Vectors(dimension, vectors)
}
