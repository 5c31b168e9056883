package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/vecstore/distance"
)

var (
	// ErrInvalidDimension is returned when an index is configured with a
	// non-positive dimension.
	ErrInvalidDimension = errors.New("dimension must be positive")
	// ErrInvalidK is returned when k < 1.
	ErrInvalidK = errors.New("k must be at least 1")
)

// ErrDimensionMismatch is a named error type for dimension mismatch
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// SearchResult represents a search result.
type SearchResult struct {
	// Offset is the internal position of the matched vector.
	Offset uint32

	// Distance is the raw score under the index metric.
	Distance float32
}

// Index is a fixed-dimension metric index addressed by offset.
type Index interface {
	// Dimension returns the vector width.
	Dimension() int

	// Metric returns the metric family.
	Metric() distance.Metric

	// Count returns the number of stored vectors.
	Count() int

	// Add appends vectors. Either all are stored or none is.
	Add(vectors [][]float32) error

	// Search returns up to k offsets, best first.
	Search(query []float32, k int) ([]SearchResult, error)

	// SearchBatch runs Search for every query; result i belongs to query i.
	SearchBatch(ctx context.Context, queries [][]float32, k int) ([][]SearchResult, error)

	// Vector returns a copy of the vector stored at offset.
	Vector(offset uint32) ([]float32, bool)

	// Reset drops all vectors.
	Reset()
}

// ValidateOptions checks the construction parameters shared by all backends.
func ValidateOptions(dimension int, metric distance.Metric) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDimension, dimension)
	}
	if !metric.Valid() {
		return fmt.Errorf("%w: %v", distance.ErrUnsupportedMetric, metric)
	}
	return nil
}

// CheckDimension returns *ErrDimensionMismatch when any vector is not exactly
// dimension wide.
func CheckDimension(dimension int, vectors ...[]float32) error {
	for _, v := range vectors {
		if len(v) != dimension {
			return &ErrDimensionMismatch{Expected: dimension, Actual: len(v)}
		}
	}
	return nil
}
