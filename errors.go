package vecstore

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecstore/distance"
	"github.com/hupe1980/vecstore/index"
	"github.com/hupe1980/vecstore/internal/registry"
	"github.com/hupe1980/vecstore/internal/resource"
	"github.com/hupe1980/vecstore/internal/validate"
)

var (
	// ErrNotFound is returned when an identifier is not live.
	ErrNotFound = errors.New("not found")

	// ErrInvalidK is returned when k < 1. It is reported inside an
	// *ErrInvalidConfiguration.
	ErrInvalidK = errors.New("k must be at least 1")

	// ErrMemoryLimitExceeded is returned by Add when the configured memory
	// budget would be exceeded.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrCountMismatch indicates batch inputs of different lengths.
type ErrCountMismatch struct {
	// Field is "ids" or "metadata".
	Field    string
	Expected int
	Actual   int
	cause    error
}

func (e *ErrCountMismatch) Error() string {
	return fmt.Sprintf("count mismatch: %d vectors but %d %s", e.Expected, e.Actual, e.Field)
}

func (e *ErrCountMismatch) Unwrap() error { return e.cause }

// ErrDuplicateIdentifier indicates an add with an id that is already live or
// repeated within the batch.
type ErrDuplicateIdentifier struct {
	ID    string
	cause error
}

func (e *ErrDuplicateIdentifier) Error() string {
	return fmt.Sprintf("duplicate identifier: %q", e.ID)
}

func (e *ErrDuplicateIdentifier) Unwrap() error { return e.cause }

// ErrInvalidConfiguration indicates an unusable construction or call
// parameter: unsupported metric, non-positive dimension, k < 1, bad config.
type ErrInvalidConfiguration struct {
	Reason string
	cause  error
}

func (e *ErrInvalidConfiguration) Error() string {
	return "invalid configuration: " + e.Reason
}

func (e *ErrInvalidConfiguration) Unwrap() error { return e.cause }

func invalidConfig(cause error, format string, args ...any) error {
	return &ErrInvalidConfiguration{Reason: fmt.Sprintf(format, args...), cause: cause}
}

// ErrSerialization wraps a failure while saving to Path.
type ErrSerialization struct {
	Path  string
	cause error
}

func (e *ErrSerialization) Error() string {
	return fmt.Sprintf("serialize %s: %v", e.Path, e.cause)
}

func (e *ErrSerialization) Unwrap() error { return e.cause }

// ErrDeserialization wraps a failure while loading from Path. The store
// state is unchanged when Load returns it.
type ErrDeserialization struct {
	Path  string
	cause error
}

func (e *ErrDeserialization) Error() string {
	return fmt.Sprintf("deserialize %s: %v", e.Path, e.cause)
}

func (e *ErrDeserialization) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, registry.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var dm *index.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	var cm *validate.ErrCountMismatch
	if errors.As(err, &cm) {
		return &ErrCountMismatch{Field: cm.Field, Expected: cm.Expected, Actual: cm.Actual, cause: err}
	}

	var dup *registry.ErrDuplicateID
	if errors.As(err, &dup) {
		return &ErrDuplicateIdentifier{ID: dup.ID, cause: err}
	}

	switch {
	case errors.Is(err, index.ErrInvalidK):
		return invalidConfig(fmt.Errorf("%w: %w", ErrInvalidK, err), "%v", err)
	case errors.Is(err, index.ErrInvalidDimension), errors.Is(err, distance.ErrUnsupportedMetric):
		return invalidConfig(err, "%v", err)
	}

	return err
}
