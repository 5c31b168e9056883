package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/vecstore/model"
)

var (
	// ErrEmptyInput is returned when there is nothing to embed.
	ErrEmptyInput = errors.New("embedding: empty input")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("embedding: invalid config")

	// ErrBackendResponse is returned when a backend answers with the wrong
	// number of vectors or with vectors of unequal width.
	ErrBackendResponse = errors.New("embedding: malformed backend response")
)

// Embedder converts text into dense float32 vectors.
type Embedder interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, model.Info, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, model.Info, error)
}

// CheckBatch verifies a backend response for n inputs and fills in the
// dimension of info from the vectors.
func CheckBatch(vecs [][]float32, n int, info model.Info) (model.Info, error) {
	if len(vecs) != n {
		return info, fmt.Errorf("%w: %d vectors for %d inputs", ErrBackendResponse, len(vecs), n)
	}

	if n == 0 {
		return info, nil
	}

	dim := len(vecs[0])
	if dim == 0 {
		return info, fmt.Errorf("%w: empty vector", ErrBackendResponse)
	}

	for i, v := range vecs {
		if len(v) != dim {
			return info, fmt.Errorf("%w: vector %d has %d components, expected %d", ErrBackendResponse, i, len(v), dim)
		}
	}

	info.Dimension = dim

	return info, nil
}
