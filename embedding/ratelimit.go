package embedding

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/hupe1980/vecstore/model"
)

// RateLimited paces calls to an Embedder. Each Embed or EmbedBatch call
// counts as one request.
type RateLimited struct {
	next    Embedder
	limiter *rate.Limiter
}

var _ Embedder = (*RateLimited)(nil)

// NewRateLimited wraps next with a limit of rps requests per second.
// A non-positive rps disables limiting.
func NewRateLimited(next Embedder, rps float64, burst int) *RateLimited {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}

	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(limit, max(burst, 1)),
	}
}

// Embed waits for a token, then delegates.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, model.Info, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, model.Info{}, err
	}

	return r.next.Embed(ctx, text)
}

// EmbedBatch waits for a token, then delegates.
func (r *RateLimited) EmbedBatch(ctx context.Context, texts []string) ([][]float32, model.Info, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, model.Info{}, err
	}

	return r.next.EmbedBatch(ctx, texts)
}
