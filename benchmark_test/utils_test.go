package benchmark_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/hupe1980/vecstore"
	"github.com/hupe1980/vecstore/testutil"
)

const (
	dimSmall  = 128
	dimMedium = 384
	dimLarge  = 1536

	sizeSmall  = 10_000
	sizeMedium = 50_000
)

// benchStore is a store preloaded with n uniform vectors.
type benchStore struct {
	*vecstore.Store
	vectors [][]float32
	ids     []string
}

func newBenchStore(b *testing.B, dim, n int, optFns ...vecstore.Option) *benchStore {
	b.Helper()

	st, err := vecstore.New(dim, vecstore.MetricL2, optFns...)
	if err != nil {
		b.Fatal(err)
	}

	rng := testutil.NewRNG(1)
	vectors := rng.UniformVectors(n, dim)
	ids := testutil.IDs("bench", n)

	ctx := context.Background()
	for i := 0; i < n; i += 10_000 {
		end := min(i+10_000, n)
		if err := st.Add(ctx, vectors[i:end], ids[i:end], nil); err != nil {
			b.Fatal(err)
		}
	}

	return &benchStore{Store: st, vectors: vectors, ids: ids}
}

func makeQueries(n, dim int) [][]float32 {
	return testutil.NewRNG(99).UniformVectors(n, dim)
}

func formatCount(n int) string {
	switch {
	case n >= 1_000_000 && n%1_000_000 == 0:
		return strconv.Itoa(n/1_000_000) + "M"
	case n >= 1_000 && n%1_000 == 0:
		return strconv.Itoa(n/1_000) + "K"
	default:
		return strconv.Itoa(n)
	}
}
