package benchmark_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/hupe1980/vecstore"
	"github.com/hupe1980/vecstore/testutil"
)

func BenchmarkAdd(b *testing.B) {
	const dim = dimSmall
	ctx := context.Background()

	for _, batchSize := range []int{1, 100, 1_000} {
		b.Run("batch="+strconv.Itoa(batchSize), func(b *testing.B) {
			st, err := vecstore.New(dim, vecstore.MetricL2)
			if err != nil {
				b.Fatal(err)
			}

			vectors := testutil.NewRNG(3).UniformVectors(batchSize, dim)

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				ids := testutil.IDs("b"+strconv.Itoa(i), batchSize)
				if err := st.Add(ctx, vectors, ids, nil); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			b.ReportMetric(float64(b.N*batchSize)/b.Elapsed().Seconds(), "vectors/s")
		})
	}
}

// BenchmarkDelete includes the flat index rebuild over the survivors.
func BenchmarkDelete(b *testing.B) {
	ctx := context.Background()

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		st := newBenchStore(b, dimSmall, sizeSmall)
		b.StartTimer()

		if _, err := st.Delete(ctx, st.ids[:100]); err != nil {
			b.Fatal(err)
		}
	}
}
