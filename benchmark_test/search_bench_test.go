package benchmark_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/hupe1980/vecstore"
)

// BenchmarkSearchDim measures search latency across dimensions.
func BenchmarkSearchDim(b *testing.B) {
	dims := []int{dimSmall, dimMedium, dimLarge}
	const k = 10

	for _, dim := range dims {
		b.Run("dim="+strconv.Itoa(dim), func(b *testing.B) {
			st := newBenchStore(b, dim, sizeSmall)
			queries := makeQueries(100, dim)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := st.Search(ctx, queries[i%len(queries)], k); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "qps")
		})
	}
}

// BenchmarkSearchScaling measures search latency scaling with store size.
func BenchmarkSearchScaling(b *testing.B) {
	sizes := []int{1_000, sizeSmall, sizeMedium}
	const k = 10

	for _, n := range sizes {
		b.Run(formatCount(n), func(b *testing.B) {
			st := newBenchStore(b, dimSmall, n)
			queries := makeQueries(100, dimSmall)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := st.Search(ctx, queries[i%len(queries)], k); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkConcurrentSearch measures readers sharing one store.
func BenchmarkConcurrentSearch(b *testing.B) {
	st := newBenchStore(b, dimSmall, sizeSmall)
	queries := makeQueries(100, dimSmall)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, err := st.Search(ctx, queries[i%len(queries)], 10); err != nil {
				b.Error(err)
				return
			}
			i++
		}
	})
}

// BenchmarkBatchSearch compares fan-out widths for a fixed query batch.
func BenchmarkBatchSearch(b *testing.B) {
	queries := makeQueries(256, dimSmall)
	ctx := context.Background()

	for _, p := range []int{1, 4, 0} {
		name := "parallelism=" + strconv.Itoa(p)
		if p == 0 {
			name = "parallelism=auto"
		}

		b.Run(name, func(b *testing.B) {
			st := newBenchStore(b, dimSmall, sizeSmall, vecstore.WithSearchParallelism(p))

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := st.BatchSearch(ctx, queries, 10); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			b.ReportMetric(float64(b.N*len(queries))/b.Elapsed().Seconds(), "qps")
		})
	}
}
