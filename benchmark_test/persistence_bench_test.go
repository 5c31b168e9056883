package benchmark_test

import (
	"context"
	"testing"

	"github.com/hupe1980/vecstore"
	"github.com/hupe1980/vecstore/blobstore"
	"github.com/hupe1980/vecstore/persistence"
)

var compressions = []persistence.CompressionType{
	persistence.CompressionNone,
	persistence.CompressionLZ4,
	persistence.CompressionZSTD,
}

// BenchmarkSave benchmarks writing the index and meta artifacts to disk.
func BenchmarkSave(b *testing.B) {
	const dim = dimMedium

	for _, size := range []int{1_000, sizeSmall} {
		for _, c := range compressions {
			b.Run(formatCount(size)+"/"+c.String(), func(b *testing.B) {
				st := newBenchStore(b, dim, size,
					vecstore.WithBlobStore(blobstore.NewLocalStore(b.TempDir())),
					vecstore.WithCompression(c),
				)
				ctx := context.Background()

				b.ResetTimer()

				for b.Loop() {
					if err := st.Save(ctx, "snapshot"); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkLoad benchmarks reading a saved store back.
func BenchmarkLoad(b *testing.B) {
	const dim = dimMedium

	for _, c := range compressions {
		b.Run(formatCount(sizeSmall)+"/"+c.String(), func(b *testing.B) {
			st := newBenchStore(b, dim, sizeSmall,
				vecstore.WithBlobStore(blobstore.NewLocalStore(b.TempDir())),
				vecstore.WithCompression(c),
			)
			ctx := context.Background()

			if err := st.Save(ctx, "snapshot"); err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			b.ResetTimer()

			for b.Loop() {
				if err := st.Load(ctx, "snapshot"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
