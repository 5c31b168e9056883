// Package index defines the capability shared by metric index backends.
//
// A metric index owns vectors and distance computation only. It knows nothing
// about identifiers or metadata: every stored vector is addressed by a dense
// offset assigned in insertion order, so the i-th vector of an Add call lands
// at offset Count()+i.
//
// The only backend is index/flat, an exact brute-force scan. Backends have no
// removal primitive; callers rebuild from surviving rows instead.
//
//	type Index interface {
//	    Dimension() int
//	    Metric() distance.Metric
//	    Count() int
//	    Add(vectors [][]float32) error
//	    Search(query []float32, k int) ([]SearchResult, error)
//	    SearchBatch(ctx context.Context, queries [][]float32, k int) ([][]SearchResult, error)
//	    Vector(offset uint32) ([]float32, bool)
//	    Reset()
//	}
package index
