package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/vecstore/distance"
)

// SearchResult represents a reference search result.
type SearchResult struct {
	Offset   int
	Distance float32
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// FillUniform fills dst with random values in range [0, 1).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVectors generates L2-normalized random vectors, the usual shape of
// sentence embeddings searched with inner product.
func (r *RNG) UnitVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([][]float32, num)
	for i := range num {
		vec := make([]float32, dimensions)
		var norm float64
		for j := range vec {
			v := r.rand.NormFloat64()
			vec[j] = float32(v)
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			vec[0] = 1
			norm = 1
		}
		for j := range vec {
			vec[j] = float32(float64(vec[j]) / norm)
		}
		vectors[i] = vec
	}
	return vectors
}

// IDs returns n identifiers prefix-0 ... prefix-(n-1).
func IDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return ids
}

// BruteForceSearch performs exact search for ground truth. Equal scores keep
// ascending offset order.
func BruteForceSearch(vectors [][]float32, query []float32, k int, metric distance.Metric) []SearchResult {
	dist, err := distance.Provider(metric)
	if err != nil {
		panic(err)
	}

	results := make([]SearchResult, len(vectors))
	for i, v := range vectors {
		results[i] = SearchResult{Offset: i, Distance: dist(query, v)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return metric.Better(results[i].Distance, results[j].Distance)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}
