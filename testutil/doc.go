// Package testutil provides testing utilities for vecstore.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(100, 384) // uniform [0, 1)
//	ids := testutil.IDs("doc", 100)      // doc-0 ... doc-99
//
// # Exact Search (Ground Truth)
//
//	want := testutil.BruteForceSearch(vecs, query, k, distance.MetricIP)
package testutil
