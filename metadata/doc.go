// Package metadata defines the semi-structured record attached to every stored
// vector.
//
// A Document maps string keys to JSON-compatible values: strings, numbers,
// booleans, nested Documents/maps and slices. Absent metadata is an empty
// Document, never nil, once it is inside a store.
//
// Documents are persisted with a JSON codec, so numbers read back from disk are
// float64 regardless of the Go type they were added with.
package metadata
