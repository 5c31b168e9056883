// Package mmap provides read-only memory-mapped access to local artifacts.
//
// # Usage
//
//	m, err := mmap.Open("store.index")
//	if err != nil { ... }
//	defer m.Close()
//
//	m.Sequential()
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), with madvise(2) for Sequential
//   - Windows: CreateFileMapping/MapViewOfFile (Sequential is a no-op)
//
// Close is idempotent. Callers must not touch the slice returned by Bytes
// after Close returns.
package mmap
