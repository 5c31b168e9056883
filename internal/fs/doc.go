// Package fs abstracts the file-system calls made by the local blob store so
// tests can inject write, sync, close and rename failures.
package fs
