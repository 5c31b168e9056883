// Package resource governs the memory and IO a store may use.
//
//   - Memory: a fail-fast budget for vector payload bytes. Add reserves
//     count*dimension*4 bytes before mutating and gets ErrMemoryLimitExceeded
//     when the budget is exhausted. Delete, Clear and Load release.
//   - IO: a token bucket (bytes per second) applied to artifact reads and
//     writes during Save and Load.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   1 << 30,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
// All methods are safe for concurrent use, and all of them are no-ops on a
// nil *Controller.
package resource
