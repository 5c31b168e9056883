// Package persistence implements the on-disk shape of a store.
//
// A saved store is two co-located artifacts sharing a base path:
//
//   - <path>.index: a 64-byte FileHeader followed by the float32 payload of the
//     metric index, optionally block-compressed (LZ4 or ZSTD) and CRC32 checked.
//   - <path>.meta: a self-describing record (codec name + encoded MetaRecord)
//     with the dimension, metric, ids and metadata in offset order.
//
// Both artifacts carry the same generation UUID. Each one is written atomically
// through a blobstore.BlobStore; Load rejects pairs whose generations differ,
// which is how a save interrupted between the two writes is detected.
package persistence
