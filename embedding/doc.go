// Package embedding turns text into vectors for a store.
//
// An Embedder returns vectors together with the model.Info describing the
// model that produced them. Backends are configured through an explicit
// Config value; there is no process-wide default model.
//
// A Pipeline feeds documents through an Embedder in fixed-size batches and
// hands the results to a Sink, either an archive.Writer or a store.
package embedding
