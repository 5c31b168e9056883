// Package model defines the record describing which upstream embedding model
// produced a set of vectors.
//
// The JSON field names (model_name, model_type, embedding_dim) are the ones the
// embedding pipeline writes into the __model_info__ entry of an archive.
package model
