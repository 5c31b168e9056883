package model

import (
	"fmt"
)

// Info describes an embedding model.
type Info struct {
	Name      string `json:"model_name" yaml:"model_name"`
	Type      string `json:"model_type" yaml:"model_type"`
	Dimension int    `json:"embedding_dim" yaml:"embedding_dim"`
}

// String returns a compact representation of the Info.
func (i Info) String() string {
	return fmt.Sprintf("%s/%s(%d)", i.Type, i.Name, i.Dimension)
}

// Validate checks that the record is usable.
func (i Info) Validate() error {
	if i.Dimension <= 0 {
		return fmt.Errorf("model info: invalid embedding_dim %d", i.Dimension)
	}
	return nil
}

// CompatibleWith reports an error if vectors produced by the model cannot be
// stored at the given dimension.
func (i Info) CompatibleWith(dimension int) error {
	if i.Dimension != dimension {
		return fmt.Errorf("model info: %s produces %d-dimensional vectors, store expects %d", i.Name, i.Dimension, dimension)
	}
	return nil
}

// AsMap converts the record into a metadata-friendly mapping.
func (i Info) AsMap() map[string]any {
	return map[string]any{
		"model_name":    i.Name,
		"model_type":    i.Type,
		"embedding_dim": i.Dimension,
	}
}
