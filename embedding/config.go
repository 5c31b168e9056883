package embedding

import (
	"fmt"
	"time"
)

// Backend names accepted in Config.Backend.
const (
	BackendOpenAI = "openai"
	BackendAzure  = "azure_openai"
)

// Defaults used when the corresponding Config field is zero.
const (
	DefaultModel      = "text-embedding-ada-002"
	DefaultBatchSize  = 32
	DefaultAPIVersion = "2024-06-01"
)

// Config selects and parameterizes an embedding backend. It is passed
// explicitly to every constructor.
type Config struct {
	Backend string `yaml:"backend"`
	Model   string `yaml:"model"`
	// Dimensions requests shortened vectors from models that support it.
	// Zero keeps the model's native width.
	Dimensions int    `yaml:"dimensions"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	// AzureEndpoint and APIVersion are used by the azure_openai backend.
	AzureEndpoint string `yaml:"azure_endpoint"`
	APIVersion    string `yaml:"api_version"`

	BatchSize         int           `yaml:"batch_size"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendOpenAI
	}

	if c.Model == "" {
		c.Model = DefaultModel
	}

	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}

	if c.Backend == BackendAzure && c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}

	return c
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI:
	case BackendAzure:
		if c.AzureEndpoint == "" {
			return fmt.Errorf("%w: azure_openai backend needs azure_endpoint", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}

	if c.APIKey == "" {
		return fmt.Errorf("%w: missing api_key", ErrInvalidConfig)
	}

	if c.Dimensions < 0 {
		return fmt.Errorf("%w: negative dimensions", ErrInvalidConfig)
	}

	if c.BatchSize < 0 {
		return fmt.Errorf("%w: negative batch_size", ErrInvalidConfig)
	}

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: negative requests_per_second", ErrInvalidConfig)
	}

	return nil
}
