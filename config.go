package vecstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/vecstore/blobstore"
	"github.com/hupe1980/vecstore/blobstore/minio"
	"github.com/hupe1980/vecstore/blobstore/s3"
	"github.com/hupe1980/vecstore/codec"
	"github.com/hupe1980/vecstore/distance"
	"github.com/hupe1980/vecstore/embedding"
	"github.com/hupe1980/vecstore/embedding/openai"
	"github.com/hupe1980/vecstore/model"
	"github.com/hupe1980/vecstore/persistence"
)

// Storage backends accepted in StorageConfig.Backend.
const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendS3     = "s3"
	BackendMinIO  = "minio"
)

// Config is the declarative form of a store and its surroundings.
type Config struct {
	Dimension int    `yaml:"dimension"`
	Metric    string `yaml:"metric"`
	// LogLevel is a slog level name; empty disables logging.
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Storage     StorageConfig     `yaml:"storage"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Resources   ResourceConfig    `yaml:"resources"`

	Model     *model.Info      `yaml:"model"`
	Embedding embedding.Config `yaml:"embedding"`
}

// StorageConfig selects the blob store.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Root is the local directory; relative roots resolve against the
	// config file's directory.
	Root  string      `yaml:"root"`
	S3    S3Config    `yaml:"s3"`
	MinIO MinIOConfig `yaml:"minio"`
}

// S3Config configures the s3 backend. Credentials come from the AWS default
// chain.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// MinIOConfig configures the minio backend.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// PersistenceConfig configures Save and Load.
type PersistenceConfig struct {
	// Path is the artifact base name. When set and artifacts exist,
	// NewFromConfig opens them instead of creating an empty store.
	Path        string `yaml:"path"`
	Codec       string `yaml:"codec"`
	Compression string `yaml:"compression"`
}

// ResourceConfig bounds memory, IO and search fan-out.
type ResourceConfig struct {
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec"`
	SearchParallelism  int   `yaml:"search_parallelism"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Backend == BackendLocal && !filepath.IsAbs(cfg.Storage.Root) {
		cfg.Storage.Root = filepath.Join(filepath.Dir(path), cfg.Storage.Root)
	}

	return cfg, nil
}

// ParseConfig decodes YAML, applies defaults and validates.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, invalidConfig(err, "failed to parse config: %v", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.Metric == "" {
		c.Metric = MetricL2.String()
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendLocal
	}

	if c.Persistence.Codec == "" {
		c.Persistence.Codec = codec.Default.Name()
	}

	if c.LogFormat == "" {
		c.LogFormat = "text"
	}

	if c.Embedding.Backend != "" {
		c.Embedding = c.Embedding.WithDefaults()
	}
}

// Validate reports the first invalid setting as *ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if c.Dimension < 0 || (c.Dimension == 0 && c.Persistence.Path == "") {
		return invalidConfig(nil, "dimension must be positive, got %d", c.Dimension)
	}

	if _, err := distance.ParseMetric(c.Metric); err != nil {
		return invalidConfig(err, "%v", err)
	}

	if _, err := c.logLevel(); err != nil {
		return invalidConfig(err, "log_level: %v", err)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return invalidConfig(nil, "log_format must be text or json, got %q", c.LogFormat)
	}

	switch c.Storage.Backend {
	case BackendLocal, BackendMemory:
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return invalidConfig(nil, "storage.s3.bucket is required")
		}
	case BackendMinIO:
		if c.Storage.MinIO.Endpoint == "" || c.Storage.MinIO.Bucket == "" {
			return invalidConfig(nil, "storage.minio.endpoint and storage.minio.bucket are required")
		}
	default:
		return invalidConfig(nil, "unknown storage backend %q", c.Storage.Backend)
	}

	if _, ok := codec.ByName(c.Persistence.Codec); !ok {
		return invalidConfig(persistence.ErrUnknownCodec, "unknown codec %q", c.Persistence.Codec)
	}

	if _, err := persistence.ParseCompression(c.Persistence.Compression); err != nil {
		return invalidConfig(err, "%v", err)
	}

	r := c.Resources
	if r.MemoryLimitBytes < 0 || r.IOLimitBytesPerSec < 0 || r.SearchParallelism < 0 {
		return invalidConfig(nil, "resource limits must not be negative")
	}

	if c.Model != nil {
		if err := c.Model.Validate(); err != nil {
			return invalidConfig(err, "%v", err)
		}
		if c.Dimension > 0 {
			if err := c.Model.CompatibleWith(c.Dimension); err != nil {
				return invalidConfig(err, "%v", err)
			}
		}
	}

	if c.Embedding.Backend != "" {
		if err := c.Embedding.Validate(); err != nil {
			return invalidConfig(err, "%v", err)
		}
	}

	return nil
}

func (c *Config) logLevel() (*slog.Level, error) {
	if c.LogLevel == "" {
		return nil, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return nil, err
	}

	return &level, nil
}

// NewBlobStore builds the configured blob store.
func (c *Config) NewBlobStore(ctx context.Context) (blobstore.BlobStore, error) {
	switch c.Storage.Backend {
	case BackendMemory:
		return blobstore.NewMemoryStore(), nil
	case BackendS3:
		cfg := c.Storage.S3

		optFns := []s3.Option{s3.WithPrefix(cfg.Prefix)}
		if cfg.Region != "" {
			optFns = append(optFns, s3.WithRegion(cfg.Region))
		}

		st, err := s3.New(ctx, cfg.Bucket, optFns...)
		if err != nil {
			return nil, err
		}

		return st, nil
	case BackendMinIO:
		cfg := c.Storage.MinIO

		st, err := minio.New(cfg.Endpoint, cfg.Bucket, minio.Config{
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			Secure:    cfg.Secure,
			Prefix:    cfg.Prefix,
		})
		if err != nil {
			return nil, err
		}

		return st, nil
	default:
		return blobstore.NewLocalStore(c.Storage.Root), nil
	}
}

// Options translates the config into store options.
func (c *Config) Options(ctx context.Context) ([]Option, error) {
	bs, err := c.NewBlobStore(ctx)
	if err != nil {
		return nil, err
	}

	compression, err := persistence.ParseCompression(c.Persistence.Compression)
	if err != nil {
		return nil, invalidConfig(err, "%v", err)
	}

	optFns := []Option{
		WithBlobStore(bs),
		WithCodec(codec.MustByName(c.Persistence.Codec)),
		WithCompression(compression),
		WithMemoryLimit(c.Resources.MemoryLimitBytes),
		WithIOLimit(c.Resources.IOLimitBytesPerSec),
		WithSearchParallelism(c.Resources.SearchParallelism),
	}

	level, err := c.logLevel()
	if err != nil {
		return nil, invalidConfig(err, "%v", err)
	}

	if level != nil {
		if c.LogFormat == "json" {
			optFns = append(optFns, WithLogger(NewJSONLogger(*level)))
		} else {
			optFns = append(optFns, WithLogger(NewTextLogger(*level)))
		}
	}

	if c.Model != nil {
		optFns = append(optFns, WithModelInfo(*c.Model))
	}

	return optFns, nil
}

// NewFromConfig creates a store from cfg. When cfg.Persistence.Path names
// existing artifacts they are loaded; otherwise an empty store is created.
// extra options are applied after the ones derived from cfg.
func NewFromConfig(ctx context.Context, c *Config, extra ...Option) (*Store, error) {
	cfg := *c
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	optFns, err := cfg.Options(ctx)
	if err != nil {
		return nil, err
	}
	optFns = append(optFns, extra...)

	if path := cfg.Persistence.Path; path != "" {
		exists, err := artifactsExist(ctx, applyOptions(optFns).blobStore, path)
		if err != nil {
			return nil, err
		}
		if exists {
			return Open(ctx, path, optFns...)
		}
		if cfg.Dimension == 0 {
			return nil, invalidConfig(nil, "no artifacts at %q and no dimension configured", path)
		}
	}

	metric, _ := distance.ParseMetric(cfg.Metric)

	return New(cfg.Dimension, metric, optFns...)
}

func artifactsExist(ctx context.Context, bs blobstore.BlobStore, path string) (bool, error) {
	b, err := bs.Open(ctx, persistence.IndexName(path))
	if errors.Is(err, blobstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, b.Close()
}

// NewEmbedder builds the configured embedding backend.
func (c *Config) NewEmbedder() (embedding.Embedder, error) {
	if c.Embedding.Backend == "" {
		return nil, invalidConfig(embedding.ErrInvalidConfig, "no embedding backend configured")
	}

	return openai.NewFromConfig(c.Embedding)
}
