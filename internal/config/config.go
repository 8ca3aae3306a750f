// Package config provides unified configuration for the Groupcast CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full configuration for a Groupcast run.
type Config struct {
	// DataDir is the base directory for caches, downloads, and exports
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Dataset describes where the event CSV comes from
	Dataset DatasetConfig `json:"dataset" yaml:"dataset"`

	// Transform configures the grouped operations
	Transform TransformConfig `json:"transform" yaml:"transform"`

	// Classify configures the event_type value table
	Classify ClassifyConfig `json:"classify" yaml:"classify"`

	// Cache configures the reduce summary cache
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Export configures the SQLite export
	Export ExportConfig `json:"export" yaml:"export"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// DatasetConfig holds dataset source configuration.
type DatasetConfig struct {
	// Path is a local CSV file. Takes precedence over Object.
	Path string `json:"path" yaml:"path"`

	// Object is an object-storage path to a CSV dataset.
	Object string `json:"object" yaml:"object"`

	// DownloadDir is where fetched datasets land.
	DownloadDir string `json:"download_dir" yaml:"download_dir"`

	// FetchConcurrency bounds parallel dataset downloads.
	FetchConcurrency int `json:"fetch_concurrency" yaml:"fetch_concurrency"`
}

// TransformConfig holds grouped-transform configuration.
type TransformConfig struct {
	// KeyColumn is the grouping key column
	KeyColumn string `json:"key_column" yaml:"key_column"`

	// Aggregate is the reduction function: COUNT, SUM, MIN, MAX, AVG
	Aggregate string `json:"aggregate" yaml:"aggregate"`

	// ValueColumn is the column the aggregate consumes (empty for COUNT)
	ValueColumn string `json:"value_column" yaml:"value_column"`

	// PreviewRows is how many rows table previews print
	PreviewRows int `json:"preview_rows" yaml:"preview_rows"`
}

// ClassifyConfig holds the classification value table.
type ClassifyConfig struct {
	// Values overrides the default event_type value table when non-empty
	Values map[string]float64 `json:"values" yaml:"values"`
}

// CacheConfig holds summary cache configuration.
type CacheConfig struct {
	// Enabled toggles the summary cache
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the cache directory
	Dir string `json:"dir" yaml:"dir"`
}

// ExportConfig holds SQLite export configuration.
type ExportConfig struct {
	// OutputDir is where export files are written
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Upload publishes finished exports to object storage
	Upload bool `json:"upload" yaml:"upload"`

	// ObjectPrefix is the object-storage prefix for uploaded exports
	ObjectPrefix string `json:"object_prefix" yaml:"object_prefix"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing (required for MinIO)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// DefaultConfig returns the default configuration for local use.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/groupcast",
		Dataset: DatasetConfig{
			FetchConcurrency: 4,
		},
		Transform: TransformConfig{
			KeyColumn:   "user_id",
			Aggregate:   "COUNT",
			PreviewRows: 10,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			Type: "local",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/groupcast"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "storage")
	}
	if c.Dataset.DownloadDir == "" {
		c.Dataset.DownloadDir = filepath.Join(c.DataDir, "downloads")
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = filepath.Join(c.DataDir, "cache")
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = filepath.Join(c.DataDir, "exports")
	}
	if c.Export.ObjectPrefix == "" {
		c.Export.ObjectPrefix = "exports/"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	if c.Dataset.FetchConcurrency <= 0 {
		return fmt.Errorf("dataset.fetch_concurrency must be positive, got %d", c.Dataset.FetchConcurrency)
	}

	for eventType, value := range c.Classify.Values {
		if value < 0 {
			return fmt.Errorf("classify.values[%s] must be non-negative, got %v", eventType, value)
		}
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the GROUPCAST_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("GROUPCAST_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// Dataset configuration
	if v := os.Getenv("GROUPCAST_DATASET_PATH"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("GROUPCAST_DATASET_OBJECT"); v != "" {
		cfg.Dataset.Object = v
	}
	if v := os.Getenv("GROUPCAST_DATASET_FETCH_CONCURRENCY"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Dataset.FetchConcurrency)
	}

	// Transform configuration
	if v := os.Getenv("GROUPCAST_KEY_COLUMN"); v != "" {
		cfg.Transform.KeyColumn = v
	}
	if v := os.Getenv("GROUPCAST_AGGREGATE"); v != "" {
		cfg.Transform.Aggregate = v
	}
	if v := os.Getenv("GROUPCAST_VALUE_COLUMN"); v != "" {
		cfg.Transform.ValueColumn = v
	}
	if v := os.Getenv("GROUPCAST_PREVIEW_ROWS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Transform.PreviewRows)
	}

	// Cache configuration
	if v := os.Getenv("GROUPCAST_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("GROUPCAST_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}

	// Export configuration
	if v := os.Getenv("GROUPCAST_EXPORT_DIR"); v != "" {
		cfg.Export.OutputDir = v
	}
	if v := os.Getenv("GROUPCAST_EXPORT_UPLOAD"); v != "" {
		cfg.Export.Upload = v == "true" || v == "1"
	}

	// Storage configuration
	if v := os.Getenv("GROUPCAST_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("GROUPCAST_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("GROUPCAST_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("GROUPCAST_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("GROUPCAST_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.Storage.Path,
		c.Dataset.DownloadDir,
		c.Cache.Dir,
		c.Export.OutputDir,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
