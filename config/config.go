// Package config loads imgdex settings from a YAML file.
//
// Values absent from the file keep the defaults returned by Default, so a
// minimal file only names what it changes:
//
//	scan:
//	  excluded_folders: [.obsidian, .trash, node_modules, archive]
//	storage:
//	  backend: local
//	  path: ./.imgdex
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendLocal  = "local"
	BackendS3     = "s3"
	BackendMinIO  = "minio"
)

// Config is the complete imgdex configuration.
type Config struct {
	// Scan controls which files are cataloged.
	Scan ScanConfig `yaml:"scan"`

	// Cache controls the analysis cache.
	Cache CacheConfig `yaml:"cache"`

	// Storage selects where snapshots and cached analyses are kept.
	Storage StorageConfig `yaml:"storage"`

	// Catalog controls query behavior.
	Catalog CatalogConfig `yaml:"catalog"`

	// Log configures logging output.
	Log LogConfig `yaml:"log"`
}

// ScanConfig controls the directory scanner.
type ScanConfig struct {
	// SupportedFormats lists file extensions without the leading dot.
	SupportedFormats []string `yaml:"supported_formats"`

	// ExcludedFolders are skipped wherever they appear in a path.
	ExcludedFolders []string `yaml:"excluded_folders"`

	// MinFileSize and MaxFileSize bound the file size in bytes, inclusive.
	MinFileSize int64 `yaml:"min_file_size"`
	MaxFileSize int64 `yaml:"max_file_size"`

	// ExifExtraction enables EXIF decoding of JPEG files.
	ExifExtraction bool `yaml:"exif_extraction"`

	// Concurrency is the number of files read in parallel.
	Concurrency int `yaml:"concurrency"`

	// FilesPerSecond throttles file reads. Zero means unlimited.
	FilesPerSecond float64 `yaml:"files_per_second"`
}

// CacheConfig controls the analysis cache.
type CacheConfig struct {
	// AnalysisTTL is how long cached analyses stay valid, e.g. "168h".
	AnalysisTTL time.Duration `yaml:"analysis_ttl"`

	// BlobEntries is the size of the in-memory blob cache. Zero disables it.
	BlobEntries int `yaml:"blob_entries"`
}

// StorageConfig selects the blob store backend.
type StorageConfig struct {
	// Backend is one of memory, local, s3 or minio.
	Backend string `yaml:"backend"`

	// Path is the root directory of the local backend.
	Path string `yaml:"path"`

	// Bucket and Prefix locate blobs on the s3 and minio backends.
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`

	// Endpoint overrides the service endpoint. Required for minio.
	Endpoint string `yaml:"endpoint"`

	// Region is the AWS region of the s3 backend.
	Region string `yaml:"region"`

	// AccessKey and SecretKey are static minio credentials.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// Secure enables TLS for minio.
	Secure bool `yaml:"secure"`

	// Codec names the codec for new blobs: json, go-json or cbor.
	Codec string `yaml:"codec"`

	// Compression is none, lz4 or zstd.
	Compression string `yaml:"compression"`
}

// CatalogConfig controls query behavior.
type CatalogConfig struct {
	// Language is the BCP 47 tag used for name collation.
	Language string `yaml:"language"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			SupportedFormats: []string{"jpg", "jpeg", "png", "gif", "webp", "svg", "bmp"},
			ExcludedFolders:  []string{".obsidian", ".trash", "node_modules"},
			MinFileSize:      1024,
			MaxFileSize:      50 * 1024 * 1024,
			ExifExtraction:   true,
			Concurrency:      8,
		},
		Cache: CacheConfig{
			AnalysisTTL: 7 * 24 * time.Hour,
			BlobEntries: 256,
		},
		Storage: StorageConfig{
			Backend:     BackendLocal,
			Path:        ".imgdex",
			Codec:       "go-json",
			Compression: "zstd",
		},
		Catalog: CatalogConfig{
			Language: "en",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidationError reports one invalid field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration. The returned error joins one
// *ValidationError per invalid field.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if len(c.Scan.SupportedFormats) == 0 {
		invalid("scan.supported_formats", "at least one format is required")
	}
	if c.Scan.MinFileSize < 0 {
		invalid("scan.min_file_size", "must not be negative")
	}
	if c.Scan.MaxFileSize > 0 && c.Scan.MaxFileSize < c.Scan.MinFileSize {
		invalid("scan.max_file_size", "must not be below min_file_size (%d)", c.Scan.MinFileSize)
	}
	if c.Scan.Concurrency < 1 {
		invalid("scan.concurrency", "must be at least 1")
	}
	if c.Scan.FilesPerSecond < 0 {
		invalid("scan.files_per_second", "must not be negative")
	}
	if c.Cache.AnalysisTTL < 0 {
		invalid("cache.analysis_ttl", "must not be negative")
	}
	if c.Cache.BlobEntries < 0 {
		invalid("cache.blob_entries", "must not be negative")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendLocal:
		if c.Storage.Path == "" {
			invalid("storage.path", "is required for the local backend")
		}
	case BackendS3:
		if c.Storage.Bucket == "" {
			invalid("storage.bucket", "is required for the s3 backend")
		}
	case BackendMinIO:
		if c.Storage.Bucket == "" {
			invalid("storage.bucket", "is required for the minio backend")
		}
		if c.Storage.Endpoint == "" {
			invalid("storage.endpoint", "is required for the minio backend")
		}
	default:
		invalid("storage.backend", "must be one of: %v", []string{BackendMemory, BackendLocal, BackendS3, BackendMinIO})
	}
	if !slices.Contains([]string{"json", "go-json", "cbor"}, c.Storage.Codec) {
		invalid("storage.codec", "unknown codec %q", c.Storage.Codec)
	}
	if !slices.Contains([]string{"", "none", "lz4", "zstd"}, strings.ToLower(c.Storage.Compression)) {
		invalid("storage.compression", "unknown compression %q", c.Storage.Compression)
	}

	if _, err := c.LogLevel(); err != nil {
		invalid("log.level", "%v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		invalid("log.format", "must be text or json")
	}

	return errors.Join(errs...)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}
