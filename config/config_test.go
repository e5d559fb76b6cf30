package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"jpg", "jpeg", "png", "gif", "webp", "svg", "bmp"}, cfg.Scan.SupportedFormats)
	assert.Equal(t, []string{".obsidian", ".trash", "node_modules"}, cfg.Scan.ExcludedFolders)
	assert.Equal(t, int64(1024), cfg.Scan.MinFileSize)
	assert.Equal(t, int64(50<<20), cfg.Scan.MaxFileSize)
	assert.True(t, cfg.Scan.ExifExtraction)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.AnalysisTTL)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestParse_MergesOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
scan:
  excluded_folders: [archive]
  min_file_size: 0
  exif_extraction: false
cache:
  analysis_ttl: 48h
storage:
  backend: minio
  endpoint: localhost:9000
  bucket: images
  codec: cbor
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"archive"}, cfg.Scan.ExcludedFolders)
	assert.Equal(t, int64(0), cfg.Scan.MinFileSize)
	assert.False(t, cfg.Scan.ExifExtraction)
	assert.Equal(t, 48*time.Hour, cfg.Cache.AnalysisTTL)
	assert.Equal(t, BackendMinIO, cfg.Storage.Backend)
	assert.Equal(t, "cbor", cfg.Storage.Codec)
	assert.Equal(t, "zstd", cfg.Storage.Compression, "unset fields keep defaults")
	assert.Len(t, cfg.Scan.SupportedFormats, 7)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("scan: [unclosed"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imgdex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  language: de\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.Catalog.Language)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"no formats", func(c *Config) { c.Scan.SupportedFormats = nil }, "scan.supported_formats"},
		{"negative min", func(c *Config) { c.Scan.MinFileSize = -1 }, "scan.min_file_size"},
		{"max below min", func(c *Config) { c.Scan.MaxFileSize = 10 }, "scan.max_file_size"},
		{"zero concurrency", func(c *Config) { c.Scan.Concurrency = 0 }, "scan.concurrency"},
		{"negative rate", func(c *Config) { c.Scan.FilesPerSecond = -1 }, "scan.files_per_second"},
		{"negative ttl", func(c *Config) { c.Cache.AnalysisTTL = -time.Hour }, "cache.analysis_ttl"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "ftp" }, "storage.backend"},
		{"local without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"s3 without bucket", func(c *Config) { c.Storage.Backend = BackendS3 }, "storage.bucket"},
		{"minio without endpoint", func(c *Config) {
			c.Storage.Backend = BackendMinIO
			c.Storage.Bucket = "b"
		}, "storage.endpoint"},
		{"unknown codec", func(c *Config) { c.Storage.Codec = "xml" }, "storage.codec"},
		{"unknown compression", func(c *Config) { c.Storage.Compression = "gzip" }, "storage.compression"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
