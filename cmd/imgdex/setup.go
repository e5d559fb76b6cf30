package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/hupe1980/imgdex"
	"github.com/hupe1980/imgdex/blobstore"
	"github.com/hupe1980/imgdex/blobstore/minio"
	"github.com/hupe1980/imgdex/blobstore/s3"
	"github.com/hupe1980/imgdex/codec"
	"github.com/hupe1980/imgdex/config"
	"github.com/hupe1980/imgdex/internal/compress"
	"github.com/hupe1980/imgdex/scan"
)

func loadConfig(e *env) (*config.Config, error) {
	cfg := config.Default()
	if e.configPath != "" {
		var err error
		if cfg, err = config.Load(e.configPath); err != nil {
			return nil, err
		}
	}
	if e.logLevel != "" {
		cfg.Log.Level = e.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *imgdex.Logger {
	level, _ := cfg.LogLevel()
	if cfg.Log.Format == "json" {
		return imgdex.NewJSONLogger(level)
	}
	return imgdex.NewTextLogger(level)
}

func openStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	sc := cfg.Storage
	switch sc.Backend {
	case config.BackendMemory:
		return blobstore.NewMemoryStore(), nil
	case config.BackendLocal:
		return blobstore.NewLocalStore(sc.Path), nil
	case config.BackendS3:
		opts := []s3.Option{s3.WithPrefix(sc.Prefix)}
		if sc.Region != "" {
			opts = append(opts, s3.WithRegion(sc.Region))
		}
		if sc.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(sc.Endpoint))
		}
		return s3.New(ctx, sc.Bucket, opts...)
	case config.BackendMinIO:
		store, err := minio.Dial(sc.Endpoint, sc.AccessKey, sc.SecretKey, sc.Secure, sc.Bucket, sc.Prefix)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}
}

// openCatalog builds a catalog from the configuration. When load is set the
// stored snapshot is restored; a missing snapshot leaves the catalog empty.
func openCatalog(ctx context.Context, e *env, load bool) (*imgdex.Catalog, *config.Config, error) {
	cfg, err := loadConfig(e)
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	c, ok := codec.ByName(cfg.Storage.Codec)
	if !ok {
		return nil, nil, fmt.Errorf("unknown codec %q", cfg.Storage.Codec)
	}
	comp, err := compress.ParseType(cfg.Storage.Compression)
	if err != nil {
		return nil, nil, err
	}
	lang, err := language.Parse(cfg.Catalog.Language)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog.language: %w", err)
	}

	sc := cfg.Scan
	cat := imgdex.New(
		imgdex.WithLogger(newLogger(cfg)),
		imgdex.WithStore(store),
		imgdex.WithBlobCache(cfg.Cache.BlobEntries),
		imgdex.WithCodec(c),
		imgdex.WithCompression(comp),
		imgdex.WithLanguage(lang),
		imgdex.WithCacheTTL(cfg.Cache.AnalysisTTL),
		imgdex.WithScanOptions(
			scan.WithFormats(sc.SupportedFormats...),
			scan.WithExcludedFolders(sc.ExcludedFolders...),
			scan.WithSizeRange(sc.MinFileSize, sc.MaxFileSize),
			scan.WithExif(sc.ExifExtraction),
			scan.WithConcurrency(sc.Concurrency),
			scan.WithRateLimit(sc.FilesPerSecond),
		),
	)

	if load {
		if err := cat.LoadSnapshot(ctx); err != nil && !errors.Is(err, imgdex.ErrNotFound) {
			cat.Close()
			return nil, nil, err
		}
	}
	return cat, cfg, nil
}
