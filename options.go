package imgdex

import (
	"time"

	"golang.org/x/text/language"

	"github.com/hupe1980/imgdex/analysiscache"
	"github.com/hupe1980/imgdex/blobstore"
	"github.com/hupe1980/imgdex/codec"
	"github.com/hupe1980/imgdex/internal/compress"
	"github.com/hupe1980/imgdex/scan"
)

// DefaultSnapshotName is the blob name snapshots are written to.
const DefaultSnapshotName = "catalog/snapshot"

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	store            blobstore.Store
	blobCacheEntries int
	codec            codec.Codec
	compression      compress.Type
	language         language.Tag
	cacheTTL         time.Duration
	snapshotName     string
	scanOptions      []scan.Option
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		codec:            codec.Default,
		compression:      compress.Zstd,
		language:         language.English,
		cacheTTL:         analysiscache.DefaultTTL,
		snapshotName:     DefaultSnapshotName,
	}
}

// Option configures a Catalog.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithStore sets the blob store for snapshots and cached analyses.
// Defaults to an in-memory store.
func WithStore(s blobstore.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithBlobCache keeps up to entries recently read blobs in memory.
func WithBlobCache(entries int) Option {
	return func(o *options) {
		o.blobCacheEntries = entries
	}
}

// WithCodec configures the codec used for new snapshots and cache entries.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the compression of stored blobs.
func WithCompression(t compress.Type) Option {
	return func(o *options) {
		o.compression = t
	}
}

// WithLanguage sets the collation language for name sorting.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) {
		o.language = tag
	}
}

// WithCacheTTL sets how long cached analyses stay valid.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = ttl
	}
}

// WithSnapshotName sets the blob name used by SaveSnapshot and LoadSnapshot.
func WithSnapshotName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.snapshotName = name
		}
	}
}

// WithScanOptions passes options to the directory scanner.
func WithScanOptions(opts ...scan.Option) Option {
	return func(o *options) {
		o.scanOptions = append(o.scanOptions, opts...)
	}
}
