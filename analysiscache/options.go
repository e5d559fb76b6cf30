package analysiscache

import (
	"io"
	"log/slog"
	"time"

	"github.com/hupe1980/imgdex/codec"
	"github.com/hupe1980/imgdex/internal/compress"
)

// DefaultTTL is how long a cached analysis stays valid.
const DefaultTTL = 7 * 24 * time.Hour

type options struct {
	ttl         time.Duration
	codec       codec.Codec
	compression compress.Type
	logger      *slog.Logger
	now         func() time.Time
}

func defaultOptions() options {
	return options{
		ttl:         DefaultTTL,
		codec:       codec.Default,
		compression: compress.Zstd,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
	}
}

// Option configures a Cache.
type Option func(*options)

// WithTTL sets the entry lifetime. A non-positive ttl keeps entries forever.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithCodec sets the codec for new entries. Entries are always decoded with
// the codec they were written with.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithCompression sets the block compression for new entries.
func WithCompression(t compress.Type) Option {
	return func(o *options) {
		o.compression = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
