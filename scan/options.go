package scan

import (
	"io"
	"log/slog"
	"strings"
)

type options struct {
	formats        map[string]bool
	excluded       []string
	minSize        int64
	maxSize        int64
	exif           bool
	concurrency    int
	filesPerSecond float64
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		formats:     formatSet(DefaultFormats),
		excluded:    DefaultExcludedFolders,
		minSize:     1024,
		maxSize:     50 * 1024 * 1024,
		exif:        true,
		concurrency: 8,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

var (
	// DefaultFormats are the extensions cataloged when WithFormats is not given.
	DefaultFormats = []string{"jpg", "jpeg", "png", "gif", "webp", "svg", "bmp"}
	// DefaultExcludedFolders are skipped when WithExcludedFolders is not given.
	DefaultExcludedFolders = []string{".obsidian", ".trash", "node_modules"}
)

func formatSet(formats []string) map[string]bool {
	set := make(map[string]bool, len(formats))
	for _, f := range formats {
		set[strings.ToLower(strings.TrimPrefix(f, "."))] = true
	}
	return set
}

// Option configures a Scanner.
type Option func(*options)

// WithFormats sets the cataloged file extensions (case-insensitive, leading
// dot optional).
func WithFormats(formats ...string) Option {
	return func(o *options) {
		o.formats = formatSet(formats)
	}
}

// WithExcludedFolders sets folder names or slash paths that are skipped
// wherever they appear.
func WithExcludedFolders(folders ...string) Option {
	return func(o *options) {
		o.excluded = folders
	}
}

// WithSizeRange bounds the file size in bytes, inclusive. A max of zero
// disables the upper bound.
func WithSizeRange(min, max int64) Option {
	return func(o *options) {
		o.minSize = min
		o.maxSize = max
	}
}

// WithExif enables or disables EXIF extraction.
func WithExif(enabled bool) Option {
	return func(o *options) {
		o.exif = enabled
	}
}

// WithConcurrency sets how many files are read in parallel.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithRateLimit throttles file reads to n per second. Zero disables it.
func WithRateLimit(n float64) Option {
	return func(o *options) {
		o.filesPerSecond = n
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
