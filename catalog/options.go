package catalog

import (
	"io"
	"log/slog"

	"golang.org/x/text/language"
)

type options struct {
	logger   *slog.Logger
	language language.Tag
}

func defaultOptions() options {
	return options{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		language: language.English,
	}
}

// Option configures an Index.
type Option func(*options)

// WithLogger sets the logger used for mutation events.
// A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLanguage sets the collation language used when sorting by name.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) {
		o.language = tag
	}
}
