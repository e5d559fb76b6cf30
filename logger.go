package imgdex

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with imgdex-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPath adds an image path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithRoot adds a scan root field to the logger.
func (l *Logger) WithRoot(root string) *Logger {
	return &Logger{
		Logger: l.Logger.With("root", root),
	}
}

// LogScan logs a directory scan.
func (l *Logger) LogScan(ctx context.Context, root string, images, failed int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "scan failed",
			"root", root,
			"error", err,
		)
	case failed > 0:
		l.WarnContext(ctx, "scan completed with failures",
			"root", root,
			"images", images,
			"failed", failed,
		)
	default:
		l.InfoContext(ctx, "scan completed",
			"root", root,
			"images", images,
		)
	}
}

// LogUpsert logs an upsert operation.
func (l *Logger) LogUpsert(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "upsert failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "upsert completed",
			"path", path,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"path", path,
		)
	}
}

// LogQuery logs a catalog query.
func (l *Logger) LogQuery(ctx context.Context, search string, results int) {
	l.DebugContext(ctx, "query completed",
		"search", search,
		"results", results,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot "+op+" completed",
			"name", name,
			"records", records,
		)
	}
}
