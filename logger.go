package vecstore

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with store-specific helpers.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogAdd logs an add batch.
func (l *Logger) LogAdd(ctx context.Context, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"count", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "add completed",
			"count", count,
		)
	}
}

// LogSearch logs a search. queries is 1 for Search.
func (l *Logger) LogSearch(ctx context.Context, queries, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"queries", queries,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"queries", queries,
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, requested, removed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"requested", requested,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "delete completed",
			"requested", requested,
			"removed", removed,
		)
	}
}

// LogClear logs a clear.
func (l *Logger) LogClear(ctx context.Context, removed int) {
	l.InfoContext(ctx, "store cleared", "removed", removed)
}

// LogSave logs a save.
func (l *Logger) LogSave(ctx context.Context, path string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "store saved",
			"path", path,
			"count", count,
		)
	}
}

// LogLoad logs a load.
func (l *Logger) LogLoad(ctx context.Context, path string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "store loaded",
			"path", path,
			"count", count,
		)
	}
}

// LogArchiveImport logs an embeddings archive import.
func (l *Logger) LogArchiveImport(ctx context.Context, path, model string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "archive import failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "archive imported",
			"path", path,
			"model", model,
			"count", count,
		)
	}
}
