package searchsimilar

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with searchsimilar-specific context.
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

// NewLambdaLogger creates a Logger for AWS Lambda: JSON lines on stdout
// without a time attribute, since the log sink stamps every line itself.
func NewLambdaLogger(level slog.Level) *Logger {
	return newLambdaLogger(os.Stdout, level)
}

func newLambdaLogger(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRequestID adds the invocation request id to the logger.
func (l *Logger) WithRequestID(id string) *Logger {
	if id == "" {
		return l
	}
	return &Logger{
		Logger: l.Logger.With("request_id", id),
	}
}

// WithDatabase adds the bucket and header key fields to the logger.
func (l *Logger) WithDatabase(bucket, headerKey string) *Logger {
	return &Logger{
		Logger: l.Logger.With("bucket", bucket, "header_key", headerKey),
	}
}

// LogOpen logs opening the database.
func (l *Logger) LogOpen(ctx context.Context, basePath, headerFile string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"base_path", basePath,
			"header_file", headerFile,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "open completed",
			"base_path", basePath,
			"header_file", headerFile,
			"duration", duration,
		)
	}
}

// LogQuery logs a query.
func (l *Logger) LogQuery(ctx context.Context, k, nprobe, hits int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"k", k,
			"nprobe", nprobe,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"k", k,
			"nprobe", nprobe,
			"hits", hits,
			"duration", duration,
		)
	}
}

// LogResolve logs resolving the attributes of all hits.
func (l *Logger) LogResolve(ctx context.Context, attribute string, hits int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "resolve failed",
			"attribute", attribute,
			"hits", hits,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "resolve completed",
			"attribute", attribute,
			"hits", hits,
			"duration", duration,
		)
	}
}
