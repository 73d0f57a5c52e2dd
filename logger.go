package genidx

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/genidx/creator"
	"github.com/hupe1980/genidx/index"
)

// Logger wraps slog.Logger with genidx-specific context.
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// LogBuild logs the outcome of an index build.
func (l *Logger) LogBuild(ctx context.Context, path string, typ index.Type, features int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"path", path,
			"features", features,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index built",
			"path", path,
			"type", typ.String(),
			"features", features,
		)
	}
}

// LogSelection logs the candidate scores of a dynamic build.
func (l *Logger) LogSelection(ctx context.Context, approach creator.BalancingApproach, candidates []creator.Candidate, winner index.Type) {
	attrs := make([]any, 0, 4+2*len(candidates))
	attrs = append(attrs, "approach", approach.String(), "winner", winner.String())
	for _, c := range candidates {
		attrs = append(attrs, slog.Group(c.Creator.Type().String(),
			"bin_size", c.Creator.BinSize(),
			"score", c.Score,
		))
	}
	l.DebugContext(ctx, "index type selected", attrs...)
}

// LogLoad logs an index load.
func (l *Logger) LogLoad(ctx context.Context, path string, typ index.Type, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "index loaded",
			"path", path,
			"type", typ.String(),
		)
	}
}

// LogWrite logs an index write.
func (l *Logger) LogWrite(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index write failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index written",
			"path", path,
		)
	}
}
