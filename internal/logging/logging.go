// Package logging configures structured logging for hoard. It wraps zerolog
// with console/file writer selection, per-component sub-loggers, and a
// per-invocation trace id carried through context.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name ("debug", "info", ...). Invalid or
	// empty values fall back to info.
	Level string

	// Format is "console" (human-readable) or "json". Defaults to console.
	Format string

	// File, when set, receives logs in addition to stderr.
	File string

	// Caller adds the caller annotation to every event.
	Caller bool
}

// Result holds the constructed logger plus the file handle that must be
// closed when the process is done logging.
type Result struct {
	Logger zerolog.Logger

	file *os.File
}

// Close releases the log file handle, if any. Safe to call on a
// console-only result.
func (r *Result) Close() error {
	if r.file == nil {
		return nil
	}
	f := r.file
	r.file = nil
	return f.Close()
}

// New builds a logger from the config. File-open failure degrades to
// console-only output rather than failing the caller; the returned logger
// is always usable.
func New(cfg Config) *Result {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var console io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	if cfg.Format == "json" {
		console = os.Stderr
	}

	result := &Result{}
	writers := []io.Writer{console}

	if cfg.File != "" {
		f, openErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if openErr == nil {
			result.file = f
			writers = append(writers, f)
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	if cfg.Caller {
		logger = logger.With().Caller().Logger()
	}

	result.Logger = logger
	return result
}

// ComponentLogger derives a sub-logger tagged with a component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// traceIDKey is the context key for the invocation trace id.
type traceIDKey struct{}

// NewTraceID generates a lexicographically sortable trace id for one
// invocation.
func NewTraceID() string {
	return ulid.Make().String()
}

// ContextWithTraceID stores a trace id in the context.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the stored trace id, generating one when the
// context carries none.
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok && id != "" {
		return id
	}
	return NewTraceID()
}

// FromContext returns the logger stored in the context by
// zerolog.Logger.WithContext, or a disabled logger.
func FromContext(ctx context.Context) zerolog.Logger {
	return *zerolog.Ctx(ctx)
}
