// Package logging provides structured logging using Go's slog package.
//
// A process-wide logger is installed with InitLoggerTo. The event helpers
// (DocumentLoaded, MarkerAnomaly, SearchCompletedContext, ReloadFailed) give
// each event a fixed message and attribute set so logs stay greppable.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// RequestIDKey is the context key for request IDs.
const RequestIDKey ContextKey = "request_id"

// Format selects the handler used for log output.
type Format int

const (
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = iota
	// FormatText writes logfmt-style key=value records.
	FormatText
)

var current atomic.Pointer[slog.Logger]

func init() {
	InitLoggerTo(os.Stderr, slog.LevelWarn, FormatText)
}

// ParseLevel maps a level name to a slog level. Unknown names select info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat maps a format name to a Format. Unknown names select FormatJSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "text") {
		return FormatText
	}
	return FormatJSON
}

// InitLoggerTo installs a logger writing to w as the package and slog default.
func InitLoggerTo(w io.Writer, level slog.Level, format Format) {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: rfc3339Time,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	current.Store(l)
	slog.SetDefault(l)
}

func rfc3339Time(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
	}
	return a
}

// Logger returns the installed logger.
func Logger() *slog.Logger {
	return current.Load()
}

// WithRequestID tags ctx with an invocation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID returns the ID set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns the installed logger with the request ID attached.
func FromContext(ctx context.Context) *slog.Logger {
	l := Logger()
	if id := RequestID(ctx); id != "" {
		l = l.With("request_id", id)
	}
	return l
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { Logger().Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { Logger().Warn(msg, args...) }

// DebugContext logs at debug level with the request ID from ctx.
func DebugContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).DebugContext(ctx, msg, args...)
}

// WarnContext logs at warn level with the request ID from ctx.
func WarnContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).WarnContext(ctx, msg, args...)
}

func event(ctx context.Context, l *slog.Logger, level slog.Level, msg string, fields, extra []any) {
	l.Log(ctx, level, msg, append(fields, extra...)...)
}

// DocumentLoaded records a parsed OSIS document.
func DocumentLoaded(path, style string, size int64, took time.Duration, args ...any) {
	event(context.Background(), Logger(), slog.LevelInfo, "document_loaded", []any{
		"path", path,
		"style", style,
		"bytes", size,
		"duration_ms", took.Milliseconds(),
	}, args)
}

// MarkerAnomaly records malformed marker data a parser absorbed. Large
// documents can produce many, so it is a debug event.
func MarkerAnomaly(kind, ref string, args ...any) {
	event(context.Background(), Logger(), slog.LevelDebug, "marker_anomaly", []any{
		"kind", kind,
		"ref", ref,
	}, args)
}

// SearchCompletedContext records a finished verse search.
func SearchCompletedContext(ctx context.Context, term string, hits int, took time.Duration, args ...any) {
	event(ctx, FromContext(ctx), slog.LevelInfo, "search_completed", []any{
		"term", term,
		"hits", hits,
		"duration_ms", took.Milliseconds(),
	}, args)
}

// ReloadFailed records a reload that kept the previous document.
func ReloadFailed(path string, err error, args ...any) {
	event(context.Background(), Logger(), slog.LevelWarn, "reload_failed", []any{
		"path", path,
		"error", err.Error(),
	}, args)
}
