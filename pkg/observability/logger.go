// Package observability holds the logging, metrics, timing and health
// plumbing shared by the nudge CLI, worker and MCP server.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogLevel is the minimum level that gets written.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogConfig configures NewLogger. Service and Version are attached to
// every record when set.
type LogConfig struct {
	Level     LogLevel
	Format    LogFormat
	Output    io.Writer
	AddSource bool
	Service   string
	Version   string
}

// DefaultLogConfig logs text at info level to stderr, which keeps stdout
// free for CLI output.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:   LogLevelInfo,
		Format:  LogFormatText,
		Output:  os.Stderr,
		Service: "nudge",
		Version: "dev",
	}
}

// ProductionLogConfig logs JSON with source locations.
func ProductionLogConfig() LogConfig {
	cfg := DefaultLogConfig()
	cfg.Format = LogFormatJSON
	cfg.AddSource = true
	cfg.Version = "unknown"
	return cfg
}

// NewLogger builds a slog.Logger that also writes the correlation and user
// ids carried by the context passed to the *Context logging methods.
func NewLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level.slogLevel(), AddSource: cfg.AddSource}

	var handler slog.Handler
	if cfg.Format == LogFormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	var attrs []slog.Attr
	if cfg.Service != "" {
		attrs = append(attrs, slog.String("service", cfg.Service))
	}
	if cfg.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Version))
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}
	return slog.New(newContextHandler(handler))
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// contextHandler copies request-scoped ids from ctx onto each record. The
// ids always land at the top level: root is the handler before any group
// was opened and scoped replays what was added since.
type contextHandler struct {
	root   slog.Handler
	next   slog.Handler
	scoped []func(slog.Handler) slog.Handler
}

func newContextHandler(h slog.Handler) contextHandler {
	return contextHandler{root: h, next: h}
}

func (h contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	var ids []slog.Attr
	if id := CorrelationIDFromContext(ctx); id != "" {
		ids = append(ids, slog.String(CorrelationIDKey, id))
	}
	if id := UserIDFromContext(ctx); id != "" {
		ids = append(ids, slog.String(UserIDKey, id))
	}
	if len(ids) == 0 {
		return h.next.Handle(ctx, r)
	}
	if len(h.scoped) == 0 {
		r.AddAttrs(ids...)
		return h.next.Handle(ctx, r)
	}
	handler := h.root.WithAttrs(ids)
	for _, apply := range h.scoped {
		handler = apply(handler)
	}
	return handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	if len(h.scoped) == 0 {
		return newContextHandler(h.root.WithAttrs(attrs))
	}
	return h.with(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h contextHandler) with(apply func(slog.Handler) slog.Handler) contextHandler {
	return contextHandler{
		root:   h.root,
		next:   apply(h.next),
		scoped: append(slices.Clip(h.scoped), apply),
	}
}
