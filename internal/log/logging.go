// Package log builds the slog.Logger used by the isrbind commands.
//
// Without a log file, records below error level go to stdout and errors go to
// stderr. Commands that print their result on stdout pass quiet to
// SetupLogger so that every record goes to stderr.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LevelTrace defines a custom slog level below Debug for very verbose output.
const LevelTrace slog.Level = -8

// Config is embedded into the CLI with the "log." prefix.
type Config struct {
	Level string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error" env:"ISRBIND_LOG_LEVEL"`
	File  string `help:"Also write logs to this file" env:"ISRBIND_LOG_FILE"`
}

func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler fans out records to multiple handlers.
type MultiHandler struct{ hs []slog.Handler }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		_ = h.Handle(ctx, r)
	}
	return nil
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}

// LevelFilter passes only the levels accepted by pass to the wrapped handler.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	if !f.pass(level) {
		return false
	}
	return f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}

func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}

// New builds a logger writing to stdout and stderr. When stdout is nil every
// record goes to stderr.
func New(level slog.Level, stdout, stderr io.Writer) *slog.Logger {
	if stdout == nil {
		return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(MultiHandler{hs: []slog.Handler{
		LevelFilter{
			pass: func(l slog.Level) bool { return l < slog.LevelError },
			h:    slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: level}),
		},
		LevelFilter{
			pass: func(l slog.Level) bool { return l >= slog.LevelError },
			h:    slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelError}),
		},
	}})
}

// SetupLogger builds the logger for cfg. When quiet is set nothing is written
// to stdout.
func SetupLogger(cfg Config, quiet bool) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(cfg.Level)

	var stdout io.Writer = os.Stdout
	if quiet {
		stdout = nil
	}
	logger := New(level, stdout, os.Stderr)
	if cfg.File == "" {
		return logger, nil, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	fileHandler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	logger = slog.New(MultiHandler{hs: []slog.Handler{logger.Handler(), fileHandler}})
	return logger, []io.Closer{f}, nil
}
