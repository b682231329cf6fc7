package logx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	level   = new(slog.LevelVar)
	current atomic.Pointer[slog.Logger]
)

func init() {
	level.Set(slog.LevelInfo)
	current.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// SetLevel changes the minimum level emitted by the package logger
func SetLevel(l Level) {
	level.Set(l.slogLevel())
}

// SetOutput swaps the destination and format of the package logger
func SetOutput(w io.Writer, json bool) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	current.Store(slog.New(h))
}

// Logger is a child logger carrying structured fields
type Logger struct {
	l *slog.Logger
}

// With returns a logger that adds the given key/value pairs to every record
func With(args ...any) *Logger {
	return &Logger{l: current.Load().With(args...)}
}

func (lg *Logger) With(args ...any) *Logger {
	return &Logger{l: lg.l.With(args...)}
}

func (lg *Logger) Debugf(format string, args ...any) { logf(lg.l, slog.LevelDebug, format, args...) }
func (lg *Logger) Infof(format string, args ...any)  { logf(lg.l, slog.LevelInfo, format, args...) }
func (lg *Logger) Warnf(format string, args ...any)  { logf(lg.l, slog.LevelWarn, format, args...) }
func (lg *Logger) Errorf(format string, args ...any) { logf(lg.l, slog.LevelError, format, args...) }

func logf(l *slog.Logger, lvl slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !l.Enabled(ctx, lvl) {
		return
	}
	l.Log(ctx, lvl, fmt.Sprintf(format, args...))
}

// ============================================================================
// Package-level helpers
// ============================================================================

func Debug(msg string, args ...any) { current.Load().Debug(msg, args...) }
func Info(msg string, args ...any)  { current.Load().Info(msg, args...) }
func Warn(msg string, args ...any)  { current.Load().Warn(msg, args...) }
func Error(msg string, args ...any) { current.Load().Error(msg, args...) }

func Debugf(format string, args ...any) { logf(current.Load(), slog.LevelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(current.Load(), slog.LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(current.Load(), slog.LevelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(current.Load(), slog.LevelError, format, args...) }

// Fatalf logs at error level and exits the process
func Fatalf(format string, args ...any) {
	logf(current.Load(), slog.LevelError, format, args...)
	os.Exit(1)
}
