package logger

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Frames to skip so the source attr points at the caller of Debug/Info/...,
// not at the wrapper: runtime.Callers, emit, and the level method itself.
const callerSkip = 3

// slogLogger adapts slog to the Logger interface
type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(msg string, args ...any) { l.emit(slog.LevelDebug, msg, args...) }
func (l *slogLogger) Info(msg string, args ...any) { l.emit(slog.LevelInfo, msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any) { l.emit(slog.LevelWarn, msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.emit(slog.LevelError, msg, args...) }

func (l *slogLogger) emit(level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(callerSkip, pcs[:])

	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.Add(args...)
	_ = l.logger.Handler().Handle(ctx, record)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

func (l *slogLogger) WithGroup(name string) Logger {
	return &slogLogger{logger: l.logger.WithGroup(name)}
}

// parseLevelString converts string level to slog.Level, defaults to INFO
func parseLevelString(level string) slog.Level {
	switch strings.ToLower(level) {
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

// replace strips the directory from the source attr to keep log lines short.
// See the Wrapping example at https://pkg.go.dev/log/slog for the technique.
func replace(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		source.File = filepath.Base(source.File)
	}

	return a
}
