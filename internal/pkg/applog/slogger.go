package applog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// LevelTrace sits below slog.LevelDebug for very chatty diagnostics.
const LevelTrace = slog.Level(-8)

// AppLogger defines the logging interface used across the service.
type AppLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
	Trace(msg string, args ...any)
	Fatal(msg string, args ...any)
}

// DefaultLogger wraps slog.Logger and implements AppLogger.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewAppDefaultLogger creates a DefaultLogger, reading the level from the
// `log.level` config key.
func NewAppDefaultLogger() *DefaultLogger {
	level := parseLogLevel(viper.GetString("log.level"))
	return &DefaultLogger{
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})),
	}
}

func (l *DefaultLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, withSource(args)...)
}

func (l *DefaultLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, withSource(args)...)
}

func (l *DefaultLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, withSource(args)...)
}

func (l *DefaultLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, withSource(args)...)
}

func (l *DefaultLogger) Trace(msg string, args ...any) {
	l.logger.Log(context.Background(), LevelTrace, msg, withSource(args)...)
}

func (l *DefaultLogger) Fatal(msg string, args ...any) {
	l.logger.Error(msg, withSource(args)...)
	os.Exit(1)
}

func withSource(args []any) []any {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return args
	}
	return append([]any{"source", fmt.Sprintf("%s:%d", file, line)}, args...)
}

func parseLogLevel(s string) slog.Level {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "trace":
		return LevelTrace
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
