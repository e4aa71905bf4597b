package logger

import (
	"io"
	"log/slog"
	"os"
)

// Log is the global logger instance. It falls back to slog's default logger
// until Setup runs.
var Log = slog.Default()

// Setup initializes the global logger based on the environment: JSON in
// production, text with debug output in development, silent under test.
func Setup(env string) {
	var handler slog.Handler

	switch env {
	case "production":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "test":
		handler = slog.NewTextHandler(io.Discard, nil)
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	Log = slog.New(handler).With("service", "voxpopuly-api")
	slog.SetDefault(Log)
}

// With returns a child logger carrying the given attributes
func With(args ...any) *slog.Logger {
	return Log.With(args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}
