package infrastructure

import (
	"context"
	"log/slog"
)

// LoggerWithContext creates a logger that includes the trace ID from context.
// This is the preferred way to get a logger for request handling.
func LoggerWithContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if traceID := GetTraceID(ctx); traceID != "" {
		logger = logger.With("trace_id", traceID)
	}
	return logger
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With("component", component)
}

// WithUpload tags a logger with the uploaded file it is working on
func WithUpload(logger *slog.Logger, filename string, size int) *slog.Logger {
	return logger.With(slog.Group("upload",
		slog.String("filename", filename),
		slog.Int("size_bytes", size),
	))
}
