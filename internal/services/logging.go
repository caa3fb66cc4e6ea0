package services

import (
	"context"
	"log/slog"

	"github.com/nursabrinaas08/data-cleaning/internal/infrastructure"
)

// logServiceError logs a failed service action with the trace of ctx
func logServiceError(ctx context.Context, component, action, message string, attrs ...slog.Attr) {
	logger := infrastructure.LoggerWithContext(ctx)

	allAttrs := []slog.Attr{
		slog.String("component", component),
		slog.String("action", action),
	}
	allAttrs = append(allAttrs, attrs...)

	logger.LogAttrs(ctx, slog.LevelError, message, allAttrs...)
}
