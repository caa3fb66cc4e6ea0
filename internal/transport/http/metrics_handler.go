package http

import (
	"log/slog"
	"net/http"

	apierrors "github.com/nursabrinaas08/data-cleaning/internal/errors"
)

// MetricsHandler serves the Prometheus exposition of the OTel meter provider
type MetricsHandler struct {
	exposition   http.Handler
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler creates a metrics handler. exposition is nil when
// metrics are disabled.
func NewMetricsHandler(exposition http.Handler, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		exposition:   exposition,
		logger:       logger.With(slog.String("handler", "metrics")),
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
		return
	}
	h.exposition.ServeHTTP(w, r)
}
