package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nursabrinaas08/data-cleaning/internal/config"
	apierrors "github.com/nursabrinaas08/data-cleaning/internal/errors"
	"github.com/nursabrinaas08/data-cleaning/internal/services"
	"github.com/nursabrinaas08/data-cleaning/internal/shared/testutil"
	"github.com/nursabrinaas08/data-cleaning/pkg/contracts"
)

func TestHealthHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cleaner := services.NewCleaningService(config.Default(), nil, logger)

	tests := []struct {
		name       string
		service    *services.HealthService
		handler    func(h *HealthHandler) http.HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			name:       "health",
			service:    services.NewHealthService(cleaner, nil, logger),
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.HealthCheck },
			wantStatus: http.StatusOK,
			wantBody:   services.StatusOK,
		},
		{
			name:       "ready",
			service:    services.NewHealthService(cleaner, nil, logger),
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			wantStatus: http.StatusOK,
			wantBody:   services.StatusReady,
		},
		{
			name:       "not ready without cleaning service",
			service:    services.NewHealthService(nil, nil, logger),
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   services.StatusNotReady,
		},
		{
			name:       "live",
			service:    services.NewHealthService(cleaner, nil, logger),
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.LivenessCheck },
			wantStatus: http.StatusOK,
			wantBody:   services.StatusAlive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.service, logger)

			rec := httptest.NewRecorder()
			tt.handler(h)(rec, httptest.NewRequest(http.MethodGet, config.HealthEndpoint, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, decodeJSON(t, rec)["status"])
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewHealthHandler(services.NewHealthService(nil, nil, logger), logger)

	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, contracts.Version, body["version"])
	assert.NotEmpty(t, body["go_version"])
}

func TestMetricsHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	t.Run("disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil, logger, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, config.MetricsEndpoint, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		exposition := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# HELP datacleaning_uploads_total\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(exposition, logger, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, config.MetricsEndpoint, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "datacleaning_uploads_total")
	})
}
