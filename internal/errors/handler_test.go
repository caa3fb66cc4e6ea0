package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nursabrinaas08/data-cleaning/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNewErrorHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	handler := NewErrorHandler(logger, true)
	assert.True(t, handler.includeStack)
	assert.NotNil(t, handler.logger)

	assert.NotNil(t, NewErrorHandler(nil, false).logger)
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
		wantDetail string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "wrapped context canceled",
			err:        fmt.Errorf("cleaning: %w", context.Canceled),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "APIError",
			err:        ErrMissingFile,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeMissingFile,
			wantCode:   CodeMissingFile,
		},
		{
			name:       "validation APIError",
			err:        ErrValidation("missing_strategy", "must be one of none drop"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   CodeValidationFailed,
		},
		{
			name:       "parsing AppError",
			err:        NewParsingError("failed to parse upload", fmt.Errorf("line 3: wrong number of fields")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeParseFailed,
			wantCode:   CodeParseFailed,
			wantDetail: "failed to parse upload: line 3: wrong number of fields",
		},
		{
			name:       "unsupported format AppError",
			err:        NewUnsupportedFormatError("unsupported file format", nil),
			wantStatus: http.StatusUnsupportedMediaType,
			wantType:   TypeUnsupportedFormat,
			wantCode:   CodeUnsupportedFormat,
			wantDetail: "unsupported file format",
		},
		{
			name:       "invalid options AppError",
			err:        fmt.Errorf("clean: %w", NewAppValidationError("invalid cleaning options", fmt.Errorf("custom fill value required"))),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeInvalidOptions,
			wantCode:   CodeInvalidOptions,
			wantDetail: "invalid cleaning options: custom fill value required",
		},
		{
			name:       "payload too large from MaxBytesReader",
			err:        &http.MaxBytesError{Limit: 10},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantCode:   CodePayloadTooLarge,
		},
		{
			name:       "internal AppError hides cause",
			err:        NewAppError(ErrTypeInternal, "export failed", fmt.Errorf("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantCode:   CodeInternal,
			wantDetail: "An unexpected error occurred while processing your request",
		},
		{
			name:       "plain error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantCode:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/clean", nil)
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/v1/clean", body["instance"])
			assert.Contains(t, body, "trace_id")
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, body["detail"])
			}
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()

	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorHandler_LogLevels(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inspect", nil)

	handler.HandleError(httptest.NewRecorder(), req, ErrMissingFile)
	assert.Len(t, logs.GetRecordsByLevel(slog.LevelWarn), 1, "client errors log at warn")

	rec := httptest.NewRecorder()
	handler.HandleError(rec, req, fmt.Errorf("boom"))
	testutil.AssertLogContains(t, logs, slog.LevelError, "request failed")
	testutil.AssertLogAttr(t, logs, "component", "error_handler")

	body := decodeProblem(t, rec)
	assert.Contains(t, body, "stack", "stack is included for server errors when enabled")
}

func TestErrorHandler_AppErrorContext(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()

	err := NewPayloadTooLargeError(1024, nil)
	handler.HandleError(rec, httptest.NewRequest(http.MethodPost, "/api/v1/clean", nil), err)

	body := decodeProblem(t, rec)
	assert.Equal(t, float64(1024), body["limit_bytes"])
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	handler := NewErrorHandler(nil, false)

	rec := httptest.NewRecorder()
	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec)["type"])

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/clean", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "Method DELETE is not allowed for this endpoint", body["detail"])
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("cleaner exploded")
	})

	rec := httptest.NewRecorder()
	RecoveryMiddleware(handler)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/clean", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
	assert.NotContains(t, body, "panic")
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestRecoveryMiddleware_AbortHandler(t *testing.T) {
	aborting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		RecoveryMiddleware(NewErrorHandler(nil, false))(aborting).
			ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRecoveryMiddleware_PassThrough(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	RecoveryMiddleware(NewErrorHandler(nil, false))(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
