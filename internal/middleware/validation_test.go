package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/nursabrinaas08/data-cleaning/internal/errors"
)

type cleanForm struct {
	Filename        string `form:"filename" validate:"required,filename"`
	MissingStrategy string `form:"missing_strategy" validate:"strategy"`
	CustomFillValue string `form:"custom_fill_value" validate:"required_if=MissingStrategy fill_custom"`
	PreviewRows     int    `json:"preview_rows" validate:"gte=0,lte=100"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      cleanForm
		wantFields []string
	}{
		{
			name:  "valid",
			input: cleanForm{Filename: "data.csv", MissingStrategy: "fill_mean"},
		},
		{
			name:  "strategy is case-insensitive and may be empty",
			input: cleanForm{Filename: "data.csv", MissingStrategy: "FILL_Median"},
		},
		{
			name:  "empty strategy",
			input: cleanForm{Filename: "data.csv"},
		},
		{
			name:       "unknown strategy",
			input:      cleanForm{Filename: "data.csv", MissingStrategy: "interpolate"},
			wantFields: []string{"missing_strategy"},
		},
		{
			name:       "custom value missing",
			input:      cleanForm{Filename: "data.csv", MissingStrategy: "fill_custom"},
			wantFields: []string{"custom_fill_value"},
		},
		{
			name:       "path in filename",
			input:      cleanForm{Filename: "../etc/passwd.csv"},
			wantFields: []string{"filename"},
		},
		{
			name:       "several failures",
			input:      cleanForm{MissingStrategy: "nope", PreviewRows: 500},
			wantFields: []string{"filename", "missing_strategy", "preview_rows"},
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(v, tt.input)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			fields := make([]string, 0, len(details.Errors))
			for _, fe := range details.Errors {
				fields = append(fields, fe.Field)
				assert.NotEmpty(t, fe.Message)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	err := ValidateStruct(NewValidator(), cleanForm{Filename: "a.csv", MissingStrategy: "fill_custom"})

	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	details := apiErr.Details.(apierrors.ValidationErrors)
	require.Len(t, details.Errors, 1)
	assert.Equal(t, "custom_fill_value is required when MissingStrategy is fill_custom", details.Errors[0].Message)

	err = ValidateStruct(NewValidator(), cleanForm{Filename: "a.csv", MissingStrategy: "x"})
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Details.(apierrors.ValidationErrors).Errors[0].Message, "fill_custom")
}

func TestValidationMiddleware_LimitBody(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		declareLength bool
		wantStatus    int
	}{
		{name: "within limit", body: "a,b\n1,2\n", declareLength: true, wantStatus: http.StatusOK},
		{name: "declared too large", body: strings.Repeat("x", 64), declareLength: true, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "streamed too large", body: strings.Repeat("x", 64), declareLength: false, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errorHandler := apierrors.NewErrorHandler(nil, false)
			m := NewValidationMiddleware(nil, errorHandler, 32)

			handler := m.LimitBody(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if _, err := io.ReadAll(r.Body); err != nil {
					errorHandler.HandleError(w, r, err)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/clean", strings.NewReader(tt.body))
			if !tt.declareLength {
				req.ContentLength = -1
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusRequestEntityTooLarge {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, apierrors.CodePayloadTooLarge, body["error_code"])
				assert.Equal(t, float64(32), body["limit_bytes"])
			}
		})
	}
}

func TestContentTypeValidator(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{name: "multipart accepted", method: http.MethodPost, contentType: "multipart/form-data; boundary=x", wantStatus: http.StatusOK},
		{name: "missing content type", method: http.MethodPost, wantStatus: http.StatusBadRequest},
		{name: "json rejected", method: http.MethodPost, contentType: "application/json", wantStatus: http.StatusUnsupportedMediaType},
		{name: "GET skipped", method: http.MethodGet, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := ContentTypeValidator(apierrors.NewErrorHandler(nil, false), "multipart/form-data")(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				}))

			req := httptest.NewRequest(tt.method, "/api/v1/clean", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
