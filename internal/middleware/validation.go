package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nursabrinaas08/data-cleaning/internal/dataprocessing"
	apierrors "github.com/nursabrinaas08/data-cleaning/internal/errors"
	"github.com/nursabrinaas08/data-cleaning/internal/infrastructure"
)

// ValidationMiddleware provides request validation using struct tags
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodySize  int64
}

// NewValidationMiddleware creates a new validation middleware. maxBodySize
// caps request bodies; zero keeps the 50MB default.
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxBodySize int64) *ValidationMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBodySize <= 0 {
		maxBodySize = 50 << 20
	}

	return &ValidationMiddleware{
		validator:    NewValidator(),
		logger:       infrastructure.WithComponent(logger, "validation_middleware"),
		errorHandler: errorHandler,
		maxBodySize:  maxBodySize,
	}
}

// NewValidator builds a validator that knows the cleaning-specific tags and
// reports fields by their form or json names.
func NewValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("strategy", isMissingStrategy)
	_ = v.RegisterValidation("filename", isValidFilename)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return v
}

// LimitBody rejects bodies larger than the configured size. Declared sizes
// fail fast; undeclared ones are cut off by http.MaxBytesReader.
func (m *ValidationMiddleware) LimitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > m.maxBodySize {
			m.logger.WarnContext(r.Context(), "request body too large",
				slog.Int64("size", r.ContentLength),
				slog.Int64("max_size", m.maxBodySize),
				slog.String("request_id", GetRequestID(r.Context())),
			)
			m.errorHandler.HandleError(w, r, apierrors.NewPayloadTooLargeError(m.maxBodySize, nil))
			return
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, m.maxBodySize)
		}
		next.ServeHTTP(w, r)
	})
}

// ValidateStruct validates a struct and returns validation errors
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	return ValidateStruct(m.validator, v)
}

// ValidateStruct runs v against validate and converts failures into a
// single API error listing every offending field.
func ValidateStruct(validate *validator.Validate, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// ContentTypeValidator ensures requests have proper content type
func ContentTypeValidator(errorHandler *apierrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				errorHandler.HandleError(w, r, apierrors.New(
					http.StatusBadRequest,
					apierrors.CodeInvalidRequest,
					"Content-Type header is required",
				))
				return
			}

			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				apierrors.CodeUnsupportedFormat,
				"Unsupported content type",
				map[string]interface{}{
					"content_type": contentType,
					"allowed":      contentTypes,
				},
			))
		})
	}
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, strings.Replace(param, " ", " is ", 1))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "strategy":
		names := make([]string, len(dataprocessing.Strategies))
		for i, s := range dataprocessing.Strategies {
			names[i] = string(s)
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", "))
	case "filename":
		return fmt.Sprintf("%s must be a valid filename", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isMissingStrategy accepts any spelling ParseMissingStrategy understands
func isMissingStrategy(fl validator.FieldLevel) bool {
	_, err := dataprocessing.ParseMissingStrategy(fl.Field().String())
	return err == nil
}

// isValidFilename rejects path components in uploaded file names
func isValidFilename(fl validator.FieldLevel) bool {
	filename := fl.Field().String()
	if filename == "" {
		return false
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return false
	}
	return len(filename) <= 255
}
