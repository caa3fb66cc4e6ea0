package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing           ErrorType = "PARSING"
	ErrTypeUnsupportedFormat ErrorType = "UNSUPPORTED_FORMAT"
	ErrTypeValidation        ErrorType = "VALIDATION"
	ErrTypePayloadTooLarge   ErrorType = "PAYLOAD_TOO_LARGE"
	ErrTypeNotFound          ErrorType = "NOT_FOUND"
	ErrTypeInternal          ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// StatusCode returns the HTTP status an error of this type is reported with
func (t ErrorType) StatusCode() int {
	switch t {
	case ErrTypeParsing:
		return http.StatusUnprocessableEntity
	case ErrTypeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the API error code for this type
func (t ErrorType) Code() string {
	switch t {
	case ErrTypeParsing:
		return CodeParseFailed
	case ErrTypeUnsupportedFormat:
		return CodeUnsupportedFormat
	case ErrTypeValidation:
		return CodeInvalidOptions
	case ErrTypePayloadTooLarge:
		return CodePayloadTooLarge
	case ErrTypeNotFound:
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// ProblemType returns the RFC 7807 type URI for this type
func (t ErrorType) ProblemType() string {
	switch t {
	case ErrTypeParsing:
		return TypeParseFailed
	case ErrTypeUnsupportedFormat:
		return TypeUnsupportedFormat
	case ErrTypeValidation:
		return TypeInvalidOptions
	case ErrTypePayloadTooLarge:
		return TypePayloadTooLarge
	case ErrTypeNotFound:
		return TypeNotFound
	default:
		return TypeInternal
	}
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or
// ErrTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrTypeInternal
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewUnsupportedFormatError creates an error for a file type that cannot be read
func NewUnsupportedFormatError(message string, cause error) *AppError {
	return NewAppError(ErrTypeUnsupportedFormat, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewPayloadTooLargeError creates an error for an oversized upload
func NewPayloadTooLargeError(limit int64, cause error) *AppError {
	return NewAppError(ErrTypePayloadTooLarge,
		fmt.Sprintf("upload exceeds the %d byte limit", limit), cause).
		WithContext("limit_bytes", limit)
}
