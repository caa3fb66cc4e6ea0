// Package api contains API contract definitions for the data cleaning service.
// Version v1 represents the current stable API version.
package api

// CleaningOptionsRequest carries the cleaning options of a request. Over HTTP
// the fields arrive as multipart form values next to the uploaded file; over
// the live session they arrive as JSON.
type CleaningOptionsRequest struct {
	MissingStrategy string `json:"missing_strategy" form:"missing_strategy" validate:"strategy"`
	CustomFillValue string `json:"custom_fill_value,omitempty" form:"custom_fill_value" validate:"required_if=MissingStrategy fill_custom"`
	Deduplicate     bool   `json:"deduplicate" form:"deduplicate"`
}

// UploadRequest describes an uploaded file before it is parsed
type UploadRequest struct {
	Filename string `json:"filename" validate:"required,filename"`
	Size     int64  `json:"size" validate:"gte=0"`
}

// HealthCheckRequest represents a health check request
type HealthCheckRequest struct {
	Verbose bool `json:"verbose" query:"verbose"`
}
