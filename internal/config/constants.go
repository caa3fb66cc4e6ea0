package config

// Application constants
const (
	// Application Info
	AppName = "Data Cleaning"

	// API Endpoints
	APIBasePath       = "/api/v1"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/api/v1/session/ws"

	// Upload form fields
	FormFieldFile            = "file"
	FormFieldMissingStrategy = "missing_strategy"
	FormFieldCustomFillValue = "custom_fill_value"
	FormFieldDeduplicate     = "deduplicate"
)
