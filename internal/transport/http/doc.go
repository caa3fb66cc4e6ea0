// Package http implements the HTTP request handlers of the data cleaning
// service. Handlers stay thin: they read the multipart upload and the
// cleaning options, call the services layer and render the result.
//
// # Routes
//
//	POST /api/v1/inspect          profile an upload
//	POST /api/v1/clean            clean an upload and return the reports
//	POST /api/v1/clean/download   clean an upload and return the file
//	POST /api/v1/clean/report     clean an upload and return an HTML report
//	GET  /api/v1/strategies       list the missing-value strategies
//
// Uploads arrive in the "file" form field. Cleaning options arrive as the
// missing_strategy, custom_fill_value and deduplicate form fields and are
// checked with validator/v10 before the file is parsed.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/upload/unsupported-format",
//	    "title": "Unsupported Media Type",
//	    "status": 415,
//	    "detail": "Unsupported file type: ...",
//	    "instance": "/api/v1/clean",
//	    "error_code": "UNSUPPORTED_FORMAT",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against a mocked CleaningServiceInterface
// and against the real services for end to end cases.
package http
