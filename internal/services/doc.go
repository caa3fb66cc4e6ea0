// Package services implements the business logic layer of the data cleaning
// application. It sits between the HTTP and WebSocket transports and the
// dataprocessing and exporter packages.
//
// # Services
//
//	- CleaningService: validates uploads, profiles them, applies cleaning
//	  options and exports the result in the format of the original file
//	- HealthService: health, readiness and liveness checks
//
// # Error Handling
//
// Service methods return *errors.AppError values whose type selects the HTTP
// status reported to clients:
//
//	- ErrUnsupportedFormat: unsupported extension (415)
//	- ErrParseFailed, ErrEmptyUpload: unreadable file (422)
//	- ErrUploadTooLarge: upload above the configured limit (413)
//	- ErrInvalidOptions: rejected cleaning options (400)
//
// The sentinels match with errors.Is through the AppError chain:
//
//	resp, err := svc.Clean(ctx, upload, req)
//	if errors.Is(err, services.ErrInvalidOptions) {
//	    // report the options back to the user
//	}
//
// Uploads are processed in memory and nothing is kept between calls. The
// live session in the websocket package holds the dataset of one connection
// and calls the *Dataset variants of the methods.
package services
