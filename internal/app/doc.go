// Package app wires the data cleaning service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, the optional YAML file and DATACLEAN_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Create the cleaning service, the live session hub and the health service
//	4. Set up middleware, handlers and the chi router
//	5. Create the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return app.Run()
//
// # Graceful Shutdown
//
// Run serves until SIGINT or SIGTERM. Shutdown waits for in-flight requests
// within the configured timeout, closes every live session and flushes
// telemetry. Errors are returned to the caller; the package never calls
// os.Exit.
package app
