// Package config provides centralized configuration management for the data
// cleaning service. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration values
// throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DATACLEAN_* for namespacing:
//
//	DATACLEAN_SERVER_PORT=8080
//	DATACLEAN_LOGGING_LEVEL=debug
//	DATACLEAN_UPLOAD_MAX_BYTES=10485760
//	DATACLEAN_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,https://example.com
//
// # Configuration File
//
// DATACLEAN_CONFIG_FILE names the YAML file explicitly. Otherwise config.yaml
// and configs/config.yaml are tried in that order:
//
//	server:
//	  port: 9090
//	upload:
//	  max_bytes: 10485760
//	cleaning:
//	  preview_rows: 10
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := &http.Server{Addr: cfg.Server.Addr()}
package config
