// Package shared holds helpers used across the data cleaning codebase that
// belong to no single layer.
//
// The testutil subpackage provides a capturing slog handler with assertion
// helpers and sample uploads (CSV text and generated workbooks) for tests.
package shared
