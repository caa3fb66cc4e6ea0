package dataprocessing

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for uploads whose extension is not .csv, .xlsx or .xls
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrParse is wrapped by every ParseError
	ErrParse = errors.New("could not read file")

	// ErrInvalidOptions is returned when cleaning options cannot be applied
	ErrInvalidOptions = errors.New("invalid cleaning options")
)

// ParseError reports a file that could not be read into a Dataset.
// It matches ErrParse with errors.Is and exposes the underlying cause.
type ParseError struct {
	Filename string
	Format   string
	Line     int // 1-based source line or sheet row, 0 when unknown
	Cause    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("could not read %s file %q", e.Format, e.Filename)
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the ErrParse sentinel and the cause
func (e *ParseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Cause}
}

func newParseError(filename, format string, line int, cause error) *ParseError {
	return &ParseError{Filename: filename, Format: format, Line: line, Cause: cause}
}

func unsupportedFormat(filename string) error {
	return fmt.Errorf("%w: %q (expected .csv, .xlsx or .xls)", ErrUnsupportedFormat, filename)
}

func invalidOptions(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}
