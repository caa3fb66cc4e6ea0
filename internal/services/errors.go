package services

import (
	"errors"

	"github.com/nursabrinaas08/data-cleaning/internal/dataprocessing"
	apierrors "github.com/nursabrinaas08/data-cleaning/internal/errors"
	"github.com/nursabrinaas08/data-cleaning/internal/validation"
)

// Cleaning service errors
var (
	// Upload errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrParseFailed       = errors.New("failed to parse file")
	ErrUploadTooLarge    = errors.New("upload exceeds size limit")
	ErrEmptyUpload       = errors.New("upload is empty")

	// Cleaning errors
	ErrInvalidOptions = errors.New("invalid cleaning options")

	// Session errors
	ErrNoDataset = errors.New("no dataset loaded")
)

// classifiedError keeps the message of the underlying error while matching
// a service sentinel with errors.Is
type classifiedError struct {
	kind error
	err  error
}

func (e *classifiedError) Error() string   { return e.err.Error() }
func (e *classifiedError) Unwrap() []error { return []error{e.kind, e.err} }

func classify(kind, err error) error {
	return &classifiedError{kind: kind, err: err}
}

// uploadError maps validation and ingest failures onto service errors
// carrying their HTTP classification
func uploadError(err error, maxBytes int64) error {
	switch {
	case errors.Is(err, validation.ErrFileTooLarge):
		return apierrors.NewPayloadTooLargeError(maxBytes, classify(ErrUploadTooLarge, err))
	case errors.Is(err, validation.ErrEmptyFile):
		return apierrors.NewParsingError("Uploaded file could not be parsed", classify(ErrEmptyUpload, err))
	case errors.Is(err, validation.ErrExtensionNotAllowed),
		errors.Is(err, validation.ErrInvalidFilename),
		errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return apierrors.NewUnsupportedFormatError("Unsupported file type", classify(ErrUnsupportedFormat, err))
	case errors.Is(err, dataprocessing.ErrParse):
		return apierrors.NewParsingError("Uploaded file could not be parsed", classify(ErrParseFailed, err))
	default:
		return apierrors.NewAppError(apierrors.ErrTypeInternal, "Failed to read upload", err)
	}
}

// optionsError maps rejected cleaning options
func optionsError(err error) error {
	return apierrors.NewAppValidationError("Cleaning options rejected", classify(ErrInvalidOptions, err))
}
