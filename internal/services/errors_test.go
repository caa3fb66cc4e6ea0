package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nursabrinaas08/data-cleaning/internal/dataprocessing"
	apierrors "github.com/nursabrinaas08/data-cleaning/internal/errors"
	"github.com/nursabrinaas08/data-cleaning/internal/validation"
)

func TestUploadError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		errType  apierrors.ErrorType
	}{
		{"too large", fmt.Errorf("big: %w", validation.ErrFileTooLarge), ErrUploadTooLarge, apierrors.ErrTypePayloadTooLarge},
		{"empty", validation.ErrEmptyFile, ErrEmptyUpload, apierrors.ErrTypeParsing},
		{"extension", validation.ErrExtensionNotAllowed, ErrUnsupportedFormat, apierrors.ErrTypeUnsupportedFormat},
		{"filename", validation.ErrInvalidFilename, ErrUnsupportedFormat, apierrors.ErrTypeUnsupportedFormat},
		{"format", dataprocessing.ErrUnsupportedFormat, ErrUnsupportedFormat, apierrors.ErrTypeUnsupportedFormat},
		{"parse", fmt.Errorf("line 3: %w", dataprocessing.ErrParse), ErrParseFailed, apierrors.ErrTypeParsing},
		{"unknown", errors.New("disk on fire"), nil, apierrors.ErrTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := uploadError(tt.err, 1024)
			assert.Equal(t, tt.errType, apierrors.TypeOf(err))
			assert.ErrorIs(t, err, tt.err)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestUploadError_LimitContext(t *testing.T) {
	err := uploadError(validation.ErrFileTooLarge, 2048)

	var appErr *apierrors.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, int64(2048), appErr.Context["limit_bytes"])
}

func TestClassifiedError_KeepsMessage(t *testing.T) {
	cause := errors.New("unknown missing_strategy \"x\"")
	err := classify(ErrInvalidOptions, cause)

	assert.Equal(t, cause.Error(), err.Error())
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.ErrorIs(t, err, cause)
}
