package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nursabrinaas08/data-cleaning/internal/config"
)

var (
	// ErrExtensionNotAllowed is returned for uploads outside the allowed extensions
	ErrExtensionNotAllowed = errors.New("file extension not allowed")

	// ErrFileTooLarge is returned for uploads above the configured size
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrEmptyFile is returned for zero-byte uploads
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidFilename is returned for names carrying path components or
	// naming an Office lock file
	ErrInvalidFilename = errors.New("invalid file name")
)

// FileValidator checks uploads and local files before they are parsed
type FileValidator struct {
	logger            *slog.Logger
	maxBytes          int64
	allowedExtensions map[string]bool
}

// NewFileValidator creates a new file validator from the upload settings
func NewFileValidator(cfg config.UploadConfig, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}

	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	return &FileValidator{
		logger:            logger,
		maxBytes:          cfg.MaxBytes,
		allowedExtensions: allowed,
	}
}

// MaxBytes returns the upload size limit, zero when unlimited
func (v *FileValidator) MaxBytes() int64 {
	return v.maxBytes
}

// ValidateName checks the file name of an upload. Only the base name is
// considered; browsers on some platforms send full client paths.
func (v *FileValidator) ValidateName(filename string) error {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "" || base == "." || base == "/" {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	// Office leaves ~$ lock files next to open workbooks
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejected temporary Excel file",
			slog.String("file", filename))
		return fmt.Errorf("%w: %q is a temporary Excel file", ErrInvalidFilename, base)
	}

	if len(v.allowedExtensions) == 0 {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !v.allowedExtensions[ext] {
		v.logger.Warn("Rejected upload extension",
			slog.String("file", base),
			slog.String("extension", ext))
		return fmt.Errorf("%w: %q (extension %q)", ErrExtensionNotAllowed, base, ext)
	}
	return nil
}

// ValidateSize checks the byte size of an upload
func (v *FileValidator) ValidateSize(filename string, size int64) error {
	if size == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyFile, filename)
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("Rejected oversized upload",
			slog.String("file", filename),
			slog.Int64("size", size),
			slog.Int64("max_bytes", v.maxBytes))
		return fmt.Errorf("%w: %q is %d bytes, limit %d", ErrFileTooLarge, filename, size, v.maxBytes)
	}
	return nil
}

// ValidateUpload runs the name and size checks. A negative size means the
// size is not yet known and skips the size check.
func (v *FileValidator) ValidateUpload(filename string, size int64) error {
	if err := v.ValidateName(filename); err != nil {
		return err
	}
	if size < 0 {
		return nil
	}
	return v.ValidateSize(filename, size)
}

// ValidateFile checks that a local file exists, is readable and passes the
// upload checks
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	if err := v.ValidateUpload(filepath.Base(path), info.Size()); err != nil {
		return err
	}

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}
