package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures how a table is written
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool   // Add UTF-8 BOM for Excel compatibility
	SheetName string // xlsx only, defaults to DefaultSheetName
}

// WriteCSV writes the header row followed by every record
func (w *CSVWriter) WriteCSV(out io.Writer, options WriteOptions) error {
	w.logger.Debug("Writing CSV",
		slog.Int("column_count", len(options.Headers)),
		slog.Int("record_count", len(options.Records)))

	// Write BOM if requested (helps Excel recognize UTF-8)
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
