package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the name of the single sheet of an exported workbook
const DefaultSheetName = "Sheet1"

// XLSXWriter writes a table as a single-sheet workbook
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a new workbook writer
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// WriteXLSX streams the header and rows into a new workbook and writes it to out.
// Row values are written as given: float64 becomes a number cell, string a
// text cell and nil an empty cell.
func (w *XLSXWriter) WriteXLSX(out io.Writer, headers []string, rows [][]interface{}, sheetName string) error {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	w.logger.Debug("Writing workbook",
		slog.String("sheet_name", sheetName),
		slog.Int("column_count", len(headers)),
		slog.Int("record_count", len(rows)))

	f := excelize.NewFile()
	defer f.Close()

	if current := f.GetSheetName(0); current != sheetName {
		if err := f.SetSheetName(current, sheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	if len(headers) > 0 {
		header := make([]interface{}, len(headers))
		for i, h := range headers {
			header[i] = h
		}
		if err := sw.SetRow("A1", header); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address record %d: %w", i, err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
