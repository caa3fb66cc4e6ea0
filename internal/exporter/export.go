package exporter

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/nursabrinaas08/data-cleaning/internal/dataprocessing"
	"github.com/nursabrinaas08/data-cleaning/internal/infrastructure"
)

// Download metadata of exported files
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	CSVFilename  = "cleaned_data.csv"
	XLSXFilename = "cleaned_data.xlsx"
)

// Export is a serialized dataset ready for download
type Export struct {
	Data        []byte
	ContentType string
	Filename    string
	Format      string
}

// Download describes the file produced for an original upload name
type Download struct {
	Filename    string
	ContentType string
	Format      string
}

// DownloadFor returns the download metadata for originalName. CSV uploads
// download as CSV, every other upload as an xlsx workbook.
func DownloadFor(originalName string) Download {
	if format, _ := dataprocessing.DetectFormat(originalName); format == dataprocessing.FormatCSV {
		return Download{Filename: CSVFilename, ContentType: ContentTypeCSV, Format: dataprocessing.FormatCSV}
	}
	return Download{Filename: XLSXFilename, ContentType: ContentTypeXLSX, Format: dataprocessing.FormatXLSX}
}

// Exporter serializes datasets in the format of the file they came from
type Exporter struct {
	csv    *CSVWriter
	xlsx   *XLSXWriter
	logger *slog.Logger
}

// New creates an Exporter. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "exporter")
	return &Exporter{
		csv:    NewCSVWriter(logger),
		xlsx:   NewXLSXWriter(logger),
		logger: logger,
	}
}

// ExportDataset exports ds with a default Exporter
func ExportDataset(ds *dataprocessing.Dataset, originalName string) (*Export, error) {
	return New(nil).Export(ds, originalName)
}

// Export writes ds as CSV when originalName is a CSV file and as a
// single-sheet xlsx workbook otherwise. No index column is written and
// missing cells are left empty.
func (e *Exporter) Export(ds *dataprocessing.Dataset, originalName string) (*Export, error) {
	if ds == nil {
		ds = &dataprocessing.Dataset{}
	}

	download := DownloadFor(originalName)
	var buf bytes.Buffer
	if download.Format == dataprocessing.FormatCSV {
		err := e.csv.WriteCSV(&buf, WriteOptions{
			Headers: ds.ColumnNames(),
			Records: ds.Records(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to export CSV: %w", err)
		}
	} else {
		err := e.xlsx.WriteXLSX(&buf, ds.ColumnNames(), workbookRows(ds), DefaultSheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to export workbook: %w", err)
		}
	}
	exp := &Export{
		ContentType: download.ContentType,
		Filename:    download.Filename,
		Format:      download.Format,
	}
	exp.Data = buf.Bytes()

	e.logger.Debug("Dataset exported",
		slog.String("original_name", originalName),
		slog.String("filename", exp.Filename),
		slog.Int("rows", ds.NumRows()),
		slog.Int("bytes", len(exp.Data)))
	return exp, nil
}
