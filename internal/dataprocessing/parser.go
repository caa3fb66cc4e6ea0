package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Supported upload formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormat maps a filename to its upload format by extension
func DetectFormat(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", unsupportedFormat(filename)
	}
}

// Ingest reads an uploaded stream into a Dataset. The extension of filename
// selects the parser; only the first sheet of a workbook is read.
func Ingest(filename string, r io.Reader) (*Dataset, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newParseError(filename, format, 0, err)
	}
	return ingest(filename, format, data)
}

// IngestBytes is Ingest over an in-memory upload
func IngestBytes(filename string, data []byte) (*Dataset, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	return ingest(filename, format, data)
}

func ingest(filename, format string, data []byte) (*Dataset, error) {
	var (
		ds  *Dataset
		err error
	)
	switch format {
	case FormatCSV:
		ds, err = parseCSV(filename, data)
	case FormatXLSX:
		ds, err = parseXLSX(filename, data)
	case FormatXLS:
		ds, err = parseXLS(filename, data)
	}
	if err != nil {
		slog.Debug("Failed to ingest upload",
			slog.String("filename", filename),
			slog.String("format", format),
			slog.String("error", err.Error()))
		return nil, err
	}

	slog.Debug("Dataset ingested",
		slog.String("filename", filename),
		slog.String("format", format),
		slog.Int("rows", ds.NumRows()),
		slog.Int("columns", ds.NumColumns()))
	return ds, nil
}

func parseCSV(filename string, data []byte) (*Dataset, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, newParseError(filename, FormatCSV, 0, errors.New("file is not valid UTF-8 text"))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, newParseError(filename, FormatCSV, 0, errors.New("no columns to parse from file"))
	}
	if err != nil {
		return nil, csvParseError(filename, err)
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvParseError(filename, err)
		}
		if len(rec) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, newParseError(filename, FormatCSV, line,
				fmt.Errorf("expected %d fields, saw %d", len(header), len(rec)))
		}
		records = append(records, rec)
	}
	return buildDataset(header, records), nil
}

func csvParseError(filename string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return newParseError(filename, FormatCSV, perr.Line, perr.Err)
	}
	return newParseError(filename, FormatCSV, 0, err)
}

// parseXLSX reads the stored cell values of the first sheet. Number formats
// are not applied, so "1,234.50" or "25%" cells read as 1234.5 and 0.25;
// booleans read as TRUE/FALSE and date-formatted serials as ISO dates.
func parseXLSX(filename string, data []byte) (*Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newParseError(filename, FormatXLSX, 0, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, newParseError(filename, FormatXLSX, 0, errors.New("workbook has no sheets"))
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, newParseError(filename, FormatXLSX, 0, err)
	}
	display, err := f.GetRows(sheet)
	if err != nil {
		return nil, newParseError(filename, FormatXLSX, 0, err)
	}

	cells := newXLSXCells(f, sheet)
	for r, row := range rows {
		for c, raw := range row {
			shown := cellText(display, r, c)
			if raw == "" || raw == shown {
				continue
			}
			row[c] = cells.text(r, c, raw, shown)
		}
	}

	slog.Debug("Reading first sheet",
		slog.String("filename", filename),
		slog.String("sheet_name", sheet),
		slog.Int("total_rows", len(rows)))
	return datasetFromSheet(rows), nil
}

func cellText(rows [][]string, r, c int) string {
	if r < len(rows) && c < len(rows[r]) {
		return rows[r][c]
	}
	return ""
}

// xlsxCells resolves cells whose stored value differs from their displayed
// text. Date styles are looked up once per style ID.
type xlsxCells struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newXLSXCells(f *excelize.File, sheet string) *xlsxCells {
	cells := &xlsxCells{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		cells.date1904 = *props.Date1904
	}
	return cells
}

func (x *xlsxCells) text(r, c int, raw, shown string) string {
	axis, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return raw
	}
	if typ, err := x.f.GetCellType(x.sheet, axis); err == nil && typ == excelize.CellTypeBool {
		return shown
	}
	styleID, err := x.f.GetCellStyle(x.sheet, axis)
	if err != nil || !x.isDateStyle(styleID) {
		return raw
	}
	if serial, ok := ParseNumber(raw); ok {
		if text, ok := excelDateText(serial, x.date1904); ok {
			return text
		}
	}
	return shown
}

func (x *xlsxCells) isDateStyle(id int) bool {
	if isDate, ok := x.dateStyles[id]; ok {
		return isDate
	}
	isDate := false
	if style, err := x.f.GetStyle(id); err == nil && style != nil {
		code := ""
		if style.CustomNumFmt != nil {
			code = *style.CustomNumFmt
		}
		isDate = isDateNumFmt(style.NumFmt, code)
	}
	x.dateStyles[id] = isDate
	return isDate
}

func parseXLS(filename string, data []byte) (ds *Dataset, err error) {
	// The legacy reader panics on some malformed records.
	defer func() {
		if r := recover(); r != nil {
			ds = nil
			err = newParseError(filename, FormatXLS, 0, fmt.Errorf("corrupt workbook: %v", r))
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, newParseError(filename, FormatXLS, 0, err)
	}
	if wb == nil {
		return nil, newParseError(filename, FormatXLS, 0, errors.New("no workbook stream"))
	}
	if wb.NumSheets() == 0 {
		return nil, newParseError(filename, FormatXLS, 0, errors.New("workbook has no sheets"))
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, newParseError(filename, FormatXLS, 0, errors.New("first sheet could not be read"))
	}

	// The reader skips boolean and formula cells and misreads RK numbers and
	// dates, so those cells are decoded from the sheet records directly.
	overrides, err := scanXLSCells(data)
	if err != nil {
		return nil, newParseError(filename, FormatXLS, 0, err)
	}

	last := int(sheet.MaxRow)
	if overrides.maxRow > last {
		last = overrides.maxRow
	}
	rows := make([][]string, 0, last+1)
	for i := 0; i <= last; i++ {
		width := overrides.width(i)
		row := sheetRow(sheet, i)
		if row != nil && row.LastCol() > width {
			width = row.LastCol()
		}
		if width == 0 {
			rows = append(rows, nil)
			continue
		}
		rec := make([]string, width)
		if row != nil {
			for j := row.FirstCol(); j < row.LastCol(); j++ {
				rec[j] = row.Col(j)
			}
		}
		for j, text := range overrides.row(i) {
			rec[j] = text
		}
		rows = append(rows, rec)
	}
	return datasetFromSheet(rows), nil
}

// sheetRow returns row i, or nil when the sheet has no record for it. The
// reader dereferences absent rows, so the panic is turned into nil.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// datasetFromSheet treats the first row as the header. Trailing blank rows are
// dropped and cells beyond the header get "Unnamed" columns.
func datasetFromSheet(rows [][]string) *Dataset {
	for len(rows) > 0 && blankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return &Dataset{}
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	header := make([]string, width)
	copy(header, rows[0])
	return buildDataset(header, rows[1:])
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
