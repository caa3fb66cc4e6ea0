package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func mustIngestCSV(t *testing.T, content string) *Dataset {
	t.Helper()
	ds, err := IngestBytes("data.csv", []byte(content))
	require.NoError(t, err)
	return ds
}

// column returns the cell texts of a named column, "<missing>" for missing cells
func column(t *testing.T, ds *Dataset, name string) []string {
	t.Helper()
	idx := ds.ColumnIndex(name)
	require.GreaterOrEqual(t, idx, 0, "column %q not found", name)
	var out []string
	for _, cell := range ds.ColumnValues(idx) {
		if cell.Missing {
			out = append(out, "<missing>")
		} else {
			out = append(out, cell.Value)
		}
	}
	return out
}

func buildWorkbook(t *testing.T, sheets map[string][][]interface{}, order []string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{"csv", "data.csv", FormatCSV, false},
		{"upper case xlsx", "REPORT.XLSX", FormatXLSX, false},
		{"legacy xls", "old.xls", FormatXLS, false},
		{"path with dirs", "/tmp/in/data.csv", FormatCSV, false},
		{"text file", "notes.txt", "", true},
		{"no extension", "data", "", true},
		{"xlsx suffix in the middle", "data.xlsx.bak", "", true},
		{"json", "data.json", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIngest_UnsupportedFormatIsNotParsed(t *testing.T) {
	ds, err := Ingest("data.json", strings.NewReader(`{"a":1}`))
	assert.Nil(t, ds)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.NotErrorIs(t, err, ErrParse)
}

func TestIngest_CSV(t *testing.T) {
	ds, err := Ingest("people.csv", strings.NewReader("name,age,active\nalice,30,true\nbob,,false\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age", "active"}, ds.ColumnNames())
	assert.Equal(t, 2, ds.NumRows())
	assert.Equal(t, KindText, ds.Columns[0].Kind)
	assert.Equal(t, KindNumeric, ds.Columns[1].Kind)
	assert.Equal(t, KindText, ds.Columns[2].Kind, "boolean columns become text")

	assert.Equal(t, []string{"alice", "bob"}, column(t, ds, "name"))
	assert.Equal(t, []string{"30", "<missing>"}, column(t, ds, "age"))
	assert.Equal(t, []string{"True", "False"}, column(t, ds, "active"))
}

func TestIngest_CSVBooleanNormalization(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "lower case literals",
			content: "id,flag\n1,true\n2,false\n",
			want:    []string{"True", "False"},
		},
		{
			name:    "upper case literals",
			content: "id,flag\n1,TRUE\n2,FALSE\n",
			want:    []string{"True", "False"},
		},
		{
			name:    "column with a missing cell is left as read",
			content: "id,flag\n1,true\n2,\n",
			want:    []string{"true", "<missing>"},
		},
		{
			name:    "mixed with other text is left as read",
			content: "id,flag\n1,true\n2,maybe\n",
			want:    []string{"true", "maybe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := mustIngestCSV(t, tt.content)
			assert.Equal(t, tt.want, column(t, ds, "flag"))
			assert.Equal(t, KindText, ds.Columns[1].Kind)
		})
	}
}

func TestIngest_CSVMissingTokens(t *testing.T) {
	ds := mustIngestCSV(t, "a,b,c\nNA,x,1\nnull,N/A,2\n#N/A,NaN,\n")

	assert.Equal(t, []string{"<missing>", "<missing>", "<missing>"}, column(t, ds, "a"))
	assert.Equal(t, []string{"x", "<missing>", "<missing>"}, column(t, ds, "b"))
	assert.Equal(t, []string{"1", "2", "<missing>"}, column(t, ds, "c"))
	assert.Equal(t, KindNumeric, ds.Columns[0].Kind, "all-missing column is numeric")
	assert.Equal(t, KindNumeric, ds.Columns[2].Kind)
}

func TestIngest_CSVKinds(t *testing.T) {
	ds := mustIngestCSV(t, "n,d,t\n1.5,2024-01-02,a\n-2,2024-02-03,5\n")

	assert.Equal(t, KindNumeric, ds.Columns[0].Kind)
	assert.Equal(t, KindDate, ds.Columns[1].Kind)
	assert.Equal(t, KindText, ds.Columns[2].Kind)
}

func TestIngest_CSVHeaders(t *testing.T) {
	ds := mustIngestCSV(t, "a,a,,b\n1,2,3,4\n")
	assert.Equal(t, []string{"a", "a.1", "Unnamed: 2", "b"}, ds.ColumnNames())
}

func TestIngest_CSVStripsBOM(t *testing.T) {
	ds := mustIngestCSV(t, "\xEF\xBB\xBFa,b\n1,2\n")
	assert.Equal(t, []string{"a", "b"}, ds.ColumnNames())
}

func TestIngest_CSVShortRowsArePadded(t *testing.T) {
	ds := mustIngestCSV(t, "a,b\n1\n")
	require.Equal(t, 1, ds.NumRows())
	assert.Equal(t, []string{"1"}, column(t, ds, "a"))
	assert.Equal(t, []string{"<missing>"}, column(t, ds, "b"))
}

func TestIngest_CSVHeaderOnly(t *testing.T) {
	ds := mustIngestCSV(t, "a,b\n")
	assert.Equal(t, 2, ds.NumColumns())
	assert.Equal(t, 0, ds.NumRows())
}

func TestIngest_CSVParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantLine int
	}{
		{"empty file", "", 0},
		{"row wider than header", "a,b\n1,2\n1,2,3\n", 3},
		{"unterminated quote", "a,b\n\"x,1\n", 0},
		{"invalid utf-8", "a,b\n\xff\xfe,1\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := IngestBytes("broken.csv", []byte(tt.content))
			assert.Nil(t, ds)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "broken.csv", perr.Filename)
			assert.Equal(t, FormatCSV, perr.Format)
			assert.NotNil(t, perr.Cause)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, perr.Line)
			}
		})
	}
}

func TestIngest_XLSX(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Grades": {
			{"name", "score", "passed"},
			{"alice", 90.5, true},
			{"bob", nil, false},
		},
		"Other": {
			{"ignored"},
			{"x"},
		},
	}, []string{"Grades", "Other"})

	ds, err := IngestBytes("grades.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "score", "passed"}, ds.ColumnNames())
	assert.Equal(t, []string{"alice", "bob"}, column(t, ds, "name"))
	assert.Equal(t, []string{"90.5", "<missing>"}, column(t, ds, "score"))
	assert.Equal(t, []string{"True", "False"}, column(t, ds, "passed"))
	assert.Equal(t, KindNumeric, ds.Columns[1].Kind)
	assert.Equal(t, KindText, ds.Columns[2].Kind)
}

func TestIngest_XLSXWideRows(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Sheet1": {
			{"a"},
			{"1", "extra"},
		},
	}, []string{"Sheet1"})

	ds, err := IngestBytes("wide.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "Unnamed: 1"}, ds.ColumnNames())
	assert.Equal(t, []string{"extra"}, column(t, ds, "Unnamed: 1"))
}

func TestIngest_XLSXEmptySheet(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{"Sheet1": nil}, []string{"Sheet1"})

	ds, err := IngestBytes("empty.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.NumColumns())
	assert.Equal(t, 0, ds.NumRows())
}

func TestIngest_CorruptWorkbooks(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		format   string
	}{
		{"xlsx that is not a zip archive", "broken.xlsx", FormatXLSX},
		{"xls that is not a compound document", "broken.xls", FormatXLS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := IngestBytes(tt.filename, []byte("this is not a spreadsheet"))
			assert.Nil(t, ds)
			assert.ErrorIs(t, err, ErrParse)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.format, perr.Format)
		})
	}
}

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestIngest_XLSXNumberFormats(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	rows := [][]interface{}{
		{"price", "rate", "shipped"},
		{1234.5, 0.25, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{2000, 0.5, time.Date(2024, 1, 3, 12, 30, 0, 0, time.UTC)},
		{nil, nil, nil},
		{1000, 0.75, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)},
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "A2", "A5", thousands))
	require.NoError(t, f.SetCellStyle(sheet, "B2", "B5", percent))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := IngestBytes("formatted.xlsx", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []string{"1234.5", "2000", "<missing>", "1000"}, column(t, ds, "price"))
	assert.Equal(t, []string{"0.25", "0.5", "<missing>", "0.75"}, column(t, ds, "rate"))
	assert.Equal(t, []string{"2024-01-02", "2024-01-03 12:30:00", "<missing>", "2024-01-04"}, column(t, ds, "shipped"))
	assert.Equal(t, KindNumeric, ds.Columns[0].Kind)
	assert.Equal(t, KindNumeric, ds.Columns[1].Kind)
	assert.Equal(t, KindDate, ds.Columns[2].Kind)

	filled, err := clean(ds, CleaningOptions{MissingStrategy: StrategyFillMean})
	require.NoError(t, err)
	assert.Equal(t, []string{"1234.5", "2000", "1411.5", "1000"}, column(t, filled, "price"))
	assert.Equal(t, []string{"0.25", "0.5", "0.5", "0.75"}, column(t, filled, "rate"))
	assert.Equal(t, "<missing>", column(t, filled, "shipped")[2])
}

func TestIngest_XLS(t *testing.T) {
	ds, err := IngestBytes("orders.xls", readTestdata(t, "sample.xls"))
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "units", "price", "paid", "shipped", "note"}, ds.ColumnNames())
	require.Equal(t, 3, ds.NumRows())

	assert.Equal(t, []string{"north", "south", "east"}, column(t, ds, "region"))
	assert.Equal(t, []string{"10", "-4", "7"}, column(t, ds, "units"))
	assert.Equal(t, []string{"2.5", "<missing>", "1.25"}, column(t, ds, "price"))
	assert.Equal(t, []string{"True", "False", "True"}, column(t, ds, "paid"))
	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04"}, column(t, ds, "shipped"))
	assert.Equal(t, []string{"ok", "late", "<missing>"}, column(t, ds, "note"))

	assert.Equal(t, KindNumeric, ds.Columns[1].Kind)
	assert.Equal(t, KindNumeric, ds.Columns[2].Kind)
	assert.Equal(t, KindText, ds.Columns[3].Kind)
	assert.Equal(t, KindDate, ds.Columns[4].Kind)

	report := Profile(ds)
	assert.Equal(t, 2, report.MissingTotal)
	assert.NotContains(t, ds.ColumnNames(), "legacy", "only the first sheet is read")
}

func TestIngest_XLSRowGaps(t *testing.T) {
	ds, err := IngestBytes("gaps.xls", readTestdata(t, "gaps.xls"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ds.ColumnNames())
	assert.Equal(t, []string{"1", "<missing>", "3"}, column(t, ds, "a"))
	assert.Equal(t, []string{"x", "<missing>", "z"}, column(t, ds, "b"))
}

func TestIsDateNumFmt(t *testing.T) {
	tests := []struct {
		name string
		id   int
		code string
		want bool
	}{
		{"general", 0, "", false},
		{"thousands", 4, "", false},
		{"percent", 9, "", false},
		{"built-in short date", 14, "", true},
		{"built-in date time", 22, "", true},
		{"built-in time", 45, "", true},
		{"custom iso date", 164, "yyyy-mm-dd", true},
		{"custom time", 165, "h:mm AM/PM", true},
		{"currency with locale", 166, `[$€-2] #,##0.00`, false},
		{"red negatives", 167, `#,##0;[Red]-#,##0`, false},
		{"quoted literal", 168, `0.0 "days"`, false},
		{"escaped literal", 169, `0\ \d`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateNumFmt(tt.id, tt.code))
		})
	}
}

func TestRKValue(t *testing.T) {
	assert.Equal(t, 10.0, rkValue(10<<2|0x02))
	assert.Equal(t, -4.0, rkValue(uint32(0x3FFFFFFC<<2)|0x02))
	assert.Equal(t, 1.25, rkValue(125<<2|0x03))
	assert.Equal(t, 2.5, rkValue(0x40040000))
}
