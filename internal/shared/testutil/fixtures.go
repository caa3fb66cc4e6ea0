package testutil

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sample uploads shared by service, transport and session tests.
const (
	// SparseCSV has one missing cell per row and no complete duplicates
	SparseCSV = "a,b\n1,\n,2\n1,\n"

	// SalesCSV mixes numeric, text and boolean columns with a duplicate row
	SalesCSV = "region,units,price,paid\n" +
		"north,10,2.5,true\n" +
		"south,,3,false\n" +
		"north,10,2.5,true\n" +
		"east,4,,true\n"
)

// BuildWorkbook writes rows to a single-sheet xlsx workbook
func BuildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.Clone(buf.Bytes())
}
