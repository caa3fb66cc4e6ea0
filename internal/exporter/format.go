package exporter

import (
	"github.com/nursabrinaas08/data-cleaning/internal/dataprocessing"
)

// formatCell converts a cell to the value stored in a workbook. Numeric
// column values become number cells only when their text is the canonical
// rendering of the number, so "007" or "1.50" keep their exact text.
func formatCell(cell dataprocessing.Cell, kind dataprocessing.Kind) interface{} {
	if cell.Missing {
		return nil
	}
	if kind == dataprocessing.KindNumeric {
		if v, ok := dataprocessing.ParseNumber(cell.Value); ok && dataprocessing.FormatNumber(v) == cell.Value {
			return v
		}
	}
	return cell.Value
}

// workbookRows converts every row of the dataset with formatCell
func workbookRows(ds *dataprocessing.Dataset) [][]interface{} {
	rows := make([][]interface{}, len(ds.Rows))
	for i, row := range ds.Rows {
		out := make([]interface{}, len(row))
		for j, cell := range row {
			out[j] = formatCell(cell, ds.Columns[j].Kind)
		}
		rows[i] = out
	}
	return rows
}
