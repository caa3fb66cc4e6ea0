package dataprocessing

// DefaultPreviewRows is the number of rows shown in a dataset preview
const DefaultPreviewRows = 5

// ColumnReport is the per-column part of a QualityReport
type ColumnReport struct {
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Missing int    `json:"missing"`
}

// QualityReport is a read-only snapshot of a dataset's data quality.
// MissingTotal always equals the sum of MissingPerColumn.
type QualityReport struct {
	Rows             int            `json:"rows"`
	Columns          int            `json:"columns"`
	MissingTotal     int            `json:"missing_total"`
	MissingPerColumn map[string]int `json:"missing_per_column"`
	ColumnDetails    []ColumnReport `json:"column_details"`
	DuplicateRows    int            `json:"duplicate_rows"`
}

// Profile computes the quality report of a dataset. A nil or empty dataset
// yields an all-zero report.
func Profile(ds *Dataset) QualityReport {
	report := QualityReport{
		Rows:             ds.NumRows(),
		Columns:          ds.NumColumns(),
		MissingPerColumn: make(map[string]int, ds.NumColumns()),
		ColumnDetails:    make([]ColumnReport, 0, ds.NumColumns()),
	}
	if ds == nil {
		return report
	}

	missing := make([]int, len(ds.Columns))
	for _, row := range ds.Rows {
		for c, cell := range row {
			if cell.Missing {
				missing[c]++
			}
		}
	}
	for c, col := range ds.Columns {
		report.MissingPerColumn[col.Name] = missing[c]
		report.ColumnDetails = append(report.ColumnDetails, ColumnReport{
			Name:    col.Name,
			Kind:    col.Kind,
			Missing: missing[c],
		})
		report.MissingTotal += missing[c]
	}
	report.DuplicateRows = CountDuplicates(ds)
	return report
}

// CountDuplicates counts rows identical to an earlier row. The first
// occurrence of each distinct row is not counted, and rows holding a missing
// cell never count.
func CountDuplicates(ds *Dataset) int {
	if ds == nil {
		return 0
	}
	seen := make(map[string]struct{}, ds.NumRows())
	dups := 0
	for _, row := range ds.Rows {
		key, ok := duplicateKey(row)
		if !ok {
			continue
		}
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// Preview returns the first n rows of the dataset, or DefaultPreviewRows when n <= 0
func Preview(ds *Dataset, n int) *Dataset {
	if ds == nil {
		return &Dataset{}
	}
	if n <= 0 {
		n = DefaultPreviewRows
	}
	return ds.Head(n)
}
