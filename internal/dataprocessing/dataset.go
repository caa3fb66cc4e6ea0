package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindBoolean
	KindDate
)

var kindNames = map[Kind]string{
	KindText:    "text",
	KindNumeric: "numeric",
	KindBoolean: "boolean",
	KindDate:    "date",
}

// String returns the lower-case name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler so kinds render as names in JSON
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown column kind %q", string(text))
}

// Column describes a named column of a Dataset
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Cell holds the text of a single value. A missing cell has no text.
type Cell struct {
	Value   string
	Missing bool
}

// Value builds a present cell
func Value(s string) Cell {
	return Cell{Value: s}
}

// MissingCell builds a missing cell
func MissingCell() Cell {
	return Cell{Missing: true}
}

// String returns the cell text, or the empty string for a missing cell
func (c Cell) String() string {
	if c.Missing {
		return ""
	}
	return c.Value
}

// Dataset is an in-memory table of rows and typed columns.
// Every row has exactly len(Columns) cells.
type Dataset struct {
	Columns []Column
	Rows    [][]Cell
}

// NewDataset creates a dataset from columns and rows. Rows shorter than the
// column list are padded with missing cells; longer rows are truncated.
func NewDataset(columns []Column, rows [][]Cell) *Dataset {
	ds := &Dataset{
		Columns: append([]Column(nil), columns...),
		Rows:    make([][]Cell, 0, len(rows)),
	}
	for _, row := range rows {
		ds.Rows = append(ds.Rows, fitRow(row, len(columns)))
	}
	return ds
}

func fitRow(row []Cell, width int) []Cell {
	out := make([]Cell, width)
	for i := range out {
		if i < len(row) {
			out[i] = row[i]
		} else {
			out[i] = MissingCell()
		}
	}
	return out
}

// NumRows returns the number of data rows
func (d *Dataset) NumRows() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// NumColumns returns the number of columns
func (d *Dataset) NumColumns() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// ColumnNames returns the column names in order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnValues returns the cells of column i in row order
func (d *Dataset) ColumnValues(i int) []Cell {
	cells := make([]Cell, len(d.Rows))
	for r, row := range d.Rows {
		cells[r] = row[i]
	}
	return cells
}

// Clone returns a deep copy of the dataset
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	clone := &Dataset{
		Columns: append([]Column(nil), d.Columns...),
		Rows:    make([][]Cell, len(d.Rows)),
	}
	for i, row := range d.Rows {
		clone.Rows[i] = append([]Cell(nil), row...)
	}
	return clone
}

// Head returns a copy holding at most the first n rows
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	head := &Dataset{
		Columns: append([]Column(nil), d.Columns...),
		Rows:    make([][]Cell, n),
	}
	for i := 0; i < n; i++ {
		head.Rows[i] = append([]Cell(nil), d.Rows[i]...)
	}
	return head
}

// Records returns the rows as strings, missing cells rendered empty
func (d *Dataset) Records() [][]string {
	records := make([][]string, len(d.Rows))
	for i, row := range d.Rows {
		rec := make([]string, len(row))
		for j, cell := range row {
			rec[j] = cell.String()
		}
		records[i] = rec
	}
	return records
}

// Equal reports whether both datasets have the same columns and cells
func (d *Dataset) Equal(other *Dataset) bool {
	if d.NumColumns() != other.NumColumns() || d.NumRows() != other.NumRows() {
		return false
	}
	for i := range d.Columns {
		if d.Columns[i] != other.Columns[i] {
			return false
		}
	}
	for i := range d.Rows {
		if rowKey(d.Rows[i]) != rowKey(other.Rows[i]) {
			return false
		}
	}
	return true
}

// duplicateKey returns the key rows are compared by when looking for
// duplicates. A missing cell never equals another cell, so rows holding one
// have no key and are never duplicates.
func duplicateKey(row []Cell) (string, bool) {
	if hasMissing(row) {
		return "", false
	}
	return rowKey(row), true
}

// rowKey encodes a row so that two rows share a key exactly when every cell
// matches. Missing cells only match other missing cells.
func rowKey(row []Cell) string {
	var b strings.Builder
	for _, cell := range row {
		if cell.Missing {
			b.WriteString("-;")
			continue
		}
		b.WriteString(strconv.Itoa(len(cell.Value)))
		b.WriteByte(':')
		b.WriteString(cell.Value)
		b.WriteByte(';')
	}
	return b.String()
}
