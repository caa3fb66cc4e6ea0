package dataprocessing

import (
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnStats summarizes the present values of a numeric column.
// StdDev is nil when fewer than two values exist.
type ColumnStats struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   float64  `json:"mean"`
	StdDev *float64 `json:"std,omitempty"`
	Min    float64  `json:"min"`
	P25    float64  `json:"p25"`
	Median float64  `json:"median"`
	P75    float64  `json:"p75"`
	Max    float64  `json:"max"`
}

// Describe returns summary statistics for every numeric column holding at
// least one value, in column order. Quartiles use the empirical quantile.
func Describe(ds *Dataset) []ColumnStats {
	if ds == nil {
		return nil
	}
	var out []ColumnStats
	for c, col := range ds.Columns {
		if col.Kind != KindNumeric {
			continue
		}
		values := numericValues(ds.ColumnValues(c))
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)

		cs := ColumnStats{
			Column: col.Name,
			Count:  len(values),
			Min:    floats.Min(values),
			Max:    floats.Max(values),
			P25:    stat.Quantile(0.25, stat.Empirical, values, nil),
			P75:    stat.Quantile(0.75, stat.Empirical, values, nil),
		}
		if len(values) > 1 {
			mean, std := stat.MeanStdDev(values, nil)
			cs.Mean = mean
			cs.StdDev = &std
		} else {
			cs.Mean = values[0]
		}
		if median, err := stats.Median(values); err == nil {
			cs.Median = median
		}
		out = append(out, cs)
	}
	return out
}

// numericValues parses the present cells that hold numbers
func numericValues(cells []Cell) []float64 {
	values := make([]float64, 0, len(cells))
	for _, cell := range cells {
		if cell.Missing {
			continue
		}
		if v, ok := ParseNumber(cell.Value); ok {
			values = append(values, v)
		}
	}
	return values
}
