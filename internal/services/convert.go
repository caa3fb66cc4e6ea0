package services

import (
	"github.com/nursabrinaas08/data-cleaning/internal/dataprocessing"
	api "github.com/nursabrinaas08/data-cleaning/pkg/contracts/api/v1"
)

func toQualityReport(r dataprocessing.QualityReport) api.QualityReport {
	details := make([]api.ColumnQuality, len(r.ColumnDetails))
	for i, c := range r.ColumnDetails {
		details[i] = api.ColumnQuality{Name: c.Name, Kind: c.Kind.String(), Missing: c.Missing}
	}
	return api.QualityReport{
		Rows:             r.Rows,
		Columns:          r.Columns,
		MissingTotal:     r.MissingTotal,
		MissingPerColumn: r.MissingPerColumn,
		ColumnDetails:    details,
		DuplicateRows:    r.DuplicateRows,
	}
}

func toTable(ds *dataprocessing.Dataset) api.Table {
	table := api.Table{
		Columns: make([]api.Column, ds.NumColumns()),
		Rows:    make([][]*string, ds.NumRows()),
	}
	if ds == nil {
		return table
	}
	for i, c := range ds.Columns {
		table.Columns[i] = api.Column{Name: c.Name, Kind: c.Kind.String()}
	}
	for r, row := range ds.Rows {
		cells := make([]*string, len(row))
		for c, cell := range row {
			if !cell.Missing {
				v := cell.Value
				cells[c] = &v
			}
		}
		table.Rows[r] = cells
	}
	return table
}

func toStatistics(stats []dataprocessing.ColumnStats) []api.ColumnStatistics {
	if len(stats) == 0 {
		return nil
	}
	out := make([]api.ColumnStatistics, len(stats))
	for i, s := range stats {
		out[i] = api.ColumnStatistics{
			Column: s.Column,
			Count:  s.Count,
			Mean:   s.Mean,
			StdDev: s.StdDev,
			Min:    s.Min,
			P25:    s.P25,
			Median: s.Median,
			P75:    s.P75,
			Max:    s.Max,
		}
	}
	return out
}

// toCleaningOptions normalizes request options. The custom value only
// travels with fill_custom so that other strategies ignore a stray field.
func toCleaningOptions(req api.CleaningOptionsRequest) (dataprocessing.CleaningOptions, error) {
	strategy, err := dataprocessing.ParseMissingStrategy(req.MissingStrategy)
	if err != nil {
		return dataprocessing.CleaningOptions{}, err
	}

	opts := dataprocessing.CleaningOptions{
		MissingStrategy: strategy,
		Deduplicate:     req.Deduplicate,
	}
	if strategy == dataprocessing.StrategyFillCustom {
		opts.CustomFillValue = dataprocessing.StringPtr(req.CustomFillValue)
	}
	return opts, opts.Validate()
}

func toAppliedOptions(opts dataprocessing.CleaningOptions) api.AppliedOptions {
	return api.AppliedOptions{
		MissingStrategy: string(opts.MissingStrategy),
		CustomFillValue: opts.CustomFillValue,
		Deduplicate:     opts.Deduplicate,
	}
}
