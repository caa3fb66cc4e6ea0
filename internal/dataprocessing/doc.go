// Package dataprocessing reads uploaded tabular files, measures their data
// quality and applies cleaning strategies to them.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Parser: reads CSV, xlsx and legacy xls uploads into a Dataset
// 2. Profiler: computes a QualityReport, a preview and numeric summaries
// 3. Cleaner: resolves missing cells and removes duplicate rows
//
// # Usage
//
// Parsing an upload:
//
//	ds, err := dataprocessing.Ingest("sales.csv", r)
//	if errors.Is(err, dataprocessing.ErrUnsupportedFormat) {
//	    // reject the upload
//	}
//
// Profiling and cleaning:
//
//	before := dataprocessing.Profile(ds)
//	cleaner := dataprocessing.NewCleaner(logger)
//	cleaned, err := cleaner.Clean(ctx, ds, dataprocessing.CleaningOptions{
//	    MissingStrategy: dataprocessing.StrategyFillMedian,
//	    Deduplicate:     true,
//	})
//	after := dataprocessing.Profile(cleaned)
//
// # Data Flow
//
//	Upload → Parser → Dataset → Profiler → QualityReport
//	                     ↓
//	                  Cleaner → Dataset → Profiler → QualityReport
//
// # Data Model
//
// Cells keep the exact text read from the file. Workbook cells keep their
// stored value rather than the number-formatted text; date-formatted serials
// become ISO dates. Empty cells and the usual NA
// tokens ("NA", "NULL", "NaN", "#N/A", ...) are missing. Column kinds are
// inferred from present values; boolean columns are rewritten as "True" and
// "False" text so that every column is either text-like or numeric.
//
// # Error Handling
//
//   - ErrUnsupportedFormat for extensions other than .csv, .xlsx and .xls
//   - *ParseError (matching ErrParse) for unreadable files, with the cause
//   - ErrInvalidOptions for options that cannot be applied
package dataprocessing
