// Package exporter serializes cleaned datasets for download.
//
// This package contains three components:
//
// CSVWriter: core CSV writing with headers and an optional UTF-8 BOM for
// Excel compatibility.
//
// XLSXWriter: streams a header and rows into a single-sheet workbook.
//
// Exporter: picks the output format from the uploaded file's name. CSV
// uploads are exported as cleaned_data.csv, workbooks as cleaned_data.xlsx.
//
// Example usage:
//
//	exp, err := exporter.New(logger).Export(cleaned, "sales.xls")
//	if err != nil {
//	    return err
//	}
//	w.Header().Set("Content-Type", exp.ContentType)
//	w.Write(exp.Data)
package exporter
