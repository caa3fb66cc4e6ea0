package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// missingTokens are the cell texts read as missing values, the same list
// spreadsheet and dataframe tools treat as NA by default.
var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

var (
	trueTokens  = map[string]struct{}{"true": {}, "True": {}, "TRUE": {}}
	falseTokens = map[string]struct{}{"false": {}, "False": {}, "FALSE": {}}
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"02-Jan-2006",
}

// IsMissingToken reports whether raw cell text is read as a missing value
func IsMissingToken(s string) bool {
	_, ok := missingTokens[s]
	return ok
}

// ParseNumber parses a finite decimal number. Hex forms, NaN and infinities are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatNumber renders v in the shortest decimal form that parses back to v
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isBoolToken(s string) bool {
	if _, ok := trueTokens[s]; ok {
		return true
	}
	_, ok := falseTokens[s]
	return ok
}

func boolText(s string) string {
	if _, ok := trueTokens[s]; ok {
		return "True"
	}
	return "False"
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// uniqueHeaders names blank headers "Unnamed: <i>" and suffixes repeats with
// ".1", ".2" and so on so that every column name is distinct.
func uniqueHeaders(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		taken[h] = true
		names[i] = h
	}
	used := make(map[string]bool, len(header))
	for i, h := range names {
		if !used[h] {
			used[h] = true
			continue
		}
		n := seen[h]
		candidate := h
		for used[candidate] || (candidate != h && taken[candidate]) {
			n++
			candidate = h + "." + strconv.Itoa(n)
		}
		seen[h] = n
		used[candidate] = true
		names[i] = candidate
	}
	return names
}

// buildDataset turns a header and raw records into a typed Dataset.
// Records must not be wider than the header.
func buildDataset(header []string, records [][]string) *Dataset {
	names := uniqueHeaders(header)
	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name, Kind: KindText}
	}

	rows := make([][]Cell, len(records))
	for r, rec := range records {
		row := make([]Cell, len(rec))
		for c, text := range rec {
			if IsMissingToken(text) {
				row[c] = MissingCell()
			} else {
				row[c] = Value(text)
			}
		}
		rows[r] = row
	}

	ds := NewDataset(columns, rows)
	inferKinds(ds)
	normalizeBooleans(ds)
	return ds
}

// inferKinds types each column from its present values. A column of only
// missing values is numeric, as an all-NaN column would be.
func inferKinds(ds *Dataset) {
	if len(ds.Rows) == 0 {
		return
	}
	for c := range ds.Columns {
		ds.Columns[c].Kind = inferKind(ds.ColumnValues(c))
	}
}

func inferKind(cells []Cell) Kind {
	allBool, allNumeric, allDate := true, true, true
	present, missing := 0, 0
	for _, cell := range cells {
		if cell.Missing {
			missing++
			continue
		}
		present++
		if allBool && !isBoolToken(cell.Value) {
			allBool = false
		}
		if allNumeric {
			if _, ok := ParseNumber(cell.Value); !ok {
				allNumeric = false
			}
		}
		if allDate && !isDate(cell.Value) {
			allDate = false
		}
	}
	switch {
	case present == 0:
		return KindNumeric
	case allBool && missing == 0:
		return KindBoolean
	case allNumeric:
		return KindNumeric
	case allDate:
		return KindDate
	default:
		return KindText
	}
}

// normalizeBooleans rewrites boolean columns as "True"/"False" text columns
func normalizeBooleans(ds *Dataset) {
	for c, col := range ds.Columns {
		if col.Kind != KindBoolean {
			continue
		}
		for _, row := range ds.Rows {
			row[c] = Value(boolText(row[c].Value))
		}
		ds.Columns[c].Kind = KindText
	}
}
