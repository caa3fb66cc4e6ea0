package dataprocessing

import (
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// isDateNumFmt reports whether a number format renders serial numbers as
// dates or times. code is the custom format code, empty for built-in formats.
func isDateNumFmt(id int, code string) bool {
	if code != "" {
		return isDateFormatCode(code)
	}
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode looks for date or time tokens outside quoted literals,
// bracketed sections and escaped characters
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case r == '\\', r == '_', r == '*':
			escaped = true
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	plain := strings.ReplaceAll(b.String(), "general", "")
	return strings.ContainsAny(plain, "ymdhs")
}

// excelDateText renders a serial date as ISO text, dropping the clock when
// it is midnight
func excelDateText(serial float64, date1904 bool) (string, bool) {
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return "", false
	}
	t = t.Round(time.Second)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02"), true
	}
	return t.Format("2006-01-02 15:04:05"), true
}
