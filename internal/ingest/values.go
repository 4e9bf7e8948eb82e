package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type dateParser func(string) (time.Time, bool)

// isoLayouts are tried first, the forms a plain ISO date constructor accepts.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2",
	"2006/1/2",
	"2006-01",
	"2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"1/2/06",
}

// dateParsers run in order until one yields a valid date. Numeric month and
// day fields accept one or two digits, so 1/2/2006 also covers 01/02/2006.
var dateParsers = []dateParser{
	parseISODate,
	layoutParser("2006-1-2"),
	layoutParser("1/2/2006"),
	layoutParser("2/1/2006"),
}

// ParseDate parses a date in any of the supported formats.
// Values without a zone are read as UTC; the result is always in UTC.
func ParseDate(input string) (time.Time, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, parse := range dateParsers {
		if t, ok := parse(trimmed); ok {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseISODate(value string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func layoutParser(layout string) dateParser {
	return func(value string) (time.Time, bool) {
		t, err := time.Parse(layout, value)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

// ParseMiles coerces a numeric or text cell into a finite miles value.
// Text has thousands separators stripped; blank text reads as zero.
func ParseMiles(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, isFinite(v)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if cleaned == "" {
			return 0, true
		}
		if isPrefixedInteger(cleaned) {
			n, err := strconv.ParseUint(cleaned, 0, 64)
			if err != nil {
				return 0, false
			}
			return float64(n), true
		}
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return n, isFinite(n)
	default:
		return 0, false
	}
}

// isPrefixedInteger reports whether s is an unsigned 0x, 0o or 0b literal.
func isPrefixedInteger(s string) bool {
	if len(s) < 3 || s[0] != '0' || strings.Contains(s, "_") {
		return false
	}
	switch s[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	default:
		return false
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func textValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
