// Package ingest turns loosely formatted activity files into validated run records.
package ingest

import "strings"

// Canonical column names.
const (
	ColumnDate   = "date"
	ColumnPerson = "person"
	ColumnMiles  = "miles run"
)

// bareMilesColumn is read when no canonical miles column is present.
const bareMilesColumn = "miles"

// RequiredColumns lists the canonical columns every upload must carry, in report order.
var RequiredColumns = []string{ColumnDate, ColumnPerson, ColumnMiles}

// headerAliases maps normalized header variants to canonical column names.
var headerAliases = map[string]string{
	"miles":     ColumnMiles,
	"miles_run": ColumnMiles,
	"miles-run": ColumnMiles,
	"miles run": ColumnMiles,
}

// CanonicalHeader trims and lowercases a header and resolves known aliases.
func CanonicalHeader(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	if canonical, ok := headerAliases[key]; ok {
		return canonical
	}
	return key
}

// CanonicalHeaders applies CanonicalHeader to every header, keeping positions.
func CanonicalHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = CanonicalHeader(h)
	}
	return out
}

// MissingColumns returns the required columns absent from the canonical headers.
func MissingColumns(canonical []string) []string {
	present := make(map[string]struct{}, len(canonical))
	for _, h := range canonical {
		present[h] = struct{}{}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}
