package ingest

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/runlog/internal/model"
)

const errNoHeader = "CSV has no header row."

// sourceRow is one decoded data row. err is set when the row could not be decoded.
type sourceRow struct {
	cells []any
	err   error
}

// parseRows validates decoded rows against the header and collects diagnostics.
// Header problems are reported but never stop row processing.
func parseRows(header []string, rows []sourceRow) model.ParseResult {
	result := model.ParseResult{
		Records: []model.RunRecord{},
		Errors:  []string{},
	}
	if len(header) == 0 {
		result.Errors = append(result.Errors, errNoHeader)
		return result
	}

	keys := CanonicalHeaders(header)
	for _, col := range MissingColumns(keys) {
		result.Errors = append(result.Errors, "Missing required column: "+col)
	}

	for idx, row := range rows {
		rowNum := idx + 2
		if row.err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: malformed row: %v", rowNum, row.err))
			continue
		}
		rec, msg, ok := parseRow(rowFields(keys, row.cells))
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", rowNum, msg))
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result
}

// rowFields keys cells by canonical header. Later duplicate columns win;
// cells beyond the header are dropped and short rows leave keys absent.
func rowFields(keys []string, cells []any) map[string]any {
	fields := make(map[string]any, len(keys))
	for i, key := range keys {
		if i >= len(cells) {
			break
		}
		fields[key] = cells[i]
	}
	return fields
}

func parseRow(fields map[string]any) (model.RunRecord, string, bool) {
	dateRaw := textValue(fields[ColumnDate])
	person := strings.TrimSpace(textValue(fields[ColumnPerson]))
	milesRaw, hasMiles := fields[ColumnMiles]
	if !hasMiles {
		milesRaw, hasMiles = fields[bareMilesColumn]
	}

	schemaMiles := milesRaw
	if !hasMiles || milesRaw == nil {
		schemaMiles = ""
	}
	if msgs := checkSchema(rowSchema{Date: dateRaw, Person: person, Miles: schemaMiles}); len(msgs) > 0 {
		return model.RunRecord{}, strings.Join(msgs, ", "), false
	}

	date, ok := ParseDate(dateRaw)
	if !ok {
		return model.RunRecord{}, fmt.Sprintf("invalid date '%s'", dateRaw), false
	}
	if person == "" {
		return model.RunRecord{}, "person is empty", false
	}
	if !hasMiles || milesRaw == nil {
		return model.RunRecord{}, "miles is not a number", false
	}
	miles, ok := ParseMiles(milesRaw)
	if !ok {
		return model.RunRecord{}, "miles is not a number", false
	}
	return model.RunRecord{Date: date, Person: person, Miles: miles}, "", true
}
