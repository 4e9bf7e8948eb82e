package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/runlog/internal/model"
)

// ParseXLSX parses the first sheet of a workbook the same way ParseCSV parses text.
// Numeric miles cells are passed through as numbers and numeric date cells are
// converted from spreadsheet serials. The error is only for unreadable workbooks.
func ParseXLSX(r io.Reader) (model.ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.ParseResult{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only workbook.
			_ = cerr
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return parseRows(nil, nil), nil
	}
	header, rows, err := decodeSheet(f, sheets[0])
	if err != nil {
		return model.ParseResult{}, err
	}
	return parseRows(header, rows), nil
}

func decodeSheet(f *excelize.File, sheet string) ([]string, []sourceRow, error) {
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	var header []string
	var keys []string
	var rows []sourceRow
	for i, cells := range raw {
		if isBlankRow(cells) {
			continue
		}
		if header == nil {
			header = cells
			keys = CanonicalHeaders(cells)
			continue
		}
		out := make([]any, len(cells))
		for col, value := range cells {
			out[col] = sheetCell(f, sheet, keys, col, i+1, value)
		}
		rows = append(rows, sourceRow{cells: out})
	}
	return header, rows, nil
}

// sheetCell types a raw cell for its column: numbers stay numbers for miles,
// date serials become YYYY-MM-DD text, everything else stays text.
func sheetCell(f *excelize.File, sheet string, keys []string, col, row int, value string) any {
	if col >= len(keys) {
		return value
	}
	key := keys[col]
	if key != ColumnDate && key != ColumnMiles && key != bareMilesColumn {
		return value
	}
	if !isNumericCell(f, sheet, col, row) {
		return value
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}
	if key != ColumnDate {
		return n
	}
	t, err := excelize.ExcelDateToTime(n, false)
	if err != nil {
		return value
	}
	return t.Format(model.DateLayout)
}

func isNumericCell(f *excelize.File, sheet string, col, row int) bool {
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return false
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return false
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		return true
	default:
		return false
	}
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
