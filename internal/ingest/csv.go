package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/verte-zerg/runlog/internal/model"
)

// ParseCSV parses CSV text with a header row into validated records.
// It never fails: every problem is reported in the result's Errors.
func ParseCSV(text string) model.ParseResult {
	header, rows := decodeCSV(text)
	return parseRows(header, rows)
}

// decodeCSV splits text into a header and data rows. Blank lines are skipped.
// Quoting errors become malformed rows; an unterminated quote consumes the rest of the input.
func decodeCSV(text string) ([]string, []sourceRow) {
	text = strings.TrimPrefix(text, "\ufeff")
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil || len(header) == 0 {
		return nil, nil
	}

	var rows []sourceRow
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				rows = append(rows, sourceRow{err: err})
				break
			}
			rows = append(rows, sourceRow{err: perr.Err})
			continue
		}
		cells := make([]any, len(record))
		for i, v := range record {
			cells[i] = v
		}
		rows = append(rows, sourceRow{cells: cells})
	}
	return header, rows
}
