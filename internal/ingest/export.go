package ingest

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/verte-zerg/runlog/internal/model"
)

// WriteCSV writes records as date,person,miles with a header row.
func WriteCSV(w io.Writer, records []model.RunRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "person", "miles"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.DateKey(),
			r.Person,
			strconv.FormatFloat(r.Miles, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
