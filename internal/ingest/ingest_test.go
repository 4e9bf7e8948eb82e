package ingest

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/runlog/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseCSVWellFormed(t *testing.T) {
	text := "date,person,miles\n2024-01-01,Alice,5\n2024-01-01,Bob,3\n01/02/2024,Alice,4.5\n"
	res := ParseCSV(text)
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", res.Errors)
	}
	want := []model.RunRecord{
		{Date: day(2024, 1, 1), Person: "Alice", Miles: 5},
		{Date: day(2024, 1, 1), Person: "Bob", Miles: 3},
		{Date: day(2024, 1, 2), Person: "Alice", Miles: 4.5},
	}
	if len(res.Records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(res.Records))
	}
	for i, w := range want {
		got := res.Records[i]
		if !got.Date.Equal(w.Date) || got.Person != w.Person || got.Miles != w.Miles {
			t.Fatalf("record %d: got %+v, want %+v", i, got, w)
		}
	}
}

func TestParseCSVRowErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		records int
		errors  []string
	}{
		{
			name:    "non-numeric miles",
			text:    "date,person,miles\n2024-01-01,Alice,5\n2024-01-02,Bob,abc\n",
			records: 1,
			errors:  []string{"Row 3: miles is not a number"},
		},
		{
			name:    "invalid date",
			text:    "date,person,miles\nnot-a-date,Alice,5\n",
			records: 0,
			errors:  []string{"Row 2: invalid date 'not-a-date'"},
		},
		{
			name:    "date out of range",
			text:    "date,person,miles\n2024-02-30,Alice,5\n",
			records: 0,
			errors:  []string{"Row 2: invalid date '2024-02-30'"},
		},
		{
			name:    "blank person",
			text:    "date,person,miles\n2024-01-01,   ,5\n",
			records: 0,
			errors:  []string{"Row 2: person is empty"},
		},
		{
			name:    "empty date and person",
			text:    "date,person,miles\n,,5\n",
			records: 0,
			errors:  []string{"Row 2: date required, person is empty"},
		},
		{
			name:    "short row has no miles",
			text:    "date,person,miles\n2024-01-01,Bob\n",
			records: 0,
			errors:  []string{"Row 2: miles is not a number"},
		},
		{
			name:    "infinite miles",
			text:    "date,person,miles\n2024-01-01,Bob,Infinity\n2024-01-01,Bob,NaN\n",
			records: 0,
			errors:  []string{"Row 2: miles is not a number", "Row 3: miles is not a number"},
		},
		{
			name:    "blank lines are not rows",
			text:    "date,person,miles\n\n2024-01-01,Alice,1\n\n\n2024-01-02,Bob,x\n\n",
			records: 1,
			errors:  []string{"Row 3: miles is not a number"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseCSV(tt.text)
			if len(res.Records) != tt.records {
				t.Fatalf("expected %d records, got %d (%v)", tt.records, len(res.Records), res.Errors)
			}
			if strings.Join(res.Errors, "|") != strings.Join(tt.errors, "|") {
				t.Fatalf("unexpected errors: got %q, want %q", res.Errors, tt.errors)
			}
		})
	}
}

func TestParseCSVMalformedRows(t *testing.T) {
	res := ParseCSV("date,person,miles\n2024-01-01,Al\"ice,5\n2024-01-02,Bob,3\n")
	want := []string{"Row 2: malformed row: " + csv.ErrBareQuote.Error()}
	if strings.Join(res.Errors, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected errors: got %q, want %q", res.Errors, want)
	}
	if len(res.Records) != 1 || res.Records[0].Person != "Bob" {
		t.Fatalf("expected the row after a bare quote to parse, got %+v", res.Records)
	}

	res = ParseCSV("date,person,miles\n2024-01-01,\"A,5\n2024-01-02,B,3\n")
	want = []string{"Row 2: malformed row: " + csv.ErrQuote.Error()}
	if strings.Join(res.Errors, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected errors: got %q, want %q", res.Errors, want)
	}
	if len(res.Records) != 0 {
		t.Fatalf("expected no records after an unterminated quote, got %+v", res.Records)
	}
}

func TestParseCSVNoHeader(t *testing.T) {
	for _, text := range []string{"", "\n\n", "\ufeff"} {
		res := ParseCSV(text)
		if len(res.Records) != 0 {
			t.Fatalf("expected no records for %q", text)
		}
		if len(res.Errors) != 1 || res.Errors[0] != "CSV has no header row." {
			t.Fatalf("unexpected errors for %q: %v", text, res.Errors)
		}
	}
}

func TestParseCSVMissingPersonColumn(t *testing.T) {
	res := ParseCSV("date,miles\n2024-01-01,5\n2024-01-02,3\n")
	want := []string{
		"Missing required column: person",
		"Row 2: person is empty",
		"Row 3: person is empty",
	}
	if len(res.Records) != 0 {
		t.Fatalf("expected no records, got %d", len(res.Records))
	}
	if strings.Join(res.Errors, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected errors: %q", res.Errors)
	}
}

func TestParseCSVMissingMilesColumnStillParsesRows(t *testing.T) {
	res := ParseCSV("Date,Person,Distance\n2024-01-01,Alice,5\n")
	want := []string{
		"Missing required column: miles run",
		"Row 2: miles is not a number",
	}
	if strings.Join(res.Errors, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected errors: %q", res.Errors)
	}
}

func TestParseCSVHeaderVariants(t *testing.T) {
	for _, header := range []string{"miles", "miles_run", "miles-run", "Miles Run", "  MILES  ", "Miles_Run"} {
		text := " Date ,PERSON," + header + "\n2024-01-01,Alice,5\n"
		res := ParseCSV(text)
		if len(res.Errors) != 0 {
			t.Fatalf("header %q: unexpected errors %v", header, res.Errors)
		}
		if len(res.Records) != 1 || res.Records[0].Miles != 5 {
			t.Fatalf("header %q: unexpected records %+v", header, res.Records)
		}
	}
}

func TestParseCSVLaterDuplicateColumnWins(t *testing.T) {
	res := ParseCSV("date,person,miles,miles run\n2024-01-01,Alice,1,2\n")
	if len(res.Errors) != 0 || len(res.Records) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Records[0].Miles != 2 {
		t.Fatalf("expected miles 2, got %v", res.Records[0].Miles)
	}
}

func TestParseCSVMilesCoercion(t *testing.T) {
	res := ParseCSV("date,person,miles\n2024-01-01,A,\"1,234.5\"\n2024-01-01,B, 7 \n2024-01-01,C,\n2024-01-01,D,-2\n")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := []float64{1234.5, 7, 0, -2}
	for i, w := range want {
		if res.Records[i].Miles != w {
			t.Fatalf("record %d: miles %v, want %v", i, res.Records[i].Miles, w)
		}
	}
}

func TestParseCSVStripsBOMAndTrimsPerson(t *testing.T) {
	res := ParseCSV("\ufeffdate,person,miles\n2024-01-01,  Alice  ,5\n")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Records[0].Person != "Alice" {
		t.Fatalf("expected trimmed person, got %q", res.Records[0].Person)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-01", day(2024, 1, 1), true},
		{"  2024-01-01  ", day(2024, 1, 1), true},
		{"01/02/2024", day(2024, 1, 2), true},
		{"1/2/2024", day(2024, 1, 2), true},
		{"13/01/2024", day(2024, 1, 13), true},
		{"5/13/2024", day(2024, 5, 13), true},
		{"2024-03-05T23:30:00-02:00", time.Date(2024, 3, 6, 1, 30, 0, 0, time.UTC), true},
		{"2024-03-05T08:15:00", time.Date(2024, 3, 5, 8, 15, 0, 0, time.UTC), true},
		{"Jan 2, 2024", day(2024, 1, 2), true},
		{"Jan 5 2024", day(2024, 1, 5), true},
		{"2024-1-5", day(2024, 1, 5), true},
		{"2024-01-5", day(2024, 1, 5), true},
		{"2024/01/05", day(2024, 1, 5), true},
		{"2024/1/5", day(2024, 1, 5), true},
		{"1/5/24", day(2024, 1, 5), true},
		{"01/5/2024", day(2024, 1, 5), true},
		{"5/01/2024", day(2024, 5, 1), true},
		{"25/1/2024", day(2024, 1, 25), true},
		{"02/30/2024", time.Time{}, false},
		{"not-a-date", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok {
			t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
		if ok && !got.Equal(tt.want) {
			t.Fatalf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseMiles(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"5", 5, true},
		{"2,500", 2500, true},
		{" 3.25 ", 3.25, true},
		{"", 0, true},
		{4.5, 4.5, true},
		{math.Inf(1), 0, false},
		{math.NaN(), 0, false},
		{"abc", 0, false},
		{"1e400", 0, false},
		{"0x10", 16, true},
		{"0b11", 3, true},
		{"0o17", 15, true},
		{"0xZZ", 0, false},
		{"0x1_0", 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMiles(tt.in)
		if ok != tt.ok {
			t.Fatalf("ParseMiles(%v) ok = %v, want %v", tt.in, ok, tt.ok)
		}
		if ok && got != tt.want {
			t.Fatalf("ParseMiles(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalHeader(t *testing.T) {
	tests := map[string]string{
		"miles":       ColumnMiles,
		"Miles_Run":   ColumnMiles,
		"MILES-RUN":   ColumnMiles,
		" miles run ": ColumnMiles,
		" Date ":      ColumnDate,
		"Notes":       "notes",
	}
	for in, want := range tests {
		if got := CanonicalHeader(in); got != want {
			t.Errorf("CanonicalHeader(%q) = %q; want %q", in, got, want)
		}
	}
}

func buildWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]any{
		"A1": "Date", "B1": "Person", "C1": "Miles_Run",
		"A2": day(2024, 1, 1), "B2": "Alice", "C2": 5,
		"A3": "01/02/2024", "B3": "Bob", "C3": "3.5",
		"A5": "not-a-date", "B5": "Carol", "C5": "abc",
	}
	for cell, value := range cells {
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
	return f
}

func TestParseXLSX(t *testing.T) {
	f := buildWorkbook(t)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	res, err := ParseXLSX(buf)
	if err != nil {
		t.Fatalf("ParseXLSX failed: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d (%v)", len(res.Records), res.Errors)
	}
	if !res.Records[0].Date.Equal(day(2024, 1, 1)) || res.Records[0].Miles != 5 {
		t.Fatalf("unexpected first record: %+v", res.Records[0])
	}
	if !res.Records[1].Date.Equal(day(2024, 1, 2)) || res.Records[1].Miles != 3.5 {
		t.Fatalf("unexpected second record: %+v", res.Records[1])
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Row 4: invalid date 'not-a-date'" {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestParseXLSXRejectsGarbage(t *testing.T) {
	if _, err := ParseXLSX(strings.NewReader("not a workbook")); err == nil {
		t.Fatalf("expected error for invalid workbook")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "runs.csv")
	if err := os.WriteFile(csvPath, []byte(SampleCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	res, err := ParseFile(csvPath)
	if err != nil {
		t.Fatalf("ParseFile csv: %v", err)
	}
	if len(res.Errors) != 0 || len(res.Records) != 10 {
		t.Fatalf("unexpected sample parse: %d records, errors %v", len(res.Records), res.Errors)
	}

	xlsxPath := filepath.Join(dir, "runs.XLSX")
	if err := buildWorkbook(t).SaveAs(xlsxPath); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	res, err = ParseFile(xlsxPath)
	if err != nil {
		t.Fatalf("ParseFile xlsx: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 xlsx records, got %d", len(res.Records))
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	in := ParseCSV(SampleCSV)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, in.Records); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	out := ParseCSV(buf.String())
	if len(out.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", out.Errors)
	}
	if len(out.Records) != len(in.Records) {
		t.Fatalf("expected %d records, got %d", len(in.Records), len(out.Records))
	}
	for i := range in.Records {
		a, b := in.Records[i], out.Records[i]
		if !a.Date.Equal(b.Date) || a.Person != b.Person || a.Miles != b.Miles {
			t.Fatalf("record %d differs: %+v vs %+v", i, a, b)
		}
	}
}
