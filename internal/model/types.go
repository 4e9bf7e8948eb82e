// Package model defines shared data structures.
package model

import (
	"sort"
	"time"
)

// DateLayout is the calendar-date key used for series and display.
const DateLayout = "2006-01-02"

// RunRecord is one validated (date, person, miles) observation.
type RunRecord struct {
	Date   time.Time
	Person string
	Miles  float64
}

// DateKey returns the UTC calendar date of the record as YYYY-MM-DD.
func (r RunRecord) DateKey() string {
	return r.Date.UTC().Format(DateLayout)
}

// ParseResult holds the accepted records and row diagnostics of one upload.
type ParseResult struct {
	Records []RunRecord
	Errors  []string
}

// Metrics summarizes miles over a record set.
type Metrics struct {
	Average float64
	Min     float64
	Max     float64
	Count   int
}

// SeriesPoint is the summed miles for one calendar date.
type SeriesPoint struct {
	Date  string
	Miles float64
}

// PersonGroups maps each person to their records.
// Order lists people by first occurrence.
type PersonGroups struct {
	Order []string
	Runs  map[string][]RunRecord
}

// Sorted returns the people in lexical order.
func (g PersonGroups) Sorted() []string {
	out := append([]string(nil), g.Order...)
	sort.Strings(out)
	return out
}

// Get returns the records for a person, or nil when unknown.
func (g PersonGroups) Get(person string) []RunRecord {
	return g.Runs[person]
}

// PersonSummary is one row of the per-person breakdown.
type PersonSummary struct {
	Person  string
	Metrics Metrics
	Total   float64
}

// ImportSummary describes a stored import.
type ImportSummary struct {
	ID          int64
	Source      string
	ImportedAt  time.Time
	RecordCount int
	ErrorCount  int
}

// ReportConfig defines options for text reports and the dashboard.
type ReportConfig struct {
	Person     string
	Window     int
	Top        int
	PlotHeight int
}
