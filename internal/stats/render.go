package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/verte-zerg/runlog/internal/model"
)

// FormatMiles renders a miles value with two decimals, or "-" when not finite.
func FormatMiles(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RenderMetrics prints the average, min, max and count cards as text.
func RenderMetrics(w io.Writer, title string, m model.Metrics) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	lines := [][]string{
		{"Average", FormatMiles(m.Average) + " mi"},
		{"Min", FormatMiles(m.Min) + " mi"},
		{"Max", FormatMiles(m.Max) + " mi"},
		{"Runs", strconv.Itoa(m.Count)},
	}
	for _, line := range formatTable(nil, lines, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, "  "+line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderPeopleTable prints per-person metrics with a trend sparkline.
func RenderPeopleTable(w io.Writer, people []model.PersonSummary, groups model.PersonGroups) error {
	if len(people) == 0 {
		_, err := fmt.Fprintln(w, "No runners found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per Person"); err != nil {
		return err
	}
	headers := []string{"Person", "Runs", "Total", "Average", "Min", "Max", "Trend"}
	rows := make([][]string, 0, len(people))
	for _, p := range people {
		trend := Sparkline(SeriesValues(AggregateByDate(groups.Get(p.Person))))
		rows = append(rows, []string{
			p.Person,
			strconv.Itoa(p.Metrics.Count),
			FormatMiles(p.Total),
			FormatMiles(p.Metrics.Average),
			FormatMiles(p.Metrics.Min),
			FormatMiles(p.Metrics.Max),
			trend,
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	return writeLines(w, formatTable(headers, rows, rightAlign))
}

// RenderLeaderboard prints the top people by total miles.
func RenderLeaderboard(w io.Writer, people []model.PersonSummary, n int) error {
	top := TopPeopleByMiles(people, n)
	if len(top) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Top %d by miles\n", len(top)); err != nil {
		return err
	}
	rows := make([][]string, 0, len(top))
	for i, p := range top {
		rows = append(rows, []string{fmt.Sprintf("%d.", i+1), p.Person, FormatMiles(p.Total) + " mi"})
	}
	return writeLines(w, formatTable(nil, rows, map[int]bool{0: true, 2: true}))
}

// RenderRecords prints the raw record table in input order.
func RenderRecords(w io.Writer, records []model.RunRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.DateKey(), r.Person, strconv.FormatFloat(r.Miles, 'f', -1, 64)})
	}
	return writeLines(w, formatTable([]string{"Date", "Person", "Miles"}, rows, map[int]bool{2: true}))
}

// RenderPersonRecords prints one person's records under a titled heading.
func RenderPersonRecords(w io.Writer, person string, records []model.RunRecord) error {
	if _, err := fmt.Fprintf(w, "\n%s records\n", person); err != nil {
		return err
	}
	return RenderRecords(w, records)
}

// RenderErrors prints the parse diagnostics, one per line.
func RenderErrors(w io.Writer, errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Problems (%d)\n", len(errs)); err != nil {
		return err
	}
	for _, e := range errs {
		if _, err := fmt.Fprintf(w, "  - %s\n", e); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSeries plots daily miles with an optional rolling average.
func RenderSeries(w io.Writer, title string, points []model.SeriesPoint, window, totalWidth, height int, useColor bool) error {
	if len(points) == 0 {
		_, err := fmt.Fprintln(w, "No data yet.")
		return err
	}
	values := SeriesValues(points)
	series := []Series{{Name: "Miles", Values: values}}
	if window > 1 && len(values) > 1 {
		series = append(series, Series{
			Name:   fmt.Sprintf("%d-day avg", window),
			Values: MovingAverage(values, window),
		})
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, title, series, points[0].Date, points[len(points)-1].Date, width, height, useColor)
}

// RenderImports prints the saved import history.
func RenderImports(w io.Writer, imports []model.ImportSummary) error {
	if len(imports) == 0 {
		_, err := fmt.Fprintln(w, "No imports yet.")
		return err
	}
	rows := make([][]string, 0, len(imports))
	for _, imp := range imports {
		rows = append(rows, []string{
			strconv.FormatInt(imp.ID, 10),
			imp.ImportedAt.Local().Format("2006-01-02 15:04"),
			imp.Source,
			strconv.Itoa(imp.RecordCount),
			strconv.Itoa(imp.ErrorCount),
		})
	}
	headers := []string{"ID", "Imported", "Source", "Records", "Problems"}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 3: true, 4: true}))
}

// RenderReport prints the full text report for an upload.
func RenderReport(w io.Writer, report Report, cfg model.ReportConfig, totalWidth int, useColor bool) error {
	if err := RenderErrors(w, report.Result.Errors); err != nil {
		return err
	}
	if report.Person != "" {
		if err := RenderMetrics(w, report.Person, report.PersonMetrics); err != nil {
			return err
		}
		if err := RenderSeries(w, "Miles over time ("+report.Person+")", report.PersonSeries, cfg.Window, totalWidth, cfg.PlotHeight, useColor); err != nil {
			return err
		}
		return RenderPersonRecords(w, report.Person, report.Groups.Get(report.Person))
	}
	if err := RenderMetrics(w, "Overall", report.Overall); err != nil {
		return err
	}
	if err := RenderSeries(w, "Miles over time (total)", report.Series, cfg.Window, totalWidth, cfg.PlotHeight, useColor); err != nil {
		return err
	}
	if err := RenderPeopleTable(w, report.People, report.Groups); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return RenderLeaderboard(w, report.People, cfg.Top)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
