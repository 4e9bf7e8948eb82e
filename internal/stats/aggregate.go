// Package stats contains run aggregation and reporting.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/runlog/internal/model"
)

const sparkChars = " .:-=+*#%@"

// ComputeMetrics returns average, min, max and count of miles.
// An empty record set yields all zeros.
func ComputeMetrics(records []model.RunRecord) model.Metrics {
	if len(records) == 0 {
		return model.Metrics{}
	}
	minVal := records[0].Miles
	maxVal := records[0].Miles
	var total float64
	for _, r := range records {
		total += r.Miles
		if r.Miles < minVal {
			minVal = r.Miles
		}
		if r.Miles > maxVal {
			maxVal = r.Miles
		}
	}
	return model.Metrics{
		Average: total / float64(len(records)),
		Min:     minVal,
		Max:     maxVal,
		Count:   len(records),
	}
}

// ByPerson groups records by exact person name, keeping record order within each group.
func ByPerson(records []model.RunRecord) model.PersonGroups {
	groups := model.PersonGroups{Runs: map[string][]model.RunRecord{}}
	for _, r := range records {
		if _, ok := groups.Runs[r.Person]; !ok {
			groups.Order = append(groups.Order, r.Person)
		}
		groups.Runs[r.Person] = append(groups.Runs[r.Person], r)
	}
	return groups
}

// AggregateByDate sums miles per UTC calendar date, ascending by date.
func AggregateByDate(records []model.RunRecord) []model.SeriesPoint {
	totals := map[string]float64{}
	for _, r := range records {
		totals[r.DateKey()] += r.Miles
	}
	points := make([]model.SeriesPoint, 0, len(totals))
	for date, miles := range totals {
		points = append(points, model.SeriesPoint{Date: date, Miles: miles})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

// SummarizePeople computes per-person metrics, sorted by person.
func SummarizePeople(groups model.PersonGroups) []model.PersonSummary {
	people := groups.Sorted()
	out := make([]model.PersonSummary, 0, len(people))
	for _, person := range people {
		runs := groups.Get(person)
		var total float64
		for _, r := range runs {
			total += r.Miles
		}
		out = append(out, model.PersonSummary{
			Person:  person,
			Metrics: ComputeMetrics(runs),
			Total:   total,
		})
	}
	return out
}

// TopPeopleByMiles returns the top N people by total miles.
func TopPeopleByMiles(summaries []model.PersonSummary, n int) []model.PersonSummary {
	if n <= 0 || len(summaries) == 0 {
		return nil
	}
	items := append([]model.PersonSummary(nil), summaries...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Total == items[j].Total {
			return items[i].Person < items[j].Person
		}
		return items[i].Total > items[j].Total
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// SeriesValues returns the miles of each point, in order.
func SeriesValues(points []model.SeriesPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Miles
	}
	return values
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := valueRange(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func valueRange(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}
