package stats

import "github.com/verte-zerg/runlog/internal/model"

// Report contains precomputed data for rendering one upload.
type Report struct {
	Result  model.ParseResult
	Overall model.Metrics
	Series  []model.SeriesPoint
	Groups  model.PersonGroups
	People  []model.PersonSummary

	Person        string
	PersonMetrics model.Metrics
	PersonSeries  []model.SeriesPoint
}

// BuildReport derives every view of a parse result. An unknown person
// yields empty person metrics rather than an error.
func BuildReport(result model.ParseResult, person string) Report {
	groups := ByPerson(result.Records)
	report := Report{
		Result:  result,
		Overall: ComputeMetrics(result.Records),
		Series:  AggregateByDate(result.Records),
		Groups:  groups,
		People:  SummarizePeople(groups),
	}
	report.SelectPerson(person)
	return report
}

// SelectPerson recomputes the per-person view for the given person.
func (r *Report) SelectPerson(person string) {
	runs := r.Groups.Get(person)
	r.Person = person
	r.PersonMetrics = ComputeMetrics(runs)
	r.PersonSeries = AggregateByDate(runs)
}
