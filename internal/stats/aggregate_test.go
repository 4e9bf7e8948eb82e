package stats

import (
	"math"
	"testing"
	"time"

	"github.com/verte-zerg/runlog/internal/model"
)

func run(date time.Time, person string, miles float64) model.RunRecord {
	return model.RunRecord{Date: date, Person: person, Miles: miles}
}

func jan(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeMetricsEmpty(t *testing.T) {
	got := ComputeMetrics(nil)
	if got != (model.Metrics{}) {
		t.Fatalf("expected zero metrics, got %+v", got)
	}
}

func TestComputeMetrics(t *testing.T) {
	got := ComputeMetrics([]model.RunRecord{
		run(jan(1), "a", 3),
		run(jan(1), "a", 5),
		run(jan(1), "a", 7),
	})
	want := model.Metrics{Average: 5, Min: 3, Max: 7, Count: 3}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestComputeMetricsNegativeAndSingle(t *testing.T) {
	got := ComputeMetrics([]model.RunRecord{run(jan(1), "a", -2)})
	if got.Min != -2 || got.Max != -2 || got.Average != -2 || got.Count != 1 {
		t.Fatalf("unexpected metrics: %+v", got)
	}
}

func TestByPersonKeepsOrder(t *testing.T) {
	records := []model.RunRecord{
		run(jan(3), "Bob", 1),
		run(jan(1), "Alice", 2),
		run(jan(2), "Bob", 3),
		run(jan(1), "Alice", 4),
		run(jan(5), "alice", 5),
	}
	groups := ByPerson(records)
	wantOrder := []string{"Bob", "Alice", "alice"}
	if len(groups.Order) != len(wantOrder) {
		t.Fatalf("unexpected order: %v", groups.Order)
	}
	for i, p := range wantOrder {
		if groups.Order[i] != p {
			t.Fatalf("unexpected order: %v", groups.Order)
		}
	}
	bob := groups.Get("Bob")
	if len(bob) != 2 || bob[0].Miles != 1 || bob[1].Miles != 3 {
		t.Fatalf("unexpected Bob runs: %+v", bob)
	}
	alice := groups.Get("Alice")
	if len(alice) != 2 || alice[0].Miles != 2 || alice[1].Miles != 4 {
		t.Fatalf("unexpected Alice runs: %+v", alice)
	}
	sorted := groups.Sorted()
	if sorted[0] != "Alice" || sorted[1] != "Bob" || sorted[2] != "alice" {
		t.Fatalf("unexpected sorted people: %v", sorted)
	}
	if groups.Order[0] != "Bob" {
		t.Fatalf("Sorted must not reorder Order")
	}
	if records[0].Person != "Bob" || records[1].Person != "Alice" {
		t.Fatalf("input mutated")
	}
}

func TestAggregateByDate(t *testing.T) {
	records := []model.RunRecord{
		run(jan(2), "a", 4.5),
		run(time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), "a", 5),
		run(time.Date(2024, 1, 1, 21, 30, 0, 0, time.UTC), "b", 3),
		run(time.Date(2024, 1, 10, 1, 0, 0, 0, time.FixedZone("x", 5*3600)), "b", 1),
	}
	got := AggregateByDate(records)
	want := []model.SeriesPoint{
		{Date: "2024-01-01", Miles: 8},
		{Date: "2024-01-02", Miles: 4.5},
		{Date: "2024-01-09", Miles: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(AggregateByDate(nil)) != 0 {
		t.Fatalf("expected no points for empty input")
	}
}

func TestSummarizeAndTopPeople(t *testing.T) {
	groups := ByPerson([]model.RunRecord{
		run(jan(1), "Carol", 2),
		run(jan(1), "Alice", 5),
		run(jan(2), "Bob", 6),
		run(jan(2), "Alice", 3),
	})
	people := SummarizePeople(groups)
	if len(people) != 3 || people[0].Person != "Alice" || people[2].Person != "Carol" {
		t.Fatalf("unexpected summaries: %+v", people)
	}
	if people[0].Total != 8 || people[0].Metrics.Count != 2 || people[0].Metrics.Average != 4 {
		t.Fatalf("unexpected Alice summary: %+v", people[0])
	}
	top := TopPeopleByMiles(people, 2)
	if len(top) != 2 || top[0].Person != "Alice" || top[1].Person != "Bob" {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}
	if TopPeopleByMiles(people, 0) != nil {
		t.Fatalf("expected nil leaderboard for n=0")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	same := MovingAverage([]float64{1, 2}, 1)
	if same[0] != 1 || same[1] != 2 {
		t.Fatalf("window 1 should copy input: %v", same)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("unexpected flat sparkline: %q", got)
	}
	if got := Sparkline([]float64{0, 10}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}
