package chart

import (
	"testing"
	"time"

	"tracelens/pkg/timerange"
)

func TestGroupSeriesPreservesOrder(t *testing.T) {
	points := []Point{
		{TimeBucket: 1, Value: 10, Series: "A"},
		{TimeBucket: 2, Value: 20, Series: "B"},
		{TimeBucket: 3, Value: 30, Series: "A"},
	}
	got := GroupSeries(points)
	if len(got) != 2 {
		t.Fatalf("expected 2 series, got %d", len(got))
	}
	if got[0].Name != "A" || got[1].Name != "B" {
		t.Fatalf("series order not first-appearance: %q, %q", got[0].Name, got[1].Name)
	}
	if len(got[0].Points) != 2 || got[0].Points[0].TimeBucket != 1 || got[0].Points[1].TimeBucket != 3 {
		t.Fatalf("series A lost input order: %+v", got[0].Points)
	}
	if len(got[1].Points) != 1 || got[1].Points[0].Value != 20 {
		t.Fatalf("series B wrong: %+v", got[1].Points)
	}
}

func TestGroupSeriesDefaultSeries(t *testing.T) {
	points := []Point{
		{TimeBucket: 1, Value: 1},
		{TimeBucket: 2, Value: 2},
	}
	got := GroupSeries(points)
	if len(got) != 1 {
		t.Fatalf("unnamed points should share one default series, got %d", len(got))
	}
	if got[0].Name != "" {
		t.Fatalf("default series should be unnamed, got %q", got[0].Name)
	}
}

func TestGroupSeriesIdempotent(t *testing.T) {
	points := []Point{
		{TimeBucket: 1, Value: 1, Series: "A"},
		{TimeBucket: 2, Value: 2, Series: "B"},
	}
	once := GroupSeries(points)

	// Flatten and regroup: already-grouped data must come back unchanged.
	var flat []Point
	for _, s := range once {
		for _, p := range s.Points {
			flat = append(flat, Point{TimeBucket: p.TimeBucket, Value: p.Value, Series: s.Name})
		}
	}
	twice := GroupSeries(flat)
	if len(twice) != len(once) {
		t.Fatalf("regrouping changed series count: %d vs %d", len(twice), len(once))
	}
	for i := range once {
		if twice[i].Name != once[i].Name || len(twice[i].Points) != len(once[i].Points) {
			t.Fatalf("regrouping changed series %d: %+v vs %+v", i, twice[i], once[i])
		}
	}
}

func TestGroupSeriesDoesNotMutateInput(t *testing.T) {
	points := []Point{{TimeBucket: 1, Value: 1, Series: "A"}}
	GroupSeries(points)
	if points[0].TimeBucket != 1 || points[0].Value != 1 || points[0].Series != "A" {
		t.Fatalf("input mutated: %+v", points[0])
	}
}

func TestLabelThinning30Points(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 30)
	for i := range times {
		times[i] = base.AddDate(0, 0, i)
	}
	set := TimeTicks(timerange.BucketDay, times, base)
	if len(set.Ticks) != 30 {
		t.Fatalf("expected 30 ticks, got %d", len(set.Ticks))
	}
	for i, tick := range set.Ticks {
		want := i%4 == 0 || i == 29
		if (tick.Label != "") != want {
			t.Fatalf("index %d: labeled=%v, want %v", i, tick.Label != "", want)
		}
	}
}

func TestLabelNoThinningSmallSets(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 7)
	for i := range times {
		times[i] = base.AddDate(0, 0, i)
	}
	set := TimeTicks(timerange.BucketDay, times, base)
	for i, tick := range set.Ticks {
		if tick.Label == "" {
			t.Fatalf("index %d unlabeled; all <=7 points should be labeled", i)
		}
	}
}

func TestHourLabelsAnnotateDayAcrossMidnight(t *testing.T) {
	base := time.Date(2025, 8, 20, 22, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour), base.Add(3 * time.Hour)}
	set := TimeTicks(timerange.BucketHour, times, base)
	if got := set.Ticks[0].Label; got != "10 PM (8/20)" {
		t.Fatalf("multi-day hour label = %q", got)
	}
	if got := set.Ticks[3].Label; got != "1 AM (8/21)" {
		t.Fatalf("post-midnight hour label = %q", got)
	}
}

func TestHourLabelsSingleDay(t *testing.T) {
	base := time.Date(2025, 8, 20, 13, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}
	set := TimeTicks(timerange.BucketHour, times, base)
	if got := set.Ticks[2].Label; got != "3 PM" {
		t.Fatalf("single-day hour label = %q", got)
	}
}

func TestDayLabelsByRange(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	short := TimeTicks(timerange.BucketDay, []time.Time{
		now.AddDate(0, 0, -3), now.AddDate(0, 0, -2), now,
	}, now)
	if got := short.Ticks[0].Label; got != "Sun 8/17" {
		t.Fatalf("weekday label = %q", got)
	}

	mid := TimeTicks(timerange.BucketDay, []time.Time{
		now.AddDate(0, 0, -60), now,
	}, now)
	if got := mid.Ticks[0].Label; got != "6/21" {
		t.Fatalf("month/date label = %q", got)
	}

	long := TimeTicks(timerange.BucketDay, []time.Time{
		time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC), now,
	}, now)
	if got := long.Ticks[0].Label; got != "11/5/24" {
		t.Fatalf("prior-year label = %q", got)
	}
	if got := long.Ticks[1].Label; got != "8/20" {
		t.Fatalf("current-year label = %q", got)
	}
}

func TestWeekLabels(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)

	short := TimeTicks(timerange.BucketWeek, []time.Time{monday, monday.AddDate(0, 0, 7)}, now)
	if got := short.Ticks[0].Label; got != "8/4-8/10" {
		t.Fatalf("week range label = %q", got)
	}

	long := TimeTicks(timerange.BucketWeek, []time.Time{
		time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), monday.AddDate(0, 0, 7*20),
	}, now)
	if got := long.Ticks[0].Label; got != "Jan 2025" {
		t.Fatalf("compressed week label = %q", got)
	}
}

func TestRotationHints(t *testing.T) {
	now := time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC)

	// Double-digit-month week labels ("10/13-10/19") exceed 10 characters.
	monday := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	set := TimeTicks(timerange.BucketWeek, []time.Time{
		monday, monday.AddDate(0, 0, 7), monday.AddDate(0, 0, 14),
	}, now)
	if !set.Rotate {
		t.Fatal("long week labels should trigger rotation")
	}

	// 14 hourly points thin to every 2nd: 8 labels, all short, no rotation.
	base := time.Date(2025, 8, 20, 1, 0, 0, 0, time.UTC)
	times := make([]time.Time, 14)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * time.Hour)
	}
	if hourly := TimeTicks(timerange.BucketHour, times, now); hourly.Rotate {
		t.Fatal("short sparse labels should not rotate")
	}
}

func TestDomainTicksWalkEmptyRange(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, 8, 15, 9, 30, 0, 0, time.UTC)
	end := time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)

	set := DomainTicks(timerange.BucketDay, start, end, now)
	if len(set.Ticks) != 5 {
		t.Fatalf("expected 5 day ticks for 8/15-8/19, got %d", len(set.Ticks))
	}
	if set.Ticks[0].Time.Hour() != 0 {
		t.Fatalf("domain walk should start on a day boundary, got %v", set.Ticks[0].Time)
	}

	weeks := DomainTicks(timerange.BucketWeek, start, start.AddDate(0, 0, 21), now)
	for _, tick := range weeks.Ticks {
		if tick.Time.Weekday() != time.Monday {
			t.Fatalf("week walk not aligned to week start: %v", tick.Time)
		}
	}
}

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{999, "999ms"},
		{1000, "1.00s"},
		{1500, "1.50s"},
		{0, "0ms"},
		{2500, "2.50s"},
	}
	for _, tc := range tests {
		if got := FormatLatency(tc.ms); got != tc.want {
			t.Fatalf("FormatLatency(%v) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestFormatPercentage(t *testing.T) {
	tests := []struct {
		frac float64
		want string
	}{
		{0.1, "10.0%"},
		{0.567, "56.7%"},
		{0, "0%"},
		{0.0004, "<0.1%"},
		{1, "100.0%"},
	}
	for _, tc := range tests {
		if got := FormatPercentage(tc.frac); got != tc.want {
			t.Fatalf("FormatPercentage(%v) = %q, want %q", tc.frac, got, tc.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tc := range tests {
		if got := FormatCount(tc.n); got != tc.want {
			t.Fatalf("FormatCount(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
