package chart

import (
	"fmt"
	"time"

	"tracelens/pkg/timerange"
)

// Tick is one axis position with its display label. Thinned-out ticks keep
// their position but carry an empty label.
type Tick struct {
	Time  time.Time
	Label string
}

// TickSet is the shaped axis: parallel positions/labels plus a rotation hint
// for dense or long labels.
type TickSet struct {
	Ticks  []Tick
	Rotate bool
}

const (
	rotateLabelLen   = 10
	rotateLabelCount = 10
)

// TimeTicks builds axis ticks from actual data point times. Positions mirror
// the input; labels are formatted per bucket granularity and thinned so the
// axis stays readable.
func TimeTicks(bucket timerange.Bucket, times []time.Time, now time.Time) TickSet {
	if len(times) == 0 {
		return TickSet{}
	}
	spanDays := spanInDays(times[0], times[len(times)-1])
	multiDay := !sameCalendarDay(times[0], times[len(times)-1])

	ticks := make([]Tick, len(times))
	step := labelStep(len(times))
	for i, t := range times {
		ticks[i].Time = t
		if i%step == 0 || i == len(times)-1 {
			ticks[i].Label = formatTickLabel(bucket, t, spanDays, multiDay, now)
		}
	}
	return TickSet{Ticks: ticks, Rotate: shouldRotate(ticks)}
}

// DomainTicks builds ticks for an explicit [start, end] domain so an axis
// still renders when there are zero data points. The domain is walked at the
// bucket's natural stride; week walks are aligned to the week start.
func DomainTicks(bucket timerange.Bucket, start, end time.Time, now time.Time) TickSet {
	if end.Before(start) {
		return TickSet{}
	}
	var times []time.Time
	for t := bucket.Align(start); !t.After(end); t = bucket.Next(t) {
		times = append(times, t)
	}
	return TimeTicks(bucket, times, now)
}

// labelStep is the fixed thinning table: every point up to 7, every 2nd up
// to 14, every 3rd up to 21, every 4th up to 30, otherwise roughly 10 evenly
// spaced labels.
func labelStep(n int) int {
	switch {
	case n <= 7:
		return 1
	case n <= 14:
		return 2
	case n <= 21:
		return 3
	case n <= 30:
		return 4
	default:
		return (n + 9) / 10
	}
}

func shouldRotate(ticks []Tick) bool {
	labeled := 0
	for _, t := range ticks {
		if t.Label == "" {
			continue
		}
		labeled++
		if len(t.Label) > rotateLabelLen {
			return true
		}
	}
	return labeled > rotateLabelCount
}

func formatTickLabel(bucket timerange.Bucket, t time.Time, spanDays int, multiDay bool, now time.Time) string {
	switch bucket {
	case timerange.BucketHour:
		if multiDay {
			return fmt.Sprintf("%s (%d/%d)", t.Format("3 PM"), int(t.Month()), t.Day())
		}
		return t.Format("3 PM")
	case timerange.BucketDay:
		switch {
		case spanDays <= 7:
			return fmt.Sprintf("%s %d/%d", t.Format("Mon"), int(t.Month()), t.Day())
		case spanDays <= 90:
			return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
		default:
			if t.Year() != now.Year() {
				return fmt.Sprintf("%d/%d/%02d", int(t.Month()), t.Day(), t.Year()%100)
			}
			return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
		}
	case timerange.BucketWeek:
		if spanDays <= 90 {
			weekEnd := t.AddDate(0, 0, 6)
			return fmt.Sprintf("%d/%d-%d/%d", int(t.Month()), t.Day(), int(weekEnd.Month()), weekEnd.Day())
		}
		return t.Format("Jan 2006")
	default:
		panic(fmt.Sprintf("chart: unknown bucket %q", bucket))
	}
}

func spanInDays(first, last time.Time) int {
	return int(last.Sub(first).Hours() / 24)
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
