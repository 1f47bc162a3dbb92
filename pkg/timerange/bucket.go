package timerange

import (
	"fmt"
	"time"
)

// Bucket is a chart aggregation granularity. The wire value matches the
// analytics API's time_bucket field.
type Bucket string

const (
	BucketHour Bucket = "hour"
	BucketDay  Bucket = "day"
	BucketWeek Bucket = "week"
)

const (
	hourMs = 3600000
	dayMs  = 86400000
	weekMs = 604800000
)

func (b Bucket) Valid() bool {
	return b == BucketHour || b == BucketDay || b == BucketWeek
}

// SizeMs returns the bucket width in milliseconds.
func (b Bucket) SizeMs() int64 {
	switch b {
	case BucketHour:
		return hourMs
	case BucketDay:
		return dayMs
	case BucketWeek:
		return weekMs
	default:
		panic(fmt.Sprintf("timerange: unknown bucket %q", b))
	}
}

// TruncateMs rounds an epoch-milliseconds timestamp down to its bucket
// boundary by integer division, matching how the analytics store groups rows.
func (b Bucket) TruncateMs(ts int64) int64 {
	size := b.SizeMs()
	return ts / size * size
}

// Next advances t by one natural stride: an hour, a calendar day, or a week.
func (b Bucket) Next(t time.Time) time.Time {
	switch b {
	case BucketHour:
		return t.Add(time.Hour)
	case BucketDay:
		return t.AddDate(0, 0, 1)
	case BucketWeek:
		return t.AddDate(0, 0, 7)
	default:
		panic(fmt.Sprintf("timerange: unknown bucket %q", b))
	}
}

// Align rounds t down to the bucket's natural boundary. Week buckets align
// to the start of the week (Monday) so domain walks land on week starts.
func (b Bucket) Align(t time.Time) time.Time {
	switch b {
	case BucketHour:
		return t.Truncate(time.Hour)
	case BucketDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case BucketWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	default:
		panic(fmt.Sprintf("timerange: unknown bucket %q", b))
	}
}

const (
	autoHourMax = 48 * time.Hour
	autoDayMax  = 28 * 24 * time.Hour
)

// AutoBucket maps a resolved range to a granularity that keeps charts at
// roughly 20-50 plotted points, plus a rationale string for debugging and
// telemetry. Unbounded ranges default to day buckets.
func AutoBucket(r Range) (Bucket, string) {
	span, bounded := r.Span()
	if !bounded {
		return BucketDay, "range is unbounded, defaulting to day buckets"
	}
	switch {
	case span <= autoHourMax:
		return BucketHour, fmt.Sprintf("range spans %s (<=48h), using hour buckets", span)
	case span <= autoDayMax:
		return BucketDay, fmt.Sprintf("range spans %s (<=28d), using day buckets", span)
	default:
		return BucketWeek, fmt.Sprintf("range spans %s (>28d), using week buckets", span)
	}
}
