package timerange

import (
	"net/url"
	"testing"
	"time"
)

var testNow = time.Date(2025, 8, 20, 15, 4, 5, 0, time.UTC)

func TestResolveDeterministic(t *testing.T) {
	for _, tok := range Tokens {
		if tok == TokenCustom {
			continue
		}
		sel := Selection{Token: tok, Now: testNow}
		first := sel.Resolve()
		second := sel.Resolve()
		if !first.End.Equal(second.End) {
			t.Fatalf("%s: end drifted between resolutions: %v vs %v", tok, first.End, second.End)
		}
		if (first.Start == nil) != (second.Start == nil) {
			t.Fatalf("%s: start boundedness changed between resolutions", tok)
		}
		if first.Start != nil && !first.Start.Equal(*second.Start) {
			t.Fatalf("%s: start drifted between resolutions: %v vs %v", tok, *first.Start, *second.Start)
		}
	}
}

func TestResolveOffsets(t *testing.T) {
	tests := []struct {
		token Token
		want  time.Time
	}{
		{TokenLastHour, testNow.Add(-time.Hour)},
		{TokenLast24Hours, testNow.AddDate(0, 0, -1)},
		{TokenLast7Days, testNow.AddDate(0, 0, -7)},
		{TokenLast30Days, testNow.AddDate(0, 0, -30)},
		{TokenLastYear, testNow.AddDate(-1, 0, 0)},
	}
	for _, tc := range tests {
		r := Selection{Token: tc.token, Now: testNow}.Resolve()
		if r.Start == nil {
			t.Fatalf("%s: expected bounded start", tc.token)
		}
		if !r.Start.Equal(tc.want) {
			t.Fatalf("%s: start = %v, want %v", tc.token, *r.Start, tc.want)
		}
		if !r.End.Equal(testNow) {
			t.Fatalf("%s: end = %v, want pinned now", tc.token, r.End)
		}
	}
}

func TestResolveAllTimeUnbounded(t *testing.T) {
	r := Selection{Token: TokenAllTime, Now: testNow}.Resolve()
	if r.Start != nil {
		t.Fatalf("ALL_TIME start should be nil, got %v", *r.Start)
	}
	if !r.End.Equal(testNow) {
		t.Fatalf("ALL_TIME end = %v, want %v", r.End, testNow)
	}
	if ms := r.StartMs(); ms != nil {
		t.Fatalf("ALL_TIME StartMs should be nil, got %d", *ms)
	}
}

func TestResolveCustomReadsExplicitBounds(t *testing.T) {
	start := testNow.AddDate(0, 0, -3)
	end := testNow.AddDate(0, 0, -1)
	r := Selection{Token: TokenCustom, Now: testNow, CustomStart: start, CustomEnd: end}.Resolve()
	if r.Start == nil || !r.Start.Equal(start) {
		t.Fatalf("custom start not carried through: %v", r.Start)
	}
	if !r.End.Equal(end) {
		t.Fatalf("custom end = %v, want %v", r.End, end)
	}
}

func TestResolveCustomSwapsInvertedBounds(t *testing.T) {
	start := testNow.AddDate(0, 0, -3)
	end := testNow.AddDate(0, 0, -1)
	r := Selection{Token: TokenCustom, Now: testNow, CustomStart: end, CustomEnd: start}.Resolve()
	if r.Start == nil || !r.Start.Equal(start) {
		t.Fatalf("inverted bounds not swapped: start = %v", r.Start)
	}
	if !r.End.Equal(end) {
		t.Fatalf("inverted bounds not swapped: end = %v", r.End)
	}
	if r.End.Before(*r.Start) {
		t.Fatal("resolved range has start after end")
	}
}

func TestResolveUnknownTokenPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown token")
		}
	}()
	Selection{Token: Token("LAST_FORTNIGHT"), Now: testNow}.Resolve()
}

func TestAutoBucketBoundaries(t *testing.T) {
	tests := []struct {
		span time.Duration
		want Bucket
	}{
		{47 * time.Hour, BucketHour},
		{48 * time.Hour, BucketHour},
		{49 * time.Hour, BucketDay},
		{28 * 24 * time.Hour, BucketDay},
		{29 * 24 * time.Hour, BucketWeek},
		{400 * 24 * time.Hour, BucketWeek},
	}
	for _, tc := range tests {
		start := testNow.Add(-tc.span)
		got, rationale := AutoBucket(Range{Start: &start, End: testNow})
		if got != tc.want {
			t.Fatalf("span %v: bucket = %s, want %s (%s)", tc.span, got, tc.want, rationale)
		}
		if rationale == "" {
			t.Fatalf("span %v: empty rationale", tc.span)
		}
	}
}

func TestAutoBucketUnbounded(t *testing.T) {
	got, rationale := AutoBucket(Range{End: testNow})
	if got != BucketDay {
		t.Fatalf("unbounded range bucket = %s, want day", got)
	}
	if rationale == "" {
		t.Fatal("unbounded range: empty rationale")
	}
}

func TestBucketTruncateMs(t *testing.T) {
	ts := testNow.UnixMilli()
	if got := BucketHour.TruncateMs(ts); got%3600000 != 0 || got > ts || ts-got >= 3600000 {
		t.Fatalf("hour truncation out of bucket: %d for %d", got, ts)
	}
	if got := BucketDay.TruncateMs(ts); got%86400000 != 0 {
		t.Fatalf("day truncation not on boundary: %d", got)
	}
	if got := BucketWeek.TruncateMs(ts); got%604800000 != 0 {
		t.Fatalf("week truncation not on boundary: %d", got)
	}
}

func TestBucketAlignWeekStartsMonday(t *testing.T) {
	// 2025-08-20 is a Wednesday.
	aligned := BucketWeek.Align(testNow)
	if aligned.Weekday() != time.Monday {
		t.Fatalf("week alignment landed on %s, want Monday", aligned.Weekday())
	}
	if aligned.Hour() != 0 || aligned.Minute() != 0 {
		t.Fatalf("week alignment kept time of day: %v", aligned)
	}
}

func TestURLStateRoundTrip(t *testing.T) {
	sel := Selection{Token: TokenLast7Days, Now: testNow}
	v := url.Values{}
	sel.EncodeValues(v)

	parsed, err := ParseValues(v, TokenLast24Hours, time.Now())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Token != TokenLast7Days {
		t.Fatalf("token = %s, want LAST_7_DAYS", parsed.Token)
	}
	if !parsed.Now.Equal(testNow) {
		t.Fatalf("pinned now drifted through URL: %v", parsed.Now)
	}
	if v.Get("start") != "" || v.Get("end") != "" {
		t.Fatal("non-custom selection should not persist explicit bounds")
	}
}

func TestURLStateCustomRange(t *testing.T) {
	sel := Selection{
		Token:       TokenCustom,
		Now:         testNow,
		CustomStart: testNow.AddDate(0, 0, -5),
		CustomEnd:   testNow,
	}
	v := url.Values{}
	sel.EncodeValues(v)

	parsed, err := ParseValues(v, TokenLast24Hours, time.Now())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.CustomStart.Equal(sel.CustomStart) || !parsed.CustomEnd.Equal(sel.CustomEnd) {
		t.Fatalf("custom bounds did not round-trip: %+v", parsed)
	}
}

func TestParseValuesRejectsBadToken(t *testing.T) {
	v := url.Values{}
	v.Set("range", "LAST_CENTURY")
	if _, err := ParseValues(v, TokenLast24Hours, testNow); err == nil {
		t.Fatal("expected error for unknown token in URL")
	}
}

func TestParseValuesRejectsInvertedCustomRange(t *testing.T) {
	v := url.Values{}
	v.Set("range", string(TokenCustom))
	v.Set("now", testNow.Format(time.RFC3339))
	v.Set("start", testNow.Format(time.RFC3339))
	v.Set("end", testNow.AddDate(0, 0, -1).Format(time.RFC3339))
	if _, err := ParseValues(v, TokenLast24Hours, testNow); err == nil {
		t.Fatal("expected error for start after end")
	}
}
