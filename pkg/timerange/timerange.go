// Package timerange derives absolute time windows from symbolic range
// selections and picks chart bucket granularities for them.
package timerange

import (
	"fmt"
	"net/url"
	"time"
)

// Token is a symbolic time range selector drawn from a closed set.
type Token string

const (
	TokenLastHour   Token = "LAST_HOUR"
	TokenLast24Hours Token = "LAST_24_HOURS"
	TokenLast7Days  Token = "LAST_7_DAYS"
	TokenLast30Days Token = "LAST_30_DAYS"
	TokenLastYear   Token = "LAST_YEAR"
	TokenAllTime    Token = "ALL_TIME"
	TokenCustom     Token = "CUSTOM"
)

// Tokens lists every valid selector, in picker order.
var Tokens = []Token{
	TokenLastHour,
	TokenLast24Hours,
	TokenLast7Days,
	TokenLast30Days,
	TokenLastYear,
	TokenAllTime,
	TokenCustom,
}

func (t Token) Valid() bool {
	for _, v := range Tokens {
		if t == v {
			return true
		}
	}
	return false
}

// Selection is a user's time range choice. Now is pinned when the view is
// opened (or when the user presses refresh) and must not advance between
// resolutions, otherwise the window creeps forward across re-renders.
// CustomStart/CustomEnd are only meaningful for TokenCustom.
type Selection struct {
	Token       Token
	Now         time.Time
	CustomStart time.Time
	CustomEnd   time.Time
}

// Range is a resolved absolute window. A nil Start means the lower bound is
// unbounded (the ALL_TIME token).
type Range struct {
	Start *time.Time
	End   time.Time
}

// Resolve derives the absolute window for the selection. Offsets are
// calendar-aware: "last 30 days" subtracts 30 calendar days, which is not
// always 30*24h across DST transitions. An unrecognized token is a
// programming error and panics.
func (s Selection) Resolve() Range {
	switch s.Token {
	case TokenLastHour:
		start := s.Now.Add(-time.Hour)
		return Range{Start: &start, End: s.Now}
	case TokenLast24Hours:
		start := s.Now.AddDate(0, 0, -1)
		return Range{Start: &start, End: s.Now}
	case TokenLast7Days:
		start := s.Now.AddDate(0, 0, -7)
		return Range{Start: &start, End: s.Now}
	case TokenLast30Days:
		start := s.Now.AddDate(0, 0, -30)
		return Range{Start: &start, End: s.Now}
	case TokenLastYear:
		start := s.Now.AddDate(-1, 0, 0)
		return Range{Start: &start, End: s.Now}
	case TokenAllTime:
		return Range{Start: nil, End: s.Now}
	case TokenCustom:
		start, end := s.CustomStart, s.CustomEnd
		// the resolved window always satisfies start <= end, even for a
		// programmatically built selection with inverted bounds
		if end.Before(start) {
			start, end = end, start
		}
		return Range{Start: &start, End: end}
	default:
		panic(fmt.Sprintf("timerange: unknown range token %q", s.Token))
	}
}

// StartMs returns the lower bound as epoch milliseconds, nil when unbounded.
func (r Range) StartMs() *int64 {
	if r.Start == nil {
		return nil
	}
	ms := r.Start.UnixMilli()
	return &ms
}

// EndMs returns the upper bound as epoch milliseconds.
func (r Range) EndMs() int64 {
	return r.End.UnixMilli()
}

// Span reports the window width and whether it is bounded.
func (r Range) Span() (time.Duration, bool) {
	if r.Start == nil {
		return 0, false
	}
	return r.End.Sub(*r.Start), true
}

// Query parameter names for navigable view state. A shared or reloaded URL
// carrying these reproduces the same view, including the pinned reference
// instant.
const (
	paramRange = "range"
	paramNow   = "now"
	paramStart = "start"
	paramEnd   = "end"
)

// EncodeValues writes the selection into query parameters. Explicit
// start/end are persisted only for the custom token; every other token
// derives them from the pinned reference instant.
func (s Selection) EncodeValues(v url.Values) {
	v.Set(paramRange, string(s.Token))
	v.Set(paramNow, s.Now.UTC().Format(time.RFC3339))
	if s.Token == TokenCustom {
		v.Set(paramStart, s.CustomStart.UTC().Format(time.RFC3339))
		v.Set(paramEnd, s.CustomEnd.UTC().Format(time.RFC3339))
	} else {
		v.Del(paramStart)
		v.Del(paramEnd)
	}
}

// ParseValues reads a selection back from query parameters. Unlike Resolve,
// a bad token here is external input, not a programming error, so it is
// reported instead of panicking. Missing parameters fall back to the given
// defaults.
func ParseValues(v url.Values, defaultToken Token, now time.Time) (Selection, error) {
	sel := Selection{Token: defaultToken, Now: now}

	if raw := v.Get(paramRange); raw != "" {
		tok := Token(raw)
		if !tok.Valid() {
			return Selection{}, fmt.Errorf("invalid range token %q", raw)
		}
		sel.Token = tok
	}
	if raw := v.Get(paramNow); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Selection{}, fmt.Errorf("invalid now instant: %w", err)
		}
		sel.Now = t
	}
	if sel.Token == TokenCustom {
		start, err := time.Parse(time.RFC3339, v.Get(paramStart))
		if err != nil {
			return Selection{}, fmt.Errorf("invalid custom start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, v.Get(paramEnd))
		if err != nil {
			return Selection{}, fmt.Errorf("invalid custom end: %w", err)
		}
		if end.Before(start) {
			return Selection{}, fmt.Errorf("custom range start %s after end %s", start, end)
		}
		sel.CustomStart = start
		sel.CustomEnd = end
	}
	return sel, nil
}
