package chart

import (
	"fmt"
	"strconv"
)

// FormatLatency renders a millisecond latency for display: whole
// milliseconds below one second, seconds with two decimals from there up.
func FormatLatency(ms float64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.2fs", ms/1000)
	}
	return fmt.Sprintf("%.0fms", ms)
}

// FormatPercentage renders a 0-1 fraction with one decimal and a % suffix.
// Exactly zero renders as "0%", and small positive values that would round
// to 0.0 render as "<0.1%" so they are not mistaken for true zero.
func FormatPercentage(frac float64) string {
	if frac == 0 {
		return "0%"
	}
	pct := frac * 100
	if pct > 0 && pct < 0.1 {
		return "<0.1%"
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
