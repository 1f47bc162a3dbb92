package insights

import (
	"math"
	"testing"
)

func TestNPMIPerfectCoOccurrence(t *testing.T) {
	// both events always happen together
	if got := NPMI(100, 100, 100, 100); got != 1 {
		t.Fatalf("NPMI = %v, want 1", got)
	}
}

func TestNPMINeverCoOccur(t *testing.T) {
	if got := NPMI(0, 40, 60, 100); got != -1 {
		t.Fatalf("NPMI = %v, want -1", got)
	}
}

func TestNPMIIndependence(t *testing.T) {
	// p_joint == p1 * p2 exactly: 0.25 = 0.5 * 0.5
	if got := NPMI(25, 50, 50, 100); math.Abs(got) > 1e-9 {
		t.Fatalf("independent events should score ~0, got %v", got)
	}
}

func TestNPMIPositiveAssociation(t *testing.T) {
	// joint higher than independence predicts
	got := NPMI(40, 50, 50, 100)
	if got <= 0 || got >= 1 {
		t.Fatalf("expected score in (0,1), got %v", got)
	}
	want := math.Log(0.4/(0.5*0.5)) / -math.Log(0.4)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("NPMI = %v, want %v", got, want)
	}
}

func TestNPMIDegenerateCounts(t *testing.T) {
	if got := NPMI(0, 0, 10, 100); got != 0 {
		t.Fatalf("zero count1 should yield 0, got %v", got)
	}
	if got := NPMI(0, 10, 0, 100); got != 0 {
		t.Fatalf("zero count2 should yield 0, got %v", got)
	}
	if got := NPMI(0, 0, 0, 0); got != 0 {
		t.Fatalf("zero total should yield 0, got %v", got)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in        string
		dimension string
		value     string
	}{
		{"status:ERROR", "trace.status", "ERROR"},
		{"has_error:true", "trace.has_error", "true"},
		{"tag.model:gpt-4o", "tag.model", "gpt-4o"},
		{"trace.status:OK", "trace.status", "OK"},
		{"tag.note:a:b", "tag.note", "a:b"},
	}
	for _, tc := range tests {
		f, err := ParseFilter(tc.in)
		if err != nil {
			t.Fatalf("ParseFilter(%q) error: %v", tc.in, err)
		}
		if f.Dimension != tc.dimension || f.Value != tc.value {
			t.Fatalf("ParseFilter(%q) = %+v, want %s=%s", tc.in, f, tc.dimension, tc.value)
		}
	}
}

func TestParseFilterRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "status", "status:", ":ERROR", "bogus:1"} {
		if _, err := ParseFilter(in); err == nil {
			t.Fatalf("ParseFilter(%q) should fail", in)
		}
	}
}

func TestRankCorrelationsDropsNeverCoOccurring(t *testing.T) {
	// "eu" never appears in the slice; it would score -1 and outrank the
	// genuinely correlated "llama" if it were kept
	candidates := []candidate{
		{dimension: "tag.model", value: "llama", count: 50, joint: 40},
		{dimension: "tag.region", value: "eu", count: 10, joint: 0},
	}
	items := rankCorrelations(candidates, 50, 100, 10)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Value != "llama" {
		t.Fatalf("top item = %q, want llama", items[0].Value)
	}
}

func TestRankCorrelationsCountsAreCoOccurrence(t *testing.T) {
	candidates := []candidate{
		{dimension: "tag.model", value: "llama", count: 50, joint: 20},
	}
	items := rankCorrelations(candidates, 40, 200, 10)
	if got := items[0].TraceCount; got != 20 {
		t.Fatalf("TraceCount = %d, want the co-occurrence count 20", got)
	}
	if got := items[0].PercentageOfSlice; got != 0.5 {
		t.Fatalf("PercentageOfSlice = %v, want 0.5", got)
	}
	if got := items[0].PercentageOfTotal; got != 0.1 {
		t.Fatalf("PercentageOfTotal = %v, want 0.1", got)
	}
}

func TestRankCorrelationsSortsByAbsoluteNPMI(t *testing.T) {
	// free is ~independent of the slice, llama strongly positive,
	// us strongly negative
	candidates := []candidate{
		{dimension: "tag.tier", value: "free", count: 50, joint: 25},
		{dimension: "tag.model", value: "llama", count: 50, joint: 45},
		{dimension: "tag.region", value: "us", count: 50, joint: 5},
	}
	items := rankCorrelations(candidates, 50, 100, 2)
	if len(items) != 2 {
		t.Fatalf("got %d items, want limit 2", len(items))
	}
	if items[0].Value != "llama" {
		t.Fatalf("first = %q, want llama", items[0].Value)
	}
	if items[1].Value != "us" {
		t.Fatalf("second = %q, want us", items[1].Value)
	}
	if math.Abs(items[0].NPMI) < math.Abs(items[1].NPMI) {
		t.Fatalf("items not sorted by |NPMI|: %v then %v", items[0].NPMI, items[1].NPMI)
	}
}
