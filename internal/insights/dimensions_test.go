package insights

import "testing"

func TestInferDataType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"booleans", []string{"true", "false", "True"}, dataTypeBoolean},
		{"numbers", []string{"1", "2.5", "-3"}, dataTypeNumeric},
		{"strings", []string{"gpt-4o", "claude"}, dataTypeString},
		{"mixed", []string{"true", "7"}, dataTypeString},
		{"empty", nil, dataTypeString},
	}
	for _, tc := range tests {
		if got := inferDataType(tc.values); got != tc.want {
			t.Fatalf("%s: inferDataType = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestReservedTagsFiltered(t *testing.T) {
	if !isReservedTag("tracelens.source") {
		t.Fatal("system tags must be reserved")
	}
	if isReservedTag("model") || isReservedTag("user_tier") {
		t.Fatal("user tags must not be reserved")
	}
}

func TestParseBucket(t *testing.T) {
	for _, valid := range []string{"hour", "day", "week"} {
		if _, err := ParseBucket(valid); err != nil {
			t.Fatalf("ParseBucket(%q) error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "minute", "month", "HOUR"} {
		if _, err := ParseBucket(invalid); err == nil {
			t.Fatalf("ParseBucket(%q) should fail", invalid)
		}
	}
}

func TestTopValueCounts(t *testing.T) {
	counts := map[string]int64{"a": 5, "b": 3, "c": 3, "d": 1}
	got := topValueCounts(counts, 12, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 values, got %d", len(got))
	}
	if got[0].Value != "a" || got[1].Value != "b" || got[2].Value != "c" {
		t.Fatalf("wrong ranking: %+v", got)
	}
	if !almostEqual(got[0].Percentage, 5.0/12.0) {
		t.Fatalf("percentage = %v", got[0].Percentage)
	}
}
