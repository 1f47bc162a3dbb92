package insightsclient

import "testing"

func TestStrength(t *testing.T) {
	tests := []struct {
		npmi float64
		want string
	}{
		{0.8, StrengthStrong},
		{0.5, StrengthModerate},
		{0.2, StrengthWeak},
		{0.05, StrengthNone},
		{-0.2, StrengthNegative},
		// boundaries are inclusive
		{0.7, StrengthStrong},
		{0.3, StrengthModerate},
		{0.1, StrengthWeak},
		{0, StrengthNegative},
		{1.0, StrengthStrong},
		{-1.0, StrengthNegative},
	}
	for _, tc := range tests {
		if got := Strength(tc.npmi); got != tc.want {
			t.Fatalf("Strength(%v) = %q, want %q", tc.npmi, got, tc.want)
		}
	}
}
