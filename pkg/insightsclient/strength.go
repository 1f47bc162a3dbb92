package insightsclient

// Correlation strength labels derived from an NPMI score.
const (
	StrengthStrong   = "strong"
	StrengthModerate = "moderate"
	StrengthWeak     = "weak"
	StrengthNone     = "none"
	StrengthNegative = "negative"
)

// Strength classifies an NPMI score into one of five ordered labels.
// Cutoffs are inclusive on the positive side; anything at or below zero is
// negative.
func Strength(npmi float64) string {
	switch {
	case npmi >= 0.7:
		return StrengthStrong
	case npmi >= 0.3:
		return StrengthModerate
	case npmi >= 0.1:
		return StrengthWeak
	case npmi > 0:
		return StrengthNone
	default:
		return StrengthNegative
	}
}
