package evaluator

// Strength levels by hand category. Every component that talks about "hand
// strength" derives it through ScoreToStrength; nothing else invents its own
// scale, so AI thresholds and event payloads always agree.
const (
	StrengthStraightFlush = 0.95
	StrengthFourOfAKind   = 0.90
	StrengthFullHouse     = 0.85
	StrengthFlush         = 0.75
	StrengthStraight      = 0.65
	StrengthThreeOfAKind  = 0.55
	StrengthTwoPair       = 0.45
	StrengthOnePair       = 0.25
	StrengthHighCard      = 0.05
)

// ScoreToStrength maps a score onto the canonical 0..1 strength scale,
// piecewise by category boundary. Total and monotonic-nonincreasing:
// a lower (better) score never yields a lower strength.
func ScoreToStrength(score int) float64 {
	switch {
	case score <= 10:
		return StrengthStraightFlush
	case score <= 166:
		return StrengthFourOfAKind
	case score <= 322:
		return StrengthFullHouse
	case score <= 1599:
		return StrengthFlush
	case score <= 1609:
		return StrengthStraight
	case score <= 2467:
		return StrengthThreeOfAKind
	case score <= 3325:
		return StrengthTwoPair
	case score <= 6185:
		return StrengthOnePair
	default:
		return StrengthHighCard
	}
}
