// Package evaluator scores Texas Hold'em hands in the canonical 7462-rank
// space: 1 is a royal flush, 7462 is 7-5-4-3-2 high card, and every
// distinct five-card hand class gets its own score, so comparisons are
// kicker-exact. Lower is better.
package evaluator

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/holdem-live/internal/deck"
)

// Score represents the strength of a poker hand (lower is better).
type Score int

// Category base scores. Each category occupies a contiguous block; the
// block sizes are the counts of distinct five-card hand classes.
const (
	scoreStraightFlush = 1    // 10 classes
	scoreFourOfAKind   = 11   // 156
	scoreFullHouse     = 167  // 156
	scoreFlush         = 323  // 1277
	scoreStraight      = 1600 // 10
	scoreThreeOfAKind  = 1610 // 858
	scoreTwoPair       = 2468 // 858
	scoreOnePair       = 3326 // 2860
	scoreHighCard      = 6186 // 1277

	// WorstScore is the weakest possible hand (7-5-4-3-2 unsuited).
	WorstScore = 7462
)

// String returns the category name of the score.
func (s Score) String() string {
	return Category(int(s))
}

// Compare returns 1 if s is the better hand, -1 if other is, 0 on a tie.
func (s Score) Compare(other Score) int {
	if s < other {
		return 1
	}
	if s > other {
		return -1
	}
	return 0
}

// Category names the hand class a score falls in.
func Category(score int) string {
	switch {
	case score <= 1:
		return "Royal Flush"
	case score <= 10:
		return "Straight Flush"
	case score <= 166:
		return "Four of a Kind"
	case score <= 322:
		return "Full House"
	case score <= 1599:
		return "Flush"
	case score <= 1609:
		return "Straight"
	case score <= 2467:
		return "Three of a Kind"
	case score <= 3325:
		return "Two Pair"
	case score <= 6185:
		return "One Pair"
	default:
		return "High Card"
	}
}

// Evaluator provides poker hand evaluation.
type Evaluator struct{}

// New creates a new evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

// Evaluate scores two hole cards against the board. With a complete board
// the score is exact; with fewer than five community cards it is the average
// over MonteCarloSamples random completions drawn from the unseen cards,
// which is what the AI layer keys its strength reads off before the river.
func (e *Evaluator) Evaluate(hole, board []deck.Card, rng *rand.Rand) (int, string, error) {
	if len(hole) != 2 {
		return 0, "", fmt.Errorf("evaluate needs exactly 2 hole cards, got %d", len(hole))
	}
	if len(board) > 5 {
		return 0, "", fmt.Errorf("board cannot exceed 5 cards, got %d", len(board))
	}

	if len(board) == 5 {
		score := e.scoreSeven(hole, board)
		return int(score), Category(int(score)), nil
	}

	avg, err := e.sampleAverageScore(hole, board, rng)
	if err != nil {
		return 0, "", err
	}
	return avg, Category(avg), nil
}

// EvaluateFinal scores a hand against a complete five-card board. The pot
// resolver uses this at showdown, where scores must be exact.
func (e *Evaluator) EvaluateFinal(hole, board []deck.Card) (Score, error) {
	if len(hole) != 2 {
		return WorstScore, fmt.Errorf("evaluate needs exactly 2 hole cards, got %d", len(hole))
	}
	if len(board) != 5 {
		return WorstScore, fmt.Errorf("showdown board must have 5 cards, got %d", len(board))
	}
	return e.scoreSeven(hole, board), nil
}

func (e *Evaluator) scoreSeven(hole, board []deck.Card) Score {
	var cards [7]deck.Card
	copy(cards[:2], hole)
	copy(cards[2:], board)
	return evaluate7(cards)
}

// evaluate7 returns the best five-card score among the 21 subsets.
func evaluate7(cards [7]deck.Card) Score {
	best := Score(WorstScore)
	var five [5]deck.Card
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 7; j++ {
			n := 0
			for k := 0; k < 7; k++ {
				if k != i && k != j {
					five[n] = cards[k]
					n++
				}
			}
			if s := evaluate5(five); s < best {
				best = s
			}
		}
	}
	return best
}

// evaluate5 classifies a five-card hand and computes its exact ordinal
// within the category. Within-category ordering is descending-lexicographic
// on the defining ranks (primary group first, then kickers), which is the
// standard ordering for this score space.
func evaluate5(c [5]deck.Card) Score {
	var counts [15]int
	for _, card := range c {
		counts[card.Rank]++
	}

	flush := c[0].Suit == c[1].Suit && c[1].Suit == c[2].Suit &&
		c[2].Suit == c[3].Suit && c[3].Suit == c[4].Suit

	var quad, trip int
	var pairs, singles []int
	distinct := 0
	for r := 14; r >= 2; r-- {
		switch counts[r] {
		case 0:
			continue
		case 1:
			singles = append(singles, r)
		case 2:
			pairs = append(pairs, r)
		case 3:
			trip = r
		case 4:
			quad = r
		}
		distinct++
	}

	straightTop := 0
	if distinct == 5 {
		hi, lo := singles[0], singles[4]
		switch {
		case hi-lo == 4:
			straightTop = hi
		case hi == 14 && singles[1] == 5:
			// the wheel: A-5-4-3-2 plays as a five-high straight
			straightTop = 5
		}
	}

	switch {
	case flush && straightTop != 0:
		return Score(scoreStraightFlush + (14 - straightTop))

	case quad != 0:
		return Score(scoreFourOfAKind + (14-quad)*12 + rankIndex(singles[0], quad))

	case trip != 0 && len(pairs) == 1:
		return Score(scoreFullHouse + (14-trip)*12 + rankIndex(pairs[0], trip))

	case flush:
		return Score(scoreFlush + fiveRankIndex(singles))

	case straightTop != 0:
		return Score(scoreStraight + (14 - straightTop))

	case trip != 0:
		kickers := []int{rankIndex(singles[0], trip), rankIndex(singles[1], trip)}
		return Score(scoreThreeOfAKind + (14-trip)*66 + combIndex(kickers, 12))

	case len(pairs) == 2:
		hi, lo := pairs[0], pairs[1]
		pairIdx := combIndex([]int{14 - hi, 14 - lo}, 13)
		return Score(scoreTwoPair + pairIdx*11 + rankIndex(singles[0], hi, lo))

	case len(pairs) == 1:
		p := pairs[0]
		kickers := []int{
			rankIndex(singles[0], p),
			rankIndex(singles[1], p),
			rankIndex(singles[2], p),
		}
		return Score(scoreOnePair + (14-p)*220 + combIndex(kickers, 12))

	default:
		return Score(scoreHighCard + fiveRankIndex(singles))
	}
}

// rankIndex returns the position of rank r counting down from Ace with the
// excluded ranks removed (0 = highest remaining rank).
func rankIndex(r int, excluded ...int) int {
	idx := 0
	for v := 14; v > r; v-- {
		skip := false
		for _, e := range excluded {
			if v == e {
				skip = true
				break
			}
		}
		if !skip {
			idx++
		}
	}
	return idx
}

// fiveRankIndex orders a five-rank set (descending ranks, no duplicates)
// among all non-straight five-rank sets. Used for flushes and high cards,
// whose kickers all matter.
func fiveRankIndex(ranksDesc []int) int {
	ds := make([]int, 5)
	for i, r := range ranksDesc {
		ds[i] = 14 - r
	}
	idx := combIndex(ds, 13)
	before := 0
	for _, s := range straightSetIndexes {
		if s < idx {
			before++
		}
	}
	return idx - before
}

// combIndex returns the lexicographic position of the combination els
// (ascending, drawn from {0..n-1}) among all C(n, len(els)) combinations.
func combIndex(els []int, n int) int {
	idx := 0
	prev := -1
	k := len(els)
	for i, e := range els {
		for j := prev + 1; j < e; j++ {
			idx += choose(n-1-j, k-i-1)
		}
		prev = e
	}
	return idx
}

var chooseTable [14][6]int

// straightSetIndexes holds the combIndex of each straight's rank set so
// fiveRankIndex can skip over them.
var straightSetIndexes [10]int

func init() {
	for n := 0; n < 14; n++ {
		chooseTable[n][0] = 1
		for k := 1; k < 6; k++ {
			if k > n {
				chooseTable[n][k] = 0
				continue
			}
			chooseTable[n][k] = chooseTable[n-1][k-1] + chooseTable[n-1][k]
		}
	}

	// Ace-high down to six-high straights, then the wheel.
	for i := 0; i < 9; i++ {
		ds := []int{i, i + 1, i + 2, i + 3, i + 4}
		straightSetIndexes[i] = combIndex(ds, 13)
	}
	straightSetIndexes[9] = combIndex([]int{0, 9, 10, 11, 12}, 13)
}

func choose(n, k int) int {
	if n < 0 || k < 0 || k > n {
		return 0
	}
	return chooseTable[n][k]
}
