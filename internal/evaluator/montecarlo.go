package evaluator

import (
	"fmt"
	rand "math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/randutil"
)

// MonteCarloSamples is the number of random board completions averaged when
// scoring an incomplete board.
const MonteCarloSamples = 100

// CardSet represents a set of cards as a bitset for fast membership checks.
// Each card maps to a bit: index = (rank-2)*4 + suit.
type CardSet uint64

func cardBit(card deck.Card) int {
	return (int(card.Rank)-int(deck.Two))*4 + int(card.Suit)
}

// Add adds a card to the set.
func (cs *CardSet) Add(card deck.Card) {
	*cs |= 1 << cardBit(card)
}

// Contains checks if a card is in the set.
func (cs CardSet) Contains(card deck.Card) bool {
	return cs&(1<<cardBit(card)) != 0
}

// NewCardSet creates a CardSet from a slice of cards.
func NewCardSet(cards []deck.Card) CardSet {
	var cs CardSet
	for _, card := range cards {
		cs.Add(card)
	}
	return cs
}

// unseenCards returns every card not in used, in deck order.
func unseenCards(used CardSet) []deck.Card {
	out := make([]deck.Card, 0, 52)
	for suit := deck.Spades; suit <= deck.Clubs; suit++ {
		for rank := deck.Two; rank <= deck.Ace; rank++ {
			card := deck.Card{Rank: rank, Suit: suit}
			if !used.Contains(card) {
				out = append(out, card)
			}
		}
	}
	return out
}

// sampleAverageScore averages the exact seven-card score over
// MonteCarloSamples random completions of the board, drawn from the cards
// the evaluator has not seen.
func (e *Evaluator) sampleAverageScore(hole, board []deck.Card, rng *rand.Rand) (int, error) {
	if rng == nil {
		rng = randutil.Auto()
	}

	used := NewCardSet(hole)
	for _, c := range board {
		used.Add(c)
	}
	unseen := unseenCards(used)

	need := 5 - len(board)
	if len(unseen) < need {
		return 0, fmt.Errorf("not enough unseen cards to complete the board")
	}

	full := make([]deck.Card, 5)
	copy(full, board)

	total := 0
	for i := 0; i < MonteCarloSamples; i++ {
		// Partial Fisher-Yates: draw into the tail so earlier draws this
		// sample cannot repeat.
		for f := 0; f < need; f++ {
			idx := rng.IntN(len(unseen) - f)
			last := len(unseen) - 1 - f
			unseen[idx], unseen[last] = unseen[last], unseen[idx]
			full[len(board)+f] = unseen[last]
		}
		total += int(e.scoreSeven(hole, full))
	}

	return total / MonteCarloSamples, nil
}

// WinEstimate is the result of a Monte Carlo win-probability run.
type WinEstimate struct {
	WinProbability float64
	Samples        int
	Categories     map[string]int
}

// EstimateWinProbability estimates the hero's expected pot share against the
// given number of opponents holding random cards, by parallel Monte Carlo
// over board completions and opponent holes. Ties split evenly.
func EstimateWinProbability(hole, board []deck.Card, opponents, samples int, rng *rand.Rand) (WinEstimate, error) {
	if len(hole) != 2 {
		return WinEstimate{}, fmt.Errorf("need exactly 2 hole cards, got %d", len(hole))
	}
	if len(board) > 5 {
		return WinEstimate{}, fmt.Errorf("board cannot exceed 5 cards, got %d", len(board))
	}
	if opponents < 1 || opponents > 9 {
		return WinEstimate{}, fmt.Errorf("opponents must be 1-9, got %d", opponents)
	}
	if samples < 1 {
		return WinEstimate{}, fmt.Errorf("samples must be positive, got %d", samples)
	}
	if rng == nil {
		rng = randutil.Auto()
	}

	used := NewCardSet(hole)
	for _, c := range board {
		used.Add(c)
	}
	unseen := unseenCards(used)
	if len(unseen) < (5-len(board))+2*opponents {
		return WinEstimate{}, fmt.Errorf("not enough unseen cards for %d opponents", opponents)
	}

	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if samples < 256 {
		workers = 1
	}

	results := make([]winWorkerResult, workers)
	var g errgroup.Group

	per := samples / workers
	rem := samples % workers
	for w := 0; w < workers; w++ {
		n := per
		if w < rem {
			n++
		}
		seed := rng.Int64()
		g.Go(func() error {
			wrng := randutil.New(seed)
			cards := append([]deck.Card(nil), unseen...)
			results[w] = runWinWorker(hole, board, cards, opponents, n, wrng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WinEstimate{}, err
	}

	est := WinEstimate{Categories: make(map[string]int)}
	var share float64
	for _, r := range results {
		share += r.share
		est.Samples += r.samples
		for k, v := range r.categories {
			est.Categories[k] += v
		}
	}
	if est.Samples > 0 {
		est.WinProbability = share / float64(est.Samples)
	}
	return est, nil
}

type winWorkerResult struct {
	share      float64
	samples    int
	categories map[string]int
}

func runWinWorker(hole, board, unseen []deck.Card, opponents, samples int, rng *rand.Rand) winWorkerResult {
	res := winWorkerResult{categories: make(map[string]int)}

	need := 5 - len(board)
	full := make([]deck.Card, 5)
	copy(full, board)
	oppHole := make([]deck.Card, 2)

	eval := New()

	for i := 0; i < samples; i++ {
		drawn := 0
		draw := func() deck.Card {
			idx := rng.IntN(len(unseen) - drawn)
			last := len(unseen) - 1 - drawn
			unseen[idx], unseen[last] = unseen[last], unseen[idx]
			drawn++
			return unseen[last]
		}

		for f := 0; f < need; f++ {
			full[len(board)+f] = draw()
		}

		heroScore := eval.scoreSeven(hole, full)
		res.categories[Category(int(heroScore))]++

		beaten := false
		tied := 0
		for o := 0; o < opponents; o++ {
			oppHole[0] = draw()
			oppHole[1] = draw()
			oppScore := eval.scoreSeven(oppHole, full)
			if oppScore < heroScore {
				beaten = true
				break
			}
			if oppScore == heroScore {
				tied++
			}
		}

		if !beaten {
			res.share += 1.0 / float64(tied+1)
		}
		res.samples++
	}

	return res
}
