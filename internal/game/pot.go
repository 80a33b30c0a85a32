package game

import (
	"fmt"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
)

// Pot is one layer of the resolved pot structure: its amount, the
// players eligible to win it and the winners chosen among them.
type Pot struct {
	Amount    int
	Eligible  []string
	WinnerIDs []string
}

// ResolvePots layers the hand's investments into a main pot and side
// pots and picks winners for each. Folded players' chips stay in the
// pots they contributed to; they are just never eligible to win.
//
// Investments are copied into a working map so player state is never
// mutated here: the engine still owns TotalInvested after resolution.
func ResolvePots(players []*Player, board []deck.Card, eval *evaluator.Evaluator) ([]Pot, error) {
	total := 0
	for _, p := range players {
		if p.TotalInvested < 0 {
			return nil, fmt.Errorf("%w: negative investment for %s", ErrInvariant, p.ID)
		}
		total += p.TotalInvested
	}

	// Contenders are players still in the hand: they either can still
	// act or are all-in waiting on the board.
	var contenders []*Player
	for _, p := range players {
		if p.Active || p.AllIn {
			contenders = append(contenders, p)
		}
	}

	if len(contenders) <= 1 {
		pot := Pot{Amount: total}
		if len(contenders) == 1 {
			pot.Eligible = []string{contenders[0].ID}
			pot.WinnerIDs = []string{contenders[0].ID}
		}
		return []Pot{pot}, nil
	}

	// Fast path: everyone still in put in the same amount, so there is
	// exactly one pot and one evaluation.
	equal := true
	for _, p := range contenders[1:] {
		if p.TotalInvested != contenders[0].TotalInvested {
			equal = false
			break
		}
	}
	if equal {
		winners, err := bestHands(contenders, board, eval)
		if err != nil {
			return nil, err
		}
		return []Pot{{
			Amount:    total,
			Eligible:  playerIDs(contenders),
			WinnerIDs: winners,
		}}, nil
	}

	// General side-pot layering. Peel the minimum positive remaining
	// investment off every contributor; the players still in who paid at
	// that level are eligible for the layer.
	remaining := make(map[string]int, len(players))
	for _, p := range players {
		remaining[p.ID] = p.TotalInvested
	}

	var pots []Pot
	for {
		level := 0
		for _, p := range players {
			if r := remaining[p.ID]; r > 0 && (level == 0 || r < level) {
				level = r
			}
		}
		if level == 0 {
			break
		}

		var eligible []*Player
		for _, p := range contenders {
			if remaining[p.ID] > 0 {
				eligible = append(eligible, p)
			}
		}

		amount := 0
		for _, p := range players {
			if r := remaining[p.ID]; r > 0 {
				take := level
				if take > r {
					take = r
				}
				remaining[p.ID] -= take
				amount += take
			}
		}

		pot := Pot{Amount: amount, Eligible: playerIDs(eligible)}
		if len(eligible) > 0 {
			winners, err := bestHands(eligible, board, eval)
			if err != nil {
				return nil, err
			}
			pot.WinnerIDs = winners
		}
		pots = append(pots, pot)
	}

	return pots, nil
}

// bestHands evaluates each contender against the board and returns the
// ids tied for the lowest (best) score, in seat order.
func bestHands(contenders []*Player, board []deck.Card, eval *evaluator.Evaluator) ([]string, error) {
	best := evaluator.Score(evaluator.WorstScore + 1)
	var winners []string
	for _, p := range contenders {
		score, err := eval.EvaluateFinal(p.HoleCards, board)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", p.ID, err)
		}
		switch {
		case score < best:
			best = score
			winners = append(winners[:0], p.ID)
		case score == best:
			winners = append(winners, p.ID)
		}
	}
	return winners, nil
}

func playerIDs(players []*Player) []string {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}
