package game

import (
	"time"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
)

// WinnerEntry is one credited winner in a hand's result.
type WinnerEntry struct {
	PlayerID  string   `json:"player_id"`
	Name      string   `json:"name"`
	Amount    int      `json:"amount"`
	IsHuman   bool     `json:"is_human"`
	WonByFold bool     `json:"won_by_fold"`
	HandRank  string   `json:"hand_rank,omitempty"`
	HoleCards []string `json:"hole_cards,omitempty"`
}

// ShowdownHand is one player's revealed hand at showdown.
type ShowdownHand struct {
	PlayerID  string   `json:"player_id"`
	Name      string   `json:"name"`
	HandRank  string   `json:"hand_rank"`
	HoleCards []string `json:"hole_cards"`
	AmountWon int      `json:"amount_won"`
	IsHuman   bool     `json:"is_human"`
}

// FoldedPlayer identifies a player who folded out of the hand.
type FoldedPlayer struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	IsHuman  bool   `json:"is_human"`
}

// WinnerInfo is the terminal result of a hand, built from the transition
// that awarded the pot: the fold-collapse paths mark won_by_fold, the
// showdown resolver never does.
type WinnerInfo struct {
	Winners          []WinnerEntry  `json:"winners"`
	AllShowdownHands []ShowdownHand `json:"all_showdown_hands"`
	FoldedPlayers    []FoldedPlayer `json:"folded_players"`
}

// CompletedHand is the by-value record of a finished hand, stored in the
// bounded rich history. The human-centric fields feed post-session
// analysis.
type CompletedHand struct {
	HandNumber     int            `json:"hand_number"`
	FinishedAt     time.Time      `json:"finished_at"`
	CommunityCards []string       `json:"community_cards"`
	Rounds         []BettingRound `json:"rounds"`
	Winners        []WinnerEntry  `json:"winners"`
	ShowdownHands  []ShowdownHand `json:"showdown_hands,omitempty"`
	WonByFold      bool           `json:"won_by_fold"`
	HumanHoleCards []string       `json:"human_hole_cards,omitempty"`
	HumanNet       int            `json:"human_net"`
}

// HandSummary is the compact legacy record kept alongside the rich
// history.
type HandSummary struct {
	HandNumber int      `json:"hand_number"`
	Winners    []string `json:"winners"`
	Pot        int      `json:"pot"`
	WonByFold  bool     `json:"won_by_fold"`
}

// foldWinnerInfo builds the result for a hand that collapsed to a single
// player without a showdown.
func (e *Engine) foldWinnerInfo(winner *Player, amount int) *WinnerInfo {
	info := &WinnerInfo{
		Winners: []WinnerEntry{{
			PlayerID:  winner.ID,
			Name:      winner.Name,
			Amount:    amount,
			IsHuman:   winner.IsHuman,
			WonByFold: true,
		}},
	}
	for _, p := range e.players {
		if !p.Active && len(p.HoleCards) > 0 {
			info.FoldedPlayers = append(info.FoldedPlayers, FoldedPlayer{
				PlayerID: p.ID,
				Name:     p.Name,
				IsHuman:  p.IsHuman,
			})
		}
	}
	return info
}

// showdownWinnerInfo builds the result for a resolved showdown,
// including every revealed hand among the players who reached it.
func (e *Engine) showdownWinnerInfo(awarded map[string]int) *WinnerInfo {
	info := &WinnerInfo{}

	rankFor := func(p *Player) string {
		if len(p.HoleCards) != 2 || len(e.community) != 5 {
			return ""
		}
		score, err := e.eval.EvaluateFinal(p.HoleCards, e.community)
		if err != nil {
			return ""
		}
		return evaluator.Category(int(score))
	}

	for _, p := range e.players {
		switch {
		case p.Active || p.AllIn:
			info.AllShowdownHands = append(info.AllShowdownHands, ShowdownHand{
				PlayerID:  p.ID,
				Name:      p.Name,
				HandRank:  rankFor(p),
				HoleCards: deck.Strings(p.HoleCards),
				AmountWon: awarded[p.ID],
				IsHuman:   p.IsHuman,
			})
		case len(p.HoleCards) > 0:
			info.FoldedPlayers = append(info.FoldedPlayers, FoldedPlayer{
				PlayerID: p.ID,
				Name:     p.Name,
				IsHuman:  p.IsHuman,
			})
		}
	}

	for _, p := range e.players {
		if amount := awarded[p.ID]; amount > 0 {
			info.Winners = append(info.Winners, WinnerEntry{
				PlayerID:  p.ID,
				Name:      p.Name,
				Amount:    amount,
				IsHuman:   p.IsHuman,
				HandRank:  rankFor(p),
				HoleCards: deck.Strings(p.HoleCards),
			})
		}
	}
	return info
}

// saveCompletedHand snapshots the finished hand into the bounded rich
// and legacy histories. Copies only: the per-hand buffers are reset at
// the next StartHand.
func (e *Engine) saveCompletedHand() {
	if e.lastWinnerInfo == nil {
		return
	}

	hand := CompletedHand{
		HandNumber:     e.handCount,
		FinishedAt:     time.Now(),
		CommunityCards: deck.Strings(e.community),
		Rounds:         append([]BettingRound(nil), e.rounds...),
		Winners:        append([]WinnerEntry(nil), e.lastWinnerInfo.Winners...),
		ShowdownHands:  append([]ShowdownHand(nil), e.lastWinnerInfo.AllShowdownHands...),
	}

	wonByFold := true
	pot := 0
	var winnerNames []string
	for _, w := range hand.Winners {
		pot += w.Amount
		winnerNames = append(winnerNames, w.PlayerID)
		if !w.WonByFold {
			wonByFold = false
		}
	}
	hand.WonByFold = wonByFold

	if seat := e.HumanSeat(); seat >= 0 {
		human := e.players[seat]
		hand.HumanHoleCards = deck.Strings(human.HoleCards)
		net := -human.TotalInvested
		for _, w := range hand.Winners {
			if w.PlayerID == human.ID {
				net += w.Amount
			}
		}
		hand.HumanNet = net
	}

	e.completedHands = append(e.completedHands, hand)
	if over := len(e.completedHands) - e.opts.CompletedHandCap; over > 0 {
		e.completedHands = append(e.completedHands[:0], e.completedHands[over:]...)
	}

	e.legacyHands = append(e.legacyHands, HandSummary{
		HandNumber: e.handCount,
		Winners:    winnerNames,
		Pot:        pot,
		WonByFold:  wonByFold,
	})
	if over := len(e.legacyHands) - e.opts.LegacyHandCap; over > 0 {
		e.legacyHands = append(e.legacyHands[:0], e.legacyHands[over:]...)
	}
}

// CompletedHands returns a copy of the rich bounded hand history.
func (e *Engine) CompletedHands() []CompletedHand {
	out := make([]CompletedHand, len(e.completedHands))
	copy(out, e.completedHands)
	return out
}

// HandSummaries returns a copy of the legacy bounded summary list.
func (e *Engine) HandSummaries() []HandSummary {
	out := make([]HandSummary, len(e.legacyHands))
	copy(out, e.legacyHands)
	return out
}
