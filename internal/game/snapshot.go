package game

import (
	"github.com/lox/holdem-live/internal/deck"
)

// PlayerSnapshot is one seat in a state snapshot.
type PlayerSnapshot struct {
	PlayerID    string   `json:"player_id"`
	Name        string   `json:"name"`
	Stack       int      `json:"stack"`
	CurrentBet  int      `json:"current_bet"`
	IsActive    bool     `json:"is_active"`
	AllIn       bool     `json:"all_in"`
	IsHuman     bool     `json:"is_human"`
	Personality string   `json:"personality,omitempty"`
	HoleCards   []string `json:"hole_cards"`
}

// HumanSnapshot is the human seat plus turn information.
type HumanSnapshot struct {
	PlayerSnapshot
	IsCurrentTurn bool `json:"is_current_turn"`
}

// DecisionSnapshot is one AI decision as exposed to observers. The
// analysis fields are pointers so the transport can strip them for
// observers who did not opt into AI thinking.
type DecisionSnapshot struct {
	Action       string   `json:"action"`
	Amount       int      `json:"amount"`
	DecisionID   string   `json:"decision_id"`
	Reasoning    string   `json:"reasoning,omitempty"`
	HandStrength *float64 `json:"hand_strength,omitempty"`
	PotOdds      *float64 `json:"pot_odds,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	SPR          *float64 `json:"spr,omitempty"`
}

// Snapshot is the authoritative full-state view broadcast as
// state_update. It always carries everything, hole cards included; the
// transport redacts per observer.
type Snapshot struct {
	State              string                      `json:"state"`
	Pot                int                         `json:"pot"`
	CurrentBet         int                         `json:"current_bet"`
	LastRaiseAmount    *int                        `json:"last_raise_amount"`
	SmallBlind         int                         `json:"small_blind"`
	BigBlind           int                         `json:"big_blind"`
	HandCount          int                         `json:"hand_count"`
	DealerPosition     *int                        `json:"dealer_position"`
	SmallBlindPosition *int                        `json:"small_blind_position"`
	BigBlindPosition   *int                        `json:"big_blind_position"`
	CurrentPlayerIndex *int                        `json:"current_player_index"`
	CommunityCards     []string                    `json:"community_cards"`
	Players            []PlayerSnapshot            `json:"players"`
	HumanPlayer        *HumanSnapshot              `json:"human_player"`
	LastAIDecisions    map[string]DecisionSnapshot `json:"last_ai_decisions"`
	WinnerInfo         *WinnerInfo                 `json:"winner_info"`
}

// GetGameState builds a read-only snapshot of the engine. Blind and
// dealer positions are the values fixed at hand start, not recomputed.
func (e *Engine) GetGameState() *Snapshot {
	s := &Snapshot{
		State:              e.phase.String(),
		Pot:                e.pot,
		CurrentBet:         e.currentBet,
		SmallBlind:         e.smallBlind,
		BigBlind:           e.bigBlind,
		HandCount:          e.handCount,
		CommunityCards:     deck.Strings(e.community),
		CurrentPlayerIndex: optionalIndex(e.actorIdx),
		DealerPosition:     optionalIndex(e.dealerIdx),
		SmallBlindPosition: optionalIndex(e.sbIdx),
		BigBlindPosition:   optionalIndex(e.bbIdx),
		LastAIDecisions:    make(map[string]DecisionSnapshot, len(e.lastAIDecisions)),
		WinnerInfo:         e.lastWinnerInfo,
	}
	if e.lastRaiseAmount > 0 {
		v := e.lastRaiseAmount
		s.LastRaiseAmount = &v
	}

	for i, p := range e.players {
		ps := PlayerSnapshot{
			PlayerID:    p.ID,
			Name:        p.Name,
			Stack:       p.Stack,
			CurrentBet:  p.CurrentBet,
			IsActive:    p.Active,
			AllIn:       p.AllIn,
			IsHuman:     p.IsHuman,
			Personality: string(p.Personality),
			HoleCards:   deck.Strings(p.HoleCards),
		}
		s.Players = append(s.Players, ps)
		if p.IsHuman {
			s.HumanPlayer = &HumanSnapshot{
				PlayerSnapshot: ps,
				IsCurrentTurn:  e.actorIdx == i,
			}
		}
	}

	for id, dec := range e.lastAIDecisions {
		strength, potOdds, conf, spr := dec.HandStrength, dec.PotOdds, dec.Confidence, dec.SPR
		s.LastAIDecisions[id] = DecisionSnapshot{
			Action:       dec.Action,
			Amount:       dec.Amount,
			DecisionID:   dec.DecisionID,
			Reasoning:    dec.Reasoning,
			HandStrength: &strength,
			PotOdds:      &potOdds,
			Confidence:   &conf,
			SPR:          &spr,
		}
	}

	return s
}

// GetShowdownResults returns the result of the most recent finished
// hand, or nil while a hand is in progress.
func (e *Engine) GetShowdownResults() *WinnerInfo {
	return e.lastWinnerInfo
}

func optionalIndex(i int) *int {
	if i < 0 {
		return nil
	}
	v := i
	return &v
}
