package game

import (
	"time"
)

// EventKind classifies per-hand events.
type EventKind string

const (
	EventDeal          EventKind = "deal"
	EventAction        EventKind = "action"
	EventPotAward      EventKind = "pot_award"
	EventBlindIncrease EventKind = "blind_increase"
)

// HandEvent is one entry in the per-hand event stream. The buffer feeds
// the hand history, the BB-option check and the cross-hand log, so it
// records the pot and table bet as they stood at emission time.
type HandEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	Kind         EventKind `json:"kind"`
	PlayerID     string    `json:"player_id,omitempty"`
	Action       string    `json:"action,omitempty"`
	Amount       int       `json:"amount"`
	HandStrength float64   `json:"hand_strength,omitempty"`
	Reasoning    string    `json:"reasoning,omitempty"`
	Pot          int       `json:"pot"`
	CurrentBet   int       `json:"current_bet"`
}

func (e *Engine) emitEvent(kind EventKind, playerID, action string, amount int, strength float64, reasoning string) {
	e.events = append(e.events, HandEvent{
		Timestamp:    time.Now(),
		Kind:         kind,
		PlayerID:     playerID,
		Action:       action,
		Amount:       amount,
		HandStrength: strength,
		Reasoning:    reasoning,
		Pot:          e.pot,
		CurrentBet:   e.currentBet,
	})
}

// flushEvents appends the hand's buffer to the bounded cross-hand history
// and clears the buffer for the next hand. Oldest entries drop first.
func (e *Engine) flushEvents() {
	e.eventHistory = append(e.eventHistory, e.events...)
	if over := len(e.eventHistory) - e.opts.EventHistoryCap; over > 0 {
		e.eventHistory = append(e.eventHistory[:0], e.eventHistory[over:]...)
	}
	e.events = e.events[:0]
}

// voluntaryActionCount counts betting actions (check, call, raise, fold)
// a player has taken this hand. Blind posts carry their own labels and do
// not count, which is what gives the big blind their pre-flop option.
func (e *Engine) voluntaryActionCount(playerID string) int {
	n := 0
	for _, ev := range e.events {
		if ev.Kind != EventAction || ev.PlayerID != playerID {
			continue
		}
		switch ev.Action {
		case "check", "call", "raise", "fold":
			n++
		}
	}
	return n
}

// lastActorID finds the most recent player to act in the hand's event
// buffer. Used by the zero-active recovery path when a hand somehow ends
// with nobody left to credit.
func (e *Engine) lastActorID() string {
	for i := len(e.events) - 1; i >= 0; i-- {
		if e.events[i].Kind == EventAction && e.events[i].PlayerID != "" {
			return e.events[i].PlayerID
		}
	}
	return ""
}

// Events returns a copy of the current hand's event buffer.
func (e *Engine) Events() []HandEvent {
	out := make([]HandEvent, len(e.events))
	copy(out, e.events)
	return out
}

// EventHistory returns a copy of the bounded cross-hand event history.
func (e *Engine) EventHistory() []HandEvent {
	out := make([]HandEvent, len(e.eventHistory))
	copy(out, e.eventHistory)
	return out
}
