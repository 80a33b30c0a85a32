// Package game implements the hold'em state machine: players, blinds,
// betting rounds, side pots, the per-hand event log and the invariant
// layer that keeps chip accounting honest. All mutation flows through a
// single entry point, Engine.ApplyAction, so every transition is checked
// and every observable state is consistent.
package game

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failure the engine can surface.
// Callers test with errors.Is.
var (
	// ErrInvalidInput covers unknown action labels, out-of-range seats,
	// below-minimum raises that are not all-ins and out-of-turn actions.
	// The engine state is unchanged when this is returned.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIllegalTransition covers actions requested at the wrong phase,
	// including anything after the hand has reached showdown. The engine
	// state is unchanged when this is returned.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrInvariant is a fatal accounting or turn-order violation. Once
	// raised the engine quarantines itself: every later mutating call
	// fails fast with the stored violation.
	ErrInvariant = errors.New("invariant violation")
)

// Phase is the stage a hand is in.
type Phase int

const (
	PreFlop Phase = iota
	Flop
	Turn
	River
	Showdown
)

func (p Phase) String() string {
	return [...]string{"pre_flop", "flop", "turn", "river", "showdown"}[p]
}

// Action is a player action. Checks are calls for zero.
type Action int

const (
	Fold Action = iota
	Call
	Raise
)

func (a Action) String() string {
	return [...]string{"fold", "call", "raise"}[a]
}

// ParseAction reads an action label off the wire.
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "call", "check":
		return Call, nil
	case "raise":
		return Raise, nil
	default:
		return Fold, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, s)
	}
}

// ActionResult reports what a successful ApplyAction did.
type ActionResult struct {
	// BetAmount is the number of chips actually moved into the pot,
	// which may be less than requested when the player is short.
	BetAmount int

	// TriggersShowdown is set when the action ended the hand on the
	// spot, e.g. a fold that left a single player.
	TriggersShowdown bool
}
