package game

import (
	"github.com/lox/holdem-live/internal/ai"
	"github.com/lox/holdem-live/internal/deck"
)

// minPlayableStack is the fewest chips a seat needs to be dealt in. A
// shorter stack cannot cover the small blind at the default schedule and
// sits out until the game ends.
const minPlayableStack = 5

// Player is the per-seat state the engine owns. Nothing outside the
// engine mutates a Player.
type Player struct {
	ID          string
	Name        string
	IsHuman     bool
	Personality ai.Personality

	// Stack is the chips behind. CurrentBet is the amount committed in
	// the running betting round; TotalInvested accumulates across the
	// whole hand and is what the pot resolver layers side pots from.
	Stack         int
	CurrentBet    int
	TotalInvested int

	// Active means the player has not folded this hand. All-in players
	// stay active; they just cannot act.
	Active   bool
	AllIn    bool
	HasActed bool

	HoleCards []deck.Card
}

// Bet moves up to amount chips from the stack into the current bet and
// hand investment, returning the amount actually moved. A player whose
// stack empties while still in the hand is marked all-in, which is the
// only place that flag is ever set.
func (p *Player) Bet(amount int) int {
	if amount < 0 {
		amount = 0
	}
	if amount > p.Stack {
		amount = p.Stack
	}
	p.Stack -= amount
	p.CurrentBet += amount
	p.TotalInvested += amount
	if p.Stack == 0 && p.Active && p.TotalInvested > 0 {
		p.AllIn = true
	}
	return amount
}

// ResetForHand clears per-hand state. Seats below the minimum playable
// stack are dealt out.
func (p *Player) ResetForHand() {
	p.CurrentBet = 0
	p.TotalInvested = 0
	p.HasActed = false
	p.AllIn = false
	p.HoleCards = nil
	p.Active = p.Stack >= minPlayableStack
}

// ResetForRound clears per-round state when a street closes.
func (p *Player) ResetForRound() {
	p.CurrentBet = 0
	p.HasActed = false
}

// CanAct reports whether the player can take a betting action.
func (p *Player) CanAct() bool {
	return p.Active && !p.AllIn && p.Stack > 0
}
