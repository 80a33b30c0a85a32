package game

import (
	"fmt"
)

// assertValid runs the full invariant block. It executes at hand start,
// after blinds, after every applied action, after every state advance
// and after every pot award. A failure is fatal: the engine stores the
// violation and refuses further mutation rather than keep playing from
// an inconsistent state.
func (e *Engine) assertValid(context string) error {
	if !e.opts.Assertions {
		return nil
	}
	if e.violation != nil {
		return e.violation
	}
	if err := e.checkInvariants(); err != nil {
		return e.fail(fmt.Errorf("%w (%s): %v", ErrInvariant, context, err))
	}
	return nil
}

func (e *Engine) checkInvariants() error {
	// Chip conservation: the sum of stacks and the pot never moves.
	sum := e.pot
	for _, p := range e.players {
		sum += p.Stack
	}
	if sum != e.totalChips {
		return fmt.Errorf("chip conservation broken: stacks+pot=%d, expected %d", sum, e.totalChips)
	}

	if e.pot < 0 {
		return fmt.Errorf("negative pot %d", e.pot)
	}
	if e.currentBet < 0 {
		return fmt.Errorf("negative current bet %d", e.currentBet)
	}
	if e.lastRaiseAmount < 0 {
		return fmt.Errorf("negative last raise amount %d", e.lastRaiseAmount)
	}

	for _, p := range e.players {
		if p.Stack < 0 || p.CurrentBet < 0 || p.TotalInvested < 0 {
			return fmt.Errorf("negative chip state for %s: stack=%d bet=%d invested=%d",
				p.ID, p.Stack, p.CurrentBet, p.TotalInvested)
		}
		// All-in consistency, both directions.
		if p.AllIn && (p.Stack != 0 || !p.Active || p.TotalInvested == 0) {
			return fmt.Errorf("%s marked all-in with stack=%d active=%v invested=%d",
				p.ID, p.Stack, p.Active, p.TotalInvested)
		}
		if !p.AllIn && p.Stack == 0 && p.Active && p.TotalInvested > 0 {
			return fmt.Errorf("%s has empty stack and chips invested but is not all-in", p.ID)
		}
	}

	// Turn-order guard: a set turn pointer must name a seat that can
	// act. The seat that just folded or went all-in is exempt while its
	// has_acted flag stands, because the pointer legitimately rests
	// there until the driver advances it; a pointer stuck on a seat
	// that cannot act and has not acted is a skipped advance.
	if e.phase != Showdown && e.actorIdx >= 0 {
		p := e.players[e.actorIdx]
		if !p.HasActed && (!p.Active || p.AllIn || p.Stack <= 0) {
			return fmt.Errorf("current actor %s cannot act: active=%v all_in=%v stack=%d",
				p.ID, p.Active, p.AllIn, p.Stack)
		}
	}

	if e.phase == Showdown && e.pot != 0 {
		return fmt.Errorf("pot is %d at showdown", e.pot)
	}

	// A hand past pre-flop with at most one live player should already
	// be transitioning out. Pre-flop is exempt: freshly busted seats
	// are inactive from the moment the hand is dealt.
	if e.phase != Showdown && e.phase != PreFlop {
		active := 0
		for _, p := range e.players {
			if p.Active {
				active++
			}
		}
		if active <= 1 {
			return fmt.Errorf("%d active players in %s without transition", active, e.phase)
		}
	}

	return nil
}

// Violation returns the stored fatal invariant failure, if any.
func (e *Engine) Violation() error {
	return e.violation
}
