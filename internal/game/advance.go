package game

import (
	"fmt"
)

// AdvanceStateCore performs at most one end-of-round transition and
// reports whether the state changed. It is the single consolidation of
// every advancement path: REST and test callers pass processAI=true and
// the engine drives AI turns through to the next human decision; the
// WebSocket pipeline passes false and interleaves its own driver so it
// can emit events and honour step mode between AI actions.
func (e *Engine) AdvanceStateCore(processAI bool) (bool, error) {
	if e.violation != nil {
		return false, e.violation
	}
	if e.phase == Showdown {
		return false, nil
	}

	var active []*Player
	canAct := 0
	for _, p := range e.players {
		if p.Active {
			active = append(active, p)
			if !p.AllIn {
				canAct++
			}
		}
	}

	// A cleared turn pointer with chips still in the middle means the
	// betting is over one way or another. With several players still in,
	// everyone left is all-in, so the board runs out to the river before
	// the showdown resolves.
	if e.actorIdx < 0 && e.pot > 0 {
		if len(active) == 1 {
			e.creditSoleSurvivor(active[0])
			return true, e.assertValid("after advance")
		}
		if len(active) > 1 {
			for e.phase != River && e.phase != Showdown {
				if err := e.dealNextStreet(); err != nil {
					return false, err
				}
			}
			if err := e.awardPotAtShowdown(); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	// Zero live players is an engine bug; recover by crediting whoever
	// acted last so chips are conserved, then end the hand.
	if len(active) == 0 {
		if id := e.lastActorID(); id != "" {
			for _, p := range e.players {
				if p.ID == id {
					p.Active = true
					e.creditSoleSurvivor(p)
					e.logger.Warn("no active players, credited last actor", "player", id)
					return true, e.assertValid("after advance")
				}
			}
		}
		e.phase = Showdown
		e.actorIdx = -1
		return true, e.assertValid("after advance")
	}

	if len(active) == 1 {
		e.creditSoleSurvivor(active[0])
		return true, e.assertValid("after advance")
	}

	// All-in fast-forward: betting is settled and at most one player
	// can still act, so no further decisions exist. Run the board out
	// to the river in one burst and resolve.
	if canAct <= 1 && len(active) >= 2 && e.BettingRoundComplete() {
		for e.phase != River && e.phase != Showdown {
			if err := e.dealNextStreet(); err != nil {
				return false, err
			}
		}
		if err := e.awardPotAtShowdown(); err != nil {
			return false, err
		}
		return true, nil
	}

	if !e.BettingRoundComplete() {
		return false, nil
	}

	// The round is settled: close it, clear per-round state and deal
	// the next street (or resolve the showdown after the river).
	if e.phase == River {
		for _, p := range e.players {
			p.ResetForRound()
		}
		e.currentBet = 0
		e.lastRaiserIdx = -1
		e.lastRaiseAmount = 0
		if err := e.awardPotAtShowdown(); err != nil {
			return false, err
		}
		return true, nil
	}

	for _, p := range e.players {
		p.ResetForRound()
	}
	e.currentBet = 0
	e.lastRaiserIdx = -1
	e.lastRaiseAmount = 0

	if err := e.dealNextStreet(); err != nil {
		return false, err
	}
	e.closeRound(e.phase)
	e.actorIdx = e.nextEligible(e.dealerIdx)

	if err := e.assertValid("after advance"); err != nil {
		return false, err
	}

	if processAI {
		if err := e.runAITurns(); err != nil {
			return true, err
		}
		if _, err := e.AdvanceStateCore(true); err != nil {
			return true, err
		}
	}
	return true, nil
}

// dealNextStreet moves the phase forward one street and deals its cards.
func (e *Engine) dealNextStreet() error {
	var n int
	var next Phase
	switch e.phase {
	case PreFlop:
		n, next = 3, Flop
	case Flop:
		n, next = 1, Turn
	case Turn:
		n, next = 1, River
	default:
		return fmt.Errorf("%w: no street after %s", ErrIllegalTransition, e.phase)
	}
	cards, err := e.deck.Deal(n)
	if err != nil {
		return fmt.Errorf("dealing %s: %w", next, err)
	}
	e.community = append(e.community, cards...)
	e.phase = next
	e.emitEvent(EventDeal, "", next.String(), n, 0, "")
	return nil
}

// creditSoleSurvivor ends the hand by folds: the last player in takes
// the whole pot.
func (e *Engine) creditSoleSurvivor(p *Player) {
	p.Stack += e.pot
	if p.AllIn && p.Stack > 0 {
		p.AllIn = false
	}
	e.emitEvent(EventPotAward, p.ID, "pot_award", e.pot, 0, "all opponents folded")
	e.lastWinnerInfo = e.foldWinnerInfo(p, e.pot)
	e.pot = 0
	e.phase = Showdown
	e.actorIdx = -1
	e.closeRound(Showdown)
	e.saveCompletedHand()
}

// awardPotAtShowdown resolves the pots and pays the winners. Indivisible
// chips go one at a time to the earliest winners in list order, and any
// rounding delta against the recorded pot lands on the first credited
// winner so the chip total stays exact.
func (e *Engine) awardPotAtShowdown() error {
	preAward := e.pot
	e.phase = Showdown
	e.actorIdx = -1

	pots, err := ResolvePots(e.players, e.community, e.eval)
	if err != nil {
		return e.fail(fmt.Errorf("resolving pots: %w", err))
	}

	byID := make(map[string]*Player, len(e.players))
	for _, p := range e.players {
		byID[p.ID] = p
	}

	awarded := make(map[string]int)
	var firstWinner string
	distributed := 0

	for _, pot := range pots {
		if len(pot.WinnerIDs) == 0 || pot.Amount == 0 {
			continue
		}
		share := pot.Amount / len(pot.WinnerIDs)
		remainder := pot.Amount % len(pot.WinnerIDs)
		for i, id := range pot.WinnerIDs {
			amount := share
			if i < remainder {
				amount++
			}
			if amount == 0 {
				continue
			}
			byID[id].Stack += amount
			awarded[id] += amount
			if firstWinner == "" {
				firstWinner = id
			}
		}
		distributed += pot.Amount
	}

	if delta := preAward - distributed; delta != 0 && firstWinner != "" {
		byID[firstWinner].Stack += delta
		awarded[firstWinner] += delta
	}

	for _, p := range e.players {
		if awarded[p.ID] > 0 && p.AllIn && p.Stack > 0 {
			p.AllIn = false
		}
	}

	for _, p := range e.players {
		if amount := awarded[p.ID]; amount > 0 {
			e.emitEvent(EventPotAward, p.ID, "pot_award", amount, 0, "showdown")
		}
	}

	e.pot = 0
	e.lastWinnerInfo = e.showdownWinnerInfo(awarded)
	e.closeRound(Showdown)
	e.saveCompletedHand()

	return e.assertValid("after pot award")
}
