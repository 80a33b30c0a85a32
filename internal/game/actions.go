package game

import (
	"fmt"

	"github.com/lox/holdem-live/internal/ai"
	"github.com/lox/holdem-live/internal/evaluator"
)

// Turn driver guards. The iteration cap breaks pathological loops; the
// same-seat guard catches a turn pointer that stopped advancing.
const (
	maxDriverIterations = 75
	maxSameSeatVisits   = 5
)

// ApplyAction is the single entry point for all action processing: human
// submissions, AI decisions and fallback folds all land here. A failed
// action leaves the engine untouched, the turn unmoved and has_acted
// clear, so the caller can retry or fall back without wedging the hand.
func (e *Engine) ApplyAction(seat int, action Action, amount int, strength float64, reasoning string) (ActionResult, error) {
	if e.violation != nil {
		return ActionResult{}, e.violation
	}
	if e.phase == Showdown {
		return ActionResult{}, fmt.Errorf("%w: hand is already at showdown", ErrIllegalTransition)
	}
	if seat < 0 || seat >= len(e.players) {
		return ActionResult{}, fmt.Errorf("%w: seat %d out of range", ErrInvalidInput, seat)
	}
	p := e.players[seat]
	if !p.Active {
		return ActionResult{}, fmt.Errorf("%w: %s has already folded", ErrInvalidInput, p.Name)
	}

	var res ActionResult
	switch action {
	case Fold:
		res = e.applyFold(seat, p, strength, reasoning)

	case Call:
		callAmount := e.currentBet - p.CurrentBet
		if callAmount < 0 {
			callAmount = 0
		}
		bet := p.Bet(callAmount)
		e.pot += bet
		p.HasActed = true
		label := "call"
		if callAmount == 0 {
			label = "check"
		}
		e.emitEvent(EventAction, p.ID, label, bet, strength, reasoning)
		e.recordAction(p, label, bet)
		res = ActionResult{BetAmount: bet}

	case Raise:
		// A raise target is a total; nobody can target more than their
		// whole stack, so the table bet never advertises an amount the
		// raiser cannot reach.
		if maxTotal := p.Stack + p.CurrentBet; amount > maxTotal {
			amount = maxTotal
		}

		increment := e.lastRaiseAmount
		if increment <= 0 {
			increment = e.bigBlind
		}
		minRaise := e.currentBet + increment

		if amount < minRaise {
			// An all-in for less than a full raise plays as a call; any
			// other short raise is the caller's mistake.
			if p.Stack > amount {
				return ActionResult{}, fmt.Errorf(
					"%w: raise to %d is below minimum %d", ErrInvalidInput, amount, minRaise)
			}
			return e.ApplyAction(seat, Call, 0, strength, reasoning)
		}

		previousBet := e.currentBet
		raiseBy := amount - p.CurrentBet
		if raiseBy > p.Stack {
			raiseBy = p.Stack
		}
		bet := p.Bet(raiseBy)
		e.pot += bet
		e.currentBet = amount
		e.lastRaiseAmount = amount - previousBet
		e.lastRaiserIdx = seat
		p.HasActed = true

		// Everyone else who can still act owes a response to the raise.
		for i, other := range e.players {
			if i != seat && other.Active && !other.AllIn {
				other.HasActed = false
			}
		}

		e.emitEvent(EventAction, p.ID, "raise", bet, strength, reasoning)
		e.recordAction(p, "raise", amount)
		res = ActionResult{BetAmount: bet}

	default:
		return ActionResult{}, fmt.Errorf("%w: unknown action %d", ErrInvalidInput, action)
	}

	if err := e.assertValid("after action"); err != nil {
		return ActionResult{}, err
	}
	return res, nil
}

// applyFold folds the seat out and, when that leaves at most one player
// in the hand, ends it on the spot.
func (e *Engine) applyFold(seat int, p *Player, strength float64, reasoning string) ActionResult {
	p.Active = false
	p.HasActed = true
	e.emitEvent(EventAction, p.ID, "fold", 0, strength, reasoning)

	var survivor *Player
	inHand := 0
	for _, other := range e.players {
		if other.Active {
			inHand++
			survivor = other
		}
	}
	if inHand > 1 {
		return ActionResult{}
	}

	if survivor != nil {
		survivor.Stack += e.pot
		if survivor.AllIn && survivor.Stack > 0 {
			survivor.AllIn = false
		}
		e.emitEvent(EventPotAward, survivor.ID, "pot_award", e.pot, 0, "all opponents folded")
		e.lastWinnerInfo = e.foldWinnerInfo(survivor, e.pot)
	}
	e.pot = 0
	e.phase = Showdown
	e.actorIdx = -1
	e.closeRound(Showdown)
	e.saveCompletedHand()

	if seat >= 0 {
		e.logger.Debug("hand ended by folds", "winner", survivorID(survivor))
	}
	return ActionResult{TriggersShowdown: true}
}

func survivorID(p *Player) string {
	if p == nil {
		return ""
	}
	return p.ID
}

// SubmitHumanAction validates that it is the human's turn, derives their
// hand strength and routes the action through ApplyAction. With
// processAI set the engine then drives AI turns and state transitions
// until the next human decision or the end of the hand; the WebSocket
// pipeline passes false and drives those steps itself so it can
// interleave event broadcasts.
func (e *Engine) SubmitHumanAction(action Action, amount int, processAI bool) (ActionResult, error) {
	if e.violation != nil {
		return ActionResult{}, e.violation
	}
	seat := e.HumanSeat()
	if seat < 0 {
		return ActionResult{}, fmt.Errorf("%w: no human seat in this game", ErrInvalidInput)
	}
	if e.actorIdx != seat {
		return ActionResult{}, fmt.Errorf("%w: not your turn", ErrInvalidInput)
	}

	p := e.players[seat]
	strength := 0.0
	if len(p.HoleCards) == 2 {
		if score, _, err := e.eval.Evaluate(p.HoleCards, e.community, e.rng); err == nil {
			strength = evaluator.ScoreToStrength(score)
		}
	}

	res, err := e.ApplyAction(seat, action, amount, strength, "")
	if err != nil {
		return res, err
	}

	if processAI && !res.TriggersShowdown {
		e.AdvanceToNextActor()
		if err := e.runAITurns(); err != nil {
			return res, err
		}
		if _, err := e.AdvanceStateCore(true); err != nil {
			return res, err
		}
	}
	return res, nil
}

// DecideAI computes and stores the AI decision for a seat without
// applying it. The pipeline uses this to broadcast the decision before
// the action lands.
func (e *Engine) DecideAI(seat int) (ai.Decision, error) {
	p := e.PlayerAt(seat)
	if p == nil || p.IsHuman {
		return ai.Decision{}, fmt.Errorf("%w: seat %d is not an AI seat", ErrInvalidInput, seat)
	}
	dec := e.policy.Decide(p.Personality, ai.Input{
		Hole:            p.HoleCards,
		Board:           e.community,
		TableCurrentBet: e.currentBet,
		Pot:             e.pot,
		Stack:           p.Stack,
		CurrentBet:      p.CurrentBet,
		BigBlind:        e.bigBlind,
		LastRaiseAmount: e.lastRaiseAmount,
	})
	e.lastAIDecisions[p.ID] = dec
	return dec, nil
}

// runAITurns is the in-engine turn driver: it walks the action around
// the table applying AI decisions until the round settles, the hand ends
// or a human is due to act. A decision the engine rejects is converted
// to a fold so a bad AI proposal can never stall the hand.
func (e *Engine) runAITurns() error {
	iterations := 0
	lastSeat, sameSeat := -1, 0

	for !e.BettingRoundComplete() && e.actorIdx >= 0 {
		if iterations++; iterations > maxDriverIterations {
			e.logger.Error("turn driver exceeded iteration cap", "cap", maxDriverIterations)
			break
		}
		if e.actorIdx == lastSeat {
			if sameSeat++; sameSeat > maxSameSeatVisits {
				e.logger.Error("turn driver stuck on seat", "seat", e.actorIdx)
				break
			}
		} else {
			lastSeat, sameSeat = e.actorIdx, 1
		}

		p := e.players[e.actorIdx]
		if p.IsHuman {
			if p.CanAct() && !p.HasActed {
				return nil
			}
			e.AdvanceToNextActor()
			continue
		}
		if !p.CanAct() || p.HasActed {
			e.AdvanceToNextActor()
			continue
		}

		seat := e.actorIdx
		dec, err := e.DecideAI(seat)
		if err != nil {
			return err
		}
		act, err := ParseAction(dec.Action)
		if err != nil {
			act = Fold
		}
		res, err := e.ApplyAction(seat, act, dec.Amount, dec.HandStrength, dec.Reasoning)
		if err != nil {
			if e.violation != nil {
				return err
			}
			e.logger.Warn("AI action rejected, falling back to fold",
				"player", p.Name, "action", dec.Action, "amount", dec.Amount, "error", err)
			res, err = e.ApplyAction(seat, Fold, 0, dec.HandStrength, "fallback fold")
			if err != nil {
				return err
			}
		}
		if res.TriggersShowdown {
			return nil
		}
		if e.BettingRoundComplete() {
			return nil
		}
		e.AdvanceToNextActor()
	}
	return nil
}
