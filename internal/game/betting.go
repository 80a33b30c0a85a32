package game

// ActionRecord is one action in a betting round's history.
type ActionRecord struct {
	PlayerID string `json:"player_id"`
	Action   string `json:"action"`
	Amount   int    `json:"amount"`
}

// BettingRound is the structured history of one street.
type BettingRound struct {
	Phase           string         `json:"phase"`
	PotAtRoundStart int            `json:"pot_at_round_start"`
	Actions         []ActionRecord `json:"actions"`
}

func (e *Engine) recordAction(p *Player, action string, amount int) {
	e.currentRound.Actions = append(e.currentRound.Actions, ActionRecord{
		PlayerID: p.ID,
		Action:   action,
		Amount:   amount,
	})
}

// closeRound moves the in-progress round into the hand history and opens
// the next one.
func (e *Engine) closeRound(next Phase) {
	e.rounds = append(e.rounds, e.currentRound)
	e.currentRound = BettingRound{
		Phase:           next.String(),
		PotAtRoundStart: e.pot,
	}
}

// BettingRoundComplete reports whether the current betting round is
// settled. With A the players who can still act and A' everyone still in
// the hand (all-ins included), the round is complete when:
//
//   - nobody can act,
//   - one player can act and either everyone else folded or that player
//     has already acted against the all-ins,
//   - or every player who can act has acted and matched the table bet.
//
// Pre-flop there is one exception: a big blind who has only posted is
// still owed their option, so the round stays open until they have taken
// a voluntary action.
func (e *Engine) BettingRoundComplete() bool {
	var canAct []*Player
	inHand := 0
	for _, p := range e.players {
		if p.Active {
			inHand++
			if !p.AllIn {
				canAct = append(canAct, p)
			}
		}
	}

	switch len(canAct) {
	case 0:
		return true
	case 1:
		return inHand == 1 || canAct[0].HasActed
	}

	for _, p := range canAct {
		if !p.HasActed || p.CurrentBet != e.currentBet {
			return false
		}
	}

	if e.phase == PreFlop && e.lastRaiserIdx >= 0 {
		bb := e.players[e.lastRaiserIdx]
		if bb.Active && !bb.AllIn && e.voluntaryActionCount(bb.ID) == 0 {
			return false
		}
	}

	return true
}

// CurrentActorSeat returns the seat whose turn it is, or -1.
func (e *Engine) CurrentActorSeat() int {
	return e.actorIdx
}

// AdvanceToNextActor moves the turn to the next seat that can act,
// wrapping around the table. With nobody able to act the turn is
// cleared.
func (e *Engine) AdvanceToNextActor() {
	if e.actorIdx < 0 {
		return
	}
	e.actorIdx = e.nextEligible(e.actorIdx)
}

// nextEligible finds the first seat after from that can act, or -1.
func (e *Engine) nextEligible(from int) int {
	n := len(e.players)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if e.players[seat].CanAct() {
			return seat
		}
	}
	return -1
}

// nextChipped finds the first seat after from holding chips, or -1.
func (e *Engine) nextChipped(from int) int {
	n := len(e.players)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if e.players[seat].Stack > 0 {
			return seat
		}
	}
	return -1
}
