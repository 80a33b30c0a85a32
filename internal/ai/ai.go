// Package ai implements the table's computer opponents. Each seat gets
// one of six personalities; Decide is a pure function from the betting
// context to an action, an amount and the reasoning behind it. The
// engine applies the decision, so a personality is free to propose a
// below-minimum raise and let the engine convert or reject it.
package ai

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
)

// Personality tags one of the six decision policies.
type Personality string

const (
	Conservative    Personality = "conservative"
	Aggressive      Personality = "aggressive"
	Mathematical    Personality = "mathematical"
	LoosePassive    Personality = "loose_passive"
	TightAggressive Personality = "tight_aggressive"
	Maniac          Personality = "maniac"
)

// DisplayName returns the table name shown for a personality.
func (p Personality) DisplayName() string {
	switch p {
	case Conservative:
		return "Rocky"
	case Aggressive:
		return "Blaze"
	case Mathematical:
		return "Vector"
	case LoosePassive:
		return "Station"
	case TightAggressive:
		return "Hawk"
	case Maniac:
		return "Gonzo"
	default:
		return string(p)
	}
}

// sprNoPot is the stack-to-pot sentinel when there is no pot to divide
// by.
const sprNoPot = 999.0

// Input is the betting context a decision is made from. Raise amounts in
// the resulting Decision are totals (the target table bet), matching the
// engine's raise semantics.
type Input struct {
	Hole            []deck.Card
	Board           []deck.Card
	TableCurrentBet int
	Pot             int
	Stack           int
	CurrentBet      int
	BigBlind        int
	LastRaiseAmount int
}

// Decision is the outcome of a policy run. DecisionID is fresh per
// decision; observers use it to drop retransmissions.
type Decision struct {
	Action       string  `json:"action"`
	Amount       int     `json:"amount"`
	Reasoning    string  `json:"reasoning"`
	HandStrength float64 `json:"hand_strength"`
	PotOdds      float64 `json:"pot_odds"`
	Confidence   float64 `json:"confidence"`
	SPR          float64 `json:"spr"`
	DecisionID   string  `json:"decision_id"`
}

// Policy evaluates hands and dispatches decisions across the
// personalities. One Policy serves a whole game; it shares the game's
// rng so seeded games replay identically.
type Policy struct {
	eval   *evaluator.Evaluator
	rng    *rand.Rand
	logger *log.Logger
}

// NewPolicy creates a policy backed by the given evaluator and rng.
func NewPolicy(eval *evaluator.Evaluator, rng *rand.Rand, logger *log.Logger) *Policy {
	return &Policy{
		eval:   eval,
		rng:    rng,
		logger: logger.WithPrefix("ai"),
	}
}

// situation is the derived betting context every personality reasons
// from.
type situation struct {
	strength   float64
	category   string
	potOdds    float64
	spr        float64
	callAmount int
	minIncr    int
	pot        int
	stack      int
	currentBet int
	tableBet   int

	// allInTotal is the largest total bet this seat can reach; every
	// raise target is capped here.
	allInTotal int
}

// choice is what a personality branch settles on before packaging.
type choice struct {
	action     string
	amount     int
	confidence float64
	reason     string
}

// Decide runs the personality's policy over the current context.
func (pl *Policy) Decide(p Personality, in Input) Decision {
	sit := pl.deriveSituation(in)

	var c choice
	switch p {
	case Conservative:
		c = pl.decideConservative(sit)
	case Aggressive:
		c = pl.decideAggressive(sit)
	case Mathematical:
		c = pl.decideMathematical(sit)
	case LoosePassive:
		c = pl.decideLoosePassive(sit)
	case TightAggressive:
		c = pl.decideTightAggressive(sit)
	case Maniac:
		c = pl.decideManiac(sit)
	default:
		c = choice{action: "fold", confidence: 0.5, reason: "unknown personality"}
	}

	if c.action == "raise" && c.amount > sit.allInTotal {
		c.amount = sit.allInTotal
	}

	dec := Decision{
		Action:       c.action,
		Amount:       c.amount,
		Reasoning:    pl.describe(p, sit, c),
		HandStrength: sit.strength,
		PotOdds:      sit.potOdds,
		Confidence:   c.confidence,
		SPR:          sit.spr,
		DecisionID:   uuid.NewString(),
	}

	pl.logger.Debug("decision",
		"personality", p, "action", dec.Action, "amount", dec.Amount,
		"strength", sit.strength, "pot_odds", sit.potOdds, "spr", sit.spr)
	return dec
}

func (pl *Policy) deriveSituation(in Input) situation {
	sit := situation{
		pot:        in.Pot,
		stack:      in.Stack,
		currentBet: in.CurrentBet,
		tableBet:   in.TableCurrentBet,
		allInTotal: in.Stack + in.CurrentBet,
	}

	sit.callAmount = in.TableCurrentBet - in.CurrentBet
	if sit.callAmount < 0 {
		sit.callAmount = 0
	}

	if denom := in.Pot + sit.callAmount; denom > 0 && sit.callAmount > 0 {
		sit.potOdds = float64(sit.callAmount) / float64(denom)
	}

	sit.minIncr = in.LastRaiseAmount
	if sit.minIncr <= 0 {
		sit.minIncr = in.BigBlind
	}

	if in.Pot > 0 {
		sit.spr = float64(in.Stack) / float64(in.Pot)
	} else {
		sit.spr = sprNoPot
	}

	if len(in.Hole) == 2 {
		if score, category, err := pl.eval.Evaluate(in.Hole, in.Board, pl.rng); err == nil {
			sit.strength = evaluator.ScoreToStrength(score)
			sit.category = category
		}
	}

	return sit
}

// describe assembles the reasoning text shown to observers who opt into
// AI thinking.
func (pl *Policy) describe(p Personality, sit situation, c choice) string {
	base := fmt.Sprintf("%s (strength %.2f", sit.category, sit.strength)
	if sit.spr < sprNoPot {
		base += fmt.Sprintf(", SPR %.1f", sit.spr)
	}
	if sit.potOdds > 0 {
		base += fmt.Sprintf(", pot odds %.2f", sit.potOdds)
	}
	return base + "): " + c.reason
}
