package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-live/internal/ai"
	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
	"github.com/lox/holdem-live/internal/randutil"
)

// Options configures a game. The zero value is not useful; start from
// DefaultOptions and override.
type Options struct {
	StartingStack int
	SmallBlind    int
	BigBlind      int

	// Blind escalation multiplies the blinds every HandsPerLevel hands.
	BlindEscalation bool
	HandsPerLevel   int
	BlindMultiplier float64

	// Bounded history caps, drop-oldest.
	EventHistoryCap  int
	CompletedHandCap int
	LegacyHandCap    int

	// Assertions enables the fatal runtime invariant checks. Leave on
	// outside benchmarks.
	Assertions bool

	// Seed fixes the shuffle and AI randomness; zero picks a random
	// seed.
	Seed int64
}

// DefaultOptions returns the standard table: 1000 chips, 5/10 blinds
// doubling every 10 hands.
func DefaultOptions() Options {
	return Options{
		StartingStack:    1000,
		SmallBlind:       5,
		BigBlind:         10,
		BlindEscalation:  true,
		HandsPerLevel:    10,
		BlindMultiplier:  2.0,
		EventHistoryCap:  1000,
		CompletedHandCap: 100,
		LegacyHandCap:    50,
		Assertions:       true,
	}
}

// Engine is the authoritative state machine for one game. It owns the
// players, deck, board, pot and event buffers; callers mutate only
// through ApplyAction and the hand lifecycle methods, and the caller is
// responsible for serialising access (one goroutine at a time).
type Engine struct {
	opts   Options
	logger *log.Logger
	rng    *rand.Rand
	eval   *evaluator.Evaluator
	policy *ai.Policy

	sessionID  string
	players    []*Player
	totalChips int

	deck       *deck.Deck
	community  []deck.Card
	pot        int
	currentBet int
	phase      Phase

	smallBlind int
	bigBlind   int

	dealerIdx int
	sbIdx     int
	bbIdx     int
	actorIdx  int

	lastRaiserIdx   int
	lastRaiseAmount int

	handCount int

	events          []HandEvent
	eventHistory    []HandEvent
	currentRound    BettingRound
	rounds          []BettingRound
	lastAIDecisions map[string]ai.Decision
	lastWinnerInfo  *WinnerInfo
	completedHands  []CompletedHand
	legacyHands     []HandSummary

	// violation quarantines the engine after a fatal invariant failure.
	violation error
}

// personalityPool is the set of AI styles dealt out to seats, at most
// one of each per game.
var personalityPool = []ai.Personality{
	ai.Conservative,
	ai.Aggressive,
	ai.Mathematical,
	ai.LoosePassive,
	ai.TightAggressive,
	ai.Maniac,
}

// NewGame seats a human against aiCount AI opponents with distinct
// personalities. aiCount must be between 1 and 3.
func NewGame(sessionID, humanName string, aiCount int, opts Options, logger *log.Logger) (*Engine, error) {
	if aiCount < 1 || aiCount > 3 {
		return nil, fmt.Errorf("%w: ai_count must be between 1 and 3, got %d", ErrInvalidInput, aiCount)
	}
	if humanName == "" {
		humanName = "You"
	}

	rng := randutil.ForSeed(opts.Seed)
	eval := evaluator.New()

	e := &Engine{
		opts:            opts,
		logger:          logger.WithPrefix("engine").With("game_id", sessionID),
		rng:             rng,
		eval:            eval,
		policy:          ai.NewPolicy(eval, rng, logger),
		sessionID:       sessionID,
		smallBlind:      opts.SmallBlind,
		bigBlind:        opts.BigBlind,
		dealerIdx:       -1,
		sbIdx:           -1,
		bbIdx:           -1,
		actorIdx:        -1,
		lastRaiserIdx:   -1,
		phase:           Showdown,
		lastAIDecisions: make(map[string]ai.Decision),
	}

	e.players = append(e.players, &Player{
		ID:      "player-0",
		Name:    humanName,
		IsHuman: true,
		Stack:   opts.StartingStack,
	})

	pool := append([]ai.Personality(nil), personalityPool...)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for i := 0; i < aiCount; i++ {
		e.players = append(e.players, &Player{
			ID:          fmt.Sprintf("player-%d", i+1),
			Name:        pool[i].DisplayName(),
			Personality: pool[i],
			Stack:       opts.StartingStack,
		})
	}

	for _, p := range e.players {
		e.totalChips += p.Stack
	}

	e.deck = deck.NewDeck(rng)
	return e, nil
}

// SessionID returns the game id this engine belongs to.
func (e *Engine) SessionID() string { return e.sessionID }

// HandCount returns the number of hands started.
func (e *Engine) HandCount() int { return e.handCount }

// Phase returns the current phase of the hand.
func (e *Engine) Phase() Phase { return e.phase }

// TotalChips returns the conserved chip total for the game.
func (e *Engine) TotalChips() int { return e.totalChips }

// PlayerAt returns the player in the given seat, or nil.
func (e *Engine) PlayerAt(seat int) *Player {
	if seat < 0 || seat >= len(e.players) {
		return nil
	}
	return e.players[seat]
}

// HumanSeat returns the human player's seat index, or -1.
func (e *Engine) HumanSeat() int {
	for i, p := range e.players {
		if p.IsHuman {
			return i
		}
	}
	return -1
}

// StartHand begins a new hand: flushes the event buffer, escalates
// blinds on schedule, reshuffles, deals, posts blinds and sets the first
// actor. With processAI set it then drives AI turns until a human is due
// or the hand resolves.
func (e *Engine) StartHand(processAI bool) error {
	if e.violation != nil {
		return e.violation
	}

	// Defensive: a prior hand that somehow ended without awarding its
	// pot must not leak chips. Credit the first live player so the
	// conservation invariant survives the bug that got us here.
	if e.pot > 0 {
		recipient := e.players[0]
		for _, p := range e.players {
			if p.Active {
				recipient = p
				break
			}
		}
		e.logger.Warn("pot not empty at hand start, crediting defensively",
			"pot", e.pot, "player", recipient.ID)
		recipient.Stack += e.pot
		e.pot = 0
	}

	e.flushEvents()
	e.lastAIDecisions = make(map[string]ai.Decision)
	e.lastWinnerInfo = nil
	e.rounds = nil

	e.handCount++
	if e.opts.BlindEscalation && e.opts.HandsPerLevel > 0 &&
		e.handCount > e.opts.HandsPerLevel && (e.handCount-1)%e.opts.HandsPerLevel == 0 {
		e.smallBlind = int(float64(e.smallBlind) * e.opts.BlindMultiplier)
		e.bigBlind = int(float64(e.bigBlind) * e.opts.BlindMultiplier)
		e.emitEvent(EventBlindIncrease, "", "blind_increase", e.bigBlind, 0,
			fmt.Sprintf("blinds now %d/%d", e.smallBlind, e.bigBlind))
		e.logger.Info("blinds escalated", "small_blind", e.smallBlind, "big_blind", e.bigBlind)
	}

	for _, p := range e.players {
		p.ResetForHand()
	}
	e.community = nil
	e.pot = 0
	e.currentBet = 0
	e.lastRaiserIdx = -1
	e.lastRaiseAmount = 0
	e.phase = PreFlop
	e.currentRound = BettingRound{Phase: PreFlop.String()}

	e.deck.Reset()
	for _, p := range e.players {
		if !p.Active {
			continue
		}
		cards, err := e.deck.Deal(2)
		if err != nil {
			return fmt.Errorf("dealing hole cards: %w", err)
		}
		p.HoleCards = cards
		e.emitEvent(EventDeal, p.ID, "hole_cards", 0, 0, "")
	}

	if err := e.postBlinds(); err != nil {
		return err
	}

	if err := e.assertValid("start of hand"); err != nil {
		return err
	}

	if e.bbIdx >= 0 {
		e.actorIdx = e.nextEligible(e.bbIdx)
	} else {
		e.actorIdx = -1
	}

	e.logger.Debug("hand started",
		"hand", e.handCount, "dealer", e.dealerIdx, "sb", e.sbIdx, "bb", e.bbIdx, "actor", e.actorIdx)

	if processAI {
		if err := e.runAITurns(); err != nil {
			return err
		}
		if _, err := e.AdvanceStateCore(true); err != nil {
			return err
		}
	}
	return nil
}

// postBlinds advances the button and posts the small and big blinds. A
// short stack posts all-in for less, and the table bet is whatever the
// big blind actually posted. Heads-up the dealer posts the small blind.
func (e *Engine) postBlinds() error {
	next := e.nextChipped(e.dealerIdx)
	if next < 0 {
		e.sbIdx, e.bbIdx = -1, -1
		return nil
	}
	e.dealerIdx = next

	chipped := 0
	for _, p := range e.players {
		if p.Stack > 0 {
			chipped++
		}
	}
	if chipped < 2 {
		e.sbIdx, e.bbIdx = -1, -1
		return nil
	}

	if chipped == 2 {
		e.sbIdx = e.dealerIdx
		e.bbIdx = e.nextChipped(e.sbIdx)
	} else {
		e.sbIdx = e.nextChipped(e.dealerIdx)
		e.bbIdx = e.nextChipped(e.sbIdx)
	}
	if e.sbIdx == e.bbIdx || e.sbIdx < 0 || e.bbIdx < 0 {
		return e.fail(fmt.Errorf("%w: blind positions collide (sb=%d bb=%d)", ErrInvariant, e.sbIdx, e.bbIdx))
	}

	sb := e.players[e.sbIdx]
	bb := e.players[e.bbIdx]

	sbPosted := sb.Bet(e.smallBlind)
	e.pot += sbPosted
	e.emitEvent(EventAction, sb.ID, "small_blind", sbPosted, 0, "")

	bbPosted := bb.Bet(e.bigBlind)
	e.pot += bbPosted
	e.currentBet = bbPosted
	e.lastRaiserIdx = e.bbIdx
	e.lastRaiseAmount = e.bigBlind
	e.emitEvent(EventAction, bb.ID, "big_blind", bbPosted, 0, "")

	return e.assertValid("after blinds")
}

// fail records a fatal violation and quarantines the engine.
func (e *Engine) fail(err error) error {
	if e.violation == nil {
		e.violation = err
		e.logger.Error("engine quarantined", "error", err)
	}
	return e.violation
}
