package game

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-live/internal/ai"
	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
	"github.com/lox/holdem-live/internal/randutil"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.BlindEscalation = false
	return opts
}

// newTestGame builds a seeded game through the public constructor.
func newTestGame(t *testing.T, aiCount int, seed int64) *Engine {
	t.Helper()
	opts := testOptions()
	opts.Seed = seed
	e, err := NewGame("test-game", "Human", aiCount, opts, testLogger())
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return e
}

// newBareEngine builds an engine with explicit stacks, bypassing the
// constructor's seat limits so tests can shape any table.
func newBareEngine(t *testing.T, stacks ...int) *Engine {
	t.Helper()
	opts := testOptions()
	rng := randutil.New(1)
	eval := evaluator.New()
	e := &Engine{
		opts:            opts,
		logger:          testLogger(),
		rng:             rng,
		eval:            eval,
		policy:          ai.NewPolicy(eval, rng, testLogger()),
		sessionID:       "test-game",
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
	for i, s := range stacks {
		p := &Player{
			ID:    fmt.Sprintf("player-%d", i),
			Name:  fmt.Sprintf("P%d", i),
			Stack: s,
		}
		if i == 0 {
			p.IsHuman = true
			p.Name = "Human"
		} else {
			p.Personality = ai.Conservative
		}
		e.players = append(e.players, p)
		e.totalChips += s
	}
	e.deck = deck.NewDeck(rng)
	return e
}

// checkConservation fails the test if chips leaked.
func checkConservation(t *testing.T, e *Engine) {
	t.Helper()
	sum := e.pot
	for _, p := range e.players {
		sum += p.Stack
	}
	if sum != e.totalChips {
		t.Fatalf("chip conservation broken: stacks+pot=%d, total=%d", sum, e.totalChips)
	}
}

// act applies an action for a seat and advances the turn on success.
func act(t *testing.T, e *Engine, seat int, action Action, amount int) ActionResult {
	t.Helper()
	res, err := e.ApplyAction(seat, action, amount, 0, "")
	if err != nil {
		t.Fatalf("ApplyAction(seat=%d, %s, %d): %v", seat, action, amount, err)
	}
	if !res.TriggersShowdown {
		e.AdvanceToNextActor()
	}
	return res
}

func TestNewGameSeatsDistinctPersonalities(t *testing.T) {
	t.Parallel()

	e := newTestGame(t, 3, 7)

	if len(e.players) != 4 {
		t.Fatalf("expected 4 players, got %d", len(e.players))
	}
	if !e.players[0].IsHuman {
		t.Error("seat 0 should be the human")
	}
	seen := make(map[ai.Personality]bool)
	for _, p := range e.players[1:] {
		if p.Personality == "" {
			t.Errorf("%s has no personality", p.ID)
		}
		if seen[p.Personality] {
			t.Errorf("personality %s assigned twice", p.Personality)
		}
		seen[p.Personality] = true
	}
	if e.TotalChips() != 4000 {
		t.Errorf("expected 4000 total chips, got %d", e.TotalChips())
	}
}

func TestNewGameRejectsBadAICount(t *testing.T) {
	t.Parallel()

	for _, count := range []int{0, 4, -1} {
		_, err := NewGame("g", "x", count, testOptions(), testLogger())
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ai_count=%d: expected ErrInvalidInput, got %v", count, err)
		}
	}
}

func TestStartHandDealsAndPostsBlinds(t *testing.T) {
	t.Parallel()

	e := newBareEngine(t, 1000, 1000, 1000, 1000)
	if err := e.StartHand(false); err != nil {
		t.Fatalf("StartHand: %v", err)
	}

	if e.dealerIdx != 0 || e.sbIdx != 1 || e.bbIdx != 2 {
		t.Fatalf("positions: dealer=%d sb=%d bb=%d", e.dealerIdx, e.sbIdx, e.bbIdx)
	}
	if e.actorIdx != 3 {
		t.Fatalf("first actor should be seat 3 (UTG), got %d", e.actorIdx)
	}
	if e.pot != 15 || e.currentBet != 10 {
		t.Fatalf("pot=%d currentBet=%d after blinds", e.pot, e.currentBet)
	}
	if e.players[1].Stack != 995 || e.players[2].Stack != 990 {
		t.Fatalf("blind stacks: sb=%d bb=%d", e.players[1].Stack, e.players[2].Stack)
	}
	for _, p := range e.players {
		if len(p.HoleCards) != 2 {
			t.Errorf("%s has %d hole cards", p.ID, len(p.HoleCards))
		}
	}
	checkConservation(t, e)
}

// Scenario: everyone folds to the big blind pre-flop.
func TestPreflopFoldAroundToBB(t *testing.T) {
	t.Parallel()

	e := newBareEngine(t, 1000, 1000, 1000, 1000)
	if err := e.StartHand(false); err != nil {
		t.Fatalf("StartHand: %v", err)
	}

	act(t, e, 3, Fold, 0)
	act(t, e, 0, Fold, 0)
	res := act(t, e, 1, Fold, 0)

	if !res.TriggersShowdown {
		t.Fatal("third fold should end the hand")
	}
	if e.phase != Showdown {
		t.Fatalf("phase should be showdown, got %s", e.phase)
	}

	want := []int{1000, 995, 1005, 1000}
	for i, w := range want {
		if got := e.players[i].Stack; got != w {
			t.Errorf("player-%d stack = %d, want %d", i, got, w)
		}
	}
	if e.pot != 0 {
		t.Errorf("pot should be empty, got %d", e.pot)
	}
	checkConservation(t, e)

	info := e.GetShowdownResults()
	if info == nil || len(info.Winners) != 1 {
		t.Fatalf("expected one winner, got %+v", info)
	}
	if info.Winners[0].PlayerID != "player-2" || !info.Winners[0].WonByFold {
		t.Errorf("winner = %+v, want player-2 by fold", info.Winners[0])
	}

	// The last event in the hand is the pot award to the BB.
	events := e.Events()
	last := events[len(events)-1]
	if last.Kind != EventPotAward || last.PlayerID != "player-2" {
		t.Errorf("last event = %+v, want pot_award to player-2", last)
	}
}

func TestHeadsUpDealerPostsSmallBlind(t *testing.T) {
	t.Parallel()

	e := newBareEngine(t, 1000, 1000)
	if err := e.StartHand(false); err != nil {
		t.Fatalf("StartHand: %v", err)
	}

	if e.sbIdx != e.dealerIdx {
		t.Errorf("heads-up SB should be the dealer: dealer=%d sb=%d", e.dealerIdx, e.sbIdx)
	}
	if e.bbIdx == e.sbIdx {
		t.Errorf("BB collides with SB at %d", e.bbIdx)
	}
	// Dealer acts first pre-flop heads-up.
	if e.actorIdx != e.sbIdx {
		t.Errorf("first actor should be the SB/dealer, got %d", e.actorIdx)
	}
}

func TestShortStackPostsBlindAllInForLess(t *testing.T) {
	t.Parallel()

	e := newBareEngine(t, 1000, 1000, 8)
	if err := e.StartHand(false); err != nil {
		t.Fatalf("StartHand: %v", err)
	}

	// Seat 2 is the BB with only 8 chips.
	if e.bbIdx != 2 {
		t.Fatalf("expected BB at seat 2, got %d", e.bbIdx)
	}
	bb := e.players[2]
	if bb.Stack != 0 || !bb.AllIn {
		t.Errorf("short BB should be all-in: stack=%d allIn=%v", bb.Stack, bb.AllIn)
	}
	if e.currentBet != 8 {
		t.Errorf("current bet should equal the actual post (8), got %d", e.currentBet)
	}
	checkConservation(t, e)
}

func TestBlindEscalationSchedule(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.BlindEscalation = true
	opts.HandsPerLevel = 2
	opts.BlindMultiplier = 2.0
	opts.Seed = 3
	e, err := NewGame("esc", "Human", 2, opts, testLogger())
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	// Hands 1 and 2 play at 5/10; hand 3 starts the next level.
	wantBlinds := map[int][2]int{
		1: {5, 10},
		2: {5, 10},
		3: {10, 20},
		4: {10, 20},
		5: {20, 40},
	}
	for hand := 1; hand <= 5; hand++ {
		if err := e.StartHand(false); err != nil {
			t.Fatalf("StartHand %d: %v", hand, err)
		}
		want := wantBlinds[hand]
		if e.smallBlind != want[0] || e.bigBlind != want[1] {
			t.Errorf("hand %d: blinds %d/%d, want %d/%d",
				hand, e.smallBlind, e.bigBlind, want[0], want[1])
		}
		// Fold the hand out to move on.
		for e.phase != Showdown {
			seat := e.CurrentActorSeat()
			if seat < 0 {
				break
			}
			res, err := e.ApplyAction(seat, Fold, 0, 0, "")
			if err != nil {
				t.Fatalf("fold: %v", err)
			}
			if res.TriggersShowdown {
				break
			}
			e.AdvanceToNextActor()
		}
	}
}

// Many consecutive hands driven entirely by the engine's own AI turns
// must conserve chips at every hand boundary.
func TestMultiHandConservationWithAI(t *testing.T) {
	t.Parallel()

	e := newTestGame(t, 3, 42)

	for hand := 0; hand < 25; hand++ {
		chipped := 0
		for _, p := range e.players {
			if p.Stack >= minPlayableStack {
				chipped++
			}
		}
		if chipped < 2 {
			break
		}

		if err := e.StartHand(true); err != nil {
			t.Fatalf("hand %d: StartHand: %v", hand, err)
		}

		// Fold the human whenever the engine stops on them.
		for guard := 0; e.Phase() != Showdown && guard < 20; guard++ {
			if e.CurrentActorSeat() != e.HumanSeat() {
				if _, err := e.AdvanceStateCore(true); err != nil {
					t.Fatalf("hand %d: advance: %v", hand, err)
				}
				continue
			}
			if _, err := e.SubmitHumanAction(Fold, 0, true); err != nil {
				t.Fatalf("hand %d: human fold: %v", hand, err)
			}
		}

		if e.Phase() != Showdown {
			t.Fatalf("hand %d did not finish", hand)
		}
		checkConservation(t, e)
		if err := e.Violation(); err != nil {
			t.Fatalf("hand %d: engine quarantined: %v", hand, err)
		}
	}
}

func TestStartHandRejectedWhileQuarantined(t *testing.T) {
	t.Parallel()

	e := newBareEngine(t, 1000, 1000)
	if err := e.StartHand(false); err != nil {
		t.Fatalf("StartHand: %v", err)
	}

	// Corrupt the books and trip the invariant layer.
	e.players[0].Stack += 100
	if err := e.assertValid("test corruption"); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}

	if err := e.StartHand(false); !errors.Is(err, ErrInvariant) {
		t.Errorf("StartHand after violation should fail, got %v", err)
	}
	if _, err := e.ApplyAction(e.actorIdx, Call, 0, 0, ""); !errors.Is(err, ErrInvariant) {
		t.Errorf("ApplyAction after violation should fail, got %v", err)
	}
}

func TestDefensivePotCreditAtHandStart(t *testing.T) {
	t.Parallel()

	e := newBareEngine(t, 1000, 1000, 1000)
	if err := e.StartHand(false); err != nil {
		t.Fatalf("StartHand: %v", err)
	}

	// Simulate a buggy hand end: chips stranded in the pot.
	e.phase = Showdown
	e.actorIdx = -1

	if err := e.StartHand(false); err != nil {
		t.Fatalf("StartHand: %v", err)
	}
	checkConservation(t, e)
}
