package game

import (
	"reflect"
	"testing"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
)

// sidePotPlayer builds a contender with fixed hole cards and investment.
func sidePotPlayer(id string, invested int, hole string, active, allIn bool) *Player {
	return &Player{
		ID:            id,
		Name:          id,
		TotalInvested: invested,
		Active:        active,
		AllIn:         allIn,
		HoleCards:     deck.MustParseMany(hole),
	}
}

// Scenario: three all-ins at 100/500/1000 layer into a main pot and two
// side pots with the right eligibility.
func TestResolvePotsThreeWayLayering(t *testing.T) {
	t.Parallel()

	board := deck.MustParseMany("2c7d9hJc3s")
	players := []*Player{
		sidePotPlayer("player-0", 100, "AsAh", true, true),  // best: aces
		sidePotPlayer("player-1", 500, "QsQh", true, true),  // worst: queens
		sidePotPlayer("player-2", 1000, "KsKh", true, true), // second: kings
	}

	pots, err := ResolvePots(players, board, evaluator.New())
	if err != nil {
		t.Fatalf("ResolvePots: %v", err)
	}

	if len(pots) != 3 {
		t.Fatalf("expected 3 pots, got %d: %+v", len(pots), pots)
	}

	want := []Pot{
		{Amount: 300, Eligible: []string{"player-0", "player-1", "player-2"}, WinnerIDs: []string{"player-0"}},
		{Amount: 800, Eligible: []string{"player-1", "player-2"}, WinnerIDs: []string{"player-2"}},
		{Amount: 500, Eligible: []string{"player-2"}, WinnerIDs: []string{"player-2"}},
	}
	for i, w := range want {
		if !reflect.DeepEqual(pots[i], w) {
			t.Errorf("pot %d = %+v, want %+v", i, pots[i], w)
		}
	}

	// The resolver works on a copy; investments survive.
	for i, invested := range []int{100, 500, 1000} {
		if players[i].TotalInvested != invested {
			t.Errorf("player %d investment mutated: %d", i, players[i].TotalInvested)
		}
	}
}

// The same scenario end to end: stacks 100/500/1000 all-in, awarded
// through the engine. Final stacks must be exactly 300/0/1300.
func TestThreeWaySidePotAward(t *testing.T) {
	t.Parallel()

	e := newBareEngine(t, 100, 500, 1000)
	e.phase = River
	e.community = deck.MustParseMany("2c7d9hJc3s")
	e.pot = 1600
	e.actorIdx = -1
	holes := []string{"AsAh", "QsQh", "KsKh"}
	for i, p := range e.players {
		p.HoleCards = deck.MustParseMany(holes[i])
		p.TotalInvested = p.Stack
		p.Stack = 0
		p.Active = true
		p.AllIn = true
	}

	if err := e.awardPotAtShowdown(); err != nil {
		t.Fatalf("awardPotAtShowdown: %v", err)
	}

	want := []int{300, 0, 1300}
	for i, w := range want {
		if got := e.players[i].Stack; got != w {
			t.Errorf("player-%d stack = %d, want %d", i, got, w)
		}
	}
	if e.pot != 0 {
		t.Errorf("pot = %d after award", e.pot)
	}
	checkConservation(t, e)

	// Winners with chips behind shed the all-in flag; the busted player
	// keeps it until the next hand resets them.
	if e.players[0].AllIn || e.players[2].AllIn {
		t.Error("paid winners should not stay flagged all-in")
	}

	info := e.GetShowdownResults()
	if info == nil || len(info.AllShowdownHands) != 3 {
		t.Fatalf("expected 3 showdown hands, got %+v", info)
	}
	for _, w := range info.Winners {
		if w.WonByFold {
			t.Errorf("showdown winner %s marked won_by_fold", w.PlayerID)
		}
	}
}

func TestResolvePotsFoldedChipsStayInPot(t *testing.T) {
	t.Parallel()

	board := deck.MustParseMany("2c7d9hJc3s")
	players := []*Player{
		sidePotPlayer("player-0", 100, "AsAh", true, false),
		sidePotPlayer("player-1", 100, "KsKh", true, false),
		sidePotPlayer("player-2", 100, "QsQh", false, false), // folded
	}

	pots, err := ResolvePots(players, board, evaluator.New())
	if err != nil {
		t.Fatalf("ResolvePots: %v", err)
	}

	if len(pots) != 1 {
		t.Fatalf("expected a single pot, got %d", len(pots))
	}
	if pots[0].Amount != 300 {
		t.Errorf("folded chips missing from the pot: %d", pots[0].Amount)
	}
	if len(pots[0].Eligible) != 2 {
		t.Errorf("folded player should not be eligible: %v", pots[0].Eligible)
	}
	if !reflect.DeepEqual(pots[0].WinnerIDs, []string{"player-0"}) {
		t.Errorf("winners = %v, want player-0", pots[0].WinnerIDs)
	}
}

func TestResolvePotsSplitTie(t *testing.T) {
	t.Parallel()

	// Both players play the board's straight.
	board := deck.MustParseMany("4s5d6h7c8c")
	players := []*Player{
		sidePotPlayer("player-0", 50, "AsKh", true, false),
		sidePotPlayer("player-1", 50, "AdQh", true, false),
	}

	pots, err := ResolvePots(players, board, evaluator.New())
	if err != nil {
		t.Fatalf("ResolvePots: %v", err)
	}
	if len(pots) != 1 {
		t.Fatalf("expected one pot, got %d", len(pots))
	}
	if !reflect.DeepEqual(pots[0].WinnerIDs, []string{"player-0", "player-1"}) {
		t.Errorf("winners = %v, want a two-way tie in seat order", pots[0].WinnerIDs)
	}
}

// An odd pot split between tied winners pays the indivisible chip to the
// earliest seat and conserves every chip.
func TestOddChipSplitConserves(t *testing.T) {
	t.Parallel()

	e := newBareEngine(t, 0, 0, 0)
	e.totalChips = 101
	e.phase = River
	e.community = deck.MustParseMany("4s5d6h7c8c")
	e.pot = 101
	e.actorIdx = -1
	for i, hole := range []string{"AsKh", "AdQh"} {
		e.players[i].HoleCards = deck.MustParseMany(hole)
		e.players[i].TotalInvested = 50
		e.players[i].Active = true
		e.players[i].AllIn = true
	}
	// One chip of dead money from a folded seat makes the pot odd.
	e.players[2].Active = false
	e.players[2].TotalInvested = 1

	if err := e.awardPotAtShowdown(); err != nil {
		t.Fatalf("awardPotAtShowdown: %v", err)
	}
	if e.players[0].Stack+e.players[1].Stack != 101 {
		t.Fatalf("chips lost in split: %d + %d", e.players[0].Stack, e.players[1].Stack)
	}
	if e.players[0].Stack != 51 || e.players[1].Stack != 50 {
		t.Errorf("odd chip should go to the earliest winner: %d vs %d",
			e.players[0].Stack, e.players[1].Stack)
	}
	checkConservation(t, e)
}

func TestResolvePotsSingleContender(t *testing.T) {
	t.Parallel()

	players := []*Player{
		sidePotPlayer("player-0", 40, "AsAh", true, false),
		{ID: "player-1", TotalInvested: 10, Active: false},
	}

	pots, err := ResolvePots(players, nil, evaluator.New())
	if err != nil {
		t.Fatalf("ResolvePots: %v", err)
	}
	if len(pots) != 1 || pots[0].Amount != 50 {
		t.Fatalf("pots = %+v, want one 50-chip pot", pots)
	}
	if !reflect.DeepEqual(pots[0].WinnerIDs, []string{"player-0"}) {
		t.Errorf("winners = %v", pots[0].WinnerIDs)
	}
}
