package server

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-live/internal/game"
)

// observer is a sink for game events. Connections implement it; tests
// substitute fakes.
type observer interface {
	Send(*Message) error
	CloseObserver()
}

// Session owns one game: the engine, the mutex that serialises every
// mutation and emission for it, the observer set and the step-mode
// rendezvous. All message handling for a game funnels through here, so
// within a game the engine is effectively single-threaded; independent
// games proceed in parallel.
type Session struct {
	id     string
	engine *game.Engine
	logger *log.Logger
	clock  quartz.Clock

	aiDelay     time.Duration
	stepTimeout time.Duration

	// mu is the per-game lock. Everything that touches the engine or
	// broadcasts holds it; the only blocking waits under it are the
	// step-mode rendezvous, the AI pacing delay and observer writes.
	mu        sync.Mutex
	observers map[observer]struct{}
	started   bool

	// stepCh is the single-slot step-mode rendezvous. Continue frames
	// signal it without taking mu, because the driver holds mu while
	// waiting on it.
	stepCh chan struct{}

	// Observer preferences for the AI sequence in flight, set by the
	// frame that started it.
	stepMode     bool
	showThinking bool

	// onIdle tears the session down once the last observer leaves.
	onIdle func(id string)
}

// NewSession wraps an engine for the pipeline.
func NewSession(id string, engine *game.Engine, logger *log.Logger, clock quartz.Clock, aiDelay, stepTimeout time.Duration, onIdle func(string)) *Session {
	return &Session{
		id:          id,
		engine:      engine,
		logger:      logger.WithPrefix("session").With("game_id", id),
		clock:       clock,
		aiDelay:     aiDelay,
		stepTimeout: stepTimeout,
		observers:   make(map[observer]struct{}),
		stepCh:      make(chan struct{}, 1),
		onIdle:      onIdle,
	}
}

// ID returns the game id.
func (s *Session) ID() string { return s.id }

// AddObserver registers a connection and brings it up to date. The
// first observer boots the first hand.
func (s *Session) AddObserver(obs observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers[obs] = struct{}{}

	if !s.started {
		s.started = true
		if err := s.engine.StartHand(false); err != nil {
			s.logger.Error("failed to start first hand", "error", err)
			s.sendError(obs, err)
			return
		}
		s.broadcastState()
		s.runAIDriver()
		s.advanceUntilBlocked()
		return
	}

	// Late joiner: just send the current state.
	if msg := s.stateMessage(); msg != nil {
		if err := obs.Send(msg); err != nil {
			s.pruneLocked(obs)
		}
	}
}

// RemoveObserver unregisters a connection, tearing the session down
// when it was the last one.
func (s *Session) RemoveObserver(obs observer) {
	s.mu.Lock()
	delete(s.observers, obs)
	idle := len(s.observers) == 0
	s.mu.Unlock()

	if idle && s.onIdle != nil {
		s.onIdle(s.id)
	}
}

// HandleFrame routes one client frame. Continue frames are handled
// inline and bypass the game lock: the driver holds it while waiting
// for them. Action and next_hand frames run on their own goroutine so
// the caller's read loop stays free to deliver the continue frames the
// driver is waiting on.
func (s *Session) HandleFrame(obs observer, f ClientFrame) {
	switch f.Type {
	case FrameContinue:
		s.signalContinue()
	case FrameAction:
		go s.handleAction(obs, f)
	case FrameNextHand:
		go s.handleNextHand(obs, f)
	default:
		s.mu.Lock()
		s.sendError(obs, errors.New("unknown message type: "+f.Type))
		s.mu.Unlock()
	}
}

// handleAction processes a human action: apply it, fan the new state
// out, then drive the AI until the table needs the human again.
func (s *Session) handleAction(obs observer, f ClientFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stepMode = f.StepMode
	s.showThinking = f.ShowAIThinking

	action, err := game.ParseAction(f.Action)
	if err != nil {
		s.sendError(obs, err)
		return
	}

	if _, err := s.engine.SubmitHumanAction(action, f.Amount, false); err != nil {
		s.sendError(obs, err)
		return
	}

	s.broadcastState()
	s.runAIDriver()
	s.advanceUntilBlocked()
}

// handleNextHand starts the next hand and drives it to the first human
// decision.
func (s *Session) handleNextHand(obs observer, f ClientFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stepMode = f.StepMode
	s.showThinking = f.ShowAIThinking

	if err := s.engine.StartHand(false); err != nil {
		s.sendError(obs, err)
		return
	}

	s.broadcastState()
	s.runAIDriver()
	s.advanceUntilBlocked()
}

// signalContinue releases a waiting step-mode driver. Lock-free on mu
// by design; the channel is the synchronisation.
func (s *Session) signalContinue() {
	select {
	case s.stepCh <- struct{}{}:
	default:
	}
}

// advanceUntilBlocked applies end-of-round transitions while they are
// due, rerunning the AI driver after each street, until the engine
// blocks on the human, reaches showdown, or stops changing.
func (s *Session) advanceUntilBlocked() {
	for s.engine.BettingRoundComplete() && s.engine.Phase() != game.Showdown {
		changed, err := s.engine.AdvanceStateCore(false)
		if err != nil {
			s.logger.Error("state advance failed", "error", err)
			s.broadcastError(err)
			return
		}
		if !changed {
			return
		}
		s.broadcastState()
		if s.engine.Phase() == game.Showdown {
			return
		}
		s.runAIDriver()
	}
}

// runAIDriver walks AI turns one action at a time, broadcasting each
// action and state and honouring step mode between them. It stops when
// the round settles, the hand ends or the human is due to act. An AI
// decision the engine rejects becomes a fold so the hand always makes
// progress.
func (s *Session) runAIDriver() {
	iterations := 0
	lastSeat, sameSeat := -1, 0

	for {
		if s.engine.BettingRoundComplete() {
			return
		}
		seat := s.engine.CurrentActorSeat()
		if seat < 0 {
			return
		}

		if iterations++; iterations > 75 {
			s.logger.Error("AI driver exceeded iteration cap")
			return
		}
		if seat == lastSeat {
			if sameSeat++; sameSeat > 5 {
				s.logger.Error("AI driver stuck on seat", "seat", seat)
				return
			}
		} else {
			lastSeat, sameSeat = seat, 1
		}

		p := s.engine.PlayerAt(seat)
		if p.IsHuman {
			if p.CanAct() && !p.HasActed {
				return
			}
			s.engine.AdvanceToNextActor()
			continue
		}
		if !p.CanAct() || p.HasActed {
			s.engine.AdvanceToNextActor()
			continue
		}

		dec, err := s.engine.DecideAI(seat)
		if err != nil {
			s.logger.Error("AI decision failed", "seat", seat, "error", err)
			return
		}
		action, err := game.ParseAction(dec.Action)
		if err != nil {
			action = game.Fold
		}
		res, err := s.engine.ApplyAction(seat, action, dec.Amount, dec.HandStrength, dec.Reasoning)
		if err != nil {
			if s.engine.Violation() != nil {
				s.broadcastError(err)
				return
			}
			s.logger.Warn("AI action rejected, falling back to fold",
				"player", p.Name, "action", dec.Action, "error", err)
			res, err = s.engine.ApplyAction(seat, game.Fold, 0, dec.HandStrength, "fallback fold")
			if err != nil {
				s.broadcastError(err)
				return
			}
			dec.Action = "fold"
			dec.Amount = 0
		}

		// ai_action first, then the state it produced: observers rely
		// on this order.
		payload := AIActionPayload{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Action:     dec.Action,
			Amount:     dec.Amount,
			StackAfter: p.Stack,
			PotAfter:   s.engine.GetGameState().Pot,
			BetAmount:  res.BetAmount,
		}
		if s.showThinking {
			payload.Reasoning = dec.Reasoning
		}
		s.broadcast(NewMessage(MessageAIAction, payload))
		s.broadcastState()

		if s.stepMode {
			s.stepPause(p.Name, dec.Action)
		} else if s.aiDelay > 0 {
			s.pace()
		}

		if res.TriggersShowdown {
			return
		}
		if s.engine.CurrentActorSeat() < 0 {
			return
		}
		s.engine.AdvanceToNextActor()
	}
}

// stepPause waits for the observer's continue frame, resuming on its
// own after the step timeout.
func (s *Session) stepPause(playerName, action string) {
	// Drop any stale signal so a double continue cannot skip a pause.
	select {
	case <-s.stepCh:
	default:
	}

	s.broadcast(NewMessage(MessageAwaitingContinue, AwaitingContinuePayload{
		PlayerName: playerName,
		Action:     action,
	}))

	timedOut := make(chan struct{})
	timer := s.clock.AfterFunc(s.stepTimeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	select {
	case <-s.stepCh:
	case <-timedOut:
		s.broadcast(NewMessage(MessageAutoResumed, AutoResumedPayload{
			Reason:         "timeout",
			TimeoutSeconds: int(s.stepTimeout / time.Second),
		}))
	}
}

// pace inserts the cosmetic delay between AI actions.
func (s *Session) pace() {
	done := make(chan struct{})
	timer := s.clock.AfterFunc(s.aiDelay, func() {
		close(done)
	})
	defer timer.Stop()
	<-done
}

// stateMessage builds a redacted state_update for the current observer
// preferences.
func (s *Session) stateMessage() *Message {
	snap := s.engine.GetGameState()
	return NewMessage(MessageStateUpdate, redactSnapshot(snap, s.showThinking))
}

func (s *Session) broadcastState() {
	s.broadcast(s.stateMessage())
}

func (s *Session) broadcastError(err error) {
	s.broadcast(NewMessage(MessageError, ErrorPayload{Message: err.Error()}))
}

// broadcast delivers best-effort to every observer; a failed write
// prunes that observer and leaves the rest untouched.
func (s *Session) broadcast(msg *Message) {
	if msg == nil {
		return
	}
	for obs := range s.observers {
		if err := obs.Send(msg); err != nil {
			s.logger.Debug("pruning observer after failed write", "error", err)
			s.pruneLocked(obs)
		}
	}
}

// pruneLocked drops an observer while holding mu.
func (s *Session) pruneLocked(obs observer) {
	delete(s.observers, obs)
	obs.CloseObserver()
}

func (s *Session) sendError(obs observer, err error) {
	if sendErr := obs.Send(NewMessage(MessageError, ErrorPayload{Message: err.Error()})); sendErr != nil {
		s.pruneLocked(obs)
	}
}
