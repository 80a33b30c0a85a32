package server

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-live/internal/game"
)

// fakeObserver records everything a session sends it. Setting fail makes
// every write error so pruning can be exercised.
type fakeObserver struct {
	mu     sync.Mutex
	msgs   []*Message
	fail   bool
	closed bool
}

func (f *fakeObserver) Send(m *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("peer gone")
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeObserver) CloseObserver() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeObserver) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *fakeObserver) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeObserver) messages() []*Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Message, len(f.msgs))
	copy(out, f.msgs)
	return out
}

func (f *fakeObserver) types() []string {
	var out []string
	for _, m := range f.messages() {
		out = append(out, m.Type)
	}
	return out
}

func (f *fakeObserver) countOf(messageType string) int {
	n := 0
	for _, m := range f.messages() {
		if m.Type == messageType {
			n++
		}
	}
	return n
}

// lastSnapshot returns the payload of the newest state_update.
func (f *fakeObserver) lastSnapshot() *game.Snapshot {
	msgs := f.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == MessageStateUpdate {
			return msgs[i].Payload.(*game.Snapshot)
		}
	}
	return nil
}

func newTestSession(t *testing.T, seed int64, clock quartz.Clock, onIdle func(string)) *Session {
	t.Helper()
	logger := log.New(io.Discard)
	opts := game.DefaultOptions()
	opts.Seed = seed
	opts.BlindEscalation = false
	engine, err := game.NewGame("g-test", "Human", 3, opts, logger)
	require.NoError(t, err)
	return NewSession("g-test", engine, logger, clock, 0, time.Minute, onIdle)
}

func TestFirstObserverBootsHand(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, 42, quartz.NewReal(), nil)
	obs := &fakeObserver{}
	s.AddObserver(obs)

	types := obs.types()
	require.NotEmpty(t, types)
	assert.Equal(t, MessageStateUpdate, types[0], "the hand opens with a state_update")

	// UTG is an AI seat, so at least one AI acts before the human's
	// turn, and each ai_action is immediately followed by the state it
	// produced.
	require.GreaterOrEqual(t, obs.countOf(MessageAIAction), 1)
	for i, typ := range types {
		if typ == MessageAIAction {
			require.Less(t, i+1, len(types), "ai_action missing its state_update")
			assert.Equal(t, MessageStateUpdate, types[i+1])
		}
	}

	snap := obs.lastSnapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.HandCount)
	// Broadcast states are redacted: only the human's cards are dealt
	// face up.
	for _, p := range snap.Players {
		if p.IsHuman {
			assert.Len(t, p.HoleCards, 2)
		} else {
			assert.Empty(t, p.HoleCards, "%s cards leaked", p.PlayerID)
		}
	}
}

func TestLateJoinerGetsCurrentState(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, 42, quartz.NewReal(), nil)
	first := &fakeObserver{}
	s.AddObserver(first)

	late := &fakeObserver{}
	s.AddObserver(late)

	types := late.types()
	require.Len(t, types, 1, "a late joiner gets exactly the current state")
	assert.Equal(t, MessageStateUpdate, types[0])
}

func TestLastObserverLeavingFiresOnIdle(t *testing.T) {
	t.Parallel()

	var torn []string
	s := newTestSession(t, 42, quartz.NewReal(), func(id string) { torn = append(torn, id) })

	a, b := &fakeObserver{}, &fakeObserver{}
	s.AddObserver(a)
	s.AddObserver(b)

	s.RemoveObserver(a)
	assert.Empty(t, torn, "teardown must wait for the last observer")

	s.RemoveObserver(b)
	assert.Equal(t, []string{"g-test"}, torn)
}

func TestUnknownFrameTypeRejected(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, 42, quartz.NewReal(), nil)
	obs := &fakeObserver{}
	s.AddObserver(obs)

	before := obs.countOf(MessageError)
	s.HandleFrame(obs, ClientFrame{Type: "bogus"})
	assert.Equal(t, before+1, obs.countOf(MessageError))
}

func TestHumanFoldPlaysHandOut(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, 42, quartz.NewReal(), nil)
	obs := &fakeObserver{}
	s.AddObserver(obs)

	// The driver stopped on the human; folding hands the rest of the
	// hand to the AI seats, which must carry it to showdown unattended.
	s.handleAction(obs, ClientFrame{Type: FrameAction, Action: "fold"})

	snap := obs.lastSnapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "showdown", snap.State)
	require.NotNil(t, snap.WinnerInfo)
	assert.NotEmpty(t, snap.WinnerInfo.Winners)
	assert.Zero(t, snap.Pot, "the pot is paid out by showdown")
}

func TestNextHandAfterShowdown(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, 42, quartz.NewReal(), nil)
	obs := &fakeObserver{}
	s.AddObserver(obs)
	s.handleAction(obs, ClientFrame{Type: FrameAction, Action: "fold"})

	s.handleNextHand(obs, ClientFrame{Type: FrameNextHand})

	snap := obs.lastSnapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.HandCount)
	assert.NotEqual(t, "showdown", snap.State, "a fresh hand should be in progress")
}

func TestInvalidActionReportsError(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, 42, quartz.NewReal(), nil)
	obs := &fakeObserver{}
	s.AddObserver(obs)

	before := obs.countOf(MessageError)
	s.handleAction(obs, ClientFrame{Type: FrameAction, Action: "flamingo"})
	assert.Equal(t, before+1, obs.countOf(MessageError), "unparseable action")

	// A legal verb at an illegal moment is also rejected, without
	// advancing the hand.
	snapBefore := obs.lastSnapshot()
	s.handleAction(obs, ClientFrame{Type: FrameAction, Action: "raise", Amount: 11})
	assert.Equal(t, before+2, obs.countOf(MessageError), "below-minimum raise")
	assert.Equal(t, snapBefore.Pot, obs.lastSnapshot().Pot)
}

func TestBroadcastPrunesDeadObserver(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, 42, quartz.NewReal(), nil)
	healthy := &fakeObserver{}
	s.AddObserver(healthy)
	dying := &fakeObserver{}
	s.AddObserver(dying)

	dying.setFail(true)
	s.mu.Lock()
	s.broadcast(NewMessage(MessageError, ErrorPayload{Message: "ping"}))
	remaining := len(s.observers)
	s.mu.Unlock()

	assert.Equal(t, 1, remaining, "the failed observer is dropped")
	assert.True(t, dying.isClosed())
	assert.False(t, healthy.isClosed())
	assert.GreaterOrEqual(t, healthy.countOf(MessageError), 1)
}

func TestStepPauseResumesOnContinue(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, 7, quartz.NewMock(t), nil)
	obs := &fakeObserver{}
	s.observers[obs] = struct{}{}

	done := make(chan struct{})
	go func() {
		s.mu.Lock()
		s.stepPause("Rocky", "call")
		s.mu.Unlock()
		close(done)
	}()

	require.Eventually(t, func() bool {
		return obs.countOf(MessageAwaitingContinue) == 1
	}, 5*time.Second, 10*time.Millisecond)

	s.signalContinue()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("continue did not release the pause")
	}
	assert.Zero(t, obs.countOf(MessageAutoResumed))
}

func TestStepPauseTimesOut(t *testing.T) {
	t.Parallel()

	mock := quartz.NewMock(t)
	s := newTestSession(t, 7, mock, nil)
	obs := &fakeObserver{}
	s.observers[obs] = struct{}{}

	// A continue left over from before the pause must not let it skip.
	s.signalContinue()

	trap := mock.Trap().AfterFunc()
	defer trap.Close()

	done := make(chan struct{})
	go func() {
		s.stepPause("Blaze", "raise")
		close(done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	call := trap.MustWait(ctx)
	call.Release(ctx)

	mock.Advance(s.stepTimeout).MustWait(ctx)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout did not release the pause")
	}

	msgs := obs.messages()
	require.Equal(t, 1, obs.countOf(MessageAutoResumed))
	last := msgs[len(msgs)-1]
	require.Equal(t, MessageAutoResumed, last.Type)
	payload := last.Payload.(AutoResumedPayload)
	assert.Equal(t, "timeout", payload.Reason)
	assert.Equal(t, 60, payload.TimeoutSeconds)
}

func TestSignalContinueNeverBlocks(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, 7, quartz.NewReal(), nil)
	// Nobody is waiting; repeated signals must not pile up or block.
	for i := 0; i < 3; i++ {
		s.signalContinue()
	}
}
