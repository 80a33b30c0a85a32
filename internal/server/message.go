package server

import (
	"encoding/json"
	"fmt"

	"github.com/lox/holdem-live/internal/game"
)

// Server → client event types.
const (
	MessageStateUpdate      = "state_update"
	MessageAIAction         = "ai_action"
	MessageAwaitingContinue = "awaiting_continue"
	MessageAutoResumed      = "auto_resumed"
	MessageError            = "error"
)

// Client → server frame types.
const (
	FrameAction   = "action"
	FrameContinue = "continue"
	FrameNextHand = "next_hand"
)

// Message is a server → client event: a type tag and a payload object.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// NewMessage wraps a payload in its typed frame.
func NewMessage(messageType string, payload any) *Message {
	return &Message{Type: messageType, Payload: payload}
}

// ClientFrame is an incoming client message. Action amounts decode as
// integers only; a fractional amount fails the frame.
type ClientFrame struct {
	Type           string `json:"type"`
	Action         string `json:"action,omitempty"`
	Amount         int    `json:"amount,omitempty"`
	ShowAIThinking bool   `json:"show_ai_thinking,omitempty"`
	StepMode       bool   `json:"step_mode,omitempty"`
}

// ParseClientFrame decodes a raw text frame.
func ParseClientFrame(data []byte) (ClientFrame, error) {
	var f ClientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return ClientFrame{}, fmt.Errorf("malformed frame: %w", err)
	}
	if f.Type == "" {
		return ClientFrame{}, fmt.Errorf("frame missing type")
	}
	return f, nil
}

// AIActionPayload announces one AI action to observers. Reasoning is
// present only when the observer sequence opted into AI thinking.
type AIActionPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Action     string `json:"action"`
	Amount     int    `json:"amount"`
	Reasoning  string `json:"reasoning,omitempty"`
	StackAfter int    `json:"stack_after"`
	PotAfter   int    `json:"pot_after"`
	BetAmount  int    `json:"bet_amount"`
}

// AwaitingContinuePayload is emitted in step mode after each AI action;
// the observer answers with a continue frame.
type AwaitingContinuePayload struct {
	PlayerName string `json:"player_name"`
	Action     string `json:"action"`
}

// AutoResumedPayload is emitted when a step-mode wait times out.
type AutoResumedPayload struct {
	Reason         string `json:"reason"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// ErrorPayload carries a short human-readable rejection.
type ErrorPayload struct {
	Message string `json:"message"`
}

// redactSnapshot conceals what the observer is not entitled to see:
// non-human hole cards stay hidden until showdown, and the AI analysis
// fields are stripped unless the observer opted into AI thinking. The
// snapshot is modified in place; callers pass a fresh copy.
func redactSnapshot(s *game.Snapshot, showThinking bool) *game.Snapshot {
	if s.State != "showdown" {
		for i := range s.Players {
			if !s.Players[i].IsHuman {
				s.Players[i].HoleCards = []string{}
			}
		}
	}
	if !showThinking {
		for id, dec := range s.LastAIDecisions {
			dec.Reasoning = ""
			dec.HandStrength = nil
			dec.PotOdds = nil
			dec.Confidence = nil
			dec.SPR = nil
			s.LastAIDecisions[id] = dec
		}
	}
	return s
}
