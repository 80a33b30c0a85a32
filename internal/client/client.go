// Package client implements the terminal client: a thin WebSocket wire
// layer plus a Bubble Tea UI that renders the server's event stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-live/internal/server"
)

// Envelope is a server event with its payload still raw, decoded per
// type by the UI.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client talks to one game: game creation over HTTP, then the event
// stream over WebSocket.
type Client struct {
	server string
	conn   *websocket.Conn
	logger *log.Logger
}

// New creates a client for a server address like "localhost:8080".
func New(server string, logger *log.Logger) *Client {
	return &Client{
		server: server,
		logger: logger.WithPrefix("client"),
	}
}

// CreateGame asks the server for a new game and returns its id.
func (c *Client) CreateGame(ctx context.Context, playerName string, aiCount int) (string, error) {
	body, err := json.Marshal(map[string]any{
		"player_name": playerName,
		"ai_count":    aiCount,
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("http://%s/games", c.server)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create game: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return "", fmt.Errorf("create game: %s", apiErr.Error)
		}
		return "", fmt.Errorf("create game: unexpected status %d", resp.StatusCode)
	}

	var created struct {
		GameID string `json:"game_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("create game: %w", err)
	}
	return created.GameID, nil
}

// Connect dials the game's event stream.
func (c *Client) Connect(ctx context.Context, gameID string) error {
	u := url.URL{Scheme: "ws", Host: c.server, Path: "/ws/" + gameID}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", u.String(), err)
	}

	c.conn = conn
	c.logger.Debug("connected", "game_id", gameID)
	return nil
}

// ReadEnvelope blocks for the next server event.
func (c *Client) ReadEnvelope() (Envelope, error) {
	var env Envelope
	if err := c.conn.ReadJSON(&env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// SendAction submits a fold, call or raise.
func (c *Client) SendAction(action string, amount int, stepMode, showThinking bool) error {
	return c.conn.WriteJSON(server.ClientFrame{
		Type:           server.FrameAction,
		Action:         action,
		Amount:         amount,
		StepMode:       stepMode,
		ShowAIThinking: showThinking,
	})
}

// SendContinue releases a step-mode pause.
func (c *Client) SendContinue() error {
	return c.conn.WriteJSON(server.ClientFrame{Type: server.FrameContinue})
}

// SendNextHand asks for the next hand to be dealt.
func (c *Client) SendNextHand(stepMode, showThinking bool) error {
	return c.conn.WriteJSON(server.ClientFrame{
		Type:           server.FrameNextHand,
		StepMode:       stepMode,
		ShowAIThinking: showThinking,
	})
}

// Close tears the WebSocket down.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
