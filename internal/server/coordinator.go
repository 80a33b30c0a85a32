package server

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-live/internal/game"
	"github.com/lox/holdem-live/internal/gameid"
)

// Coordinator owns the live sessions. Creation and lookup are the only
// cross-game operations; everything inside a game goes through its
// session.
type Coordinator struct {
	config *Config
	logger *log.Logger
	clock  quartz.Clock

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewCoordinator creates an empty session registry.
func NewCoordinator(config *Config, logger *log.Logger, clock quartz.Clock) *Coordinator {
	return &Coordinator{
		config:   config,
		logger:   logger.WithPrefix("coordinator"),
		clock:    clock,
		sessions: make(map[string]*Session),
	}
}

// CreateGame builds a new game and registers its session, returning the
// game id.
func (c *Coordinator) CreateGame(playerName string, aiCount int) (string, error) {
	id := gameid.Generate()

	engine, err := game.NewGame(id, playerName, aiCount, c.config.GameOptions(), c.logger)
	if err != nil {
		return "", fmt.Errorf("create game: %w", err)
	}

	session := NewSession(id, engine, c.logger, c.clock,
		c.config.AIDelay(), c.config.StepTimeout(), c.removeIdle)

	c.mu.Lock()
	c.sessions[id] = session
	total := len(c.sessions)
	c.mu.Unlock()

	c.logger.Info("game created",
		"game_id", id, "player", playerName, "ai_count", aiCount, "active_games", total)
	return id, nil
}

// Lookup returns the session for a game id.
func (c *Coordinator) Lookup(id string) (*Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	return s, ok
}

// Count returns the number of live sessions.
func (c *Coordinator) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// removeIdle drops a session whose last observer left.
func (c *Coordinator) removeIdle(id string) {
	c.mu.Lock()
	_, ok := c.sessions[id]
	delete(c.sessions, id)
	total := len(c.sessions)
	c.mu.Unlock()

	if ok {
		c.logger.Info("game torn down", "game_id", id, "active_games", total)
	}
}
