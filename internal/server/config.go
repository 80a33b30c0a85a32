package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem-live/internal/game"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings configures every game the server creates. Booleans that
// default on are pointers so an explicit `false` survives parsing.
type GameSettings struct {
	StartingStack int `hcl:"starting_stack,optional"`
	SmallBlind    int `hcl:"small_blind,optional"`
	BigBlind      int `hcl:"big_blind,optional"`

	BlindEscalation *bool   `hcl:"blind_escalation,optional"`
	HandsPerLevel   int     `hcl:"hands_per_blind_level,optional"`
	BlindMultiplier float64 `hcl:"blind_multiplier,optional"`

	EventHistoryCap  int `hcl:"event_history_cap,optional"`
	CompletedHandCap int `hcl:"completed_hand_cap,optional"`
	LegacyHandCap    int `hcl:"legacy_hand_cap,optional"`

	StepTimeoutSeconds int   `hcl:"step_timeout_seconds,optional"`
	AIDelayMillis      int   `hcl:"ai_delay_ms,optional"`
	Assertions         *bool `hcl:"assertions,optional"`

	// Seed fixes deck shuffles and AI randomness for every game the
	// server creates; zero (the default) picks fresh entropy per game.
	Seed int64 `hcl:"seed,optional"`
}

// DefaultConfig returns the standard configuration: a 4-max table of
// 1000-chip stacks at 5/10 with blinds doubling every 10 hands.
func DefaultConfig() *Config {
	on := true
	return &Config{
		Server: ServerSettings{
			Address:  "localhost:8080",
			LogLevel: "info",
		},
		Game: GameSettings{
			StartingStack:      1000,
			SmallBlind:         5,
			BigBlind:           10,
			BlindEscalation:    &on,
			HandsPerLevel:      10,
			BlindMultiplier:    2.0,
			EventHistoryCap:    1000,
			CompletedHandCap:   100,
			LegacyHandCap:      50,
			StepTimeoutSeconds: 60,
			AIDelayMillis:      500,
			Assertions:         &on,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist. Missing values take their
// defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	g, d := &config.Game, defaults.Game
	if g.StartingStack == 0 {
		g.StartingStack = d.StartingStack
	}
	if g.SmallBlind == 0 {
		g.SmallBlind = d.SmallBlind
	}
	if g.BigBlind == 0 {
		g.BigBlind = d.BigBlind
	}
	if g.BlindEscalation == nil {
		g.BlindEscalation = d.BlindEscalation
	}
	if g.HandsPerLevel == 0 {
		g.HandsPerLevel = d.HandsPerLevel
	}
	if g.BlindMultiplier == 0 {
		g.BlindMultiplier = d.BlindMultiplier
	}
	if g.EventHistoryCap == 0 {
		g.EventHistoryCap = d.EventHistoryCap
	}
	if g.CompletedHandCap == 0 {
		g.CompletedHandCap = d.CompletedHandCap
	}
	if g.LegacyHandCap == 0 {
		g.LegacyHandCap = d.LegacyHandCap
	}
	if g.StepTimeoutSeconds == 0 {
		g.StepTimeoutSeconds = d.StepTimeoutSeconds
	}
	if g.AIDelayMillis == 0 {
		g.AIDelayMillis = d.AIDelayMillis
	}
	if g.Assertions == nil {
		g.Assertions = d.Assertions
	}

	return &config, nil
}

// Validate checks the configuration for values the server cannot run
// with.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	g := c.Game
	if g.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if g.BigBlind <= g.SmallBlind {
		return fmt.Errorf("big blind must be greater than small blind")
	}
	if g.StartingStack < g.BigBlind*2 {
		return fmt.Errorf("starting stack %d cannot cover the blinds", g.StartingStack)
	}
	if g.BlindMultiplier < 1.0 {
		return fmt.Errorf("blind multiplier must be at least 1.0")
	}
	if g.StepTimeoutSeconds <= 0 {
		return fmt.Errorf("step timeout must be positive")
	}
	return nil
}

// GameOptions maps the game block onto engine options.
func (c *Config) GameOptions() game.Options {
	g := c.Game
	return game.Options{
		StartingStack:    g.StartingStack,
		SmallBlind:       g.SmallBlind,
		BigBlind:         g.BigBlind,
		BlindEscalation:  g.BlindEscalation == nil || *g.BlindEscalation,
		HandsPerLevel:    g.HandsPerLevel,
		BlindMultiplier:  g.BlindMultiplier,
		EventHistoryCap:  g.EventHistoryCap,
		CompletedHandCap: g.CompletedHandCap,
		LegacyHandCap:    g.LegacyHandCap,
		Assertions:       g.Assertions == nil || *g.Assertions,
		Seed:             g.Seed,
	}
}

// StepTimeout returns the step-mode rendezvous timeout.
func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.Game.StepTimeoutSeconds) * time.Second
}

// AIDelay returns the cosmetic pause between AI actions.
func (c *Config) AIDelay() time.Duration {
	return time.Duration(c.Game.AIDelayMillis) * time.Millisecond
}
