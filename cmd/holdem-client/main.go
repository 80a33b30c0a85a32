package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/holdem-live/internal/client"
)

var CLI struct {
	Server   string `short:"s" long:"server" default:"localhost:8080" help:"Server address (host:port)"`
	Name     string `short:"n" long:"name" default:"Player" help:"Player name"`
	Bots     int    `short:"b" long:"bots" default:"3" help:"Number of AI opponents (1-3)"`
	Step     bool   `long:"step" help:"Pause after each AI action"`
	Thinking bool   `long:"thinking" help:"Show AI reasoning"`
	Game     string `short:"g" long:"game" help:"Join an existing game instead of creating one"`
	LogFile  string `long:"log-file" default:"holdem-client.log" help:"Log file path"`
	LogLevel string `short:"l" long:"log-level" default:"info" help:"Log level"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Logging goes to a file so it never fights the TUI for the terminal.
	var logWriter io.Writer = io.Discard
	if CLI.LogFile != "" {
		f, err := os.OpenFile(CLI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			fmt.Printf("Failed to open log file: %v\n", err)
			ctx.Exit(1)
		}
		defer func() { _ = f.Close() }()
		logWriter = f
	}

	logger := log.New(logWriter)
	if level, err := log.ParseLevel(CLI.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	lipgloss.SetColorProfile(termenv.ColorProfile())

	c := client.New(CLI.Server, logger)

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gameID := CLI.Game
	if gameID == "" {
		var err error
		gameID, err = c.CreateGame(connectCtx, CLI.Name, CLI.Bots)
		if err != nil {
			fmt.Printf("Failed to create game: %v\n", err)
			ctx.Exit(1)
		}
		fmt.Printf("Created game %s\n", gameID)
	}

	if err := c.Connect(connectCtx, gameID); err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		ctx.Exit(1)
	}
	defer func() { _ = c.Close() }()

	logger.Info("connected", "server", CLI.Server, "game_id", gameID, "player", CLI.Name)

	model := client.NewModel(c, logger, CLI.Step, CLI.Thinking)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running UI: %v\n", err)
		ctx.Exit(1)
	}
}
