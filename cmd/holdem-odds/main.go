package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
	"github.com/lox/holdem-live/internal/randutil"
)

type CLI struct {
	Hand          string `arg:"" help:"Hero hole cards (e.g. 'AcKd')" required:""`
	Board         string `short:"b" help:"Community board cards (e.g. 'Td7s8h')"`
	Opponents     int    `short:"o" default:"1" help:"Number of opponents holding random cards (1-9)"`
	Iterations    int    `short:"i" default:"100000" help:"Number of Monte Carlo iterations"`
	Possibilities bool   `short:"p" help:"Show hand category probabilities"`
	Seed          int64  `help:"Random seed for reproducible results"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	rng := randutil.ForSeed(cli.Seed)

	hole, err := deck.ParseMany(strings.ReplaceAll(cli.Hand, " ", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing hand: %v\n", err)
		ctx.Exit(1)
	}
	if len(hole) != 2 {
		fmt.Fprintf(os.Stderr, "Hand must contain exactly 2 cards, got %d\n", len(hole))
		ctx.Exit(1)
	}

	var board []deck.Card
	if cli.Board != "" {
		board, err = deck.ParseMany(strings.ReplaceAll(cli.Board, " ", ""))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing board: %v\n", err)
			ctx.Exit(1)
		}
	}

	if err := validateNoDuplicates(hole, board); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ctx.Exit(1)
	}

	startTime := time.Now()
	est, err := evaluator.EstimateWinProbability(hole, board, cli.Opponents, cli.Iterations, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ctx.Exit(1)
	}
	duration := time.Since(startTime)

	displayResults(hole, board, cli.Opponents, est, cli.Possibilities, duration)
}

func validateNoDuplicates(hole, board []deck.Card) error {
	seen := make(map[deck.Card]bool)
	for _, card := range append(append([]deck.Card(nil), hole...), board...) {
		if seen[card] {
			return fmt.Errorf("duplicate card: %s", card)
		}
		seen[card] = true
	}
	return nil
}

func displayResults(hole, board []deck.Card, opponents int, est evaluator.WinEstimate, showPossibilities bool, duration time.Duration) {
	if len(board) > 0 {
		fmt.Printf("%s\n", headerStyle.Render("board"))
		fmt.Printf("%s\n\n", strings.Join(deck.Strings(board), " "))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		headerStyle.Render("hand"),
		headerStyle.Render("opponents"),
		headerStyle.Render("equity"))
	fmt.Fprintf(w, "%s\t%d\t%s\n",
		handStyle.Render(strings.Join(deck.Strings(hole), " ")),
		opponents,
		winStyle.Render(fmt.Sprintf("%.1f%%", est.WinProbability*100)))
	_ = w.Flush()

	if showPossibilities {
		fmt.Printf("\n")
		displayPossibilities(est)
	}

	fmt.Printf("\n%d iterations in %v\n", est.Samples, duration.Truncate(time.Millisecond))
}

func displayPossibilities(est evaluator.WinEstimate) {
	orderedTypes := []string{
		"Straight Flush", "Four of a Kind", "Full House", "Flush",
		"Straight", "Three of a Kind", "Two Pair", "One Pair", "High Card",
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, category := range orderedTypes {
		count, ok := est.Categories[category]
		if !ok {
			continue
		}
		pct := float64(count) / float64(est.Samples) * 100
		fmt.Fprintf(w, "%s\t%s\n",
			categoryStyle.Render(category),
			percentStyle.Render(fmt.Sprintf("%.1f%%", pct)))
	}
	_ = w.Flush()
}
