package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-live/internal/game"
	"github.com/lox/holdem-live/internal/server"
)

// eventMsg delivers one server event into the Bubble Tea loop.
type eventMsg struct {
	env Envelope
}

// disconnectMsg signals the event stream has closed.
type disconnectMsg struct {
	err error
}

// Model is the Bubble Tea model for one game session.
type Model struct {
	client *Client
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// Observer preferences, sent with every action frame.
	stepMode     bool
	showThinking bool

	// State from the server
	state            *game.Snapshot
	awaitingContinue bool
	gameLog          []string

	// Dimensions
	width    int
	height   int
	quitting bool
}

// NewModel builds the UI for a connected client.
func NewModel(client *Client, logger *log.Logger, stepMode, showThinking bool) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "fold, call, raise <amount>, next, quit"
	ti.Focus()
	ti.CharLimit = 100
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)

	return &Model{
		client:       client,
		logger:       logger.WithPrefix("ui"),
		logViewport:  vp,
		actionInput:  ti,
		stepMode:     stepMode,
		showThinking: showThinking,
	}
}

// Init starts the event stream reader.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

// listen reads the next server event as a command.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		env, err := m.client.ReadEnvelope()
		if err != nil {
			return disconnectMsg{err: err}
		}
		return eventMsg{env: env}
	}
}

// Update handles messages in the UI.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case disconnectMsg:
		m.appendLog(ErrorStyle.Render("Disconnected from server"))
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case eventMsg:
		m.handleEvent(msg.env)
		cmds = append(cmds, m.listen())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			_ = m.client.Close()
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "enter":
			input := strings.TrimSpace(m.actionInput.Value())
			m.actionInput.SetValue("")
			m.processCommand(input)
		case "up":
			m.logViewport.ScrollUp(1)
		case "down":
			m.logViewport.ScrollDown(1)
		case "pgup":
			m.logViewport.HalfPageUp()
		case "pgdown":
			m.logViewport.HalfPageDown()
		}
	}

	var cmd tea.Cmd
	m.actionInput, cmd = m.actionInput.Update(msg)
	cmds = append(cmds, cmd)
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleEvent folds one server event into the display state.
func (m *Model) handleEvent(env Envelope) {
	switch env.Type {
	case server.MessageStateUpdate:
		var snap game.Snapshot
		if err := json.Unmarshal(env.Payload, &snap); err != nil {
			m.logger.Error("bad state_update", "error", err)
			return
		}
		m.applyState(&snap)

	case server.MessageAIAction:
		var p server.AIActionPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		m.appendLog(m.describeAIAction(p))
		if m.showThinking && p.Reasoning != "" {
			m.appendLog(ThinkingStyle.Render("  " + p.Reasoning))
		}

	case server.MessageAwaitingContinue:
		var p server.AwaitingContinuePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		m.awaitingContinue = true
		m.appendLog(InfoStyle.Render(
			fmt.Sprintf("Paused after %s's %s. Press Enter to continue.", p.PlayerName, p.Action)))

	case server.MessageAutoResumed:
		m.awaitingContinue = false
		m.appendLog(InfoStyle.Render("Auto-resumed after timeout"))

	case server.MessageError:
		var p server.ErrorPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		m.appendLog(ErrorStyle.Render("Error: " + p.Message))
	}
}

// applyState installs a snapshot and logs the transitions worth seeing.
func (m *Model) applyState(snap *game.Snapshot) {
	prev := m.state
	m.state = snap

	if prev == nil || prev.HandCount != snap.HandCount {
		m.appendLog(ActionsStyle.Render(fmt.Sprintf("--- Hand %d (blinds %d/%d) ---",
			snap.HandCount, snap.SmallBlind, snap.BigBlind)))
		if snap.HumanPlayer != nil && len(snap.HumanPlayer.HoleCards) == 2 {
			m.appendLog("Your hand: " + m.formatCards(snap.HumanPlayer.HoleCards))
		}
	}

	if prev != nil && prev.State != snap.State && snap.State != "showdown" {
		m.appendLog(HandInfoStyle.Render(fmt.Sprintf("%s: %s  (pot %d)",
			strings.ToUpper(strings.ReplaceAll(snap.State, "_", " ")),
			m.formatCards(snap.CommunityCards), snap.Pot)))
	}

	if snap.State == "showdown" && snap.WinnerInfo != nil &&
		(prev == nil || prev.State != "showdown") {
		m.logShowdown(snap.WinnerInfo)
	}
}

// logShowdown prints the hand result.
func (m *Model) logShowdown(info *game.WinnerInfo) {
	for _, h := range info.AllShowdownHands {
		m.appendLog(fmt.Sprintf("%s shows %s (%s)",
			h.Name, m.formatCards(h.HoleCards), h.HandRank))
	}
	for _, w := range info.Winners {
		how := w.HandRank
		if w.WonByFold {
			how = "everyone folded"
		}
		style := SuccessStyle
		if !w.IsHuman {
			style = WarningStyle
		}
		m.appendLog(style.Render(fmt.Sprintf("%s wins %d (%s)", w.Name, w.Amount, how)))
	}
	m.appendLog(InfoStyle.Render("Type 'next' for the next hand"))
}

func (m *Model) describeAIAction(p server.AIActionPayload) string {
	switch p.Action {
	case "fold":
		return fmt.Sprintf("%s folds", p.PlayerName)
	case "call":
		if p.BetAmount == 0 {
			return fmt.Sprintf("%s checks", p.PlayerName)
		}
		return fmt.Sprintf("%s calls %d", p.PlayerName, p.BetAmount)
	case "raise":
		return fmt.Sprintf("%s raises to %d", p.PlayerName, p.Amount)
	default:
		return fmt.Sprintf("%s %s", p.PlayerName, p.Action)
	}
}

// processCommand interprets one line of input.
func (m *Model) processCommand(input string) {
	if m.awaitingContinue && (input == "" || input == "continue") {
		m.awaitingContinue = false
		if err := m.client.SendContinue(); err != nil {
			m.appendLog(ErrorStyle.Render("Error: " + err.Error()))
		}
		return
	}

	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return
	}

	var err error
	switch parts[0] {
	case "quit", "exit":
		m.quitting = true
		_ = m.client.Close()
		return

	case "next":
		err = m.client.SendNextHand(m.stepMode, m.showThinking)

	case "continue":
		err = m.client.SendContinue()

	case "fold", "call", "check":
		action := parts[0]
		if action == "check" {
			action = "call"
		}
		err = m.client.SendAction(action, 0, m.stepMode, m.showThinking)

	case "raise", "bet":
		if len(parts) < 2 {
			m.appendLog(ErrorStyle.Render("Usage: raise <total amount>"))
			return
		}
		amount, convErr := strconv.Atoi(parts[1])
		if convErr != nil || amount <= 0 {
			m.appendLog(ErrorStyle.Render("Raise amount must be a positive number"))
			return
		}
		err = m.client.SendAction("raise", amount, m.stepMode, m.showThinking)

	case "step":
		m.stepMode = !m.stepMode
		m.appendLog(InfoStyle.Render(fmt.Sprintf("Step mode: %v", m.stepMode)))
		return

	case "thinking":
		m.showThinking = !m.showThinking
		m.appendLog(InfoStyle.Render(fmt.Sprintf("AI thinking: %v", m.showThinking)))
		return

	default:
		m.appendLog(ErrorStyle.Render("Unknown command: " + parts[0]))
		return
	}

	if err != nil {
		m.appendLog(ErrorStyle.Render("Error: " + err.Error()))
	}
}

// View renders the UI: table sidebar, scrolling log, input pane.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent) + 2

	sidebarWidth := 30
	paneHeight := m.height - actionHeight - 2
	if paneHeight < 1 {
		paneHeight = 1
	}
	logWidth := m.width - sidebarWidth - 4
	if logWidth < 1 {
		logWidth = 1
	}

	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))

	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(m.renderSidebar())

	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(m.width - 2).
		Render(actionContent)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebar shows the table: seats, stacks, bets and markers.
func (m *Model) renderSidebar() string {
	var b strings.Builder

	if m.state == nil {
		b.WriteString(InfoStyle.Render("Waiting for game state..."))
		return b.String()
	}
	s := m.state

	b.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: %d", s.Pot)))
	if s.CurrentBet > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("  Bet: %d", s.CurrentBet)))
	}
	b.WriteString("\n")
	if len(s.CommunityCards) > 0 {
		b.WriteString("Board: " + m.formatCards(s.CommunityCards) + "\n")
	}
	b.WriteString("\n")

	for i, p := range s.Players {
		marker := "  "
		if s.DealerPosition != nil && *s.DealerPosition == i {
			marker = "D "
		}
		turn := ""
		if s.CurrentPlayerIndex != nil && *s.CurrentPlayerIndex == i {
			turn = " ←"
		}
		line := fmt.Sprintf("%s%s: %d", marker, p.Name, p.Stack)
		if p.CurrentBet > 0 {
			line += fmt.Sprintf(" (bet %d)", p.CurrentBet)
		}
		switch {
		case p.AllIn:
			line += " ALL-IN"
		case !p.IsActive:
			line = InfoStyle.Render(line + " folded")
		}
		b.WriteString(line + turn + "\n")
	}

	return b.String()
}

// renderActionPane shows the hand, the available actions and the input.
func (m *Model) renderActionPane() string {
	var b strings.Builder

	if m.state != nil && m.state.HumanPlayer != nil {
		h := m.state.HumanPlayer
		if len(h.HoleCards) == 2 {
			b.WriteString(HandInfoStyle.Render("Hand: ") + m.formatCards(h.HoleCards))
			b.WriteString(fmt.Sprintf("  Stack: %d", h.Stack))
			b.WriteString("\n")
		}
		switch {
		case m.awaitingContinue:
			b.WriteString(InfoStyle.Render("Enter to continue"))
		case m.state.State == "showdown":
			b.WriteString(ActionsStyle.Render("[next] for a new hand"))
		case h.IsCurrentTurn:
			call := m.state.CurrentBet - h.CurrentBet
			actions := []string{ErrorStyle.Render("[fold]")}
			if call <= 0 {
				actions = append(actions, SuccessStyle.Render("[check]"))
			} else {
				actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call %d]", call)))
			}
			actions = append(actions, WarningStyle.Render("[raise <total>]"))
			b.WriteString(ActionsStyle.Render("Your turn: ") + strings.Join(actions, " "))
		default:
			b.WriteString(InfoStyle.Render("Waiting..."))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("↑↓ scroll • step/thinking toggles • Ctrl+C to quit"))
	return b.String()
}

// formatCards colors cards by suit.
func (m *Model) formatCards(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	var formatted []string
	for _, c := range cards {
		if strings.HasSuffix(c, "h") || strings.HasSuffix(c, "d") {
			formatted = append(formatted, RedCardStyle.Render(c))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(c))
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// appendLog adds a log line and keeps the viewport pinned to the tail.
func (m *Model) appendLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 {
		m.logViewport.GotoBottom()
	}
}
