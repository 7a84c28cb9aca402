package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/shutthebox/internal/autoplay"
	"github.com/lox/shutthebox/internal/dice"
	"github.com/lox/shutthebox/internal/game"
	"github.com/lox/shutthebox/internal/tiles"
)

const sidebarWidth = 28

// Options configures the terminal UI.
type Options struct {
	// AutoSeats lists the player indexes played by the computer.
	AutoSeats  []int
	Strategy   autoplay.Strategy
	Delays     autoplay.Delays
	MaxRetries int
	Clock      quartz.Clock
	Logger     *log.Logger
}

// autoStepMsg asks the model to let the computer take its next step.
type autoStepMsg struct{}

// Model is the Bubble Tea model for a hot-seat match.
type Model struct {
	match     *game.Match
	logger    *log.Logger
	formatter *game.EventFormatter

	driver      *autoplay.Driver
	autoSeats   map[int]bool
	clock       quartz.Clock
	nextDelay   time.Duration
	retryDelay  time.Duration
	maxRetries  int
	retries     int
	autoPending bool

	keys        keyMap
	help        help.Model
	logViewport viewport.Model

	gameLog []string
	status  string
	hint    string

	width    int
	height   int
	quitting bool
}

// New creates a model driving m. Events published by the match are written
// to the game log.
func New(m *game.Match, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Strategy == nil {
		opts.Strategy = autoplay.BestMove{}
	}

	model := &Model{
		match:       m,
		logger:      opts.Logger.WithPrefix("tui"),
		autoSeats:   make(map[int]bool),
		clock:       opts.Clock,
		nextDelay:   opts.Delays.Roll,
		retryDelay:  opts.Delays.Retry,
		maxRetries:  opts.MaxRetries,
		keys:        defaultKeyMap(),
		help:        help.New(),
		logViewport: viewport.New(10, 5),
	}
	for _, seat := range opts.AutoSeats {
		model.autoSeats[seat] = true
	}
	if len(model.autoSeats) > 0 {
		model.driver = autoplay.NewDriver(m, opts.Strategy,
			autoplay.WithClock(opts.Clock),
			autoplay.WithDelays(opts.Delays))
	}

	model.formatter = game.NewEventFormatter(game.FormattingOptions{Names: model.names()})
	m.EventBus().Subscribe(game.EventSubscriberFunc(model.onEvent))
	model.status = "Press n to start the first round"
	return model
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *Model) names() map[string]string {
	names := make(map[string]string)
	for _, p := range m.match.Players() {
		names[p.ID] = p.Name
	}
	return names
}

func (m *Model) onEvent(event game.GameEvent) {
	if _, ok := event.(game.RoundStartEvent); ok {
		m.formatter = game.NewEventFormatter(game.FormattingOptions{Names: m.names()})
	}
	if line := m.formatter.Format(event); line != "" {
		m.AddLogEntry(line)
	}
}

// AddLogEntry appends a line to the game log and scrolls to it.
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns the game log lines.
func (m *Model) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// Status returns the current status line without styling.
func (m *Model) Status() string { return m.status }

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return m.scheduleAuto()
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		m.handleKey(msg)

	case autoStepMsg:
		m.autoPending = false
		m.autoStep()
	}
	return m, m.scheduleAuto()
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return
	case key.Matches(msg, m.keys.Up):
		m.logViewport.HalfPageUp()
		return
	case key.Matches(msg, m.keys.Down):
		m.logViewport.HalfPageDown()
		return
	case key.Matches(msg, m.keys.Reset):
		m.match.ResetMatch()
		m.hint = ""
		m.retries = 0
		m.status = "Match reset, press n to start"
		return
	}

	if m.autoTurn() {
		m.status = "Waiting for the computer"
		return
	}

	switch {
	case key.Matches(msg, m.keys.Roll):
		m.apply(m.match.Roll(2))
	case key.Matches(msg, m.keys.RollOne):
		m.apply(m.match.Roll(1))
	case key.Matches(msg, m.keys.Toggle):
		if tile, ok := tileForKey(msg.String()); ok {
			m.apply(m.match.ToggleTile(tile))
		}
	case key.Matches(msg, m.keys.Confirm):
		m.apply(m.match.Confirm())
	case key.Matches(msg, m.keys.Clear):
		m.apply(m.match.ClearSelection())
	case key.Matches(msg, m.keys.Hint):
		if combo, ok := m.match.Hint(); ok {
			m.hint = "Hint: close " + combo.String()
		} else {
			m.hint = "No hint: roll first"
		}
	case key.Matches(msg, m.keys.Best):
		m.apply(m.match.SelectBest())
	case key.Matches(msg, m.keys.End):
		m.apply(m.match.ForceEnd())
	case key.Matches(msg, m.keys.Ack):
		m.apply(m.match.AcknowledgeNextTurn())
	case key.Matches(msg, m.keys.Next):
		m.apply(m.match.StartRound())
	}
}

func (m *Model) apply(out game.Outcome, err error) {
	m.hint = ""
	if err != nil {
		m.logger.Debug("Rejected", "error", err)
		m.status = "✗ " + err.Error()
		return
	}
	m.status = m.describe(out)
}

func (m *Model) describe(out game.Outcome) string {
	switch {
	case out.MatchEnded != nil:
		return "Match over, press R to play again"
	case out.Handoff != nil && out.Handoff.NewRound:
		return fmt.Sprintf("No winner. Pass to %s and press space for round %d", out.Handoff.PlayerName, out.Handoff.Round)
	case out.Handoff != nil:
		return fmt.Sprintf("Pass to %s and press space", out.Handoff.PlayerName)
	case out.RoundEnded != nil:
		return "Round over, press n for the next round"
	case out.Turn == nil:
		return ""
	}
	switch out.Turn.State {
	case game.AwaitingRoll:
		if out.Turn.OneDieEligible {
			return "Roll with r, or d for one die"
		}
		return "Roll with r"
	case game.Rolled, game.Selecting:
		return fmt.Sprintf("Pick tiles adding up to %d, then enter", dice.Sum(out.Turn.Dice))
	default:
		return ""
	}
}

// autoTurn reports whether the next action belongs to the computer.
func (m *Model) autoTurn() bool {
	if m.driver == nil {
		return false
	}
	s := m.match.State()
	switch {
	case s.Result != nil:
		return false
	case s.Pending != nil:
		return m.autoSeats[s.Pending.Player]
	case s.Phase == game.PhaseInProgress && s.Turn != nil:
		return m.autoSeats[s.Turn.Player]
	default:
		// between rounds only an all-computer table carries on by itself
		return len(s.Players) > 0 && len(m.autoSeats) >= len(s.Players)
	}
}

func (m *Model) scheduleAuto() tea.Cmd {
	if m.autoPending || !m.autoTurn() {
		return nil
	}
	m.autoPending = true
	delay := m.nextDelay
	clock := m.clock
	return func() tea.Msg {
		if delay > 0 {
			timer := clock.NewTimer(delay, "tui", "autoplay")
			<-timer.C
		}
		return autoStepMsg{}
	}
}

func (m *Model) autoStep() {
	if !m.autoTurn() {
		return
	}
	delay, err := m.driver.Step()
	switch {
	case errors.Is(err, autoplay.ErrDone):
		m.driver = nil
	case err != nil:
		m.retries++
		m.logger.Warn("Autoplay step rejected", "error", err, "attempt", m.retries)
		if m.retries > m.maxRetries {
			m.status = "✗ autoplay stopped: " + err.Error()
			m.driver = nil
			return
		}
		m.nextDelay = m.retryDelay
	default:
		m.retries = 0
		m.nextDelay = delay
		s := m.match.State()
		m.status = m.describe(game.Outcome{Turn: s.Turn, Handoff: s.Pending, MatchEnded: s.Result})
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Render(m.renderHeader())
	board := m.renderBoard()
	footer := m.renderFooter()
	sidebar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Render(m.renderSidebar())

	used := lipgloss.Height(header) + lipgloss.Height(board) + lipgloss.Height(footer) + 2
	logWidth := max(m.width-sidebarWidth-4, 1)
	logHeight := max(m.height-used, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight).
		Render(m.logViewport.View())

	middle := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebar)
	return lipgloss.JoinVertical(lipgloss.Left, header, board, middle, footer)
}

func (m *Model) renderHeader() string {
	s := m.match.State()
	opts := s.Options
	rules := opts.Scoring.String()
	if opts.Scoring == game.ScoringTargetRace {
		rules = fmt.Sprintf("%s to %d", rules, opts.Target)
	}
	if opts.InstantWinOnShut {
		rules += ", shut wins"
	}
	return fmt.Sprintf("Shut the Box · round %d · %s · %s", s.Round, s.Phase, rules)
}

func (m *Model) renderBoard() string {
	s := m.match.State()
	highest := s.Options.HighestTile
	open := tiles.Full(highest)
	var selected tiles.Set
	var line strings.Builder

	if s.Turn != nil && s.Pending == nil {
		open, selected = s.Turn.Open, s.Turn.Selected
		name := s.Players[s.Turn.Player].Name
		line.WriteString(ActivePlayerStyle.Render(name))
		if len(s.Turn.Dice) > 0 && s.Turn.State != game.Finished {
			line.WriteString("  rolled ")
			line.WriteString(DiceStyle.Render(formatDice(s.Turn.Dice)))
			fmt.Fprintf(&line, "  %d ways to close", len(s.Turn.Combos))
		}
		fmt.Fprintf(&line, "  remaining %d", s.Turn.Remainder)
	} else if s.Pending != nil {
		line.WriteString(WarningStyle.Render("Hand over to " + s.Pending.PlayerName))
	}

	boxes := make([]string, 0, highest)
	for v := 1; v <= highest; v++ {
		label := fmt.Sprint(v)
		switch {
		case selected.Has(v):
			boxes = append(boxes, TileSelectedStyle.Render(label))
		case open.Has(v):
			boxes = append(boxes, TileOpenStyle.Render(label))
		default:
			boxes = append(boxes, TileClosedStyle.Render("·"))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
	return lipgloss.JoinVertical(lipgloss.Left, row, line.String())
}

func formatDice(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("[%d]", v)
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderSidebar() string {
	s := m.match.State()
	active := -1
	if s.Turn != nil && s.Pending == nil && s.Phase == game.PhaseInProgress {
		active = s.Turn.Player
	}

	var content strings.Builder
	content.WriteString(InfoStyle.Render("Players"))
	content.WriteString("\n")
	for i, p := range s.Players {
		last := "-"
		if p.Played {
			last = fmt.Sprint(p.LastScore)
		}
		name := p.Name
		if m.autoSeats[i] {
			name += " (cpu)"
		}
		line := fmt.Sprintf("%-14s %3s %4d", name, last, p.TotalScore)
		if i == active {
			line = ActivePlayerStyle.Render("▶ " + line)
		} else {
			line = PlayerInfoStyle.Render("  " + line)
		}
		content.WriteString(line)
		content.WriteString("\n")
	}
	if s.LastRound != nil && !s.LastRound.NoWinner() {
		content.WriteString("\n")
		content.WriteString(SuccessStyle.Render(fmt.Sprintf("Round %d won by %s", s.LastRound.Round, m.winnerNames(s.LastRound.Winners, s.Players))))
	}
	if s.Result != nil {
		content.WriteString("\n")
		content.WriteString(SuccessStyle.Render("Match winner: " + m.winnerNames(s.Result.Winners, s.Players)))
	}
	return content.String()
}

func (m *Model) winnerNames(winners []int, players []game.PlayerScore) string {
	names := make([]string, len(winners))
	for i, w := range winners {
		names[i] = players[w].Name
	}
	return strings.Join(names, " & ")
}

func (m *Model) renderFooter() string {
	var content strings.Builder
	if m.hint != "" {
		content.WriteString(HintStyle.Render(m.hint))
		content.WriteString("\n")
	}
	switch {
	case strings.HasPrefix(m.status, "✗"):
		content.WriteString(ErrorStyle.Render(m.status))
	case m.status != "":
		content.WriteString(SuccessStyle.Render(m.status))
	}
	content.WriteString("\n")
	content.WriteString(m.help.View(m.keys))
	return content.String()
}
