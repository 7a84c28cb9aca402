package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/shutthebox/internal/autoplay"
	"github.com/lox/shutthebox/internal/dice"
	"github.com/lox/shutthebox/internal/game"
)

func init() {
	DisableColor()
}

func newTestModel(t *testing.T, opts Options, rolls ...int) (*Model, *game.Match) {
	t.Helper()
	m, err := game.NewMatch(game.DefaultOptions(),
		[]game.PlayerInfo{{Name: "Alice"}, {Name: "Bob"}},
		game.WithRoller(dice.NewFixed(rolls...)))
	require.NoError(t, err)
	return New(m, opts), m
}

func press(model *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = model.Update(msg)
	}
	return cmd
}

func TestTileForKey(t *testing.T) {
	t.Parallel()
	tests := []struct {
		key  string
		tile int
		ok   bool
	}{
		{"1", 1, true},
		{"9", 9, true},
		{"0", 10, true},
		{"-", 11, true},
		{"=", 12, true},
		{"x", 0, false},
		{"12", 0, false},
	}
	for _, tt := range tests {
		tile, ok := tileForKey(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.tile, tile, tt.key)
	}
}

func TestHumanTurn(t *testing.T) {
	t.Parallel()
	model, m := newTestModel(t, Options{}, 2, 5)

	press(model, "n")
	assert.Equal(t, "Roll with r", model.Status())

	press(model, "r")
	assert.Equal(t, "Pick tiles adding up to 7, then enter", model.Status())

	press(model, "h")
	assert.Contains(t, model.hint, "Hint: close")

	press(model, "1", "6", "enter")
	turn := m.State().Turn
	require.NotNil(t, turn)
	assert.Equal(t, "{2 3 4 5 7 8 9}", turn.Open.String())
	assert.Empty(t, model.hint)

	log := strings.Join(model.Log(), "\n")
	assert.Contains(t, log, "=== Round 1 (Alice, Bob) ===")
	assert.Contains(t, log, "Alice rolls 2+5 = 7")
	assert.Contains(t, log, "Alice closes {1 6}")
}

func TestRejectedKeyShowsError(t *testing.T) {
	t.Parallel()
	model, _ := newTestModel(t, Options{})

	press(model, "r")
	assert.True(t, strings.HasPrefix(model.Status(), "✗"), model.Status())

	press(model, "n", "0")
	assert.True(t, strings.HasPrefix(model.Status(), "✗"), "tile 10 is not on a nine-tile board")
}

func TestHandoffAndNextRound(t *testing.T) {
	t.Parallel()
	model, m := newTestModel(t, Options{})

	press(model, "n", "e")
	assert.Equal(t, "Pass to Bob and press space", model.Status())

	press(model, "space")
	require.NotNil(t, m.State().Turn)
	assert.Equal(t, 1, m.State().Turn.Player)

	press(model, "e")
	assert.Equal(t, game.PhaseFinished, m.Phase())
	assert.Contains(t, strings.Join(model.Log(), "\n"), "Round 1: Alice & Bob tie")

	press(model, "R")
	assert.Equal(t, game.PhaseSetup, m.Phase())
	assert.Equal(t, "Match reset, press n to start", model.Status())
}

func TestAutoSeatPlaysItsTurn(t *testing.T) {
	t.Parallel()
	model, m := newTestModel(t, Options{AutoSeats: []int{1}, MaxRetries: 3}, 1, 1, 1, 1)

	assert.Nil(t, model.Init(), "the human seat starts")
	press(model, "n", "e")
	assert.True(t, model.autoTurn())

	press(model, "r")
	assert.Equal(t, "Waiting for the computer", model.Status())

	for i := 0; i < 20 && model.autoTurn(); i++ {
		model.Update(autoStepMsg{})
	}
	assert.False(t, model.autoTurn(), "the round is over and the human starts the next one")

	s := m.State()
	require.NotNil(t, s.LastRound)
	assert.Equal(t, []int{1}, s.LastRound.Winners)
	assert.Equal(t, 43, s.Players[1].LastScore)
	assert.Contains(t, strings.Join(model.Log(), "\n"), "Round 1: Bob wins")
}

func TestAllComputerTableStartsRounds(t *testing.T) {
	t.Parallel()
	model, m := newTestModel(t, Options{AutoSeats: []int{0, 1}, Strategy: autoplay.LargestTile{}})

	assert.NotNil(t, model.Init())
	model.Update(autoStepMsg{})
	assert.Equal(t, game.PhaseInProgress, m.Phase())
}

func TestViewRendersBoard(t *testing.T) {
	t.Parallel()
	model, _ := newTestModel(t, Options{AutoSeats: []int{1}}, 3, 4)
	assert.Equal(t, "Loading...", model.View())

	model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	press(model, "n", "r")
	view := model.View()
	assert.Contains(t, view, "Shut the Box · round 1 · in_progress · lowest_remainder")
	assert.Contains(t, view, "[3] [4]")
	assert.Contains(t, view, "Alice")
	assert.Contains(t, view, "Bob (cpu)")

	cmd := press(model, "ctrl+c")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, model.View())
}
