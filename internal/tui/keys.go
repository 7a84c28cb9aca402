package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Roll    key.Binding
	RollOne key.Binding
	Toggle  key.Binding
	Confirm key.Binding
	Clear   key.Binding
	Hint    key.Binding
	Best    key.Binding
	End     key.Binding
	Ack     key.Binding
	Next    key.Binding
	Reset   key.Binding
	Up      key.Binding
	Down    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Roll:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "roll two dice")),
		RollOne: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "roll one die")),
		Toggle: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "-", "="),
			key.WithHelp("1-9 0 - =", "toggle tile"),
		),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "close tiles")),
		Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Hint:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hint")),
		Best:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "select hint")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end turn")),
		Ack:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "take over")),
		Next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next round")),
		Reset:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
		Up:      key.NewBinding(key.WithKeys("up", "pgup"), key.WithHelp("↑/pgup", "scroll log")),
		Down:    key.NewBinding(key.WithKeys("down", "pgdown"), key.WithHelp("↓/pgdn", "scroll log")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Roll, k.Toggle, k.Confirm, k.Ack, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Roll, k.RollOne, k.Toggle, k.Confirm, k.Clear},
		{k.Hint, k.Best, k.End, k.Ack, k.Next},
		{k.Reset, k.Up, k.Down, k.Help, k.Quit},
	}
}

// tileForKey maps the toggle keys to tile numbers: 1-9, then 0, - and =
// for 10, 11 and 12.
func tileForKey(s string) (int, bool) {
	switch s {
	case "0":
		return 10, true
	case "-":
		return 11, true
	case "=":
		return 12, true
	}
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '0'), true
	}
	return 0, false
}
