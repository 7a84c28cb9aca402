package game

import (
	"fmt"
	"slices"

	"github.com/lox/shutthebox/internal/dice"
	"github.com/lox/shutthebox/internal/tiles"
)

// TurnState is a step of a single player's turn.
type TurnState uint8

const (
	AwaitingRoll TurnState = iota
	Rolled
	Selecting
	Finished
)

func (s TurnState) String() string {
	switch s {
	case AwaitingRoll:
		return "awaiting_roll"
	case Rolled:
		return "rolled"
	case Selecting:
		return "selecting"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("TurnState(%d)", uint8(s))
	}
}

// Closure records one roll and the tiles it closed.
type Closure struct {
	Dice   []int
	Closed tiles.Set
}

// Turn is one player's sequence of rolls and closures on a fresh board.
// A Turn is not safe for concurrent use.
type Turn struct {
	player  int
	highest int
	policy  tiles.OneDiePolicy

	state    TurnState
	open     tiles.Set
	dice     []int
	combos   []tiles.Combo
	selected tiles.Set
	history  []Closure
	rolls    int
	forced   bool
}

// NewTurn starts a turn for the player at index player with tiles 1..highest open.
func NewTurn(player, highest int, policy tiles.OneDiePolicy) *Turn {
	return newTurnOnBoard(player, highest, policy, tiles.Full(highest))
}

func newTurnOnBoard(player, highest int, policy tiles.OneDiePolicy, board tiles.Set) *Turn {
	return &Turn{
		player:  player,
		highest: highest,
		policy:  policy,
		state:   AwaitingRoll,
		open:    board,
	}
}

// Player returns the index of the player taking this turn.
func (t *Turn) Player() int { return t.player }

// State returns the current step of the turn.
func (t *Turn) State() TurnState { return t.state }

// Open returns the tiles still open.
func (t *Turn) Open() tiles.Set { return t.open }

// Selected returns the tiles currently toggled for closing.
func (t *Turn) Selected() tiles.Set { return t.selected }

// Dice returns the most recent roll, or nil before the first roll.
func (t *Turn) Dice() []int { return slices.Clone(t.dice) }

// Combos returns the legal combos for the current roll.
func (t *Turn) Combos() []tiles.Combo { return slices.Clone(t.combos) }

// History returns the closures made so far.
func (t *Turn) History() []Closure { return slices.Clone(t.history) }

// Rolls returns how many times the dice have been rolled this turn.
func (t *Turn) Rolls() int { return t.rolls }

// Finished reports whether the turn is over.
func (t *Turn) Finished() bool { return t.state == Finished }

// Forced reports whether the turn was ended by ForceEnd.
func (t *Turn) Forced() bool { return t.forced }

// Remainder is the sum of the tiles still open.
func (t *Turn) Remainder() int { return t.open.Sum() }

// Shut reports whether every tile has been closed.
func (t *Turn) Shut() bool { return t.open.Empty() }

// OneDieEligible reports whether the next roll may use a single die.
func (t *Turn) OneDieEligible() bool {
	return t.state == AwaitingRoll && tiles.OneDieAllowed(t.open, t.highest, t.policy)
}

// Roll throws count dice. When no combo matches the total the turn finishes
// immediately; that is a normal end, not an error.
func (t *Turn) Roll(r dice.Roller, count int) error {
	const op = "roll"
	if t.state != AwaitingRoll {
		return reject(op, ReasonWrongPhase, "turn is %s", t.state)
	}
	switch count {
	case 1:
		if !tiles.OneDieAllowed(t.open, t.highest, t.policy) {
			return reject(op, ReasonOneDieNotEligible, "policy %s with open tiles %s", t.policy, t.open)
		}
	case 2:
	default:
		return reject(op, ReasonInvalidValue, "dice count must be 1 or 2, got %d", count)
	}

	t.dice = r.Roll(count)
	t.rolls++
	t.selected = 0
	t.combos = tiles.Combos(t.open, dice.Sum(t.dice))
	if len(t.combos) == 0 {
		t.state = Finished
		return nil
	}
	t.state = Rolled
	return nil
}

func (t *Turn) checkSelectable(op string) error {
	switch t.state {
	case Rolled, Selecting:
		return nil
	case AwaitingRoll:
		return reject(op, ReasonNotRolled, "roll the dice first")
	default:
		return reject(op, ReasonWrongPhase, "turn is %s", t.state)
	}
}

// Toggle adds tile to the selection or removes it.
func (t *Turn) Toggle(tile int) error {
	const op = "toggle"
	if err := t.checkSelectable(op); err != nil {
		return err
	}
	if !t.open.Has(tile) {
		return reject(op, ReasonTileNotOpen, "tile %d", tile)
	}
	t.selected = t.selected.Toggle(tile)
	t.syncSelectState()
	return nil
}

// ClearSelection deselects every tile.
func (t *Turn) ClearSelection() error {
	if err := t.checkSelectable("clear"); err != nil {
		return err
	}
	t.selected = 0
	t.syncSelectState()
	return nil
}

func (t *Turn) syncSelectState() {
	if t.selected.Empty() {
		t.state = Rolled
	} else {
		t.state = Selecting
	}
}

// Confirm closes the selected tiles. The selection must equal one of the
// legal combos for the roll. It returns the tiles that were closed.
func (t *Turn) Confirm() (tiles.Set, error) {
	const op = "confirm"
	if err := t.checkSelectable(op); err != nil {
		return 0, err
	}
	if t.selected.Empty() {
		return 0, reject(op, ReasonSelectionMismatch, "nothing selected")
	}
	if !tiles.IsLegal(t.combos, t.selected) {
		return 0, reject(op, ReasonSelectionMismatch, "%s does not make %d", t.selected, dice.Sum(t.dice))
	}

	closed := t.selected
	t.open = t.open.Minus(closed)
	t.history = append(t.history, Closure{Dice: slices.Clone(t.dice), Closed: closed})
	t.selected = 0
	t.combos = nil
	if t.open.Empty() {
		t.state = Finished
	} else {
		t.state = AwaitingRoll
	}
	return closed, nil
}

// ForceEnd finishes the turn with whatever tiles are open.
func (t *Turn) ForceEnd() {
	if t.state == Finished {
		return
	}
	t.forced = true
	t.selected = 0
	t.state = Finished
}

// Hint returns the advisory combo for the current roll.
func (t *Turn) Hint() (tiles.Combo, bool) {
	if t.state != Rolled && t.state != Selecting {
		return 0, false
	}
	return tiles.BestMove(t.combos, t.open)
}

// Select replaces the selection with combo, which must be legal.
func (t *Turn) Select(combo tiles.Combo) error {
	const op = "select"
	if err := t.checkSelectable(op); err != nil {
		return err
	}
	if !tiles.IsLegal(t.combos, combo.Set()) {
		return reject(op, ReasonSelectionMismatch, "%s is not a legal combo", combo)
	}
	t.selected = combo.Set()
	t.syncSelectState()
	return nil
}

// TurnView is a read-only copy of a turn for display and automation.
type TurnView struct {
	Player         int
	State          TurnState
	Open           tiles.Set
	Selected       tiles.Set
	Dice           []int
	Combos         []tiles.Combo
	History        []Closure
	Rolls          int
	OneDieEligible bool
	Remainder      int
}

// View returns a snapshot of the turn.
func (t *Turn) View() TurnView {
	return TurnView{
		Player:         t.player,
		State:          t.state,
		Open:           t.open,
		Selected:       t.selected,
		Dice:           t.Dice(),
		Combos:         t.Combos(),
		History:        t.History(),
		Rolls:          t.rolls,
		OneDieEligible: t.OneDieEligible(),
		Remainder:      t.Remainder(),
	}
}
