package autoplay

import (
	"fmt"
	"slices"

	"github.com/lox/shutthebox/internal/dice"
	"github.com/lox/shutthebox/internal/game"
	"github.com/lox/shutthebox/internal/tiles"
)

// Strategy decides how an automated player rolls and which tiles it closes.
type Strategy interface {
	Name() string
	// Dice returns how many dice to roll for a turn awaiting its roll.
	Dice(view game.TurnView) int
	// Choose picks one of view.Combos, which is never empty.
	Choose(view game.TurnView) tiles.Combo
}

// Strategy names accepted by ParseStrategy.
const (
	StrategyBestMove    = "best-move"
	StrategyRandomLegal = "random-legal"
	StrategyLargestTile = "largest-tile"
)

// StrategyNames lists the built-in strategies.
func StrategyNames() []string {
	return []string{StrategyBestMove, StrategyRandomLegal, StrategyLargestTile}
}

// ParseStrategy builds a strategy by name. The seed only matters for
// strategies that make random choices.
func ParseStrategy(name string, seed int64) (Strategy, error) {
	switch name {
	case StrategyBestMove, "best", "":
		return BestMove{}, nil
	case StrategyRandomLegal, "random":
		return NewRandomLegal(dice.NewSeeded(seed)), nil
	case StrategyLargestTile, "largest":
		return LargestTile{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want one of %v)", name, StrategyNames())
	}
}

// BestMove follows the advisory hint and rolls a single die whenever it is
// allowed and the open tiles add up to no more than six.
type BestMove struct{}

func (BestMove) Name() string { return StrategyBestMove }

func (BestMove) Dice(view game.TurnView) int {
	if view.OneDieEligible && view.Open.Sum() <= dice.Faces {
		return 1
	}
	return 2
}

func (BestMove) Choose(view game.TurnView) tiles.Combo {
	best, _ := tiles.BestMove(view.Combos, view.Open)
	return best
}

// Intn is the source of random choices.
type Intn interface {
	Intn(n int) int
}

// RandomLegal picks uniformly among the legal combos and flips a coin for
// the dice count when a single die is allowed.
type RandomLegal struct {
	rng Intn
}

// NewRandomLegal creates a RandomLegal strategy drawing from rng.
func NewRandomLegal(rng Intn) *RandomLegal {
	return &RandomLegal{rng: rng}
}

func (*RandomLegal) Name() string { return StrategyRandomLegal }

func (r *RandomLegal) Dice(view game.TurnView) int {
	if view.OneDieEligible && r.rng.Intn(2) == 0 {
		return 1
	}
	return 2
}

func (r *RandomLegal) Choose(view game.TurnView) tiles.Combo {
	return view.Combos[r.rng.Intn(len(view.Combos))]
}

// LargestTile always rolls two dice and closes the combo holding the
// largest tile, preferring combos that close more tiles.
type LargestTile struct{}

func (LargestTile) Name() string { return StrategyLargestTile }

func (LargestTile) Dice(game.TurnView) int { return 2 }

func (LargestTile) Choose(view game.TurnView) tiles.Combo {
	return slices.MinFunc(view.Combos, func(a, b tiles.Combo) int {
		if d := b.Max() - a.Max(); d != 0 {
			return d
		}
		if d := b.Len() - a.Len(); d != 0 {
			return d
		}
		return slices.Compare(a.Tiles(), b.Tiles())
	})
}
