package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/shutthebox/internal/tiles"
)

// Board size limits. Twelve is the largest total two dice can make.
const (
	MinHighestTile = 3
	MaxHighestTile = 12
)

// Option keys accepted by SetOption.
const (
	OptionHighestTile      = "highest_tile"
	OptionOneDie           = "one_die"
	OptionScoring          = "scoring"
	OptionTarget           = "target"
	OptionInstantWinOnShut = "instant_win_on_shut"
)

// ScoringMode is the match-level rule set deciding how rounds are won.
type ScoringMode uint8

const (
	// ScoringLowestRemainder awards each round to the lowest remainder.
	ScoringLowestRemainder ScoringMode = iota
	// ScoringTargetRace accumulates remainders until someone reaches the target.
	ScoringTargetRace
	// ScoringInstantWin ends a round as soon as somebody shuts the box.
	ScoringInstantWin
)

func (m ScoringMode) String() string {
	switch m {
	case ScoringLowestRemainder:
		return "lowest_remainder"
	case ScoringTargetRace:
		return "target_race"
	case ScoringInstantWin:
		return "instant_win"
	default:
		return fmt.Sprintf("ScoringMode(%d)", uint8(m))
	}
}

// ParseScoringMode accepts the names produced by String.
func ParseScoringMode(s string) (ScoringMode, error) {
	switch strings.ToLower(s) {
	case "lowest_remainder", "lowest", "":
		return ScoringLowestRemainder, nil
	case "target_race", "target":
		return ScoringTargetRace, nil
	case "instant_win", "instant_win_on_shut", "instant":
		return ScoringInstantWin, nil
	default:
		return ScoringLowestRemainder, fmt.Errorf("unknown scoring mode %q", s)
	}
}

// Options configures a match.
type Options struct {
	HighestTile      int
	OneDie           tiles.OneDiePolicy
	Scoring          ScoringMode
	Target           int // only consulted under ScoringTargetRace
	InstantWinOnShut bool
}

// DefaultOptions returns the classic nine-tile game.
func DefaultOptions() Options {
	return Options{
		HighestTile: 9,
		OneDie:      tiles.OneDieAfterTopTilesClosed,
		Scoring:     ScoringLowestRemainder,
		Target:      45,
	}
}

// InstantWin reports whether shutting the box ends the round on the spot.
func (o Options) InstantWin() bool {
	return o.InstantWinOnShut || o.Scoring == ScoringInstantWin
}

// Validate checks the options for values the rules cannot handle.
func (o Options) Validate() error {
	if o.HighestTile < MinHighestTile || o.HighestTile > MaxHighestTile {
		return fmt.Errorf("highest tile must be between %d and %d, got %d", MinHighestTile, MaxHighestTile, o.HighestTile)
	}
	switch o.OneDie {
	case tiles.OneDieNever, tiles.OneDieAfterTopTilesClosed, tiles.OneDieWhenRemainderUnder6:
	default:
		return fmt.Errorf("unknown one-die policy %d", o.OneDie)
	}
	switch o.Scoring {
	case ScoringLowestRemainder, ScoringInstantWin:
	case ScoringTargetRace:
		if o.Target <= 0 {
			return fmt.Errorf("target must be positive, got %d", o.Target)
		}
	default:
		return fmt.Errorf("unknown scoring mode %d", o.Scoring)
	}
	return nil
}

// With returns a copy of o with key set from its string form.
func (o Options) With(key, value string) (Options, error) {
	value = strings.TrimSpace(value)
	switch key {
	case OptionHighestTile:
		n, err := strconv.Atoi(value)
		if err != nil {
			return o, fmt.Errorf("%s: %w", key, err)
		}
		o.HighestTile = n
	case OptionOneDie:
		p, err := tiles.ParseOneDiePolicy(value)
		if err != nil {
			return o, err
		}
		o.OneDie = p
	case OptionScoring:
		m, err := ParseScoringMode(value)
		if err != nil {
			return o, err
		}
		o.Scoring = m
	case OptionTarget:
		n, err := strconv.Atoi(value)
		if err != nil {
			return o, fmt.Errorf("%s: %w", key, err)
		}
		if n <= 0 {
			return o, fmt.Errorf("target must be positive, got %d", n)
		}
		o.Target = n
	case OptionInstantWinOnShut:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return o, fmt.Errorf("%s: %w", key, err)
		}
		o.InstantWinOnShut = b
	default:
		return o, fmt.Errorf("unknown option %q", key)
	}
	return o, o.Validate()
}
